package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sisubot/sisu/internal/feedback"
	"github.com/sisubot/sisu/internal/profile"
)

// Store defines the database operations used by the bot host. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new message record.
	SaveMessage(ctx context.Context, message *Message) error

	// GetRecentMessagesInChat retrieves the most recent 'limit' messages
	// for a chat, oldest first.
	GetRecentMessagesInChat(ctx context.Context, chatID int64, limit int) ([]*Message, error)

	// SaveResponseStats upserts a snapshot of the feedback ledger.
	SaveResponseStats(ctx context.Context, entries map[string]feedback.Entry) error

	// LoadResponseStats reads the last persisted ledger snapshot.
	LoadResponseStats(ctx context.Context) (map[string]feedback.Entry, error)

	// SaveUserProfiles upserts a snapshot of the preference profiles.
	SaveUserProfiles(ctx context.Context, profiles map[int64]profile.Profile) error

	// LoadUserProfiles reads the last persisted profile snapshot.
	LoadUserProfiles(ctx context.Context) (map[int64]profile.Profile, error)

	// RunSQLMaintenance performs database maintenance (VACUUM).
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ChatID == 0 || message.UserID == 0 {
		return fmt.Errorf("message must have non-zero chat_id and user_id")
	}
	if message.Content == "" {
		return fmt.Errorf("message must have non-empty content")
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	message.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO messages (chat_id, user_id, content, timestamp, created_at)
        VALUES (:chat_id, :user_id, :content, :timestamp, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", message.ChatID, "error", err)
		return fmt.Errorf("failed to save message (chat %d): %w", message.ChatID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // row IDs fit in uint
		message.ID = uint(id)
	}
	return nil
}

func (s *sqlxStore) GetRecentMessagesInChat(ctx context.Context, chatID int64, limit int) ([]*Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if limit <= 0 {
		limit = 20
	} else if limit > 500 {
		limit = 500
	}

	var messages []*Message
	query := `
        SELECT id, chat_id, user_id, content, timestamp, created_at
        FROM messages
        WHERE chat_id = ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &messages, query, chatID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get recent messages for chat %d: %w", chatID, err)
	}

	// Reverse to chronological order for the prompt builder.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *sqlxStore) SaveResponseStats(ctx context.Context, entries map[string]feedback.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        INSERT INTO response_stats (response, total_uses, positive, negative, per_user, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(response) DO UPDATE SET
            total_uses = excluded.total_uses,
            positive   = excluded.positive,
            negative   = excluded.negative,
            per_user   = excluded.per_user,
            updated_at = excluded.updated_at;
    `
	now := time.Now().UTC()
	for response, entry := range entries {
		perUser, err := json.Marshal(entry.PerUser)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to marshal per-user counts, storing empty", "error", err)
			perUser = []byte("{}")
		}
		if _, err := tx.ExecContext(ctx, query, response, entry.TotalUses, entry.Positive, entry.Negative, string(perUser), now); err != nil {
			return fmt.Errorf("failed to upsert response stat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Response stats snapshot saved", "count", len(entries))
	return nil
}

func (s *sqlxStore) LoadResponseStats(ctx context.Context) (map[string]feedback.Entry, error) {
	var rows []ResponseStat
	query := `SELECT response, total_uses, positive, negative, per_user, updated_at FROM response_stats`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load response stats: %w", err)
	}

	entries := make(map[string]feedback.Entry, len(rows))
	for _, row := range rows {
		perUser := make(map[int64]feedback.UserCounts)
		if row.PerUser != "" {
			if err := json.Unmarshal([]byte(row.PerUser), &perUser); err != nil {
				s.logger.WarnContext(ctx, "Failed to parse per-user counts, skipping breakdown", "error", err)
				perUser = make(map[int64]feedback.UserCounts)
			}
		}
		entries[row.Response] = feedback.Entry{
			TotalUses: row.TotalUses,
			Positive:  row.Positive,
			Negative:  row.Negative,
			PerUser:   perUser,
		}
	}
	return entries, nil
}

func (s *sqlxStore) SaveUserProfiles(ctx context.Context, profiles map[int64]profile.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        INSERT INTO user_profiles (user_id, favorite_topics, interaction_count, last_interaction_at, mood_history, response_style, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            favorite_topics     = excluded.favorite_topics,
            interaction_count   = excluded.interaction_count,
            last_interaction_at = excluded.last_interaction_at,
            mood_history        = excluded.mood_history,
            response_style      = excluded.response_style,
            updated_at          = excluded.updated_at;
    `
	now := time.Now().UTC()
	for userID, p := range profiles {
		topics, err := json.Marshal(p.FavoriteTopics)
		if err != nil {
			topics = []byte("{}")
		}
		history, err := json.Marshal(p.MoodHistory)
		if err != nil {
			history = []byte("[]")
		}
		if _, err := tx.ExecContext(ctx, query, userID, string(topics), p.InteractionCount, p.LastInteractionAt, string(history), p.ResponseStyle, now); err != nil {
			return fmt.Errorf("failed to upsert profile for user %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "User profiles snapshot saved", "count", len(profiles))
	return nil
}

func (s *sqlxStore) LoadUserProfiles(ctx context.Context) (map[int64]profile.Profile, error) {
	var rows []UserProfileRow
	query := `SELECT user_id, favorite_topics, interaction_count, last_interaction_at, mood_history, response_style, updated_at FROM user_profiles`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load user profiles: %w", err)
	}

	profiles := make(map[int64]profile.Profile, len(rows))
	for _, row := range rows {
		topics := make(map[string]int)
		if row.FavoriteTopics != "" {
			if err := json.Unmarshal([]byte(row.FavoriteTopics), &topics); err != nil {
				s.logger.WarnContext(ctx, "Failed to parse favorite topics", "user_id", row.UserID, "error", err)
				topics = make(map[string]int)
			}
		}
		var history []int
		if row.MoodHistory != "" {
			if err := json.Unmarshal([]byte(row.MoodHistory), &history); err != nil {
				s.logger.WarnContext(ctx, "Failed to parse mood history", "user_id", row.UserID, "error", err)
				history = nil
			}
		}
		profiles[row.UserID] = profile.Profile{
			UserID:            row.UserID,
			FavoriteTopics:    topics,
			InteractionCount:  row.InteractionCount,
			LastInteractionAt: row.LastInteractionAt,
			MoodHistory:       history,
			ResponseStyle:     row.ResponseStyle,
		}
	}
	return profiles, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	// VACUUM must run outside a transaction in SQLite.
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
		}
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed.")
	return nil
}

// Compile-time interface check.
var _ Store = (*sqlxStore)(nil)
