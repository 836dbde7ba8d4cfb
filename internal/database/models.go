package database

import "time"

// Message is one chat message kept as context for the generative reply path.
type Message struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

// ResponseStat is a durable snapshot row of one feedback ledger entry. The
// per-user breakdown is stored as a JSON object keyed by user ID.
type ResponseStat struct {
	Response  string    `db:"response"`
	TotalUses int       `db:"total_uses"`
	Positive  int       `db:"positive"`
	Negative  int       `db:"negative"`
	PerUser   string    `db:"per_user"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserProfileRow is a durable snapshot row of one user preference profile.
// Favorite topics and mood history are stored as JSON.
type UserProfileRow struct {
	UserID            int64     `db:"user_id"`
	FavoriteTopics    string    `db:"favorite_topics"`
	InteractionCount  int       `db:"interaction_count"`
	LastInteractionAt time.Time `db:"last_interaction_at"`
	MoodHistory       string    `db:"mood_history"`
	ResponseStyle     string    `db:"response_style"`
	UpdatedAt         time.Time `db:"updated_at"`
}
