// Package engine composes the lexicon, mood tracker, feedback ledger,
// learning store and user profiles into the response selection engine: given
// an incoming chat message it decides which canned response to emit, if any.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/sisubot/sisu/internal/feedback"
	"github.com/sisubot/sisu/internal/learned"
	"github.com/sisubot/sisu/internal/lexicon"
	"github.com/sisubot/sisu/internal/mood"
	"github.com/sisubot/sisu/internal/profile"
)

// ActionKind classifies the engine's decision for a message.
type ActionKind int

const (
	// ActionNone means the engine has nothing to say; the host falls
	// through to its generative reply path.
	ActionNone ActionKind = iota

	// ActionRespond carries a selected canned or learned response.
	ActionRespond

	// ActionAcknowledge carries a short reply to an implicit reaction or a
	// successful learn; hosts should not attach reaction buttons to it.
	ActionAcknowledge
)

// Action is the engine's decision for one incoming message. Trigger is the
// category name or learned key the response was selected under, used to
// derive reaction tokens.
type Action struct {
	Kind    ActionKind
	Text    string
	Trigger string
}

// Message is one incoming chat message as the engine sees it.
type Message struct {
	ChatID       int64
	UserID       int64
	Text         string
	IsReplyToBot bool
	RepliedText  string
}

// Canned acknowledgement pools. Picked uniformly; not fed into the ledger.
var (
	ackPositive = []string{"Спасибо! 😊", "Приятно слышать!", "Стараюсь 😎"}
	ackNegative = []string{"Ну и ладно.", "Учту.", "Всем не угодишь 🙄"}
	ackLearned  = []string{"Запомнил!", "Беру на вооружение.", "Так и запишем."}
)

// Engine is the response orchestrator. One instance holds all mutable engine
// state; multiple isolated instances can coexist in a process.
type Engine struct {
	lexicon  *lexicon.Lexicon
	moods    *mood.Tracker
	ledger   *feedback.Ledger
	learned  *learned.Store
	profiles *profile.Tracker
	selector *Selector
	rng      *rand.Rand
	log      *slog.Logger
}

// New wires an engine from its components.
func New(
	lex *lexicon.Lexicon,
	moods *mood.Tracker,
	ledger *feedback.Ledger,
	learnedStore *learned.Store,
	profiles *profile.Tracker,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		lexicon:  lex,
		moods:    moods,
		ledger:   ledger,
		learned:  learnedStore,
		profiles: profiles,
		selector: NewSelector(ledger),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:      logger.With("component", "engine"),
	}
}

// HandleMessage runs the full decision flow for one message.
//
// Mood and profile state advance unconditionally before anything else, so
// they move even when no trigger fires. A reply to the bot's own message is
// first checked against the literal reaction lists (terminal acknowledgement
// on a hit), then offered to the learning store; only a rejected learn falls
// through to normal trigger resolution.
func (e *Engine) HandleMessage(msg Message) Action {
	chatMood := e.moods.Update(msg.ChatID, msg.Text)
	e.profiles.Observe(msg.UserID, msg.Text, chatMood)

	if msg.IsReplyToBot && msg.RepliedText != "" {
		if action, terminal := e.handleBotReply(msg); terminal {
			return action
		}
	}

	if match, ok := e.lexicon.Resolve(msg.Text); ok {
		contextKey := fmt.Sprintf("%d:%s", msg.ChatID, match.Category)
		response, err := e.selector.Select(match.Responses, contextKey, msg.UserID)
		if err != nil {
			e.log.Error("Selection failed for matched trigger", "category", match.Category, "error", err)
			return Action{Kind: ActionNone}
		}
		e.log.Debug("Trigger matched",
			"chat_id", msg.ChatID, "category", match.Category, "priority", match.Priority)
		return Action{Kind: ActionRespond, Text: response, Trigger: match.Category}
	}

	learnedKey := learned.Normalize(msg.Text)
	lastKey := fmt.Sprintf("%d:learned:%s", msg.ChatID, learnedKey)
	last, _ := e.ledger.LastAnswer(lastKey)
	if response, ok := e.learned.Get(msg.Text, last); ok {
		e.ledger.SetLastAnswer(lastKey, response)
		e.log.Debug("Learned response matched", "chat_id", msg.ChatID, "trigger", learnedKey)
		return Action{Kind: ActionRespond, Text: response, Trigger: learnedKey}
	}

	return Action{Kind: ActionNone}
}

// handleBotReply runs the parallel reply-to-bot machine. The returned bool
// reports whether the reply was consumed (reaction or successful learn).
func (e *Engine) handleBotReply(msg Message) (Action, bool) {
	if positive, ok := feedback.ClassifyReaction(msg.Text); ok {
		e.ledger.RecordReaction(msg.RepliedText, msg.UserID, positive)
		e.log.Debug("Implicit reaction recorded",
			"chat_id", msg.ChatID, "user_id", msg.UserID, "positive", positive)

		pool := ackNegative
		if positive {
			pool = ackPositive
		}
		return Action{Kind: ActionAcknowledge, Text: pool[e.rng.IntN(len(pool))]}, true
	}

	// Replies that restate a static trigger keyword would shadow the
	// lexicon; they are not worth learning.
	if e.lexicon.HasTrigger(msg.RepliedText) {
		e.log.Debug("Skipping learn attempt, replied text is a static trigger")
		return Action{}, false
	}

	err := e.learned.Learn(msg.RepliedText, msg.Text)
	if err == nil {
		return Action{Kind: ActionAcknowledge, Text: ackLearned[e.rng.IntN(len(ackLearned))]}, true
	}

	if !errors.Is(err, learned.ErrTooShort) {
		e.log.Debug("Learn attempt rejected", "chat_id", msg.ChatID, "reason", err)
	}
	return Action{}, false
}

// ReactionToken returns the deterministic token an inline keyboard should
// carry so a later button press can be routed back to RecordReaction.
func (e *Engine) ReactionToken(trigger, response string) string {
	return e.ledger.Token(trigger, response)
}

// React resolves a reaction token and records the user's like or dislike.
// Returns false for unknown tokens (including any issued before a restart).
func (e *Engine) React(token string, userID int64, positive bool) bool {
	_, response, ok := e.ledger.ResolveToken(token)
	if !ok {
		e.log.Warn("Unknown reaction token", "token", token)
		return false
	}
	e.ledger.RecordReaction(response, userID, positive)
	return true
}

// LikesDislikes exposes the ledger counters for a response, for stats
// reporting and button labels.
func (e *Engine) LikesDislikes(response string) (likes, dislikes int) {
	return e.ledger.LikesDislikes(response)
}

// ToneModifier returns the tone hint for the chat's current mood, consumed
// by the generative fallback path.
func (e *Engine) ToneModifier(chatID int64) string {
	return e.moods.ToneModifier(chatID)
}

// Mood returns the chat's current mood value.
func (e *Engine) Mood(chatID int64) int {
	return e.moods.Value(chatID)
}
