// Package mood tracks a bounded per-chat mood value that biases the tone of
// generated replies.
package mood

import (
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	// MinValue and MaxValue bound the mood of every chat.
	MinValue = -4
	MaxValue = 4

	driftChance = 0.10
)

var positiveWords = []string{
	"спасибо", "круто", "класс", "отлично", "супер", "люблю", "молодец",
	"ахаха", "хаха", "лол", "обожаю", "прекрасно", "красава",
	"thanks", "great", "awesome", "nice", "love", "cool",
}

var negativeWords = []string{
	"плохо", "ужас", "отстой", "ненавижу", "скучно", "тупой", "дурак",
	"бесит", "надоел", "фу", "заткнись", "отвали",
	"bad", "awful", "boring", "hate", "stupid", "terrible",
}

// Tracker maintains one mood value per chat. Values are created lazily at 0
// and never deleted. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	byChat map[int64]int
	rng    *rand.Rand
	log    *slog.Logger
}

// NewTracker creates an empty mood tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		byChat: make(map[int64]int),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:    logger.With("component", "mood"),
	}
}

// Update advances the chat's mood for one incoming message and returns the
// new value. A positive-lexicon word raises the mood by one, a
// negative-lexicon word lowers it by one; otherwise a random ±1 drift is
// applied with 10% probability. A lexicon hit always short-circuits the
// drift. The result is clamped to [MinValue, MaxValue].
func (t *Tracker) Update(chatID int64, text string) int {
	lowered := strings.ToLower(text)

	t.mu.Lock()
	defer t.mu.Unlock()

	value := t.byChat[chatID]
	switch {
	case containsAny(lowered, positiveWords):
		value = clamp(value + 1)
	case containsAny(lowered, negativeWords):
		value = clamp(value - 1)
	case t.rng.Float64() < driftChance:
		if t.rng.IntN(2) == 0 {
			value = clamp(value + 1)
		} else {
			value = clamp(value - 1)
		}
	}

	t.byChat[chatID] = value
	t.log.Debug("Mood updated", "chat_id", chatID, "value", value)
	return value
}

// Value returns the current mood of the chat (0 if never seen).
func (t *Tracker) Value(chatID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byChat[chatID]
}

// ToneModifier maps the chat's mood to a tone hint for the generative reply
// path.
func (t *Tracker) ToneModifier(chatID int64) string {
	switch v := t.Value(chatID); {
	case v >= 3:
		return "enthusiastic and playful"
	case v >= 1:
		return "friendly and warm"
	case v <= -3:
		return "grumpy and sarcastic"
	case v <= -1:
		return "dry and reserved"
	default:
		return "neutral"
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func clamp(v int) int {
	if v > MaxValue {
		return MaxValue
	}
	if v < MinValue {
		return MinValue
	}
	return v
}
