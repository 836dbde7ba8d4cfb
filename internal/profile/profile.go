// Package profile accumulates per-user interaction preferences: favorite
// topics, interaction counts and a derived response style.
package profile

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// Response styles derived from the user's recent mood history.
const (
	StyleFriendly  = "friendly"
	StyleSarcastic = "sarcastic"
	StyleNeutral   = "neutral"
)

// moodHistorySize bounds the per-user mood ring buffer.
const moodHistorySize = 10

// styleThreshold is the interaction count required before a style is derived.
const styleThreshold = 5

// Profile is one user's accumulated preference data.
type Profile struct {
	UserID            int64
	FavoriteTopics    map[string]int
	InteractionCount  int
	LastInteractionAt time.Time
	MoodHistory       []int
	ResponseStyle     string
}

// Tracker maintains profiles for all users seen by the bot. Safe for
// concurrent use.
type Tracker struct {
	mu     sync.Mutex
	byUser map[int64]*Profile
	log    *slog.Logger
	now    func() time.Time
}

// NewTracker creates an empty profile tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		byUser: make(map[int64]*Profile),
		log:    logger.With("component", "profile"),
		now:    time.Now,
	}
}

// Observe updates the user's profile for one incoming message: words longer
// than 3 characters feed the topic counter, the chat mood observed during the
// interaction is pushed into the ring buffer, and the response style is
// re-derived once the user has at least 5 recorded interactions.
func (t *Tracker) Observe(userID int64, text string, chatMood int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.byUser[userID]
	if !ok {
		p = &Profile{
			UserID:         userID,
			FavoriteTopics: make(map[string]int),
			ResponseStyle:  StyleNeutral,
		}
		t.byUser[userID] = p
	}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if utf8.RuneCountInString(word) > 3 {
			p.FavoriteTopics[word]++
		}
	}

	p.InteractionCount++
	p.LastInteractionAt = t.now()

	p.MoodHistory = append(p.MoodHistory, chatMood)
	if len(p.MoodHistory) > moodHistorySize {
		p.MoodHistory = p.MoodHistory[len(p.MoodHistory)-moodHistorySize:]
	}

	if p.InteractionCount >= styleThreshold {
		p.ResponseStyle = deriveStyle(p.MoodHistory)
	}
}

// Get returns a copy of the user's profile.
func (t *Tracker) Get(userID int64) (Profile, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.byUser[userID]
	if !ok {
		return Profile{}, false
	}
	return copyProfile(p), true
}

// TopTopics returns up to n of the user's most frequent topics, most frequent
// first. Ties are broken alphabetically for determinism.
func (t *Tracker) TopTopics(userID int64, n int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.byUser[userID]
	if !ok || n <= 0 {
		return nil
	}

	topics := make([]string, 0, len(p.FavoriteTopics))
	for topic := range p.FavoriteTopics {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if p.FavoriteTopics[topics[i]] != p.FavoriteTopics[topics[j]] {
			return p.FavoriteTopics[topics[i]] > p.FavoriteTopics[topics[j]]
		}
		return topics[i] < topics[j]
	})

	if len(topics) > n {
		topics = topics[:n]
	}
	return topics
}

// Snapshot returns copies of all profiles, for persistence tasks.
func (t *Tracker) Snapshot() map[int64]Profile {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[int64]Profile, len(t.byUser))
	for id, p := range t.byUser {
		out[id] = copyProfile(p)
	}
	return out
}

// Seed restores previously persisted profiles. Intended for startup.
func (t *Tracker) Seed(profiles map[int64]Profile) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, p := range profiles {
		restored := copyProfile(&p)
		t.byUser[id] = &restored
	}
}

func deriveStyle(history []int) string {
	var positives, negatives int
	for _, v := range history {
		switch {
		case v > 0:
			positives++
		case v < 0:
			negatives++
		}
	}
	switch {
	case positives > negatives:
		return StyleFriendly
	case negatives > positives:
		return StyleSarcastic
	default:
		return StyleNeutral
	}
}

func copyProfile(p *Profile) Profile {
	copied := Profile{
		UserID:            p.UserID,
		FavoriteTopics:    make(map[string]int, len(p.FavoriteTopics)),
		InteractionCount:  p.InteractionCount,
		LastInteractionAt: p.LastInteractionAt,
		MoodHistory:       append([]int(nil), p.MoodHistory...),
		ResponseStyle:     p.ResponseStyle,
	}
	for topic, count := range p.FavoriteTopics {
		copied.FavoriteTopics[topic] = count
	}
	return copied
}
