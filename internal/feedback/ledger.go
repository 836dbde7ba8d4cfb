// Package feedback maintains usage and reaction statistics for emitted
// responses, the last-answer cache used for repeat avoidance, and the
// reaction token table for inline-keyboard callbacks.
package feedback

import (
	"log/slog"
	"sync"
)

// DefaultMaxEntries caps the ledger size. Eviction targets near-zero-usage
// entries only, so long-run selection statistics are barely affected.
const DefaultMaxEntries = 10000

// UserCounts holds one user's reactions to one response.
type UserCounts struct {
	Positive int
	Negative int
}

// Entry aggregates statistics for a single response text. TotalUses counts
// emissions; reactions are optional feedback on top of usage, so no relation
// between the counters is guaranteed.
type Entry struct {
	TotalUses int
	Positive  int
	Negative  int
	PerUser   map[int64]UserCounts
}

// Ledger tracks per-response statistics keyed by exact response text. The
// same response string used under different triggers shares one entry.
// Entries are created lazily on first use and are safe for concurrent access.
type Ledger struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	lastAnswer map[string]string
	tokens     map[string]tokenPair
	maxEntries int
	log        *slog.Logger
}

type tokenPair struct {
	trigger  string
	response string
}

// NewLedger creates an empty ledger. maxEntries <= 0 selects
// DefaultMaxEntries.
func NewLedger(maxEntries int, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Ledger{
		entries:    make(map[string]*Entry),
		lastAnswer: make(map[string]string),
		tokens:     make(map[string]tokenPair),
		maxEntries: maxEntries,
		log:        logger.With("component", "feedback"),
	}
}

// RecordUse increments the usage counter for a response.
func (l *Ledger) RecordUse(response string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry(response).TotalUses++
}

// RecordReaction registers an explicit like or dislike from a user, updating
// both the global and the per-user counters.
func (l *Ledger) RecordReaction(response string, userID int64, positive bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entry(response)
	counts := e.PerUser[userID]
	if positive {
		e.Positive++
		counts.Positive++
	} else {
		e.Negative++
		counts.Negative++
	}
	e.PerUser[userID] = counts
}

// LikesDislikes returns the global reaction counters for a response.
func (l *Ledger) LikesDislikes(response string) (likes, dislikes int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[response]; ok {
		return e.Positive, e.Negative
	}
	return 0, 0
}

// TotalUses returns how many times the response has been emitted.
func (l *Ledger) TotalUses(response string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[response]; ok {
		return e.TotalUses
	}
	return 0
}

// UserCounts returns one user's reaction counters for a response.
func (l *Ledger) UserCounts(response string, userID int64) UserCounts {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[response]; ok {
		return e.PerUser[userID]
	}
	return UserCounts{}
}

// LastAnswer returns the most recently emitted response for a context key.
func (l *Ledger) LastAnswer(contextKey string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	answer, ok := l.lastAnswer[contextKey]
	return answer, ok
}

// SetLastAnswer remembers the response just emitted for a context key.
func (l *Ledger) SetLastAnswer(contextKey, response string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastAnswer[contextKey] = response
}

// Len returns the number of tracked responses.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Snapshot returns a deep copy of all entries, for persistence tasks and
// stats reporting.
func (l *Ledger) Snapshot() map[string]Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]Entry, len(l.entries))
	for response, e := range l.entries {
		copied := Entry{
			TotalUses: e.TotalUses,
			Positive:  e.Positive,
			Negative:  e.Negative,
			PerUser:   make(map[int64]UserCounts, len(e.PerUser)),
		}
		for id, counts := range e.PerUser {
			copied.PerUser[id] = counts
		}
		out[response] = copied
	}
	return out
}

// Seed loads previously persisted counters into the ledger. Existing entries
// for the same response are overwritten. Intended for startup restore.
func (l *Ledger) Seed(entries map[string]Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for response, e := range entries {
		restored := &Entry{
			TotalUses: e.TotalUses,
			Positive:  e.Positive,
			Negative:  e.Negative,
			PerUser:   make(map[int64]UserCounts, len(e.PerUser)),
		}
		for id, counts := range e.PerUser {
			restored.PerUser[id] = counts
		}
		l.entries[response] = restored
	}
}

// entry returns the entry for a response, creating it if needed and evicting
// cold entries when the ledger exceeds its cap. Caller must hold l.mu.
func (l *Ledger) entry(response string) *Entry {
	if e, ok := l.entries[response]; ok {
		return e
	}

	if len(l.entries) >= l.maxEntries {
		evicted := 0
		for key, e := range l.entries {
			if e.TotalUses <= 1 && e.Positive == 0 && e.Negative == 0 {
				delete(l.entries, key)
				evicted++
			}
		}
		l.log.Warn("Feedback ledger over capacity, evicted cold entries",
			"max_entries", l.maxEntries, "evicted", evicted)
	}

	e := &Entry{PerUser: make(map[int64]UserCounts)}
	l.entries[response] = e
	return e
}
