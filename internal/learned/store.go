// Package learned persists human-authored responses keyed by the bot message
// they replied to, and serves them back with uniform random selection.
package learned

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Rejection reasons for Learn. Callers distinguish them with errors.Is.
var (
	ErrTooShort  = errors.New("candidate is too short")
	ErrQuestion  = errors.New("candidate is a question")
	ErrEcho      = errors.New("candidate echoes the trigger")
	ErrDuplicate = errors.New("candidate already learned")
)

// Store is the learned-response map: normalized trigger text (trimmed,
// lowercased exact string of the original bot message) to an ordered list of
// distinct human-authored responses. Every successful Learn is written
// through to a JSON file. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string][]string
	rng     *rand.Rand
	log     *slog.Logger
}

// NewStore loads the learned-response map from path. A missing file starts an
// empty store; a malformed file is logged and ignored rather than failing
// startup.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:    path,
		entries: make(map[string][]string),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:     logger.With("component", "learned"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("No learned responses file yet, starting empty", "path", path)
		} else {
			s.log.Warn("Failed to read learned responses file, starting empty", "path", path, "error", err)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		s.log.Warn("Failed to parse learned responses file, starting empty", "path", path, "error", err)
		s.entries = make(map[string][]string)
		return s
	}

	s.log.Info("Learned responses loaded", "path", path, "triggers", len(s.entries))
	return s
}

// Normalize reduces a trigger text to its map key form.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Learn validates a human reply against the original bot text and, if it
// passes all guards, appends it to the trigger's response list and persists
// the store. Guards are evaluated in order; the first failure wins:
//
//  1. trimmed candidate of 2 characters or less
//  2. candidate ends with "?"
//  3. normalized trigger is contained in the normalized candidate
//  4. candidate already present for this trigger
//
// A nil return means the response was learned. The in-memory map is updated
// before the write-through; a persistence failure is logged but does not
// undo the learn or fail the caller.
func (s *Store) Learn(originalBotText, candidate string) error {
	trimmed := strings.TrimSpace(candidate)
	if len([]rune(trimmed)) <= 2 {
		return ErrTooShort
	}
	if strings.HasSuffix(trimmed, "?") {
		return ErrQuestion
	}

	trigger := Normalize(originalBotText)
	if trigger != "" && strings.Contains(Normalize(trimmed), trigger) {
		return ErrEcho
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries[trigger] {
		if existing == trimmed {
			return ErrDuplicate
		}
	}

	s.entries[trigger] = append(s.entries[trigger], trimmed)
	s.log.Info("Learned new response", "trigger", trigger, "responses", len(s.entries[trigger]))

	if err := s.persistLocked(); err != nil {
		s.log.Warn("Failed to persist learned responses, keeping in-memory copy", "path", s.path, "error", err)
	}
	return nil
}

// Get returns a uniformly random learned response for the trigger text,
// filtering out lastAnswer when at least one other candidate remains.
// Learned responses are deliberately not weighted by the feedback ledger;
// they carry no usage statistics.
func (s *Store) Get(triggerText, lastAnswer string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.entries[Normalize(triggerText)]
	if len(pool) == 0 {
		return "", false
	}

	if lastAnswer != "" && len(pool) > 1 {
		filtered := make([]string, 0, len(pool))
		for _, r := range pool {
			if r != lastAnswer {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	return pool[s.rng.IntN(len(pool))], true
}

// Len returns the number of distinct triggers in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// persistLocked rewrites the JSON file atomically. Caller must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal learned responses: %w", err)
	}

	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for learned responses: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write learned responses: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace learned responses file: %w", err)
	}
	return nil
}
