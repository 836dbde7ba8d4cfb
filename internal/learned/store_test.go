package learned_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sisubot/sisu/internal/learned"
)

func newStore(t *testing.T) *learned.Store {
	t.Helper()
	return learned.NewStore(filepath.Join(t.TempDir(), "learned.json"), nil)
}

func TestLearnGuards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		botText   string
		candidate string
		wantErr   error
	}{
		{
			name:      "valid candidate is learned",
			botText:   "Do you like cats?",
			candidate: "Cats are the best",
			wantErr:   nil,
		},
		{
			name:      "too short after trim",
			botText:   "привет",
			candidate: "  ок  ",
			wantErr:   learned.ErrTooShort,
		},
		{
			name:      "two runes rejected",
			botText:   "привет",
			candidate: "да",
			wantErr:   learned.ErrTooShort,
		},
		{
			name:      "three runes accepted",
			botText:   "привет",
			candidate: "ага",
			wantErr:   nil,
		},
		{
			name:      "question rejected",
			botText:   "Do you like cats?",
			candidate: "Why do you ask?",
			wantErr:   learned.ErrQuestion,
		},
		{
			name:      "trailing space question rejected",
			botText:   "привет",
			candidate: "а тебе зачем?  ",
			wantErr:   learned.ErrQuestion,
		},
		{
			name:      "echo of trigger rejected",
			botText:   "сам ты тролль",
			candidate: "Сам ты тролль и есть",
			wantErr:   learned.ErrEcho,
		},
		{
			name:      "short guard beats question guard",
			botText:   "привет",
			candidate: "м?",
			wantErr:   learned.ErrTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newStore(t)
			err := store.Learn(tt.botText, tt.candidate)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Learn(%q, %q) = %v, want %v", tt.botText, tt.candidate, err, tt.wantErr)
			}
		})
	}
}

func TestLearnDuplicate(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	if err := store.Learn("привет", "здорово, бот"); err != nil {
		t.Fatalf("first Learn failed: %v", err)
	}
	if err := store.Learn("привет", "  здорово, бот  "); !errors.Is(err, learned.ErrDuplicate) {
		t.Errorf("duplicate Learn = %v, want ErrDuplicate", err)
	}
	if err := store.Learn("ПРИВЕТ", "здорово, бот"); !errors.Is(err, learned.ErrDuplicate) {
		t.Errorf("duplicate under case-varied trigger = %v, want ErrDuplicate", err)
	}
	if err := store.Learn("пока", "здорово, бот"); err != nil {
		t.Errorf("same candidate under different trigger = %v, want nil", err)
	}
}

func TestLearnPersistsAndReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "learned.json")
	store := learned.NewStore(path, nil)

	if err := store.Learn("Как дела?", "лучше всех"); err != nil {
		t.Fatalf("Learn failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("learned file not written: %v", err)
	}
	var onDisk map[string][]string
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("learned file is not valid JSON: %v", err)
	}
	if got := onDisk["как дела?"]; len(got) != 1 || got[0] != "лучше всех" {
		t.Errorf("on-disk entry = %v", got)
	}

	reloaded := learned.NewStore(path, nil)
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded Len = %d, want 1", reloaded.Len())
	}
	if got, ok := reloaded.Get("как дела?", ""); !ok || got != "лучше всех" {
		t.Errorf("reloaded Get = (%q, %v)", got, ok)
	}
}

func TestNewStoreFailOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "learned.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := learned.NewStore(path, nil)
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
	if err := store.Learn("привет", "работает дальше"); err != nil {
		t.Errorf("Learn after bad load = %v", err)
	}
}

func TestGetFiltersLastAnswer(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	for _, r := range []string{"первый ответ", "второй ответ"} {
		if err := store.Learn("привет", r); err != nil {
			t.Fatalf("Learn(%q) failed: %v", r, err)
		}
	}

	for range 50 {
		got, ok := store.Get("привет", "первый ответ")
		if !ok {
			t.Fatal("Get found nothing")
		}
		if got == "первый ответ" {
			t.Fatal("Get repeated the last answer with an alternative available")
		}
	}
}

func TestGetSingleCandidateMayRepeat(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	if err := store.Learn("привет", "единственный ответ"); err != nil {
		t.Fatalf("Learn failed: %v", err)
	}

	got, ok := store.Get("привет", "единственный ответ")
	if !ok || got != "единственный ответ" {
		t.Errorf("Get = (%q, %v), want the sole candidate", got, ok)
	}
}

func TestGetUnknownTrigger(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	if _, ok := store.Get("неизвестно", ""); ok {
		t.Error("Get reported ok for unknown trigger")
	}
}
