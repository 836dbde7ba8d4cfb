package mood_test

import (
	"testing"

	"github.com/sisubot/sisu/internal/mood"
)

func TestUpdateLexiconWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"positive word raises mood", "спасибо, бот", 1},
		{"positive word uppercase", "КРУТО", 1},
		{"positive english word", "that was awesome", 1},
		{"negative word lowers mood", "как же скучно", -1},
		{"negative english word", "this is terrible", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracker := mood.NewTracker(nil)
			if got := tracker.Update(1, tt.text); got != tt.want {
				t.Errorf("Update(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestUpdateBounded(t *testing.T) {
	t.Parallel()

	tracker := mood.NewTracker(nil)

	for range 20 {
		tracker.Update(1, "спасибо")
	}
	if got := tracker.Value(1); got != mood.MaxValue {
		t.Errorf("mood after 20 positive messages = %d, want %d", got, mood.MaxValue)
	}

	for range 20 {
		tracker.Update(1, "ужас")
	}
	if got := tracker.Value(1); got != mood.MinValue {
		t.Errorf("mood after 20 negative messages = %d, want %d", got, mood.MinValue)
	}
}

func TestUpdateDriftStaysBounded(t *testing.T) {
	t.Parallel()

	// Neutral text only exercises the random drift path. Whatever the
	// drift does, the value must stay within bounds.
	tracker := mood.NewTracker(nil)
	for range 500 {
		got := tracker.Update(7, "обычное сообщение без окраски")
		if got < mood.MinValue || got > mood.MaxValue {
			t.Fatalf("Update() = %d, outside [%d, %d]", got, mood.MinValue, mood.MaxValue)
		}
	}
}

func TestChatsAreIndependent(t *testing.T) {
	t.Parallel()

	tracker := mood.NewTracker(nil)
	tracker.Update(1, "спасибо")
	tracker.Update(1, "спасибо")

	if got := tracker.Value(1); got != 2 {
		t.Errorf("Value(1) = %d, want 2", got)
	}
	if got := tracker.Value(2); got != 0 {
		t.Errorf("Value(2) = %d, want 0", got)
	}
}

func TestToneModifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		positive int
		negative int
		want     string
	}{
		{"very positive", 4, 0, "enthusiastic and playful"},
		{"mildly positive", 1, 0, "friendly and warm"},
		{"neutral", 0, 0, "neutral"},
		{"mildly negative", 0, 1, "dry and reserved"},
		{"very negative", 0, 4, "grumpy and sarcastic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracker := mood.NewTracker(nil)
			for range tt.positive {
				tracker.Update(1, "спасибо")
			}
			for range tt.negative {
				tracker.Update(1, "ужас")
			}
			if got := tracker.ToneModifier(1); got != tt.want {
				t.Errorf("ToneModifier() = %q, want %q", got, tt.want)
			}
		})
	}
}
