package profile_test

import (
	"reflect"
	"testing"

	"github.com/sisubot/sisu/internal/profile"
)

func TestObserveTopics(t *testing.T) {
	t.Parallel()

	tracker := profile.NewTracker(nil)
	tracker.Observe(1, "Обожаю котиков и море, котиков особенно!", 0)

	p, ok := tracker.Get(1)
	if !ok {
		t.Fatal("Get found no profile after Observe")
	}

	// Words of 3 runes or less and bare punctuation are ignored.
	want := map[string]int{"обожаю": 1, "котиков": 2, "море": 1, "особенно": 1}
	if !reflect.DeepEqual(p.FavoriteTopics, want) {
		t.Errorf("FavoriteTopics = %v, want %v", p.FavoriteTopics, want)
	}
	if p.InteractionCount != 1 {
		t.Errorf("InteractionCount = %d, want 1", p.InteractionCount)
	}
	if p.LastInteractionAt.IsZero() {
		t.Error("LastInteractionAt not set")
	}
}

func TestTopTopics(t *testing.T) {
	t.Parallel()

	tracker := profile.NewTracker(nil)
	tracker.Observe(1, "музыка музыка музыка кино кино спорт", 0)

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"top one", 1, []string{"музыка"}},
		{"top two", 2, []string{"музыка", "кино"}},
		{"more than available", 10, []string{"музыка", "кино", "спорт"}},
		{"zero", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tracker.TopTopics(1, tt.n); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopTopics(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}

	if got := tracker.TopTopics(99, 3); got != nil {
		t.Errorf("TopTopics for unknown user = %v, want nil", got)
	}
}

func TestMoodHistoryRingBuffer(t *testing.T) {
	t.Parallel()

	tracker := profile.NewTracker(nil)
	for i := range 15 {
		tracker.Observe(1, "сообщение", i)
	}

	p, _ := tracker.Get(1)
	if len(p.MoodHistory) != 10 {
		t.Fatalf("MoodHistory length = %d, want 10", len(p.MoodHistory))
	}
	// Oldest entries fall off; the buffer keeps moods 5 through 14.
	if p.MoodHistory[0] != 5 || p.MoodHistory[9] != 14 {
		t.Errorf("MoodHistory = %v, want moods 5..14", p.MoodHistory)
	}
}

func TestResponseStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		moods []int
		want  string
	}{
		{"mostly positive moods", []int{2, 1, 3, 0, 1}, profile.StyleFriendly},
		{"mostly negative moods", []int{-2, -1, 0, -3, 0}, profile.StyleSarcastic},
		{"balanced moods", []int{1, -1, 2, -2, 0}, profile.StyleNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracker := profile.NewTracker(nil)
			for _, m := range tt.moods {
				tracker.Observe(1, "сообщение", m)
			}
			p, _ := tracker.Get(1)
			if p.ResponseStyle != tt.want {
				t.Errorf("ResponseStyle = %q, want %q", p.ResponseStyle, tt.want)
			}
		})
	}

	t.Run("neutral below interaction threshold", func(t *testing.T) {
		t.Parallel()

		tracker := profile.NewTracker(nil)
		for range 4 {
			tracker.Observe(1, "сообщение", 4)
		}
		p, _ := tracker.Get(1)
		if p.ResponseStyle != profile.StyleNeutral {
			t.Errorf("ResponseStyle = %q, want neutral before 5 interactions", p.ResponseStyle)
		}
	})
}

func TestSnapshotSeedRoundTrip(t *testing.T) {
	t.Parallel()

	tracker := profile.NewTracker(nil)
	tracker.Observe(1, "музыка навсегда", 2)
	tracker.Observe(2, "спорт", -1)

	snap := tracker.Snapshot()

	// Mutating the snapshot must not touch the tracker.
	snap[1].FavoriteTopics["музыка"] = 99

	if p, _ := tracker.Get(1); p.FavoriteTopics["музыка"] != 1 {
		t.Errorf("tracker mutated through snapshot: %v", p.FavoriteTopics)
	}

	restored := profile.NewTracker(nil)
	restored.Seed(tracker.Snapshot())

	p, ok := restored.Get(1)
	if !ok {
		t.Fatal("restored tracker missing user 1")
	}
	if p.InteractionCount != 1 || p.FavoriteTopics["навсегда"] != 1 {
		t.Errorf("restored profile = %+v", p)
	}
	if p2, ok := restored.Get(2); !ok || !reflect.DeepEqual(p2.MoodHistory, []int{-1}) {
		t.Errorf("restored profile 2 = %+v, ok = %v", p2, ok)
	}
}
