package feedback_test

import (
	"testing"

	"github.com/sisubot/sisu/internal/feedback"
)

func TestRecordUseAndReactions(t *testing.T) {
	t.Parallel()

	ledger := feedback.NewLedger(0, nil)

	ledger.RecordUse("привет!")
	ledger.RecordUse("привет!")
	ledger.RecordReaction("привет!", 10, true)
	ledger.RecordReaction("привет!", 10, true)
	ledger.RecordReaction("привет!", 20, false)

	if got := ledger.TotalUses("привет!"); got != 2 {
		t.Errorf("TotalUses = %d, want 2", got)
	}
	likes, dislikes := ledger.LikesDislikes("привет!")
	if likes != 2 || dislikes != 1 {
		t.Errorf("LikesDislikes = (%d, %d), want (2, 1)", likes, dislikes)
	}

	if got := ledger.UserCounts("привет!", 10); got != (feedback.UserCounts{Positive: 2}) {
		t.Errorf("UserCounts(10) = %+v, want {Positive: 2}", got)
	}
	if got := ledger.UserCounts("привет!", 20); got != (feedback.UserCounts{Negative: 1}) {
		t.Errorf("UserCounts(20) = %+v, want {Negative: 1}", got)
	}
	if got := ledger.UserCounts("привет!", 30); got != (feedback.UserCounts{}) {
		t.Errorf("UserCounts(30) = %+v, want zero", got)
	}
}

func TestUnknownResponseIsZero(t *testing.T) {
	t.Parallel()

	ledger := feedback.NewLedger(0, nil)

	if got := ledger.TotalUses("никогда не видел"); got != 0 {
		t.Errorf("TotalUses = %d, want 0", got)
	}
	likes, dislikes := ledger.LikesDislikes("никогда не видел")
	if likes != 0 || dislikes != 0 {
		t.Errorf("LikesDislikes = (%d, %d), want (0, 0)", likes, dislikes)
	}
	if ledger.Len() != 0 {
		t.Errorf("Len = %d, want 0 (reads must not create entries)", ledger.Len())
	}
}

func TestLastAnswer(t *testing.T) {
	t.Parallel()

	ledger := feedback.NewLedger(0, nil)

	if _, ok := ledger.LastAnswer("1:troll"); ok {
		t.Error("LastAnswer on empty ledger reported ok")
	}

	ledger.SetLastAnswer("1:troll", "сам ты тролль")
	ledger.SetLastAnswer("2:troll", "не корми тролля")

	if got, ok := ledger.LastAnswer("1:troll"); !ok || got != "сам ты тролль" {
		t.Errorf("LastAnswer(1:troll) = (%q, %v)", got, ok)
	}
	if got, ok := ledger.LastAnswer("2:troll"); !ok || got != "не корми тролля" {
		t.Errorf("LastAnswer(2:troll) = (%q, %v)", got, ok)
	}
}

func TestSnapshotSeedRoundTrip(t *testing.T) {
	t.Parallel()

	ledger := feedback.NewLedger(0, nil)
	ledger.RecordUse("a")
	ledger.RecordReaction("a", 5, true)
	ledger.RecordUse("b")

	snap := ledger.Snapshot()

	// Mutating the snapshot must not touch the ledger.
	entry := snap["a"]
	entry.Positive = 99
	entry.PerUser[5] = feedback.UserCounts{Positive: 99}
	snap["a"] = entry

	if likes, _ := ledger.LikesDislikes("a"); likes != 1 {
		t.Errorf("ledger mutated through snapshot: likes = %d", likes)
	}

	restored := feedback.NewLedger(0, nil)
	restored.Seed(ledger.Snapshot())

	if got := restored.TotalUses("a"); got != 1 {
		t.Errorf("restored TotalUses(a) = %d, want 1", got)
	}
	if got := restored.UserCounts("a", 5); got != (feedback.UserCounts{Positive: 1}) {
		t.Errorf("restored UserCounts(a, 5) = %+v", got)
	}
	if got := restored.TotalUses("b"); got != 1 {
		t.Errorf("restored TotalUses(b) = %d, want 1", got)
	}
}

func TestEvictionKeepsWarmEntries(t *testing.T) {
	t.Parallel()

	ledger := feedback.NewLedger(3, nil)

	ledger.RecordUse("warm")
	ledger.RecordUse("warm")
	ledger.RecordReaction("liked", 1, true)
	ledger.RecordUse("cold")

	// Ledger is at capacity; the next new response triggers eviction of
	// entries with at most one use and no reactions.
	ledger.RecordUse("newcomer")

	if got := ledger.TotalUses("warm"); got != 2 {
		t.Errorf("warm entry evicted, TotalUses = %d", got)
	}
	if likes, _ := ledger.LikesDislikes("liked"); likes != 1 {
		t.Errorf("liked entry evicted, likes = %d", likes)
	}
	if got := ledger.TotalUses("cold"); got != 0 {
		t.Errorf("cold entry survived eviction, TotalUses = %d", got)
	}
	if got := ledger.TotalUses("newcomer"); got != 1 {
		t.Errorf("newcomer TotalUses = %d, want 1", got)
	}
}

func TestClassifyReaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text         string
		wantPositive bool
		wantOK       bool
	}{
		{"+", true, true},
		{"лол", true, true},
		{"  ЛОЛ  ", true, true},
		{"good bot", true, true},
		{"-", false, true},
		{"скучно", false, true},
		{"не смешно", false, true},
		{"bad bot", false, true},
		{"", false, false},
		{"обычный ответ", false, false},
		{"лол какой ты смешной", false, false},
	}

	for _, tt := range tests {
		positive, ok := feedback.ClassifyReaction(tt.text)
		if positive != tt.wantPositive || ok != tt.wantOK {
			t.Errorf("ClassifyReaction(%q) = (%v, %v), want (%v, %v)",
				tt.text, positive, ok, tt.wantPositive, tt.wantOK)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	ledger := feedback.NewLedger(0, nil)

	token := ledger.Token("troll", "сам ты тролль")
	if len(token) != 16 {
		t.Fatalf("token length = %d, want 16 hex chars", len(token))
	}
	if again := ledger.Token("troll", "сам ты тролль"); again != token {
		t.Errorf("token not deterministic: %q vs %q", token, again)
	}
	if other := ledger.Token("troll", "не корми тролля"); other == token {
		t.Error("distinct pairs produced the same token")
	}

	trigger, response, ok := ledger.ResolveToken(token)
	if !ok || trigger != "troll" || response != "сам ты тролль" {
		t.Errorf("ResolveToken = (%q, %q, %v)", trigger, response, ok)
	}

	if _, _, ok := ledger.ResolveToken("deadbeefdeadbeef"); ok {
		t.Error("ResolveToken accepted an unknown token")
	}
}
