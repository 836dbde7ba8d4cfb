package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/sisubot/sisu/internal/feedback"
)

// underusedBonus multiplies the weight of candidates tied for the lowest
// usage count, nudging selection toward responses the chat has heard least.
const underusedBonus = 1.5

// Selector draws one response from a candidate pool, weighting candidates by
// their usage and reaction history and avoiding an immediate repeat of the
// previous answer for the same context.
type Selector struct {
	ledger *feedback.Ledger
	rng    *rand.Rand
}

// NewSelector creates a selector backed by the given feedback ledger.
func NewSelector(ledger *feedback.Ledger) *Selector {
	return &Selector{
		ledger: ledger,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Select picks one response from candidates for the given context key and
// records the draw (usage counter + last-answer cache). userID, when
// non-zero, blends that user's own reaction history into the success rate.
//
// An empty candidate pool is a caller contract violation and returns an
// error; the selector never invents responses.
func (s *Selector) Select(candidates []string, contextKey string, userID int64) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("empty candidate pool for context %q", contextKey)
	}

	pool := candidates
	if last, ok := s.ledger.LastAnswer(contextKey); ok {
		filtered := make([]string, 0, len(pool))
		for _, c := range pool {
			if c != last {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	chosen := pool[s.draw(pool, userID)]

	s.ledger.RecordUse(chosen)
	s.ledger.SetLastAnswer(contextKey, chosen)
	return chosen, nil
}

// draw returns the index of the weighted random pick from pool.
func (s *Selector) draw(pool []string, userID int64) int {
	minUses := s.ledger.TotalUses(pool[0])
	for _, c := range pool[1:] {
		if uses := s.ledger.TotalUses(c); uses < minUses {
			minUses = uses
		}
	}

	weights := make([]float64, len(pool))
	var total float64
	for i, c := range pool {
		uses := s.ledger.TotalUses(c)

		var successRate float64
		if uses > 0 {
			likes, _ := s.ledger.LikesDislikes(c)
			successRate = float64(likes) / float64(uses)

			if userID != 0 {
				if counts := s.ledger.UserCounts(c, userID); counts.Positive+counts.Negative > 0 {
					userRate := float64(counts.Positive) / float64(counts.Positive+counts.Negative)
					successRate = (successRate + userRate) / 2
				}
			}
		}

		weight := 1.0
		if uses == minUses {
			weight *= underusedBonus
		}
		weight *= 1 + successRate

		weights[i] = weight
		total += weight
	}

	target := s.rng.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return i
		}
	}
	return len(pool) - 1
}
