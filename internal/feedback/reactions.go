package feedback

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Literal reply texts treated as implicit reactions to the bot's own
// messages. Matching is case-insensitive on the trimmed reply text.
var positiveReplies = []string{
	"+", "👍", "❤️", "🔥", "лол", "ахах", "ахаха", "топ", "база",
	"круто", "смешно", "хах", "lol", "nice", "good bot",
}

var negativeReplies = []string{
	"-", "👎", "💩", "скучно", "не смешно", "фу", "кринж", "плохо",
	"boring", "bad bot", "cringe",
}

// ClassifyReaction checks whether a short reply is one of the fixed literal
// reaction texts. Returns (positive, true) on a hit and (false, false) when
// the text is not a recognized reaction.
func ClassifyReaction(text string) (positive, ok bool) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return false, false
	}
	for _, r := range positiveReplies {
		if trimmed == r {
			return true, true
		}
	}
	for _, r := range negativeReplies {
		if trimmed == r {
			return false, true
		}
	}
	return false, false
}

// Token derives a deterministic content hash for a (trigger, response) pair
// and registers the reverse lookup. The token is what inline-keyboard
// callbacks carry; the reverse table lives in memory only and does not
// survive a restart.
func (l *Ledger) Token(trigger, response string) string {
	sum := sha256.Sum256([]byte(trigger + "\x00" + response))
	token := hex.EncodeToString(sum[:8])

	l.mu.Lock()
	l.tokens[token] = tokenPair{trigger: trigger, response: response}
	l.mu.Unlock()

	return token
}

// ResolveToken returns the (trigger, response) pair a token was issued for.
// Tokens issued before the last restart are unknown.
func (l *Ledger) ResolveToken(token string) (trigger, response string, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pair, ok := l.tokens[token]
	return pair.trigger, pair.response, ok
}
