// Package lexicon loads the static trigger categories and resolves incoming
// message text to the best-matching category.
package lexicon

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Category is a named bundle of keyword substrings, candidate responses and a
// priority used to decide which canned response family applies to a message.
type Category struct {
	Name      string   `json:"name"      validate:"required"`
	Keywords  []string `json:"keywords"  validate:"required,min=1,dive,required"`
	Responses []string `json:"responses" validate:"required,min=1,dive,required"`
	Priority  int      `json:"priority"`
}

// Match is the result of resolving a message against the lexicon.
type Match struct {
	Category  string
	Responses []string
	Priority  int
}

// Lexicon holds the trigger categories loaded at startup. It is immutable
// after Load and safe for concurrent readers.
type Lexicon struct {
	categories []Category
	log        *slog.Logger
}

// Load reads trigger categories from a JSON file (an array of category
// objects). A missing or malformed file yields an empty lexicon with a logged
// warning rather than an error: message handling must never be blocked by bad
// static data. Individual categories that fail validation are skipped.
//
// Keywords are lowercased at load time. Categories are sorted by priority
// descending, then name ascending, so Resolve is deterministic even when two
// categories share a priority.
func Load(path string, logger *slog.Logger) *Lexicon {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "lexicon")

	lex := &Lexicon{log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read lexicon file, starting with empty lexicon", "path", path, "error", err)
		return lex
	}

	var raw []Category
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("Failed to parse lexicon file, starting with empty lexicon", "path", path, "error", err)
		return lex
	}

	validate := validator.New()
	for _, cat := range raw {
		if err := validate.Struct(cat); err != nil {
			log.Warn("Skipping invalid trigger category", "category", cat.Name, "error", err)
			continue
		}
		for i, kw := range cat.Keywords {
			cat.Keywords[i] = strings.ToLower(kw)
		}
		lex.categories = append(lex.categories, cat)
	}

	sort.SliceStable(lex.categories, func(i, j int) bool {
		if lex.categories[i].Priority != lex.categories[j].Priority {
			return lex.categories[i].Priority > lex.categories[j].Priority
		}
		return lex.categories[i].Name < lex.categories[j].Name
	})

	log.Info("Lexicon loaded", "path", path, "categories", len(lex.categories), "skipped", len(raw)-len(lex.categories))
	return lex
}

// New builds a lexicon directly from categories, applying the same
// normalization and ordering as Load. Used by tests and embedded setups.
func New(categories []Category, logger *slog.Logger) (*Lexicon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lex := &Lexicon{log: logger.With("component", "lexicon")}

	validate := validator.New()
	for _, cat := range categories {
		if err := validate.Struct(cat); err != nil {
			return nil, fmt.Errorf("invalid category %q: %w", cat.Name, err)
		}
		kws := make([]string, len(cat.Keywords))
		for i, kw := range cat.Keywords {
			kws[i] = strings.ToLower(kw)
		}
		cat.Keywords = kws
		lex.categories = append(lex.categories, cat)
	}

	sort.SliceStable(lex.categories, func(i, j int) bool {
		if lex.categories[i].Priority != lex.categories[j].Priority {
			return lex.categories[i].Priority > lex.categories[j].Priority
		}
		return lex.categories[i].Name < lex.categories[j].Name
	})
	return lex, nil
}

// Resolve returns the highest-priority category with at least one keyword
// occurring as a substring of the lowercased text. Matching is literal, not
// token-boundary aware. Returns false when no category matches.
func (l *Lexicon) Resolve(text string) (Match, bool) {
	lowered := strings.ToLower(text)

	// Categories are pre-sorted by priority desc, name asc, so the first
	// match is the winner.
	for _, cat := range l.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lowered, kw) {
				return Match{
					Category:  cat.Name,
					Responses: cat.Responses,
					Priority:  cat.Priority,
				}, true
			}
		}
	}
	return Match{}, false
}

// Len returns the number of loaded categories.
func (l *Lexicon) Len() int {
	return len(l.categories)
}

// HasTrigger reports whether the normalized text exactly equals any loaded
// keyword. The learning absorber uses it to avoid colliding with static
// triggers.
func (l *Lexicon) HasTrigger(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, cat := range l.categories {
		for _, kw := range cat.Keywords {
			if kw == normalized {
				return true
			}
		}
	}
	return false
}
