// Package nountype provides the canonical argument type of a command: a
// uniquely identified value suggester.
package nountype

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// ErrUnsupported is returned when a value cannot act as a noun type.
var ErrUnsupported = errors.New("unsupported noun type")

// Suggestion is one candidate value for an argument.
type Suggestion struct {
	Text    string  `json:"text"`
	HTML    string  `json:"html,omitempty"`
	Summary string  `json:"summary,omitempty"`
	Score   float64 `json:"score"`
	Data    any     `json:"data,omitempty"`
}

// Suggester produces suggestions for partially typed text.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]Suggestion, error)
}

// SuggestFunc adapts a function to Suggester.
type SuggestFunc func(ctx context.Context, text string) ([]Suggestion, error)

// Suggest implements Suggester.
func (f SuggestFunc) Suggest(ctx context.Context, text string) ([]Suggestion, error) {
	return f(ctx, text)
}

// Noun is the canonical noun type. A Noun without an ID is anonymous; the
// command normalizer assigns it one scoped to the owning command.
type Noun struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	suggester Suggester
}

// New creates a noun type.
func New(id, name string, s Suggester) *Noun {
	return &Noun{ID: id, Name: name, suggester: s}
}

// Suggest returns the suggestions of the noun for text.
func (n *Noun) Suggest(ctx context.Context, text string) ([]Suggestion, error) {
	if n.suggester == nil {
		return nil, nil
	}
	return n.suggester.Suggest(ctx, text)
}

// WithID returns a copy of n carrying id. Shared nouns are never mutated.
func (n *Noun) WithID(id string) *Noun {
	c := *n
	c.ID = id
	return &c
}

// ArbText accepts any text as is.
var ArbText = New("arb_text", "text", SuggestFunc(func(_ context.Context, text string) ([]Suggestion, error) {
	return []Suggestion{{Text: text, Score: 0.3}}, nil
}))

// Normalize converts a raw noun type declaration into a Noun. Accepted
// shapes are *Noun (returned unchanged), Suggester, a suggest function,
// a list of strings and a regular expression. A nil value stands for
// ArbText.
func Normalize(v any) (*Noun, error) {
	switch t := v.(type) {
	case nil:
		return ArbText, nil
	case *Noun:
		if t == nil {
			return ArbText, nil
		}
		return t, nil
	case Suggester:
		return &Noun{suggester: t}, nil
	case func(context.Context, string) ([]Suggestion, error):
		return &Noun{suggester: SuggestFunc(t)}, nil
	case func(string) []Suggestion:
		return &Noun{suggester: SuggestFunc(func(_ context.Context, text string) ([]Suggestion, error) {
			return t(text), nil
		})}, nil
	case []string:
		return &Noun{Name: "list", suggester: NewList(t...)}, nil
	case *regexp.Regexp:
		return &Noun{Name: "pattern", suggester: Pattern{Re: t}}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

// MaxFuzzyDistance is the largest edit distance at which a list entry is
// still suggested for a misspelled input.
const MaxFuzzyDistance = 2

// Shorter inputs are within two edits of too many entries.
const minFuzzyLength = 3

// List suggests entries of a mutable string list. Entries starting with
// the input rank above entries merely containing it, which rank above
// entries within MaxFuzzyDistance edits of it.
type List struct {
	mu    sync.RWMutex
	items []string
}

// NewList creates a list suggester.
func NewList(items ...string) *List {
	l := &List{}
	l.Set(items)
	return l
}

// Set replaces the list entries.
func (l *List) Set(items []string) {
	c := append([]string(nil), items...)
	l.mu.Lock()
	l.items = c
	l.mu.Unlock()
}

// Items returns a copy of the entries.
func (l *List) Items() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.items...)
}

// Suggest implements Suggester.
func (l *List) Suggest(_ context.Context, text string) ([]Suggestion, error) {
	needle := strings.ToLower(strings.TrimSpace(text))

	var out []Suggestion
	for _, item := range l.Items() {
		hay := strings.ToLower(item)
		switch {
		case needle == "":
			out = append(out, Suggestion{Text: item, Score: 0.3})
		case hay == needle:
			out = append(out, Suggestion{Text: item, Score: 1})
		case strings.HasPrefix(hay, needle):
			out = append(out, Suggestion{Text: item, Score: 0.9})
		case strings.Contains(hay, needle):
			out = append(out, Suggestion{Text: item, Score: 0.5})
		case len(needle) >= minFuzzyLength:
			if d := levenshtein.ComputeDistance(hay, needle); d <= MaxFuzzyDistance {
				out = append(out, Suggestion{Text: item, Score: 0.5 - 0.1*float64(d)})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Pattern accepts input that fully matches a regular expression.
type Pattern struct {
	Re *regexp.Regexp
}

// Suggest implements Suggester.
func (p Pattern) Suggest(_ context.Context, text string) ([]Suggestion, error) {
	loc := p.Re.FindStringIndex(text)
	if loc == nil {
		return nil, nil
	}
	score := 0.5
	if loc[0] == 0 && loc[1] == len(text) {
		score = 1
	}
	return []Suggestion{{Text: text, Score: score}}, nil
}
