// Package sentence resolves raw input into a command and its arguments.
//
// The verb is matched against command names and aliases: an exact match
// wins, then the shortest name the verb prefixes, then the closest name
// within MaxDistance edits. The remaining words are split on the
// prepositions of the roles the command declares; the first segment binds
// to the object role.
package sentence

import (
	"context"
	"errors"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/intensifier/ishell/internal/command"
)

// MaxDistance is the largest edit distance accepted for a fuzzy verb match.
const MaxDistance = 2

var (
	// ErrEmpty is returned for input without words.
	ErrEmpty = errors.New("empty input")
	// ErrNoMatch is returned when no command matches the verb.
	ErrNoMatch = errors.New("no matching command")
)

// Source lists the commands a parser resolves against.
type Source interface {
	Commands() []*command.Command
}

// Sentence is a resolved input.
type Sentence struct {
	Input string
	Verb  string
	// Match is how the verb was matched: "exact", "prefix" or "fuzzy".
	Match string

	cmd  *command.Command
	args command.Args
}

// Command implements command.Sentence.
func (s *Sentence) Command() *command.Command { return s.cmd }

// Args implements command.Sentence.
func (s *Sentence) Args() command.Args { return s.args }

var _ command.Sentence = (*Sentence)(nil)

// Parser turns input into sentences.
type Parser struct {
	source Source
}

// NewParser creates a parser over the commands of source.
func NewParser(source Source) *Parser {
	return &Parser{source: source}
}

type candidate struct {
	cmd  *command.Command
	name string
	// words is the number of input words the name consumes.
	words int
}

// Parse resolves input. Disabled commands never match.
func (p *Parser) Parse(ctx context.Context, input string) (*Sentence, error) {
	words := strings.Fields(input)
	if len(words) == 0 {
		return nil, ErrEmpty
	}

	var cmds []*command.Command
	for _, c := range p.source.Commands() {
		if !c.Disabled() {
			cmds = append(cmds, c)
		}
	}

	match, kind := matchVerb(cmds, words)
	if match == nil {
		return nil, ErrNoMatch
	}

	s := &Sentence{
		Input: input,
		Verb:  strings.Join(words[:match.words], " "),
		Match: kind,
		cmd:   match.cmd,
	}
	s.args = bind(ctx, match.cmd, words[match.words:])
	return s, nil
}

func matchVerb(cmds []*command.Command, words []string) (*candidate, string) {
	// Names may span several words.
	for n := len(words); n > 0; n-- {
		verb := strings.Join(words[:n], " ")
		for _, c := range cmds {
			for _, name := range c.Names {
				if strings.EqualFold(name, verb) {
					return &candidate{cmd: c, name: name, words: n}, "exact"
				}
			}
		}
	}

	verb := strings.ToLower(words[0])
	var best *candidate
	for _, c := range cmds {
		for _, name := range c.Names {
			if strings.HasPrefix(strings.ToLower(name), verb) && (best == nil || len(name) < len(best.name)) {
				best = &candidate{cmd: c, name: name, words: 1}
			}
		}
	}
	if best != nil {
		return best, "prefix"
	}

	bestDist := MaxDistance + 1
	for _, c := range cmds {
		for _, name := range c.Names {
			if d := levenshtein.ComputeDistance(verb, strings.ToLower(name)); d < bestDist {
				bestDist = d
				best = &candidate{cmd: c, name: name, words: 1}
			}
		}
	}
	if best != nil {
		return best, "fuzzy"
	}
	return nil, ""
}

// bind splits words into role segments and resolves each through the
// noun type of the role.
func bind(ctx context.Context, cmd *command.Command, words []string) command.Args {
	byPrep := map[string]command.Argument{}
	var object *command.Argument
	for i, a := range cmd.Arguments {
		if a.Role == command.RoleObject {
			object = &cmd.Arguments[i]
			continue
		}
		if prep, ok := command.Prepositions[a.Role]; ok {
			if _, seen := byPrep[prep]; !seen {
				byPrep[prep] = a
			}
		}
	}

	segments := map[string][]string{}
	used := map[string]bool{}
	role := command.RoleObject
	for _, w := range words {
		if a, ok := byPrep[strings.ToLower(w)]; ok && !used[a.Role] {
			role = a.Role
			used[role] = true
			continue
		}
		segments[role] = append(segments[role], w)
	}

	args := command.Args{}
	for r, seg := range segments {
		text := strings.Join(seg, " ")
		var arg command.Argument
		switch {
		case r == command.RoleObject && object != nil:
			arg = *object
		case r != command.RoleObject:
			arg = byPrep[command.Prepositions[r]]
		}
		args[r] = resolve(ctx, arg, text)
	}
	return args
}

func resolve(ctx context.Context, arg command.Argument, text string) command.Arg {
	out := command.Arg{Text: text}
	noun := arg.Noun()
	if noun == nil {
		return out
	}
	suggestions, err := noun.Suggest(ctx, text)
	if err != nil || len(suggestions) == 0 {
		return out
	}
	top := suggestions[0]
	if top.Text != "" {
		out.Text = top.Text
	}
	out.HTML = top.HTML
	out.Summary = top.Summary
	out.Data = top.Data
	return out
}
