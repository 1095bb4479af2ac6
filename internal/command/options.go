package command

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/intensifier/ishell/internal/nountype"
)

// Argument roles.
const (
	RoleObject     = "object"
	RoleSubject    = "subject"
	RoleGoal       = "goal"
	RoleSource     = "source"
	RoleLocation   = "location"
	RoleTime       = "time"
	RoleInstrument = "instrument"
	RoleFormat     = "format"
	RoleModifier   = "modifier"
	RoleAlias      = "alias"
	RoleCause      = "cause"
	RoleDependency = "dependency"
)

// Roles lists the argument roles in canonical order.
var Roles = []string{
	RoleObject, RoleSubject, RoleGoal, RoleSource, RoleLocation, RoleTime,
	RoleInstrument, RoleFormat, RoleModifier, RoleAlias, RoleCause, RoleDependency,
}

// Prepositions maps every non-object role to the word introducing it in
// an input sentence.
var Prepositions = map[string]string{
	RoleSubject:    "for",
	RoleGoal:       "to",
	RoleSource:     "from",
	RoleLocation:   "near",
	RoleTime:       "at",
	RoleInstrument: "with",
	RoleFormat:     "in",
	RoleModifier:   "of",
	RoleAlias:      "as",
	RoleCause:      "by",
	RoleDependency: "on",
}

func roleRank(role string) int {
	for i, r := range Roles {
		if r == role {
			return i
		}
	}
	return -1
}

// Argument is a declared command parameter. After normalization NounType
// always holds a *nountype.Noun.
type Argument struct {
	Role     string `json:"role"`
	Label    string `json:"label,omitempty"`
	NounType any    `json:"nountype"`
}

// Noun returns the canonical noun type of a normalized argument.
func (a Argument) Noun() *nountype.Noun {
	n, _ := a.NounType.(*nountype.Noun)
	return n
}

// ArgumentSpec is one of NounArgument, RoleMap or ArgumentList.
type ArgumentSpec interface {
	argumentSpec()
}

// NounArgument declares a single object argument.
type NounArgument struct {
	NounType any
}

// RoleMap declares arguments keyed by "role[ label]". The label follows
// one of the separators '$', '_', ':' or white space.
type RoleMap map[string]any

// ArgumentList declares arguments explicitly.
type ArgumentList []Argument

func (NounArgument) argumentSpec() {}
func (RoleMap) argumentSpec()      {}
func (ArgumentList) argumentSpec() {}

var roleKey = regexp.MustCompile(`^([a-z]+)(?:[$_:\s]([\s\S]+))?`)

func (m RoleMap) expand() ([]Argument, error) {
	args := make([]Argument, 0, len(m))
	for key, noun := range m {
		match := roleKey.FindStringSubmatch(key)
		if match == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, key)
		}
		args = append(args, Argument{Role: match[1], Label: match[2], NounType: noun})
	}
	sort.Slice(args, func(i, j int) bool {
		ri, rj := roleRank(args[i].Role), roleRank(args[j].Role)
		if ri != rj {
			return ri < rj
		}
		return args[i].Label < args[j].Label
	})
	return args, nil
}

// NormalizeArguments expands spec into canonical arguments. Anonymous noun
// types receive the ids "<id>#n0", "<id>#n1", ... in argument order.
func NormalizeArguments(id string, spec ArgumentSpec) ([]Argument, error) {
	var args []Argument
	switch s := spec.(type) {
	case nil:
		return []Argument{}, nil
	case NounArgument:
		args = []Argument{{Role: RoleObject, NounType: s.NounType}}
	case RoleMap:
		expanded, err := s.expand()
		if err != nil {
			return nil, err
		}
		args = expanded
	case ArgumentList:
		args = append([]Argument(nil), s...)
	default:
		return nil, fmt.Errorf("unsupported argument declaration %T", spec)
	}

	seq := 0
	for i := range args {
		if roleRank(args[i].Role) < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, args[i].Role)
		}
		noun, err := nountype.Normalize(args[i].NounType)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", args[i].Role, err)
		}
		if noun.ID == "" {
			noun = noun.WithID(fmt.Sprintf("%s#n%d", id, seq))
			seq++
		}
		args[i].NounType = noun
	}
	return args, nil
}

// Options is an author declaration of a command.
type Options struct {
	Name     string
	Names    []string
	UUID     string
	Homepage string

	Description string
	Help        string
	Author      string
	License     string
	Icon        string

	Arguments ArgumentSpec
	// Argument is the legacy single-declaration field, used when Arguments
	// is nil.
	Argument ArgumentSpec

	// Timeout debounces the preview handler, in milliseconds.
	Timeout int
	// PreviewDelay is the legacy name of Timeout.
	PreviewDelay int
	PreviewText  string

	Preview PreviewFunc
	Execute ExecuteFunc
	Load    LoadFunc
	Init    InitFunc

	Hidden bool
	Debug  bool

	// Namespace opts the command into builtin status under that namespace.
	Namespace string
	Kind      Kind
}

// ParserSpec describes how to extract results from a search page. Fields
// other than MaxResults are CSS selectors; Container selects one result.
type ParserSpec struct {
	Container  string
	Title      string
	Body       string
	Thumbnail  string
	Href       string
	MaxResults int
}

// SearchOptions declares a search command. URL contains %s where the
// escaped query goes; DefaultURL is opened for an empty query.
type SearchOptions struct {
	Options
	URL        string
	DefaultURL string
	Parser     *ParserSpec
}

// CaptureOptions declares a command that stores the object text into a
// collection of its bin.
type CaptureOptions struct {
	Options
	Collection string
	Transform  func(text string) string
}

// New normalizes a declaration into a Command. It does not check
// uniqueness; see Registry.Add.
func New(opts Options) (*Command, error) {
	names := append([]string(nil), opts.Names...)
	name := opts.Name
	if name == "" && len(names) > 0 {
		name = names[0]
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNoName
	}
	if !contains(names, name) {
		names = append([]string{name}, names...)
	}

	uuid := opts.UUID
	if uuid == "" {
		uuid = opts.Homepage
	}
	if uuid == "" {
		uuid = name
	}

	spec := opts.Arguments
	if spec == nil {
		spec = opts.Argument
	}
	args, err := NormalizeArguments(uuid, spec)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", name, err)
	}

	kind := opts.Kind
	if kind == "" {
		kind = KindCommand
	}

	c := &Command{
		ID:          uuid,
		UUID:        uuid,
		Name:        name,
		Names:       names,
		Kind:        kind,
		Arguments:   args,
		Homepage:    opts.Homepage,
		Description: opts.Description,
		Help:        opts.Help,
		Author:      opts.Author,
		License:     opts.License,
		Icon:        opts.Icon,
		PreviewText: opts.PreviewText,
		Hidden:      opts.Hidden,
		Debug:       opts.Debug,
		Preview:     opts.Preview,
		Execute:     opts.Execute,
		Load:        opts.Load,
		Init:        opts.Init,
	}

	if opts.Namespace != "" {
		c.Assign(opts.Namespace, true)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = opts.PreviewDelay
	}
	if timeout > 0 && c.Preview != nil {
		c.PreviewDelay = time.Duration(timeout) * time.Millisecond
		c.Preview = Debounce(c.PreviewDelay, c.Preview)
	}
	if c.Preview == nil {
		c.Preview = c.previewDefault
	}

	return c, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
