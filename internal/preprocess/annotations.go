package preprocess

import (
	"regexp"
	"strconv"
	"strings"
)

// Properties are the values extracted from a class doc comment.
type Properties struct {
	Name        string
	Delay       int
	Preview     string
	License     string
	Author      string
	Icon        string
	Homepage    string
	Description string
	UUID        string
	Help        string
	NonCommand  bool
}

var (
	rxDelay       = regexp.MustCompile(`(?i)@delay (\d+)`)
	rxPreview     = regexp.MustCompile(`(?i)@preview (.*)`)
	rxLicense     = regexp.MustCompile(`(?i)@license (.*)`)
	rxAuthor      = regexp.MustCompile(`(?i)@author (.*)`)
	rxIcon        = regexp.MustCompile(`(?i)@icon (.*)`)
	rxHomepage    = regexp.MustCompile(`(?i)@homepage (.*)`)
	rxDescription = regexp.MustCompile(`(?i)@description (.*)`)
	rxUUID        = regexp.MustCompile(`(?i)@uuid (.*)`)
	rxNonCommand  = regexp.MustCompile(`(?i)@noncommand`)
	rxTagLine     = regexp.MustCompile(`@\w+.*(?:\n|$)`)
)

// CamelToKebab derives a command name from a type name: every upper case
// letter starts a new hyphen separated word.
func CamelToKebab(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return strings.TrimPrefix(strings.ToLower(b.String()), "-")
}

// commentText strips comment delimiters and leading line markers.
func commentText(doc string) string {
	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "//"):
			line = strings.TrimPrefix(line, "//")
		default:
			line = strings.TrimPrefix(line, "/**")
			line = strings.TrimPrefix(line, "/*")
			line = strings.TrimSuffix(line, "*/")
			line = strings.TrimPrefix(strings.TrimSpace(line), "*")
		}
		lines = append(lines, strings.TrimPrefix(line, " "))
	}
	return strings.Join(lines, "\n")
}

func tag(rx *regexp.Regexp, text string) string {
	if m := rx.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ExtractProperties parses the annotations of a doc comment. Text that is
// not part of an annotation line becomes the help text.
func ExtractProperties(doc string) Properties {
	text := commentText(doc)

	p := Properties{
		Preview:     tag(rxPreview, text),
		License:     tag(rxLicense, text),
		Author:      tag(rxAuthor, text),
		Icon:        tag(rxIcon, text),
		Homepage:    tag(rxHomepage, text),
		Description: tag(rxDescription, text),
		UUID:        tag(rxUUID, text),
		NonCommand:  rxNonCommand.MatchString(text),
		Help:        strings.TrimSpace(rxTagLine.ReplaceAllString(text, "")),
	}
	if m := rxDelay.FindStringSubmatch(text); m != nil {
		p.Delay, _ = strconv.Atoi(m[1])
	}
	return p
}

// ClassProperties returns the properties of a class, its derived name
// included.
func ClassProperties(c Class) Properties {
	p := Properties{}
	if c.Doc != "" {
		p = ExtractProperties(c.Doc)
	}
	p.Name = CamelToKebab(c.Name)
	return p
}

// IsCommand reports whether a class declares a command. Names starting
// with an underscore and @noncommand classes are base types.
func IsCommand(c Class, p Properties) bool {
	return !strings.HasPrefix(c.Name, "_") && !p.NonCommand
}
