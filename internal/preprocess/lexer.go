package preprocess

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnterminated is returned when a literal, a block comment or a class
// body does not end before the end of the source.
var ErrUnterminated = errors.New("unterminated")

type lexemeKind int

const (
	tokIdent lexemeKind = iota
	tokLBrace
	tokRBrace
	tokComment
	tokString
)

type lexeme struct {
	kind  lexemeKind
	text  string
	pos   int
	end   int
	depth int
}

// scanState is the scanner state: brace depth outside literals and
// comments, the quote that opened the current literal and the kind of the
// current comment ('/' for line, '*' for block).
type scanState struct {
	depth   int
	literal byte
	comment byte
}

func isQuote(c byte) bool {
	return c == '"' || c == '\'' || c == '`'
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// lex produces the identifiers, braces, comments and literals of src.
// Braces inside literals and comments are part of those tokens and never
// change the depth.
func lex(src string) ([]lexeme, error) {
	var (
		toks  []lexeme
		st    scanState
		start int
	)

	emit := func(kind lexemeKind, from, to int) {
		toks = append(toks, lexeme{kind: kind, text: src[from:to], pos: from, end: to, depth: st.depth})
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}

		switch {
		case st.comment == '/':
			if c == '\n' {
				emit(tokComment, start, i)
				st.comment = 0
			}

		case st.comment == '*':
			if c == '*' && next == '/' {
				i++
				emit(tokComment, start, i+1)
				st.comment = 0
			}

		case st.literal != 0:
			if c == '\\' && st.literal != '`' {
				i++
				continue
			}
			if c == st.literal {
				emit(tokString, start, i+1)
				st.literal = 0
			}

		case c == '/' && (next == '/' || next == '*'):
			st.comment = next
			start = i
			i++

		case isQuote(c):
			st.literal = c
			start = i

		case c == '{':
			emit(tokLBrace, i, i+1)
			st.depth++

		case c == '}':
			st.depth--
			emit(tokRBrace, i, i+1)

		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			emit(tokIdent, i, j)
			i = j - 1
		}
	}

	switch {
	case st.comment == '/':
		emit(tokComment, start, len(src))
	case st.comment == '*':
		return nil, fmt.Errorf("%w block comment at %s", ErrUnterminated, position(src, start))
	case st.literal != 0:
		return nil, fmt.Errorf("%w literal at %s", ErrUnterminated, position(src, start))
	}

	return toks, nil
}

// position renders an offset as line:column.
func position(src string, offset int) string {
	line := strings.Count(src[:offset], "\n") + 1
	col := offset - strings.LastIndex(src[:offset], "\n")
	return fmt.Sprintf("%d:%d", line, col)
}

// Class is a top-level struct declaration found in a source.
type Class struct {
	Name string
	// Doc is the raw documentation comment preceding the declaration.
	Doc string
	// Start is the offset of the type keyword, End the offset just past
	// the closing brace of the body.
	Start int
	End   int
	// Methods holds the names of the methods the source declares on the
	// type or its pointer. Promoted methods are not included.
	Methods map[string]bool
}

// HasMethod reports whether the source declares method name on the class.
func (c Class) HasMethod(name string) bool {
	return c.Methods[name]
}

// decls is what Scan finds at the top level of a source.
type decls struct {
	classes []Class
	// funcs holds the names of the plain top-level functions.
	funcs map[string]bool
}

// Scan finds the top-level "type Name struct {...}" declarations of src,
// the full extent of their bodies and the methods declared on them.
func Scan(src string) ([]Class, error) {
	d, err := scan(src)
	if err != nil {
		return nil, err
	}
	return d.classes, nil
}

func scan(src string) (decls, error) {
	toks, err := lex(src)
	if err != nil {
		return decls{}, err
	}

	d := decls{funcs: map[string]bool{}}
	methods := map[string]map[string]bool{}
	for k := 0; k < len(toks); k++ {
		t := toks[k]
		if t.kind != tokIdent || t.depth != 0 {
			continue
		}

		if t.text == "func" {
			recv, name, ok := funcDecl(src, toks, k)
			switch {
			case !ok:
			case recv == "":
				d.funcs[name] = true
			default:
				if methods[recv] == nil {
					methods[recv] = map[string]bool{}
				}
				methods[recv][name] = true
			}
			continue
		}

		if t.text != "type" || k+3 >= len(toks) {
			continue
		}
		name, kw, open := toks[k+1], toks[k+2], toks[k+3]
		if name.kind != tokIdent || kw.kind != tokIdent || kw.text != "struct" || open.kind != tokLBrace {
			continue
		}
		if !onlySpace(src[name.end:kw.pos]) || !onlySpace(src[kw.end:open.pos]) {
			continue
		}

		doc := docComment(src, toks[:k], t.pos)
		end := -1
		for m := k + 4; m < len(toks); m++ {
			if toks[m].kind == tokRBrace && toks[m].depth == open.depth {
				end = toks[m].end
				k = m
				break
			}
		}
		if end < 0 {
			return decls{}, fmt.Errorf("%w body of %s at %s", ErrUnterminated, name.text, position(src, t.pos))
		}

		d.classes = append(d.classes, Class{
			Name:  name.text,
			Doc:   doc,
			Start: t.pos,
			End:   end,
		})
	}

	for i := range d.classes {
		d.classes[i].Methods = methods[d.classes[i].Name]
	}
	return d, nil
}

// funcDecl reads the function declaration starting at the func keyword
// toks[k]: recv is the receiver base type name, empty for plain functions.
// Function literals are not declarations.
func funcDecl(src string, toks []lexeme, k int) (recv, name string, ok bool) {
	from := toks[k].end
	if rest := strings.TrimLeft(src[from:], " \t"); strings.HasPrefix(rest, "(") {
		open := len(src) - len(rest)
		closing := strings.IndexByte(src[open:], ')')
		if closing < 0 {
			return "", "", false
		}
		closing += open

		fields := strings.Fields(src[open+1 : closing])
		if len(fields) == 0 {
			return "", "", false
		}
		recv = strings.TrimPrefix(fields[len(fields)-1], "*")
		if i := strings.IndexByte(recv, '['); i >= 0 {
			recv = recv[:i]
		}
		from = closing + 1
	}

	m := k + 1
	for m < len(toks) && toks[m].pos < from {
		m++
	}
	if m >= len(toks) {
		return "", "", false
	}
	next := toks[m]
	if next.kind != tokIdent || strings.Trim(src[from:next.pos], " \t") != "" {
		return "", "", false
	}
	after := strings.TrimLeft(src[next.end:], " \t")
	if !strings.HasPrefix(after, "(") && !strings.HasPrefix(after, "[") {
		return "", "", false
	}
	return recv, next.text, true
}

// docComment returns the comment immediately preceding the token at pos:
// one block comment or a run of line comments, each starting its own line.
func docComment(src string, before []lexeme, pos int) string {
	var parts []string
	next := pos
	for j := len(before) - 1; j >= 0; j-- {
		c := before[j]
		if c.kind != tokComment || !adjacent(src[c.end:next]) || !startsLine(src, c.pos) {
			break
		}
		block := strings.HasPrefix(c.text, "/*")
		if block && len(parts) > 0 {
			break
		}
		parts = append([]string{c.text}, parts...)
		next = c.pos
		if block {
			break
		}
	}
	return strings.Join(parts, "\n")
}

func onlySpace(s string) bool {
	return strings.TrimSpace(s) == ""
}

func adjacent(gap string) bool {
	return onlySpace(gap) && strings.Count(gap, "\n") <= 1
}

func startsLine(src string, pos int) bool {
	lineStart := strings.LastIndex(src[:pos], "\n") + 1
	return onlySpace(src[lineStart:pos])
}
