package loader

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"runtime/debug"
	"strconv"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/preprocess"
)

// ErrImportNotAllowed is returned for scripts importing a package outside
// the allow-list.
var ErrImportNotAllowed = errors.New("import not allowed")

// DefaultAllowedImports lists the standard packages scripts may import.
var DefaultAllowedImports = []string{
	"strings", "strconv", "fmt", "math", "regexp", "encoding/json",
	"encoding/base64", "time", "sort", "bytes", "path", "net/url",
	"unicode", "errors", "context",
}

// Evaluator runs Go scripts in isolated interpreters.
type Evaluator struct {
	api     cmdapi.CommandAPI
	utils   cmdapi.Utils
	allowed map[string]bool
}

// NewEvaluator creates an evaluator binding scripts to api and utils.
// extra extends DefaultAllowedImports.
func NewEvaluator(api cmdapi.CommandAPI, utils cmdapi.Utils, extra []string) *Evaluator {
	allowed := map[string]bool{APIPackage: true, UtilsPackage: true}
	for _, p := range DefaultAllowedImports {
		allowed[p] = true
	}
	for _, p := range extra {
		allowed[p] = true
	}
	return &Evaluator{api: api, utils: utils, allowed: allowed}
}

// EnsurePackage prepends a main package clause to sources that lack one.
func EnsurePackage(src string) string {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var s scanner.Scanner
	s.Init(file, []byte(src), nil, 0)
	for {
		_, tok, _ := s.Scan()
		switch tok {
		case token.PACKAGE:
			return src
		case token.SEMICOLON:
			// Automatically inserted at line ends.
			continue
		default:
			return "package main\n\n" + src
		}
	}
}

// CheckImports validates the imports of src against the allow-list.
func (e *Evaluator) CheckImports(src string) error {
	f, err := parser.ParseFile(token.NewFileSet(), "script.gos", src, parser.ImportsOnly)
	if err != nil {
		return err
	}
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return err
		}
		if !e.allowed[path] {
			return fmt.Errorf("%w: %q", ErrImportNotAllowed, path)
		}
	}
	return nil
}

// Prepare returns the evaluable form of a script: package clause ensured
// and class syntax rewritten.
func (e *Evaluator) Prepare(src string) (string, error) {
	out, err := preprocess.Transform(EnsurePackage(src))
	if err != nil {
		return "", fmt.Errorf("preprocess: %w", err)
	}
	if err := e.CheckImports(out); err != nil {
		return "", err
	}
	return out, nil
}

// Eval evaluates src in a fresh interpreter whose virtual packages are
// scoped to ns. With inert set, creation calls register nothing. Panics
// raised by the script are returned as errors.
func (e *Evaluator) Eval(ctx context.Context, ns *namespace.Namespace, src string, inert bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v\n%s", r, debug.Stack())
		}
	}()

	prepared, err := e.Prepare(src)
	if err != nil {
		return err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("load stdlib symbols: %w", err)
	}
	api := namespace.NewAPIProxy(ns, e.api, inert)
	utils := namespace.NewUtilsProxy(ns, e.utils, inert)
	if err := i.Use(Symbols(ns.Name, api, utils)); err != nil {
		return fmt.Errorf("bind script api: %w", err)
	}

	if _, err := i.EvalWithContext(ctx, prepared); err != nil {
		return err
	}
	return nil
}
