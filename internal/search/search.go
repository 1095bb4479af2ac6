package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/nountype"
)

// DefaultPreviewDelay debounces previews that fetch result pages, in
// milliseconds.
const DefaultPreviewDelay = 300

// OpenFunc opens a URL in the host.
type OpenFunc func(ctx context.Context, url string) error

// QueryURL substitutes the escaped query for every %s of template.
func QueryURL(template, query string) string {
	return strings.ReplaceAll(template, "%s", url.QueryEscape(query))
}

// Builder turns search declarations into command declarations.
type Builder struct {
	fetcher    *Fetcher
	open       OpenFunc
	maxResults int
}

// NewBuilder creates a builder. maxResults caps parsed results unless a
// parser declares its own limit.
func NewBuilder(fetcher *Fetcher, open OpenFunc, maxResults int) *Builder {
	return &Builder{fetcher: fetcher, open: open, maxResults: maxResults}
}

// Target returns the URL a search for query opens.
func Target(opts command.SearchOptions, query string) string {
	if strings.TrimSpace(query) == "" && opts.DefaultURL != "" {
		return opts.DefaultURL
	}
	return QueryURL(opts.URL, query)
}

// Options completes a search declaration: the object argument defaults to
// free text, execute opens the query URL and, with a parser, preview
// fetches and renders the results. Handlers declared explicitly are kept.
func (b *Builder) Options(opts command.SearchOptions) command.Options {
	o := opts.Options
	o.Kind = command.KindSearch
	if o.Arguments == nil && o.Argument == nil {
		o.Arguments = command.RoleMap{"object search terms": nountype.ArbText}
	}
	name := o.Name
	if name == "" && len(o.Names) > 0 {
		name = o.Names[0]
	}

	if o.Execute == nil {
		o.Execute = func(ctx context.Context, args command.Args, _ command.Bin) error {
			if b.open == nil {
				return fmt.Errorf("no url opener")
			}
			return b.open(ctx, Target(opts, args.Object()))
		}
	}

	if o.Preview == nil {
		if opts.Parser == nil || b.fetcher == nil {
			o.Preview = func(_ context.Context, args command.Args, display command.Display, _ command.Bin) error {
				if q := args.Object(); q != "" {
					display.Set(fmt.Sprintf("Search %s for %q", name, q))
				} else {
					display.Set(fmt.Sprintf("Search %s", name))
				}
				return nil
			}
		} else {
			o.Preview = b.preview(opts, name)
			if o.Timeout == 0 && o.PreviewDelay == 0 {
				o.Timeout = DefaultPreviewDelay
			}
		}
	}
	return o
}

func (b *Builder) preview(opts command.SearchOptions, name string) command.PreviewFunc {
	spec := *opts.Parser
	limit := spec.MaxResults
	if limit <= 0 {
		limit = b.maxResults
	}
	return func(ctx context.Context, args command.Args, display command.Display, _ command.Bin) error {
		query := args.Object()
		if strings.TrimSpace(query) == "" {
			display.Set(fmt.Sprintf("Search %s", name))
			return nil
		}
		display.Set(fmt.Sprintf("Searching %s for %q...", name, query))

		target := QueryURL(opts.URL, query)
		page, err := b.fetcher.Fetch(ctx, target)
		if err != nil {
			return err
		}
		results, err := Parse(page, target, spec, limit)
		if err != nil {
			return err
		}
		out, err := Render(results)
		if err != nil {
			return err
		}
		display.Set(out)
		return nil
	}
}
