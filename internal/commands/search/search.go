// Package search provides the builtin web search commands.
package search

import (
	"context"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/loader"
	"github.com/intensifier/ishell/internal/namespace"
)

// Definitions returns the canonical search command declarations, one per
// id.
func Definitions() []command.SearchOptions {
	return []command.SearchOptions{
		{
			Options: command.Options{
				Names:       []string{"google", "g"},
				UUID:        "https://www.google.com/",
				Description: "Searches Google for your words.",
				Icon:        "https://www.google.com/favicon.ico",
			},
			URL:        "https://www.google.com/search?q=%s",
			DefaultURL: "https://www.google.com/",
		},
		{
			Options: command.Options{
				Names:       []string{"wikipedia", "wiki"},
				UUID:        "https://en.wikipedia.org/",
				Description: "Searches Wikipedia articles.",
				Icon:        "https://en.wikipedia.org/favicon.ico",
			},
			URL:        "https://en.wikipedia.org/w/index.php?fulltext=1&search=%s",
			DefaultURL: "https://en.wikipedia.org/",
			Parser: &command.ParserSpec{
				Container:  "ul.mw-search-results > li",
				Title:      ".mw-search-result-heading a",
				Body:       ".searchresult",
				MaxResults: 8,
			},
		},
		{
			Options: command.Options{
				Name:        "imdb",
				UUID:        "https://www.imdb.com/",
				Description: "Searches IMDb for movies and people.",
				Icon:        "https://www.imdb.com/favicon.ico",
			},
			URL:        "https://www.imdb.com/find/?q=%s",
			DefaultURL: "https://www.imdb.com/",
			Parser: &command.ParserSpec{
				Container: "li.find-result-item",
				Title:     "a.ipc-metadata-list-summary-item__t",
				Body:      ".ipc-metadata-list-summary-item__tc ul",
				Thumbnail: "img",
			},
		},
	}
}

// Module returns the builtin module.
func Module() loader.Module {
	return loader.Module{Path: "search", Import: Import}
}

// Import creates the commands of the Search namespace.
func Import(_ context.Context, api cmdapi.CommandAPI, utils cmdapi.Utils) (*namespace.Namespace, error) {
	ns := namespace.New(namespace.Search)
	scoped, _ := ns.Bind(api, utils)
	for _, def := range Definitions() {
		scoped.CreateSearchCommand(def)
	}
	return ns, nil
}
