package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intensifier/ishell/internal/cmdmanager"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/loader"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/sentence"
	"github.com/intensifier/ishell/internal/storage"
)

func TestDefinitions_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Definitions() {
		assert.False(t, seen[def.UUID], def.UUID)
		seen[def.UUID] = true
		assert.Contains(t, def.URL, "%s")
	}
}

func TestImport(t *testing.T) {
	var opened []string
	nop := zerolog.Nop()
	m := cmdmanager.New(cmdmanager.Options{
		Storage: storage.NewWithFs(afero.NewMemMapFs(), "/data"),
		Modules: []loader.Module{Module()},
		Open: func(_ context.Context, url string) error {
			opened = append(opened, url)
			return nil
		},
		Logger: &nop,
	})
	t.Cleanup(m.Wait)
	m.LoadCommands(context.Background())

	require.Len(t, m.Commands(), len(Definitions()))
	for _, c := range m.Commands() {
		assert.Equal(t, namespace.Search, c.Namespace())
		assert.Equal(t, command.KindSearch, c.Kind)
	}

	ctx := context.Background()
	s, err := sentence.NewParser(m).Parse(ctx, "g golang generics")
	require.NoError(t, err)
	require.True(t, m.CallExecute(ctx, s))

	s, err = sentence.NewParser(m).Parse(ctx, "imdb")
	require.NoError(t, err)
	require.True(t, m.CallExecute(ctx, s))

	assert.Equal(t, []string{"https://www.google.com/search?q=golang+generics", "https://www.imdb.com/"}, opened)
}

func TestWikipediaParser(t *testing.T) {
	page := `<ul class="mw-search-results">
<li><div class="mw-search-result-heading"><a href="/wiki/Go_(programming_language)">Go (programming language)</a></div>
<div class="searchresult">Go is a <span class="searchmatch">language</span></div></li>
<li><div class="mw-search-result-heading"><a href="/wiki/Gopher">Gopher</a></div></li>
</ul>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer ts.Close()

	var wiki command.SearchOptions
	for _, def := range Definitions() {
		if def.Name == "" && def.Names[0] == "wikipedia" {
			wiki = def
		}
	}
	require.NotNil(t, wiki.Parser)
	wiki.URL = ts.URL + "/w/index.php?search=%s"
	wiki.Timeout = 1

	nop := zerolog.Nop()
	m := cmdmanager.New(cmdmanager.Options{Storage: storage.NewWithFs(afero.NewMemMapFs(), "/data"), Logger: &nop})
	cmd := m.CreateSearchCommand(wiki)
	require.NotNil(t, cmd)

	var out command.Buffer
	require.NoError(t, cmd.Preview(context.Background(), command.Args{command.RoleObject: {Text: "go"}}, &out, nil))
	assert.Contains(t, out.Content(), "1. [Go (programming language)]")
	assert.Contains(t, out.Content(), "   Go is a language")
	assert.Contains(t, out.Content(), "2. [Gopher]("+ts.URL+"/wiki/Gopher)")
}
