package commands

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intensifier/ishell/internal/cmdmanager"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/storage"
)

func TestModules_LoadTogether(t *testing.T) {
	nop := zerolog.Nop()
	m := cmdmanager.New(cmdmanager.Options{
		Storage: storage.NewWithFs(afero.NewMemMapFs(), "/data"),
		Modules: Modules(),
		Logger:  &nop,
	})
	t.Cleanup(m.Wait)
	m.LoadCommands(context.Background())

	assert.ElementsMatch(t, []string{namespace.IShell, namespace.Search, namespace.Utility}, m.Namespaces())
	assert.Empty(t, m.UserCommands())

	seen := map[string]bool{}
	for _, c := range m.Commands() {
		require.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, m.Commands(), 11)
}
