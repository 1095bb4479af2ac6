package capture

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/storage"
)

func TestOptions_Capture(t *testing.T) {
	ctx := context.Background()
	bin := storage.NewWithFs(afero.NewMemMapFs(), "/data").Bin("note")

	o := Options(command.CaptureOptions{
		Options:   command.Options{Name: "note"},
		Transform: strings.ToUpper,
	})
	assert.Equal(t, command.KindCapture, o.Kind)

	var out command.Buffer
	args := command.Args{command.RoleObject: {Text: " buy milk "}}
	require.NoError(t, o.Preview(ctx, args, &out, bin))
	assert.Equal(t, `Capture "BUY MILK" into note`, out.Content())

	require.NoError(t, o.Execute(ctx, args, bin))
	require.NoError(t, o.Execute(ctx, command.Args{command.RoleObject: {Text: "call bob"}}, bin))

	entries, err := Collection(ctx, bin, "note")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "BUY MILK", entries[0].Text)
	assert.Equal(t, "CALL BOB", entries[1].Text)
	assert.False(t, entries[0].Captured.IsZero())
}

func TestOptions_EmptyAndCollection(t *testing.T) {
	ctx := context.Background()
	bin := storage.NewWithFs(afero.NewMemMapFs(), "/data").Bin("clip")

	o := Options(command.CaptureOptions{
		Options:    command.Options{Names: []string{"clip", "keep"}},
		Collection: "clipboard",
	})
	assert.ErrorIs(t, o.Execute(ctx, command.Args{}, bin), ErrEmpty)

	var out command.Buffer
	require.NoError(t, o.Preview(ctx, command.Args{}, &out, bin))
	assert.Equal(t, "Capture text into clipboard", out.Content())

	require.NoError(t, o.Execute(ctx, command.Args{command.RoleObject: {Text: "x"}}, bin))
	entries, err := Collection(ctx, bin, "clipboard")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	none, err := Collection(ctx, bin, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}
