package cmdapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/nountype"
)

func TestObjectOptions(t *testing.T) {
	executed := false
	obj := Object{
		Meta: Meta{
			Name:         "base64-encode",
			UUID:         "E1C8",
			PreviewDelay: 200,
			Description:  "Encodes text",
			Help:         "Select text first.",
		},
		Preview: func(context.Context, Args, Display, Bin) error { return nil },
		Execute: func(context.Context, Args, Bin) error {
			executed = true
			return nil
		},
	}

	opts := ObjectOptions(obj, ArgumentMap{"object": nountype.ArbText})
	cmd, err := command.New(opts)
	require.NoError(t, err)

	assert.Equal(t, "E1C8", cmd.ID)
	assert.Equal(t, "Encodes text", cmd.Description)
	assert.Equal(t, int64(200), cmd.PreviewDelay.Milliseconds())
	require.Len(t, cmd.Arguments, 1)

	require.NoError(t, cmd.Execute(context.Background(), Args{}, nil))
	assert.True(t, executed)
}

func TestObjectOptions_NoArguments(t *testing.T) {
	opts := ObjectOptions(Object{Meta: Meta{Name: "noop"}}, ArgumentMap{})
	assert.Nil(t, opts.Arguments)

	cmd, err := command.New(opts)
	require.NoError(t, err)
	assert.Empty(t, cmd.Arguments)
}
