package utility

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intensifier/ishell/internal/cmdmanager"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/loader"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/preprocess"
	"github.com/intensifier/ishell/internal/sentence"
	"github.com/intensifier/ishell/internal/storage"
)

func TestSource_Classes(t *testing.T) {
	classes, err := preprocess.Scan(Source)
	require.NoError(t, err)

	var commands []string
	for _, c := range classes {
		if preprocess.IsCommand(c, preprocess.ClassProperties(c)) {
			commands = append(commands, preprocess.ClassProperties(c).Name)
		}
	}
	assert.Equal(t, []string{"base64-encode", "base64-decode", "url-encode", "url-decode"}, commands)
}

func TestSource_Evaluates(t *testing.T) {
	out, err := preprocess.Transform(Source)
	require.NoError(t, err)
	for _, class := range []string{"Base64Encode", "Base64Decode", "UrlEncode", "UrlDecode"} {
		assert.Contains(t, out, "\tcommand := &"+class+"{}\n\tcommand.Construct(args)\n")
	}
	assert.Equal(t, 4, strings.Count(out, "\tobject.Preview = func("))
	assert.Equal(t, 4, strings.Count(out, "\tobject.Execute = func("))
	assert.NotContains(t, out, "_TextCommand{}", "the base type is not registered")

	nop := zerolog.Nop()
	m := cmdmanager.New(cmdmanager.Options{Storage: storage.NewWithFs(afero.NewMemMapFs(), "/data"), Logger: &nop})
	t.Cleanup(m.Wait)
	require.NoError(t, m.CheckUserScript(context.Background(), Source))
	assert.Empty(t, m.Commands())
}

func TestModule(t *testing.T) {
	ctx := context.Background()
	nop := zerolog.Nop()
	store := storage.NewWithFs(afero.NewMemMapFs(), "/data")
	m := cmdmanager.New(cmdmanager.Options{
		Storage: store,
		Modules: []loader.Module{Module()},
		Logger:  &nop,
	})
	t.Cleanup(m.Wait)
	m.LoadCommands(ctx)

	require.Len(t, m.Commands(), 4)
	enc := m.GetCommandByName("base64-encode")
	require.NotNil(t, enc)
	assert.Equal(t, namespace.Utility, enc.Namespace())
	assert.True(t, enc.Builtin())
	assert.Equal(t, "utility-base64-encode", enc.UUID)
	assert.Equal(t, "Base64-encode text", enc.Description)
	assert.Equal(t, "Encodes the selected text with standard base64.", enc.Help)
	require.Len(t, enc.Arguments, 1)
	assert.Equal(t, command.RoleObject, enc.Arguments[0].Role)

	preview := func(input string) (string, bool) {
		s, err := sentence.NewParser(m).Parse(ctx, input)
		require.NoError(t, err)
		var out command.Buffer
		ok := m.CallPreview(ctx, s, &out)
		return out.Content(), ok
	}

	out, ok := preview("base64-encode hello")
	assert.True(t, ok)
	assert.Equal(t, "aGVsbG8=", out)

	out, ok = preview("base64-decode aGVsbG8=")
	assert.True(t, ok)
	assert.Equal(t, "hello", out)

	_, ok = preview("base64-decode %%%")
	assert.False(t, ok, "invalid input fails the preview")

	out, _ = preview("url-encode a b&c")
	assert.Equal(t, "a+b%26c", out)

	out, _ = preview("url-decode a+b%26c")
	assert.Equal(t, "a b&c", out)

	s, err := sentence.NewParser(m).Parse(ctx, "url-encode x y")
	require.NoError(t, err)
	require.True(t, m.CallExecute(ctx, s))
	var result string
	require.NoError(t, store.Bin(s.Command().ID).Get(ctx, "result", &result))
	assert.Equal(t, "x+y", result)
	assert.ErrorIs(t, store.Bin(enc.ID).Get(ctx, "result", &result), storage.ErrNotFound, "bins are per command")
}
