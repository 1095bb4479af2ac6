package loader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/scripts"
)

type fakeHost struct {
	reg *command.Registry
}

func newFakeHost() *fakeHost {
	return &fakeHost{reg: command.NewRegistry()}
}

func (h *fakeHost) add(opts command.Options) *command.Command {
	c, err := command.New(opts)
	if err != nil {
		return nil
	}
	if err := h.reg.Add(c); err != nil {
		return nil
	}
	return c
}

func (h *fakeHost) CreateCommand(opts command.Options) *command.Command { return h.add(opts) }
func (h *fakeHost) CreateSearchCommand(opts command.SearchOptions) *command.Command {
	return h.add(opts.Options)
}
func (h *fakeHost) CreateCaptureCommand(opts command.CaptureOptions) *command.Command {
	return h.add(opts.Options)
}
func (h *fakeHost) AddObjectCommand(obj cmdapi.Object, args cmdapi.ArgumentMap) *command.Command {
	return h.add(cmdapi.ObjectOptions(obj, args))
}
func (h *fakeHost) FetchAborted(err error) bool { return errors.Is(err, command.ErrFetchAborted) }
func (h *fakeHost) DebugEnabled() bool { return false }
func (h *fakeHost) Commands() []*command.Command { return h.reg.All() }
func (h *fakeHost) EnableCommand(cmd *command.Command) { cmd.SetDisabled(false) }
func (h *fakeHost) DisableCommand(cmd *command.Command) { cmd.SetDisabled(true) }
func (h *fakeHost) OpenURL(context.Context, string) error { return nil }
func (h *fakeHost) Log(...any) {}
func (h *fakeHost) RemoveCommand(cmd *command.Command) bool { return h.reg.Remove(cmd) }
func (h *fakeHost) GetCommandByName(name string) *command.Command {
	return h.reg.Find(func(c *command.Command) bool { return c.HasName(name) })
}
func (h *fakeHost) UnloadUserCommands(ns string) []*command.Command {
	return h.reg.RemoveFunc(func(c *command.Command) bool {
		return !c.Builtin() && (ns == "" || c.Namespace() == ns)
	})
}

func newTestLoader(host *fakeHost, opts Options) *Loader {
	log := zerolog.Nop()
	opts.Logger = &log
	return New(host, opts)
}

const createScript = `package main

import (
	"strings"

	"ishell/cmdapi"
)

func init() {
	cmdapi.CreateCommand(cmdapi.Options{
		Name:        "shout",
		Description: cmdapi.Namespace,
		Preview: func(ctx cmdapi.Context, args cmdapi.Args, display cmdapi.Display, bin cmdapi.Bin) error {
			display.Set(strings.ToUpper(args.Object()))
			return nil
		},
	})
}
`

func TestEnsurePackage(t *testing.T) {
	assert.Equal(t, "package foo\n", EnsurePackage("package foo\n"))
	assert.Equal(t, "// doc\npackage foo\n", EnsurePackage("// doc\npackage foo\n"))
	assert.Equal(t, "package main\n\nimport \"fmt\"\n", EnsurePackage("import \"fmt\"\n"))
	assert.Equal(t, "package main\n\n", EnsurePackage(""))
}

func TestCheckImports(t *testing.T) {
	e := NewEvaluator(newFakeHost(), newFakeHost(), []string{"unicode/utf8"})

	assert.NoError(t, e.CheckImports(createScript))
	assert.NoError(t, e.CheckImports("package main\nimport \"unicode/utf8\"\n"))

	err := e.CheckImports("package main\nimport \"os/exec\"\n")
	assert.ErrorIs(t, err, ErrImportNotAllowed)
}

func TestEval_RegistersIntoNamespace(t *testing.T) {
	host := newFakeHost()
	e := NewEvaluator(host, host, nil)
	ns := namespace.New("scratch")

	require.NoError(t, e.Eval(context.Background(), ns, createScript, false))

	require.Len(t, ns.Commands(), 1)
	cmd := host.GetCommandByName("shout")
	require.NotNil(t, cmd)
	assert.Equal(t, "scratch", cmd.Description)
	assert.Empty(t, cmd.Namespace(), "attribution is deferred")

	var out command.Buffer
	require.NoError(t, cmd.Preview(context.Background(), command.Args{command.RoleObject: {Text: "hey"}}, &out, nil))
	assert.Equal(t, "HEY", out.Content())
}

func TestEval_ClassSyntax(t *testing.T) {
	host := newFakeHost()
	e := NewEvaluator(host, host, nil)

	src := `import (
	"strings"

	"ishell/cmdapi"
)

/**
 * Repeats the input.
 * @description echo twice
 */
type EchoTwice struct {
	cmdapi.Meta
}

func (c *EchoTwice) Preview(ctx cmdapi.Context, args cmdapi.Args, display cmdapi.Display, bin cmdapi.Bin) error {
	display.Set(strings.Repeat(args.Object(), 2))
	return nil
}
`
	require.NoError(t, e.Eval(context.Background(), namespace.NewAnnotated("Utility"), src, false))

	cmd := host.GetCommandByName("echo-twice")
	require.NotNil(t, cmd)
	assert.Equal(t, "echo twice", cmd.Description)
	assert.Equal(t, "Repeats the input.", cmd.Help)

	var out command.Buffer
	require.NoError(t, cmd.Preview(context.Background(), command.Args{command.RoleObject: {Text: "ab"}}, &out, nil))
	assert.Equal(t, "abab", out.Content())
}

const greetScript = `import (
	"errors"

	"ishell/cmdapi"
)

/**
 * Greets someone.
 * @uuid greet-1
 */
type Greet struct {
	cmdapi.Meta
	greeting string
}

func (c *Greet) Construct(args cmdapi.ArgumentMap) {
	args[cmdapi.OBJECT] = cmdapi.ArbText
	c.greeting = "hello "
}

func (c *Greet) Preview(ctx cmdapi.Context, args cmdapi.Args, display cmdapi.Display, bin cmdapi.Bin) error {
	display.Set(c.greeting + args.Object())
	return nil
}

func (c *Greet) Execute(ctx cmdapi.Context, args cmdapi.Args, bin cmdapi.Bin) error {
	return errors.New("greeted " + args.Object())
}

func (c *Greet) Load(ctx cmdapi.Context, bin cmdapi.Bin) error {
	return nil
}

func (c *Greet) Init(ctx cmdapi.Context, display cmdapi.Display, bin cmdapi.Bin) error {
	display.Set("ready")
	return nil
}
`

func TestEval_ClassHandlersAndConstruct(t *testing.T) {
	host := newFakeHost()
	e := NewEvaluator(host, host, nil)
	require.NoError(t, e.Eval(context.Background(), namespace.New("mine"), greetScript, false))

	cmd := host.GetCommandByName("greet")
	require.NotNil(t, cmd)
	assert.Equal(t, "greet-1", cmd.UUID)
	require.Len(t, cmd.Arguments, 1, "Construct declares the arguments")
	assert.Equal(t, command.RoleObject, cmd.Arguments[0].Role)

	ctx := context.Background()
	args := command.Args{command.RoleObject: {Text: "jo"}}

	var out command.Buffer
	require.NoError(t, cmd.Preview(ctx, args, &out, nil))
	assert.Equal(t, "hello jo", out.Content(), "state set by Construct is visible to handlers")

	assert.EqualError(t, cmd.Execute(ctx, args, nil), "greeted jo")

	require.NotNil(t, cmd.Load)
	assert.NoError(t, cmd.Load(ctx, nil))

	require.NotNil(t, cmd.Init)
	var initOut command.Buffer
	require.NoError(t, cmd.Init(ctx, &initOut, nil))
	assert.Equal(t, "ready", initOut.Content())
}

func TestCheckUserScript_ClassSyntax(t *testing.T) {
	host := newFakeHost()
	l := newTestLoader(host, Options{})

	assert.NoError(t, l.CheckUserScript(context.Background(), greetScript))
	assert.Zero(t, host.reg.Len())
}

func TestEval_ImportPolicy(t *testing.T) {
	host := newFakeHost()
	e := NewEvaluator(host, host, nil)

	src := "package main\nimport \"os\"\nfunc init() { os.Exit(1) }\n"
	err := e.Eval(context.Background(), namespace.New("x"), src, false)
	assert.ErrorIs(t, err, ErrImportNotAllowed)
	assert.Zero(t, host.reg.Len())
}

func TestCheckUserScript(t *testing.T) {
	host := newFakeHost()
	l := newTestLoader(host, Options{})

	assert.NoError(t, l.CheckUserScript(context.Background(), createScript))
	assert.Zero(t, host.reg.Len(), "inert evaluation registers nothing")

	assert.Error(t, l.CheckUserScript(context.Background(), "package main\nfunc init() { undefined() }\n"))
}

func TestLoadBuiltinCommands_FailureIsolated(t *testing.T) {
	host := newFakeHost()
	var moduleHook, builtinHook atomic.Int32

	l := newTestLoader(host, Options{Modules: []Module{
		{
			Path: "broken",
			Import: func(context.Context, cmdapi.CommandAPI, cmdapi.Utils) (*namespace.Namespace, error) {
				return nil, errors.New("import failed")
			},
		},
		{
			Path: "hello",
			Import: func(_ context.Context, api cmdapi.CommandAPI, utils cmdapi.Utils) (*namespace.Namespace, error) {
				ns := namespace.New("Hello")
				scoped, _ := ns.Bind(api, utils)
				scoped.CreateCommand(command.Options{Name: "hello"})
				ns.OnModuleCommandsLoaded = func(context.Context) error {
					moduleHook.Add(1)
					return nil
				}
				ns.OnBuiltinCommandsLoaded = func(context.Context) error {
					builtinHook.Add(1)
					return nil
				}
				return ns, nil
			},
		},
		{
			Path: "panics",
			Import: func(context.Context, cmdapi.CommandAPI, cmdapi.Utils) (*namespace.Namespace, error) {
				panic("boom")
			},
		},
		{
			Path: "anonymous",
			Import: func(context.Context, cmdapi.CommandAPI, cmdapi.Utils) (*namespace.Namespace, error) {
				return namespace.New(""), nil
			},
		},
	}})

	loaded := l.LoadBuiltinCommands(context.Background())

	require.Len(t, loaded, 1)
	all := host.Commands()
	require.Len(t, all, 1)
	assert.Equal(t, "hello", all[0].Name)
	assert.True(t, all[0].Builtin())
	assert.Equal(t, "Hello", all[0].Namespace())
	assert.EqualValues(t, 1, moduleHook.Load())
	assert.EqualValues(t, 1, builtinHook.Load())
}

func TestLoadBuiltinCommands_HookFailureAndPlatform(t *testing.T) {
	host := newFakeHost()
	var later atomic.Int32

	mod := func(name string, platforms ...string) Module {
		return Module{
			Path:      name,
			Platforms: platforms,
			Import: func(_ context.Context, api cmdapi.CommandAPI, utils cmdapi.Utils) (*namespace.Namespace, error) {
				ns := namespace.New(name)
				scoped, _ := ns.Bind(api, utils)
				scoped.CreateCommand(command.Options{Name: name})
				ns.OnModuleCommandsLoaded = func(context.Context) error { panic("hook") }
				ns.OnBuiltinCommandsLoaded = func(context.Context) error {
					later.Add(1)
					return errors.New("hook failed")
				}
				return ns, nil
			},
		}
	}

	l := newTestLoader(host, Options{
		Platform: "linux",
		Modules:  []Module{mod("any"), mod("linux-only", "linux"), mod("mac-only", "darwin")},
	})
	l.LoadBuiltinCommands(context.Background())

	assert.NotNil(t, host.GetCommandByName("any"))
	assert.NotNil(t, host.GetCommandByName("linux-only"))
	assert.Nil(t, host.GetCommandByName("mac-only"))
	assert.EqualValues(t, 2, later.Load())
}

func TestLoadBuiltinCommands_Annotated(t *testing.T) {
	host := newFakeHost()
	l := newTestLoader(host, Options{Modules: []Module{{
		Path: "utility",
		Import: func(context.Context, cmdapi.CommandAPI, cmdapi.Utils) (*namespace.Namespace, error) {
			return namespace.NewAnnotated("Utility"), nil
		},
		Source: "import \"ishell/cmdapi\"\n\ntype Nop struct {\n\tcmdapi.Meta\n}\n",
	}}})

	l.LoadBuiltinCommands(context.Background())

	cmd := host.GetCommandByName("nop")
	require.NotNil(t, cmd)
	assert.True(t, cmd.Builtin())
	assert.Equal(t, "Utility", cmd.Namespace())
}

const failingScript = `package main

import "ishell/cmdapi"

func init() {
	cmdapi.CreateCommand(cmdapi.Options{Name: "half-done"})
	panic("script failed")
}
`

func twoCommands(a, b string) string {
	return `package main

import "ishell/cmdapi"

func init() {
	cmdapi.CreateCommand(cmdapi.Options{Name: "` + a + `"})
	cmdapi.CreateCommand(cmdapi.Options{Name: "` + b + `"})
}
`
}

func TestLoadUserCommands(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()
	builtin := host.add(command.Options{Name: "builtin", Namespace: "iShell"})
	require.NotNil(t, builtin)

	repo := scripts.NewDirRepository(afero.NewMemMapFs(), "/scripts")
	_, err := repo.Save(ctx, scripts.NewRecord("good", twoCommands("one", "two")))
	require.NoError(t, err)
	_, err = repo.Save(ctx, scripts.NewRecord("bad", failingScript))
	require.NoError(t, err)
	_, err = repo.Save(ctx, scripts.NewRecord("other", twoCommands("three", "four")))
	require.NoError(t, err)

	l := newTestLoader(host, Options{Sources: []scripts.Repository{repo}})
	touched := l.LoadUserCommands(ctx, "")
	assert.Len(t, touched, 2)

	assert.Nil(t, host.GetCommandByName("half-done"), "a failed script's commands are rolled back")
	for _, name := range []string{"one", "two"} {
		cmd := host.GetCommandByName(name)
		require.NotNil(t, cmd, name)
		assert.Equal(t, "good", cmd.Namespace())
		assert.False(t, cmd.Builtin())
	}
	assert.Equal(t, 5, host.reg.Len())

	// Reload one namespace with a changed script.
	_, err = repo.Save(ctx, scripts.NewRecord("good", twoCommands("one", "five")))
	require.NoError(t, err)
	l.LoadUserCommands(ctx, "good")

	assert.Nil(t, host.GetCommandByName("two"))
	assert.NotNil(t, host.GetCommandByName("five"))
	assert.NotNil(t, host.GetCommandByName("three"), "other namespaces are untouched")
	assert.NotNil(t, host.GetCommandByName("builtin"))
	assert.Equal(t, 5, host.reg.Len())

	// Unloading everything removes exactly the user commands.
	removed := host.UnloadUserCommands("")
	assert.Len(t, removed, 4)
	assert.Equal(t, []*command.Command{builtin}, host.Commands())
}

func TestLoadUserCommands_Constrained(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundle/manifest.yaml", []byte("- a.gos\n- example.gos\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/bundle/a.gos", []byte(twoCommands("a1", "a2")), 0644))
	require.NoError(t, afero.WriteFile(fs, "/bundle/example.gos", []byte(twoCommands("e1", "e2")), 0644))

	l := newTestLoader(host, Options{
		Constrained: true,
		Sources:     []scripts.Repository{scripts.NewBundle(fs, "/bundle/manifest.yaml", scripts.DefaultExclude)},
	})
	l.LoadUserCommands(ctx, "")

	assert.NotNil(t, host.GetCommandByName("a1"))
	assert.Nil(t, host.GetCommandByName("e1"), "example entries are discarded")
	assert.Equal(t, "a", host.GetCommandByName("a2").Namespace())
}
