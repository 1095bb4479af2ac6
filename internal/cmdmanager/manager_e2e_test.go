package cmdmanager_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/cmdmanager"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/event"
	"github.com/intensifier/ishell/internal/loader"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/scripts"
	"github.com/intensifier/ishell/internal/storage"
	"github.com/intensifier/ishell/pkg/types"
)

func userScript(names ...string) string {
	src := "package main\n\nimport \"ishell/cmdapi\"\n\nfunc init() {\n"
	for _, name := range names {
		src += fmt.Sprintf("\tcmdapi.CreateCommand(cmdapi.Options{Name: %q})\n", name)
	}
	return src + "}\n"
}

const brokenScript = `package main

import "ishell/cmdapi"

func init() {
	cmdapi.CreateCommand(cmdapi.Options{Name: "half-done"})
	panic("broken script")
}
`

var _ = Describe("Command manager", func() {
	var (
		ctx   context.Context
		store *storage.Storage
		repo  *scripts.DirRepository
		nop   zerolog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = storage.NewWithFs(afero.NewMemMapFs(), "/data")
		repo = scripts.NewDirRepository(afero.NewMemMapFs(), "/scripts")
		nop = zerolog.Nop()
	})

	newManager := func(modules ...loader.Module) *cmdmanager.Manager {
		m := cmdmanager.New(cmdmanager.Options{
			Storage: store,
			Modules: modules,
			Sources: []scripts.Repository{repo},
			Logger:  &nop,
		})
		DeferCleanup(m.Wait)
		return m
	}

	Describe("builtin modules", func() {
		It("isolates a module that fails on import", func() {
			var hookCalls int
			failing := loader.Module{
				Path: "failing",
				Import: func(context.Context, cmdapi.CommandAPI, cmdapi.Utils) (*namespace.Namespace, error) {
					return nil, errors.New("import exploded")
				},
			}
			working := loader.Module{
				Path: "working",
				Import: func(_ context.Context, api cmdapi.CommandAPI, utils cmdapi.Utils) (*namespace.Namespace, error) {
					ns := namespace.New("Working")
					scoped, _ := ns.Bind(api, utils)
					scoped.CreateCommand(command.Options{Name: "hello"})
					ns.OnBuiltinCommandsLoaded = func(context.Context) error {
						hookCalls++
						return nil
					}
					return ns, nil
				},
			}

			m := newManager(failing, working)
			m.LoadCommands(ctx)

			Expect(m.Commands()).To(HaveLen(1))
			hello := m.GetCommandByName("hello")
			Expect(hello).NotTo(BeNil())
			Expect(hello.Namespace()).To(Equal("Working"))
			Expect(hello.Builtin()).To(BeTrue())
			Expect(hookCalls).To(Equal(1))
		})
	})

	Describe("user scripts", func() {
		It("rolls back failed scripts and reloads a single namespace", func() {
			_, err := repo.Save(ctx, scripts.NewRecord("mine", userScript("one", "two")))
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.Save(ctx, scripts.NewRecord("broken", brokenScript))
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.Save(ctx, scripts.NewRecord("theirs", userScript("three")))
			Expect(err).NotTo(HaveOccurred())

			m := newManager()
			m.LoadCommands(ctx)

			Expect(m.GetCommandByName("half-done")).To(BeNil())
			Expect(m.UserCommands()).To(HaveLen(3))
			Expect(m.Namespaces()).To(ConsistOf("mine", "theirs"))

			_, err = repo.Save(ctx, scripts.NewRecord("mine", userScript("one", "five")))
			Expect(err).NotTo(HaveOccurred())
			m.LoadUserCommands(ctx, "mine")

			Expect(m.GetCommandByName("two")).To(BeNil())
			Expect(m.GetCommandByName("five")).NotTo(BeNil())
			Expect(m.GetCommandByName("three")).NotTo(BeNil())
			Expect(m.GetCommandByName("five").Namespace()).To(Equal("mine"))
		})

		It("skips user scripts when the environment forbids them", func() {
			_, err := repo.Save(ctx, scripts.NewRecord("mine", userScript("one")))
			Expect(err).NotTo(HaveOccurred())

			off := false
			m := cmdmanager.New(cmdmanager.Options{
				Config:  &types.Config{Environment: &types.EnvironmentConfig{UserScripts: &off}},
				Storage: store,
				Sources: []scripts.Repository{repo},
				Logger:  &nop,
			})
			m.LoadCommands(ctx)
			Expect(m.Commands()).To(BeEmpty())
		})
	})

	Describe("disabled commands", func() {
		It("keeps a command disabled across managers", func() {
			_, err := repo.Save(ctx, scripts.NewRecord("mine", userScript("noisy", "quiet")))
			Expect(err).NotTo(HaveOccurred())

			first := newManager()
			first.LoadCommands(ctx)
			first.DisableCommand(first.GetCommandByName("noisy"))
			first.Wait()

			second := newManager()
			second.LoadCommands(ctx)
			Expect(second.GetCommandByName("noisy").Disabled()).To(BeTrue())
			Expect(second.GetCommandByName("quiet").Disabled()).To(BeFalse())
		})
	})

	Describe("events", func() {
		It("announces a completed load", func() {
			bus := event.NewBus()
			DeferCleanup(bus.Close)
			loaded := make(chan event.CommandsLoadedData, 1)
			bus.Subscribe(event.CommandsLoaded, func(e event.Event) {
				loaded <- e.Data.(event.CommandsLoadedData)
			})

			_, err := repo.Save(ctx, scripts.NewRecord("mine", userScript("one")))
			Expect(err).NotTo(HaveOccurred())

			m := cmdmanager.New(cmdmanager.Options{Storage: store, Sources: []scripts.Repository{repo}, Bus: bus, Logger: &nop})
			m.LoadCommands(ctx)

			Eventually(loaded).Should(Receive(Equal(event.CommandsLoadedData{Total: 1, Builtin: 0, User: 1})))
		})
	})
})
