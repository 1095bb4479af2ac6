package commands

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/spf13/afero"

	"github.com/intensifier/ishell/internal/cmdmanager"
	"github.com/intensifier/ishell/internal/commands"
	"github.com/intensifier/ishell/internal/config"
	"github.com/intensifier/ishell/internal/event"
	"github.com/intensifier/ishell/internal/logging"
	"github.com/intensifier/ishell/internal/scripts"
	"github.com/intensifier/ishell/internal/storage"
	"github.com/intensifier/ishell/pkg/types"
)

// app wires configuration, storage, script sources and the command
// manager for one CLI invocation.
type app struct {
	config  *types.Config
	paths   *config.Paths
	store   *storage.Storage
	bus     *event.Bus
	repo    scripts.Store
	manager *cmdmanager.Manager

	closeRepo func() error
}

func newApp() (*app, error) {
	dir, err := GetWorkDir(workDir)
	if err != nil {
		return nil, err
	}
	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return nil, err
	}
	appConfig, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	a := &app{
		config: appConfig,
		paths:  paths,
		store:  storage.New(paths.StoragePath()),
		bus:    event.NewBus(),
	}
	if err := a.openRepository(); err != nil {
		a.bus.Close()
		return nil, err
	}

	var sources []scripts.Repository
	if bundle := appConfig.Scripts.Bundle; bundle != "" {
		sources = append(sources, scripts.NewBundle(afero.NewOsFs(), bundle, appConfig.Scripts.Exclude))
	}
	sources = append(sources, a.repo)

	a.manager = cmdmanager.New(cmdmanager.Options{
		Config:  appConfig,
		Storage: a.store,
		Modules: commands.Modules(),
		Sources: sources,
		Bus:     a.bus,
		Open:    openBrowser,
	})
	return a, nil
}

func (a *app) openRepository() error {
	s := a.config.Scripts
	if s.Repository == "sqlite" {
		repo, err := scripts.OpenSQLite(s.Database)
		if err != nil {
			return err
		}
		a.repo = repo
		a.closeRepo = repo.Close
		return nil
	}
	a.repo = scripts.NewDirRepository(afero.NewOsFs(), s.Dir)
	return nil
}

// load loads every command.
func (a *app) load(ctx context.Context) *app {
	a.manager.LoadCommands(ctx)
	return a
}

// Close flushes pending settings and releases resources.
func (a *app) Close() {
	a.manager.Wait()
	if a.closeRepo != nil {
		if err := a.closeRepo(); err != nil {
			logging.Warn().Err(err).Msg("error closing script repository")
		}
	}
	a.bus.Close()
}

// openBrowser opens url in the default browser.
func openBrowser(_ context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
