package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/intensifier/ishell/internal/logging"
	"github.com/intensifier/ishell/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start iShell as a headless server exposing commands, previews,
execution and the event stream over HTTP.

With scripts.watch enabled and the directory repository, editing a
namespace's script reloads that namespace.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	log := logging.Component("serve")
	log.Info().Str("version", Version).Msg("starting ishell server")

	a.load(context.Background())

	if a.config.Scripts.Watch && a.config.Scripts.Repository == "dir" {
		w, err := a.manager.WatchScripts(a.config.Scripts.Dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", a.config.Scripts.Dir).Msg("script watcher unavailable")
		} else {
			defer w.Stop()
		}
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Port = a.config.Server.Port
	if servePort != 0 {
		serverConfig.Port = servePort
	}
	if cors := a.config.Server.CORS; cors != nil {
		serverConfig.EnableCORS = *cors
	}

	srv := server.New(serverConfig, a.manager, a.bus)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", serverConfig.Port).Msg("server listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}
