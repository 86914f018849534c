package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/internal/server"
	"github.com/msto63/cdlc/internal/store"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the compile service",
	Long: `Starts the HTTP compile API and the live diagnostics websocket.

Endpoints:
  POST /api/v1/compile     compile {name, source}
  GET  /api/v1/runs        compile history
  GET  /api/v1/runs/stats  history summary
  GET  /api/v1/runs/{id}   one run with its source
  GET  /health             health report
  GET  /ws                 websocket, {"type":"compile","payload":{...}}

History is written to store.path when store.enabled is set, otherwise it
is kept in memory until the server stops.

Examples:
  cdlc serve
  cdlc serve --port 9000
  cdlc serve --config configs/cdlc.toml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		appConfig.Server.Host = serveHost
	}
	if servePort != 0 {
		appConfig.Server.Port = servePort
	}

	var runs store.RunStore
	if appConfig.Store.Enabled {
		s, err := openHistory()
		if err != nil {
			return err
		}
		runs = s
		logger.Info("history enabled", mdwlog.Field("path", appConfig.Store.Path))
	}

	srv, err := server.New(appConfig, runs, logger)
	if err != nil {
		return err
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "cdlc serving on http://%s (Ctrl+C to stop)\n", appConfig.Address())

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case sig := <-sigCh:
		logger.Info("shutting down", mdwlog.Field("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		printError(cmd, "shutdown", err)
		return err
	}
	return <-errCh
}
