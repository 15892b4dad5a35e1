package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/midulanmathi/reCurrency/internal/api"
	"github.com/midulanmathi/reCurrency/internal/app/economy"
	"github.com/midulanmathi/reCurrency/internal/daemon"
	"github.com/midulanmathi/reCurrency/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to config file (default ~/.recurrency/config.toml)")
	serveCmd.Flags().String("listen", "", "Override the host:port listen address")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reCurrency server",
	Long:  `Start the HTTP server: dashboard, economy actions, and the /metrics endpoint.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer store.Close()

	engine, err := economy.New(store)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	srv := api.NewServer(engine)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	addr := cfg.Addr()
	if override, _ := cmd.Flags().GetString("listen"); override != "" {
		addr = override
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on %s (db: %s)", addr, cfg.Storage.Path)
		errCh <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		log.Printf("[serve] received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}
