package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rosterline/internal/core"
	"rosterline/internal/registry"
	"rosterline/internal/registry/registrytest"
	"rosterline/internal/web"
)

var serveDemoRegistry bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the roster import HTTP service",
	Long: `Start the import API. Clients upload a roster export, inspect the
validated preview page by page, and submit the batch to the member
registry.

With --demo-registry an in-memory registry is mounted on the same
server, so the whole pipeline can be exercised without a registry
deployment. Nothing imported into the demo registry survives a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDemoRegistry, "demo-registry", false,
		"mount a built-in in-memory registry and import against it")
}

func runServe(cmd *cobra.Command, args []string) error {
	registryURL := cfg.Registry.URL
	var demo *registrytest.Registry
	if serveDemoRegistry {
		demo = registrytest.New()
		registryURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	}
	if registryURL == "" {
		return fmt.Errorf("no registry configured: set REGISTRY_URL or pass --demo-registry")
	}

	client := registry.NewClient(registryURL, cfg.Registry.Token, cfg.Registry.Timeout)
	service := core.NewService(client, cfg.Import.PageSize)
	server := web.NewServer(service, cfg)

	if demo != nil {
		// The fake routes by full path, so it can hang off the main router.
		server.Router().Handle("/api/v1/members/field-mapping", demo)
		server.Router().Handle("/api/v1/members/bulk", demo)
		slog.Info("demo registry mounted", "url", registryURL)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr(), "registry", registryURL)
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
