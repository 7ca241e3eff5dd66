package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/emotion"
	"github.com/kozaktomas/carecam/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the carecam web server.
The server exposes annotated camera frames, an MJPEG stream, the camera
status and the stored emotion snapshots, plus a small monitor page.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	if err := initSnapshotStore(cfg, log); err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := newSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer session.Stop()
	server := web.NewServer(cfg, session, emotion.NewCatalog(cfg.Emotions), log)

	fmt.Printf("Starting carecam on http://%s\n", cfg.Web.Addr())
	fmt.Printf("Capture: %v, AI: %v (%s), snapshots: %s\n",
		cfg.Camera.Enabled, cfg.AI.Enabled, cfg.AI.Provider, database.BackendName())
	fmt.Println("Press Ctrl+C to stop")

	served := make(chan error, 1)
	go func() { served <- server.Start() }()

	select {
	case err := <-served:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Error during shutdown: %v\n", err)
	}
	return <-served
}
