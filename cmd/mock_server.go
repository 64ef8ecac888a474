package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/config"
	"github.com/kozaktomas/face-auth/internal/web"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Start the development API server",
	Long: `Start a local server implementing the authentication API.
Accounts live in memory and face images are matched by exact content, so it
is meant for trying out the client, not for real use.`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	rootCmd.AddCommand(mockServerCmd)

	mockServerCmd.Flags().Int("port", 0, "Port to listen on (default MOCK_PORT or 8000)")
	mockServerCmd.Flags().String("host", "", "Host to bind to (default MOCK_HOST or 127.0.0.1)")
}

func runMockServer(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Mock.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Mock.Host = host
	}
	if cfg.Mock.JWTSecret == "" {
		fmt.Println("Warning: MOCK_JWT_SECRET is not set, using the development secret")
	}

	server := web.NewServer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Development API on http://%s:%d\n", cfg.Mock.Host, cfg.Mock.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
