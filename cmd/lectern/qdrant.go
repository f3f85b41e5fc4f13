package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/qdrant"
)

var qdrantCmd = &cobra.Command{
	Use:   "qdrant",
	Short: "Manage the Qdrant container",
	Long: `Manage the Qdrant container lifecycle.

Qdrant is the optional persistent vector store backend. The database
runs in a Docker container with storage persisted to ~/.lectern/qdrant/.

Examples:
  lectern qdrant start   # Start the Qdrant container
  lectern qdrant stop    # Stop the container (data preserved)
  lectern qdrant status  # Check container status
  lectern qdrant logs    # View container logs`,
}

var qdrantStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Qdrant container",
	Long: `Start the Qdrant container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.

Storage is persisted to ~/.lectern/qdrant/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getQdrantManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting Qdrant...")
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("failed to start Qdrant: %w", err)
		}

		fmt.Printf("Qdrant is running at %s\n", mgr.URL())
		return nil
	},
}

var qdrantStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the Qdrant container",
	Long: `Stop the Qdrant container.

This stops the container but preserves data. Use 'lectern qdrant start'
to restart it later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getQdrantManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping Qdrant...")
		if err := mgr.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop Qdrant: %w", err)
		}

		fmt.Println("Qdrant stopped")
		return nil
	},
}

var qdrantStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Qdrant container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getQdrantManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case qdrant.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("URL: %s\n", mgr.URL())

			// Try health check
			if err := healthCheck(ctx, mgr.URL()); err != nil {
				fmt.Printf("Health: unhealthy (%v)\n", err)
			} else {
				fmt.Println("Health: healthy")
			}
		case qdrant.StatusStopped:
			fmt.Printf("Status: %s (use 'lectern qdrant start' to start)\n", status)
		case qdrant.StatusNotFound:
			fmt.Printf("Status: %s (use 'lectern qdrant start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var qdrantLogsTail string

var qdrantLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show Qdrant container logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getQdrantManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		logs, err := mgr.Logs(ctx, qdrantLogsTail)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		fmt.Print(logs)
		return nil
	},
}

var qdrantRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the Qdrant container",
	Long: `Remove the Qdrant container.

This stops and removes the container. Data in ~/.lectern/qdrant/
is NOT deleted - only the container is removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getQdrantManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing Qdrant container...")
		if err := mgr.Remove(ctx); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Qdrant container removed (data preserved)")
		return nil
	},
}

var qdrantWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for Qdrant to be ready",
	Long: `Wait for Qdrant to be ready to accept connections.

This is useful in scripts to ensure Qdrant is fully started
before running other commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getQdrantManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		fmt.Printf("Waiting for Qdrant (timeout: %s)...\n", timeout)

		if err := mgr.WaitReady(ctx, timeout); err != nil {
			return fmt.Errorf("Qdrant not ready: %w", err)
		}

		fmt.Println("Qdrant is ready")
		return nil
	},
}

func init() {
	qdrantCmd.AddCommand(qdrantStartCmd)
	qdrantCmd.AddCommand(qdrantStopCmd)
	qdrantCmd.AddCommand(qdrantStatusCmd)
	qdrantCmd.AddCommand(qdrantLogsCmd)
	qdrantCmd.AddCommand(qdrantRemoveCmd)
	qdrantCmd.AddCommand(qdrantWaitCmd)

	qdrantLogsCmd.Flags().StringVar(&qdrantLogsTail, "tail", "100", "Number of lines to show from the end")
	qdrantWaitCmd.Flags().Duration("timeout", 30*time.Second, "Timeout waiting for Qdrant")

	rootCmd.AddCommand(qdrantCmd)
}

// getQdrantManager creates a DockerManager with the configured settings.
func getQdrantManager() (*qdrant.DockerManager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	h, err := getHome()
	if err != nil {
		return nil, err
	}
	if err := h.EnsureQdrantDir(); err != nil {
		return nil, fmt.Errorf("failed to create qdrant data directory: %w", err)
	}

	return qdrant.NewDockerManager(qdrant.DockerConfig{
		ContainerName: cfg.Qdrant.ContainerName,
		Image:         cfg.Qdrant.Image,
		DataPath:      h.QdrantPath(),
		HostPort:      cfg.Qdrant.Port,
	})
}

func healthCheck(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/healthz", nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
