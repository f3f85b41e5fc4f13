package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/cliout"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		h, err := getHome()
		if err != nil {
			return err
		}

		store, err := buildStore(ctx, cfg, h)
		if err != nil {
			return err
		}

		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		return cliout.Output(stats)
	},
}

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all vectors from the index",
	Long: `Remove all vectors from the index.

This deletes every indexed chunk. Prompts for confirmation unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		h, err := getHome()
		if err != nil {
			return err
		}

		if !clearForce {
			fmt.Printf("Delete all vectors in collection %q? [y/N]: ", cfg.Store.Collection)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted")
				return nil
			}
		}

		store, err := buildStore(ctx, cfg, h)
		if err != nil {
			return err
		}

		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("Index cleared")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
}
