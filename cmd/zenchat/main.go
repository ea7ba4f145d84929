package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zenberry/zenchat/internal/cli"
	"github.com/zenberry/zenchat/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "zenchat",
		Short: "Zenchat CLI - Zenberry assistant client",
		Long: `Zenchat CLI talks to a running zenchatd instance.

Environment variables:
  ZENCHAT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.StreamCmd())
	rootCmd.AddCommand(client.HealthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
