package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cardbinder",
		Short: "Trading card scanning, review, and cataloging service",
		Long: `Cardbinder detects individual trading cards in bulk photos, lets you
review and adjust the detected boundaries, and catalogs the cards you keep.

Detection runs either a built-in heuristic detector or a vision-capable LLM
(Ollama, OpenAI, or Gemini).`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}
