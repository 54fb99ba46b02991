package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("QUIZZER_CONFIG")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "quizzer",
		Short:         "Take quizzes and track your scores from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(
		NewSignupCmd(&configPath),
		NewLoginCmd(&configPath),
		NewLogoutCmd(&configPath),
		NewWhoamiCmd(&configPath),
		NewQuizzesCmd(&configPath),
		NewAddQuizCmd(&configPath),
		NewDeleteQuizCmd(&configPath),
		NewPlayCmd(&configPath),
		NewScoresCmd(&configPath),
		NewServeCmd(&configPath),
		NewMigrateCmd(&configPath),
		NewImportCmd(&configPath),
	)
	return cmd
}
