package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

type quizImporter interface {
	Import(ctx context.Context, owner string, quizzes []domain.Quiz) (int, error)
}

// NewImportCmd seeds the postgres quiz library from a JSON file holding an array of quizzes.
func NewImportCmd(configPath *string) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import quizzes into the self-hosted library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var quizzes []domain.Quiz
			if err := json.Unmarshal(raw, &quizzes); err != nil {
				return fmt.Errorf("decode import file: %w", err)
			}

			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.library == nil {
				return fmt.Errorf("import needs catalog.source: postgres")
			}
			if err := runMigrationsWithConfig(cmd.Context(), rt.cfg, rt.logger); err != nil {
				return err
			}

			if owner == "" {
				session, err := rt.service.CurrentSession(cmd.Context())
				if err != nil {
					return fmt.Errorf("no --owner given and %w", err)
				}
				owner = session.User.Email
			}
			written, err := importQuizzes(cmd.Context(), rt.library, rt.catalog, owner, quizzes)
			if err != nil {
				return err
			}
			rt.logger.Info("quizzes imported", "owner", owner, "count", written)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d quizzes for %s.\n", written, owner)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner email (defaults to the logged-in user)")
	return cmd
}

// importQuizzes writes quizzes for owner and drops the owner's cached catalog so the
// next listing picks them up.
func importQuizzes(ctx context.Context, lib quizImporter, catalog app.QuizRepository, owner string, quizzes []domain.Quiz) (int, error) {
	written, err := lib.Import(ctx, owner, quizzes)
	if err != nil {
		return written, err
	}
	catalog.Invalidate(ctx, owner)
	return written, nil
}
