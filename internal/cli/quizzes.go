package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

// NewQuizzesCmd lists the user's quizzes.
func NewQuizzesCmd(configPath *string) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List your quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			quizzes, err := rt.service.ListQuizzes(cmd.Context(), search)
			if err != nil {
				return err
			}
			printQuizzes(cmd.OutOrStdout(), quizzes)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by title")
	return cmd
}

// NewAddQuizCmd creates a quiz from a JSON question file. The file may be a bare array or
// text such as a chat answer containing a fenced JSON array.
func NewAddQuizCmd(configPath *string) *cobra.Command {
	var (
		in     app.NewQuizInput
		file   string
		prompt bool
		count  int
	)
	cmd := &cobra.Command{
		Use:   "add-quiz",
		Short: "Add a quiz from a JSON question list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt {
				fmt.Fprintln(cmd.OutOrStdout(), domain.GenerationPrompt(in.Topic, count))
				return nil
			}
			var (
				raw []byte
				err error
			)
			if file == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read questions: %w", err)
			}
			in.Questions = string(raw)

			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			quiz, err := rt.service.AddQuiz(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Quiz %q added with %d questions.\n", quiz.Title, len(quiz.Questions))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "quiz title")
	cmd.Flags().StringVar(&in.Topic, "topic", "", "quiz topic")
	cmd.Flags().StringVar(&file, "file", "-", "question file, - for stdin")
	cmd.Flags().BoolVar(&prompt, "print-prompt", false, "print a prompt for generating questions on --topic and exit")
	cmd.Flags().IntVar(&count, "count", 30, "number of questions for --print-prompt")
	return cmd
}

// NewDeleteQuizCmd deletes a quiz by id.
func NewDeleteQuizCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-quiz ID",
		Short: "Delete one of your quizzes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.service.DeleteQuiz(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Quiz deleted.")
			return nil
		},
	}
}

func printQuizzes(out io.Writer, quizzes []domain.Quiz) {
	if len(quizzes) == 0 {
		fmt.Fprintln(out, "No quizzes found.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTOPIC\tQUESTIONS")
	for _, q := range quizzes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", q.ID, q.Title, q.Topic, len(q.Questions))
	}
	_ = tw.Flush()
}
