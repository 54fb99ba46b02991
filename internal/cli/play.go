package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

// NewPlayCmd runs an interactive attempt in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "play [ID]",
		Short: "Play a quiz",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !resume {
				return errors.New("quiz id required (or --resume)")
			}
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			var play *app.Play
			if resume {
				play, err = rt.service.ResumeQuiz(cmd.Context())
			} else {
				play, err = rt.service.StartQuiz(cmd.Context(), args[0])
			}
			if errors.Is(err, domain.ErrInvalidQuestionSet) {
				return fmt.Errorf("cannot load quiz: %w", err)
			}
			if err != nil {
				return err
			}
			return playLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), rt.service, play)
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "replay the last started quiz")
	return cmd
}

type finisher interface {
	Finish(ctx context.Context, play *app.Play) (app.Result, error)
}

// playLoop reads one command per line: a letter A-D answers the current question and
// moves on, n/p navigate, s submits, q quits without submitting.
func playLoop(ctx context.Context, in io.Reader, out io.Writer, service finisher, play *app.Play) error {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s (%s)\n", play.Quiz.Title, play.Quiz.Topic)

	for {
		printView(out, play.Attempt.View())
		line, err := reader.ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			fmt.Fprintln(out, "\nQuiz abandoned; the score was not saved.")
			return nil
		}
		input := strings.ToUpper(strings.TrimSpace(line))

		switch input {
		case "N":
			if !play.Attempt.Advance() {
				fmt.Fprintln(out, "Already at the last question.")
			}
		case "P":
			if !play.Attempt.Retreat() {
				fmt.Fprintln(out, "Already at the first question.")
			}
		case "S":
			return finish(ctx, out, service, play)
		case "Q":
			fmt.Fprintln(out, "Quiz abandoned; the score was not saved.")
			return nil
		default:
			view := play.Attempt.View()
			option, ok := optionForLetter(view.Question.Options, input)
			if !ok {
				fmt.Fprintf(out, "Invalid input. Enter a letter A-%c, n, p, s or q.\n", byte('A'+len(view.Question.Options)-1))
				continue
			}
			if err := play.Attempt.Select(option); err != nil {
				return err
			}
			play.Attempt.Advance()
		}
	}
}

func finish(ctx context.Context, out io.Writer, service finisher, play *app.Play) error {
	res, err := service.Finish(ctx, play)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nFinal score: %d/%d\n", res.Score, res.Total)
	switch {
	case res.Saved:
		fmt.Fprintln(out, "Score saved.")
	case errors.Is(res.Warning, domain.ErrNotLoggedIn), errors.Is(res.Warning, domain.ErrSessionExpired):
		fmt.Fprintln(out, "Please login to save your score!")
	case res.Warning != nil:
		fmt.Fprintf(out, "Warning: %v\n", res.Warning)
	}
	return nil
}

func printView(out io.Writer, view domain.AttemptView) {
	fmt.Fprintf(out, "\nQ%d/%d (%d answered): %s\n\n", view.Index+1, view.Total, view.Attempted, view.Question.Question)
	for i, option := range view.Question.Options {
		marker := " "
		if option == view.Selected {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %c. %s\n", marker, byte('A'+i), option)
	}
	fmt.Fprint(out, "\n> ")
}

func optionForLetter(options []string, input string) (string, bool) {
	if len(input) != 1 {
		return "", false
	}
	idx := int(input[0]) - 'A'
	if idx < 0 || idx >= len(options) {
		return "", false
	}
	return options[idx], true
}
