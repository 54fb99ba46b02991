package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quizzer/internal/app"
	"quizzer/internal/domain"
	"quizzer/internal/export"
)

// NewScoresCmd prints the score dashboard and optionally exports it as xlsx.
func NewScoresCmd(configPath *string) *cobra.Command {
	var (
		topic      string
		exportPath string
	)
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show your score analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			dashboard, err := rt.service.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dashboard.Empty {
				fmt.Fprintln(out, "No scores yet. Play a quiz to see your progress.")
				return nil
			}

			if topic != "" {
				for _, t := range dashboard.Topics {
					if t.Topic == topic {
						printTopic(out, t, rt.service.Analytics().Options())
						return writeExport(out, exportPath, []domain.TopicSummary{t})
					}
				}
				return fmt.Errorf("no scores for topic %q", topic)
			}
			printDashboard(out, dashboard)
			return writeExport(out, exportPath, dashboard.Topics)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "show every attempt of one topic")
	cmd.Flags().StringVar(&exportPath, "export", "", "write an xlsx workbook to this path")
	return cmd
}

func printDashboard(out io.Writer, d domain.Dashboard) {
	o := d.Overall
	fmt.Fprintf(out, "Quizzes taken: %d   Average: %.2f   Best: %d   Lowest: %d   Accuracy: %.1f%%   Topics: %d\n",
		o.Total, o.Average, o.Max, o.Min, o.AccuracyPercent, o.TopicCount)

	fmt.Fprintln(out, "\nRecent trend:")
	for _, p := range o.Trend {
		fmt.Fprintf(out, "  %2d. %-20s %3d %s\n", p.Index, p.Topic, p.Score, app.ScoreBand(p.Score))
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tATTEMPTS\tAVERAGE\tBEST\tAVG %\tBEST %\tLAST")
	for _, t := range d.Topics {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%d\t%d%%\t%d%%\t%s\n",
			t.Topic, t.Count, t.Average, t.Best, t.AveragePercent, t.BestPercent, t.MostRecent.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func printTopic(out io.Writer, t domain.TopicSummary, opts app.AnalyticsOptions) {
	fmt.Fprintf(out, "%s: %d attempts, average %.2f (%d%%), best %d (%d%%)\n\n",
		t.Topic, t.Count, t.Average, t.AveragePercent, t.Best, t.BestPercent)
	for _, a := range t.Attempts {
		fmt.Fprintf(out, "  %s  %2d/%d  %s\n", a.CreatedAt.Format("2006-01-02 15:04"), a.Score, opts.MaxScore, app.ScoreBand(a.Score))
	}
}

// writeExport saves the attempts of topics as an xlsx workbook. An empty path is a no-op.
func writeExport(out io.Writer, path string, topics []domain.TopicSummary) error {
	if path == "" {
		return nil
	}
	var records []domain.ScoreRecord
	for _, t := range topics {
		records = append(records, t.Attempts...)
	}
	data, err := export.ScoresWorkbook(records, topics)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(out, "\nExported %d attempts to %s\n", len(records), path)
	return nil
}
