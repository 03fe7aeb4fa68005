package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"logship/internal/history"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		limit    int
		buildID  string
		pruneAge time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded shipping attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if pruneAge > 0 {
				pruned, err := store.Prune(cmd.Context(), time.Now().UTC().Add(-pruneAge))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d attempts older than %s\n", pruned, pruneAge)
				return nil
			}

			var attempts []*history.Attempt
			if buildID != "" {
				attempts, err = store.ForBuild(cmd.Context(), buildID)
			} else {
				attempts, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if len(attempts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shipping attempts recorded")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(attempts))

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d attempts recorded: %d succeeded, %d failed\n",
				stats.Total(), stats.Succeeded, stats.Failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of attempts to show")
	cmd.Flags().StringVar(&buildID, "build", "", "Show attempts for one build only")
	cmd.Flags().DurationVar(&pruneAge, "prune", 0, "Delete attempts older than this age instead of listing")

	return cmd
}

// renderHistoryTable renders one row per attempt. Only the line-limit column
// is numeric; everything else stays left-aligned.
func renderHistoryTable(attempts []*history.Attempt) string {
	titler := cases.Title(language.English)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"When", "Build", "Job", "Transport", "Lines", "Outcome", "Error"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	for _, attempt := range attempts {
		outcome := "failed"
		if attempt.Outcome {
			outcome = "succeeded"
		}
		tw.AppendRow(table.Row{
			attempt.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			attempt.BuildID,
			attempt.Job,
			strings.ToUpper(attempt.Transport),
			formatLineLimit(attempt.MaxLines),
			titler.String(outcome),
			truncate(attempt.ErrorDetail, 60),
		})
	}

	return tw.Render()
}

func formatLineLimit(maxLines int) string {
	switch {
	case maxLines < 0:
		return "all"
	case maxLines == 0:
		return "none"
	default:
		return strconv.Itoa(maxLines)
	}
}

// truncate shortens value to max runes, never splitting a multi-byte rune.
func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max-1]) + "…"
}
