package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fadilmartias/job-matcher/internal/dto"
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func writeSummary(w io.Writer, summary *dto.BatchSummary) error {
	if outputFormat == "json" {
		return writeJSON(w, summary)
	}

	fmt.Fprintf(w, "Selected: %d  Succeeded: %d  Failed: %d  Skipped: %d\n",
		summary.Selected, summary.Succeeded, summary.Failed, summary.Skipped)
	if len(summary.Failures) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB ID\tREASON\tDETAIL")
	for _, f := range summary.Failures {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.JobID, f.Reason, truncate(f.Detail, 80))
	}
	return tw.Flush()
}

func writeRecommendations(w io.Writer, result *dto.RecommendationResult) error {
	if outputFormat == "json" {
		return writeJSON(w, result)
	}

	if len(result.Items) == 0 {
		if !quiet {
			fmt.Fprintln(w, "No related jobs found")
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIMILARITY\tCFO\tID\tTITLE")
	for _, item := range result.Items {
		score := "-"
		if item.CfoScore != nil {
			score = fmt.Sprint(*item.CfoScore)
		}
		fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\n", item.Similarity, score, item.ID, truncate(item.Title, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(w, "\nPage %d of %d (%d jobs)\n", result.Page, result.TotalPages, result.Total)
	}
	return nil
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
