// Package report reduces per-recipient delivery outcomes into summaries
// and renders them for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/inboxinvader/inboxinvader/internal/model"
)

// Summarize derives a SendSummary from an ordered result sequence. The
// input is never reordered; an empty sequence yields an all-zero summary.
func Summarize(results []model.SendResult) model.SendSummary {
	summary := model.SendSummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		}
	}
	summary.Failed = summary.Total - summary.Successful
	return summary
}

// WriteCSV renders results as CSV in the exact order received, with the
// header row Email,Status,Message,Time.
func WriteCSV(w io.Writer, results []model.SendResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Email", "Status", "Message", "Time"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		status := "Failed"
		if r.Success {
			status = "Success"
		}
		ts := ""
		if r.Timestamp != nil {
			ts = r.Timestamp.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{r.Email, status, r.Message, ts}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
