package invader

import (
	"github.com/inboxinvader/inboxinvader/internal/recipient"
	"github.com/inboxinvader/inboxinvader/internal/render"
)

// ParseRecipients normalizes raw recipient text into an ordered list
// of addresses. Commas, semicolons and newlines all separate; segments
// are trimmed and empties dropped. No syntax validation happens here.
func ParseRecipients(raw string) []string {
	return recipient.Parse(raw)
}

// Substitute resolves {{name}} placeholders in a template against the
// variable map. Unknown placeholders stay literal; substituted values
// are never re-scanned.
func Substitute(template string, vars map[string]string) string {
	return render.Substitute(template, vars)
}

// Summarize reduces per-recipient outcomes to counts. Empty input
// yields the zero summary.
func Summarize(results []SendResult) SendSummary {
	summary := SendSummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		}
	}
	summary.Failed = summary.Total - summary.Successful
	return summary
}
