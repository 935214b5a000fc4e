package patentverify

import (
	"fmt"
	"strings"
	"time"
)

// BuildReportMarkdown renders a run result as a human-readable markdown
// report with Google Patents links for each verified record.
func BuildReportMarkdown(result RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Patent Verification Report\n\n")
	fmt.Fprintf(&b, "- Compound: %s\n", safe(result.Compound))
	fmt.Fprintf(&b, "- Model: %s\n", safe(result.Metadata.Model))
	fmt.Fprintf(&b, "- Date: %s\n\n", reportDate(result))

	fmt.Fprintf(&b, "## Summary\n\n")
	if !result.Success {
		reason := result.Error
		if reason == "" {
			reason = result.Message
		}
		fmt.Fprintf(&b, "**Run did not complete successfully.** %s\n\n", safe(reason))
	}
	fmt.Fprintf(&b, "- Patents found: %d\n", result.PatentsFound)
	fmt.Fprintf(&b, "- Patents verified: %d\n", result.PatentsVerified)
	if result.PatentsFound > 0 {
		fmt.Fprintf(&b, "- Verification rate: %.1f%%\n", float64(result.PatentsVerified)/float64(result.PatentsFound)*100)
	}
	if result.OutputFile != "" {
		fmt.Fprintf(&b, "- Results file: `%s`\n", result.OutputFile)
	}
	b.WriteString("\n")

	if len(result.VerifiedPatents) == 0 {
		b.WriteString("No patents were verified for this compound.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Verified Patents\n\n")
	fmt.Fprintf(&b, "| Patent | Title | Similarity | Verified | Relevancy |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, p := range result.VerifiedPatents {
		verified := "no"
		if p.Verified {
			verified = "yes"
		}
		fmt.Fprintf(&b, "| [%s](%s) | %s | %.3f | %s | %s |\n",
			p.PatentID, patentPageURL(p.PatentID), safe(p.Title), p.SimilarityScore, verified, safe(p.Relevancy))
	}
	b.WriteString("\n")

	notes := languageNotes(result.VerifiedPatents)
	if len(notes) > 0 {
		fmt.Fprintf(&b, "## Language Notes\n\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Run Metadata\n\n")
	fmt.Fprintf(&b, "- Duration: %d ms\n", result.Metadata.DurationMS)
	fmt.Fprintf(&b, "- Started: %s\n", result.Metadata.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Completed: %s\n", result.Metadata.CompletedAt.Format(time.RFC3339))
	return b.String()
}

func languageNotes(patents []VerifiedPatent) []string {
	out := []string{}
	for _, p := range patents {
		if p.LanguageNote != "" {
			out = append(out, fmt.Sprintf("%s: %s", p.PatentID, p.LanguageNote))
		}
	}
	return out
}

func patentPageURL(patentID string) string {
	return PatentsBaseURL + "/patent/" + patentID + "/en"
}

func reportDate(result RunResult) string {
	if !result.Metadata.CompletedAt.IsZero() {
		return result.Metadata.CompletedAt.Format(time.RFC3339)
	}
	return time.Now().Format(time.RFC3339)
}

// safe keeps markdown table cells on one line.
func safe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.TrimSpace(s)
}
