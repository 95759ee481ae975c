package review

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pablof7z/tenex-sub006/core"
)

// WorkStats is best-effort telemetry scraped from conversation text. The
// numbers come from regex scans for code fences and filename-looking tokens,
// not from a ground-truth diff; treat them as context for reviewers, never as
// a correctness signal.
type WorkStats struct {
	LinesOfCode   int      `json:"lines_of_code"`
	FilesModified []string `json:"files_modified"`
}

var (
	codeFenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n(.*?)```")
	filenameRe  = regexp.MustCompile(`\b[\w./-]+/[\w.-]+\.[a-zA-Z0-9]{1,5}\b|\b[\w-]+\.[a-zA-Z]{1,5}\b`)
)

// ScanWork extracts WorkStats from a message history.
func ScanWork(history []core.Message) WorkStats {
	var stats WorkStats
	seen := map[string]bool{}
	for _, m := range history {
		for _, fence := range codeFenceRe.FindAllStringSubmatch(m.Content, -1) {
			stats.LinesOfCode += strings.Count(fence[1], "\n")
		}
		for _, name := range filenameRe.FindAllString(m.Content, -1) {
			if seen[name] {
				continue
			}
			seen[name] = true
			stats.FilesModified = append(stats.FilesModified, name)
		}
	}
	sort.Strings(stats.FilesModified)
	return stats
}

// NewRequest builds a review request for a team's completed work, with a
// structured work summary derived from the conversation history.
func NewRequest(team core.Team, conversationID string, history []core.Message) Request {
	stats := ScanWork(history)
	var b strings.Builder
	fmt.Fprintf(&b, "Approximately %d lines of code across the conversation.\n", stats.LinesOfCode)
	if len(stats.FilesModified) > 0 {
		fmt.Fprintf(&b, "Files mentioned: %s\n", strings.Join(stats.FilesModified, ", "))
	}
	if len(history) > 0 {
		fmt.Fprintf(&b, "Final message: %s", history[len(history)-1].Content)
	}
	return Request{
		TeamID:          team.ID,
		ConversationID:  conversationID,
		TaskDescription: team.TaskDefinition.Description,
		WorkSummary:     b.String(),
		Timestamp:       time.Now().UTC(),
	}
}
