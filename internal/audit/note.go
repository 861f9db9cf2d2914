package audit

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one human-readable history line attached to an entity.
type Entry struct {
	At    time.Time `json:"at"`
	Label string    `json:"label"`
	Text  string    `json:"text,omitempty"`
}

// FormatLine renders an entry as "[YYYY-MM-DD HH:MM] <label>: <text>".
// The colon suffix is omitted when the free text is empty. Formatting is
// locale-stable: 24-hour clock, ISO-like date.
func FormatLine(e Entry) string {
	stamp := e.At.Format("2006-01-02 15:04")
	if strings.TrimSpace(e.Text) == "" {
		return fmt.Sprintf("[%s] %s", stamp, e.Label)
	}
	return fmt.Sprintf("[%s] %s: %s", stamp, e.Label, e.Text)
}

// Append returns a new sequence with e added. Prior entries are never
// mutated or truncated.
func Append(log []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(log)+1)
	out = append(out, log...)
	return append(out, e)
}

// Render joins a log into display text, one line per entry, oldest first.
func Render(log []Entry) string {
	lines := make([]string, 0, len(log))
	for _, e := range log {
		lines = append(lines, FormatLine(e))
	}
	return strings.Join(lines, "\n")
}
