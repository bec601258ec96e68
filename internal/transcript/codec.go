// Package transcript implements the .pntn v1.1 text format: a line-oriented,
// self-describing export of a document (header, raw content, activity log).
//
// Serialize and Parse are pure functions over document snapshots. The
// round-trip is exact for title, authors, created and content. The log
// section is intentionally lossy: a live document with no raw log is
// exported as one summarized line per author.
//
// Content may contain bare "---" lines; the parser takes the last "---"
// followed by the log marker (or end of input) as the closing delimiter.
// The one ambiguity left is a final content line that is itself "---"
// directly above the log marker, which parses as the delimiter.
package transcript

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/coffeetron832/cautious-couscous/internal/document"
)

const (
	headerMarker = "#PNTN-DOC"
	headerLine   = "#PNTN-DOC v1.1"
	delimiter    = "---"

	// emitted when a document is exported before anyone did anything
	noActivityLine = "(sin actividad registrada)"
)

// ErrBadFormat marks input that is not a pntn transcript. Import surfaces it
// as a client error; nothing is stored.
var ErrBadFormat = errors.New("invalid pntn transcript")

// Serialize renders a document snapshot as .pntn text.
func Serialize(d document.Snapshot) string {
	var b strings.Builder

	b.WriteString(headerLine + "\n")
	b.WriteString("title: " + d.Title + "\n")
	b.WriteString("authors: " + strings.Join(d.Authors, ", ") + "\n")
	b.WriteString("created: " + d.CreatedAt.UTC().Format(time.RFC3339) + "\n")
	if d.ExpiresAt != nil {
		b.WriteString("expires_at: " + d.ExpiresAt.UTC().Format(time.RFC3339) + "\n")
	}
	if flags := settingsFlags(d.Settings); len(flags) > 0 {
		b.WriteString("settings: " + strings.Join(flags, ",") + "\n")
	}

	b.WriteString(delimiter + "\n")
	for _, line := range strings.Split(d.Content, "\n") {
		b.WriteString(line + "\n")
	}
	b.WriteString(delimiter + "\n")

	b.WriteString("log:\n")
	for _, line := range logLines(d) {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func settingsFlags(s document.Settings) []string {
	var flags []string
	if s.ReadOnly {
		flags = append(flags, "read_only")
	}
	if s.Encrypted {
		flags = append(flags, "encrypted")
	}
	return flags
}

// logLines prefers the raw event log; documents without one (e.g. freshly
// imported ones whose log was summarized away) get one line per author built
// from the activity ledger, most recent activity first.
func logLines(d document.Snapshot) []string {
	if len(d.Events) > 0 {
		return lo.Map(d.Events, func(e document.LogEntry, _ int) string {
			if e.Timestamp == "" {
				return e.Text
			}
			return fmt.Sprintf("[%s] %s", e.Timestamp, e.Text)
		})
	}

	if len(d.Activity) == 0 {
		return []string{noActivityLine}
	}

	aliases := lo.Keys(d.Activity)
	sort.Slice(aliases, func(i, j int) bool {
		ai, aj := d.Activity[aliases[i]], d.Activity[aliases[j]]
		if !ai.LastActivityAt.Equal(aj.LastActivityAt) {
			return ai.LastActivityAt.After(aj.LastActivityAt)
		}
		return aliases[i] < aliases[j]
	})

	lines := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		a := d.Activity[alias]
		lines = append(lines, fmt.Sprintf(
			"[%s] %s realizó: %d edición(es), %d entrada(s), %d desconexión(es)",
			a.LastActivityAt.UTC().Format(time.RFC3339),
			alias, a.Edits, a.Joins, a.Disconnects,
		))
	}
	return lines
}

// Parse decodes .pntn text into a detached document snapshot (no id; import
// assigns a fresh one). It fails only when the header marker is missing;
// everything else degrades to defaults.
func Parse(text string) (document.Snapshot, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], headerMarker) {
		return document.Snapshot{}, fmt.Errorf("%w: first line must start with %s", ErrBadFormat, headerMarker)
	}

	d := document.Snapshot{
		Title:        document.DefaultTitle,
		Participants: map[string]string{},
		Activity:     map[string]document.Activity{},
	}

	i := 1
	var singleAuthor string
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == delimiter {
			i++
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			if value != "" {
				d.Title = value
			}
		case "authors":
			d.Authors = splitAuthors(value)
		case "author":
			singleAuthor = value
		case "created":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				d.CreatedAt = ts
			}
		case "expires_at":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				d.ExpiresAt = &ts
			}
		case "settings":
			for _, flag := range strings.Split(value, ",") {
				switch strings.TrimSpace(flag) {
				case "read_only":
					d.Settings.ReadOnly = true
				case "encrypted":
					d.Settings.Encrypted = true
				}
			}
		}
		// unknown keys are ignored for forward compatibility
	}

	if len(d.Authors) == 0 && singleAuthor != "" {
		d.Authors = []string{singleAuthor}
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	closing := closingDelimiter(lines, i)
	end := closing
	if end == -1 {
		end = len(lines)
		if end > i && lines[end-1] == "" {
			end--
		}
	}
	d.Content = strings.Join(lines[i:end], "\n")
	if closing == -1 {
		i = len(lines)
	} else {
		i = closing + 1
	}

	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "log:") {
			continue
		}
		d.Events = append(d.Events, parseLogLine(line))
	}

	return d, nil
}

// closingDelimiter finds the "---" line that ends the content section: the
// last one that is followed (blank lines aside) by the log marker or EOF.
// Content may legitimately contain bare "---" lines, so the first match
// cannot be trusted. Returns -1 when no delimiter qualifies.
func closingDelimiter(lines []string, from int) int {
	for j := len(lines) - 1; j >= from; j-- {
		if strings.TrimSpace(lines[j]) != delimiter {
			continue
		}
		k := j + 1
		for k < len(lines) && strings.TrimSpace(lines[k]) == "" {
			k++
		}
		if k >= len(lines) || strings.EqualFold(strings.TrimSpace(lines[k]), "log:") {
			return j
		}
	}
	return -1
}

func splitAuthors(value string) []string {
	return lo.FilterMap(strings.Split(value, ","), func(a string, _ int) (string, bool) {
		a = strings.TrimSpace(a)
		return a, a != ""
	})
}

// parseLogLine reads "[timestamp] text"; lines without the bracket prefix
// are kept verbatim with no timestamp.
func parseLogLine(line string) document.LogEntry {
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "]"); end > 0 {
			return document.LogEntry{
				Timestamp: line[1:end],
				Text:      strings.TrimSpace(line[end+1:]),
			}
		}
	}
	return document.LogEntry{Text: line}
}
