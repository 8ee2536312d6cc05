package ledger

import (
	"fmt"
	"strings"
)

// Result holds the three line sequences produced by one classification pass.
// Line order within each sequence follows the input document.
type Result struct {
	Retained  []string `json:"retained"`
	Journaled []string `json:"journaled"`
	Archived  []string `json:"archived"`
}

// SplitLines splits document text into logical lines. A final line
// terminator does not start an extra empty line, so writing the lines back
// one per row reproduces the input.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Classify routes every line of a document into the retained, journaled and
// archived sequences.
func Classify(lines []string, rules Rules, stamp Stamp) Result {
	res := Result{
		Retained:  make([]string, 0, len(lines)),
		Journaled: []string{},
		Archived:  []string{},
	}

	rules.Walk(lines, func(governing Section, line string) {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, rules.SectionPrefix) {
			res.Retained = append(res.Retained, line)
			return
		}

		switch governing {
		case FrontMatter:
			res.Retained = append(res.Retained, rules.frontMatterLine(line, stamp))

		case Active:
			if strings.Contains(line, rules.JournalLine) {
				res.Journaled = append(res.Journaled, rules.journalLine(line, stamp))
			}
			if strings.Contains(line, rules.Complete) {
				res.Archived = append(res.Archived, rules.archiveLine(line, stamp))
			} else {
				res.Retained = append(res.Retained, rules.untouch(line))
			}

		case Backlog, Done:
			if strings.Contains(line, rules.Complete) {
				res.Archived = append(res.Archived, rules.archiveLine(line, stamp))
			} else {
				res.Retained = append(res.Retained, line)
			}

		default:
			res.Retained = append(res.Retained, line)
		}
	})
	return res
}

// frontMatterLine rewrites the date field to the run's date stamp. A CRLF
// document keeps its line ending.
func (r Rules) frontMatterLine(line string, stamp Stamp) string {
	if !strings.HasPrefix(strings.ToLower(line), strings.ToLower(r.FrontMatterDateKey)) {
		return line
	}
	eol := ""
	if strings.HasSuffix(line, "\r") {
		eol = "\r"
	}
	return fmt.Sprintf("%s %q%s", r.FrontMatterDateKey, stamp.Date, eol)
}

// touchIndex returns the byte offset of the touch marker to act on: the one
// closing the first journal marker if present, otherwise the first touch
// marker. It returns -1 when the line carries no touch marker.
func (r Rules) touchIndex(line string) int {
	if i := strings.Index(line, r.JournalLine); i >= 0 {
		return i + len(r.JournalLine) - len(r.Touch)
	}
	return strings.Index(line, r.Touch)
}

// journalLine replaces the touch part of the journal marker with the stamp.
func (r Rules) journalLine(line string, stamp Stamp) string {
	i := r.touchIndex(line)
	return line[:i] + " " + stamp.Full + " " + line[i+len(r.Touch):]
}

// untouch replaces the touch marker with a single space.
func (r Rules) untouch(line string) string {
	i := r.touchIndex(line)
	if i < 0 {
		return line
	}
	return line[:i] + " " + line[i+len(r.Touch):]
}

// archiveLine replaces the complete marker with a stamped list-item prefix.
func (r Rules) archiveLine(line string, stamp Stamp) string {
	return strings.Replace(line, r.Complete, r.ListItem+stamp.Full+"  ", 1)
}
