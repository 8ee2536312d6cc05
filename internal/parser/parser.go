// Package parser extracts front matter, title and per-section task counts
// from a ledger document.
package parser

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/notesman/internal/ledger"
)

// SectionSummary counts the list items found in one task section.
type SectionSummary struct {
	Name     string `json:"name"`
	Open     int    `json:"open"`
	Complete int    `json:"complete"`
	Touched  int    `json:"touched"`
}

// Result holds the output of parsing a ledger document.
type Result struct {
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Sections    []SectionSummary       `json:"sections"`
	Lines       int                    `json:"lines"`
}

// Parse reads front matter and section counts from raw document bytes.
func Parse(data []byte, rules ledger.Rules) *Result {
	fm, body := splitFrontmatter(data, rules.FrontMatterBoundary)
	lines := ledger.SplitLines(string(data))
	return &Result{
		Frontmatter: fm,
		Title:       deriveTitle(fm, body),
		Sections:    summarize(lines, rules),
		Lines:       len(lines),
	}
}

// splitFrontmatter separates YAML front matter (between leading delimiters)
// from the body. If no parsable front matter is found the entire content is
// body.
func splitFrontmatter(data []byte, delim string) (map[string]interface{}, string) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if delim == "" || !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	block := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(block, &fm); err != nil {
		// Not YAML (e.g. TOML between +++ lines); keep the body only.
		return nil, body
	}
	return fm, body
}

// deriveTitle returns the front matter "title" if present, otherwise the
// first H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"].(string); ok && t != "" {
			return t
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// summarize counts list items per task section, in document order. A
// section header seen twice accumulates into one entry.
func summarize(lines []string, rules ledger.Rules) []SectionSummary {
	out := []SectionSummary{}
	index := map[ledger.Section]int{}

	rules.Walk(lines, func(sec ledger.Section, line string) {
		switch sec {
		case ledger.Active, ledger.Backlog, ledger.Done:
		default:
			return
		}
		i, ok := index[sec]
		if !ok {
			i = len(out)
			index[sec] = i
			out = append(out, SectionSummary{Name: sec.String()})
		}
		if !strings.HasPrefix(line, rules.ListItem) {
			return
		}
		s := &out[i]
		if strings.Contains(line, rules.JournalLine) {
			s.Touched++
		}
		if strings.Contains(line, rules.Complete) {
			s.Complete++
		} else {
			s.Open++
		}
	})
	return out
}
