package ledger

import (
	"fmt"
	"strings"

	"github.com/starford/notesman/internal/apperr"
	"github.com/starford/notesman/internal/storage"
)

// Merger accumulates extracted lines into a journal or archive document.
type Merger struct {
	store storage.Provider
	rules Rules
	stamp Stamp
}

// NewMerger creates a Merger that stamps headers with stamp.
func NewMerger(store storage.Provider, rules Rules, stamp Stamp) *Merger {
	return &Merger{store: store, rules: rules, stamp: stamp}
}

// Header returns the front matter written at the top of a side document.
func (m *Merger) Header(label string) []string {
	b := m.rules.HeaderBoundary
	return []string{
		b,
		fmt.Sprintf("Title = \"TODO %s, %s %s\"", label, m.stamp.Date, m.stamp.Clock),
		fmt.Sprintf("Date = %q", m.stamp.Date),
		fmt.Sprintf("Tags = [\"TODO-%s\"]", label),
		b,
	}
}

// Merge backs up target (when it exists), strips its old header and rewrites
// it as: fresh header, newLines, previous body. Newest content ends up first.
func (m *Merger) Merge(target, backup string, newLines []string, label string) error {
	exists, err := m.store.Exists(target)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrRead, err)
	}

	var old []byte
	if exists {
		if err := m.store.Copy(target, backup); err != nil {
			return fmt.Errorf("%w: backup %s: %w", apperr.ErrWrite, target, err)
		}
		old, err = m.store.Read(target)
		if err != nil {
			return fmt.Errorf("%w: %w", apperr.ErrRead, err)
		}
	}

	return writeLines(m.store, target, m.Compose(label, newLines, old))
}

// Compose builds the merged document from new lines and the previous
// contents of the target (nil when it did not exist).
func (m *Merger) Compose(label string, newLines []string, old []byte) []string {
	out := m.Header(label)
	for _, l := range newLines {
		out = append(out, m.rules.listItem(l))
	}
	return append(out, m.body(old)...)
}

// body returns the previous document's content lines with its header removed.
func (m *Merger) body(old []byte) []string {
	var out []string
	inHeader := false
	for _, line := range SplitLines(string(old)) {
		if !m.keepLine(line, &inHeader) {
			continue
		}
		out = append(out, m.rules.listItem(line))
	}
	return out
}

// keepLine reports whether line survives header stripping. It tracks header
// entry and exit by toggling inHeader on every boundary line.
func (m *Merger) keepLine(line string, inHeader *bool) bool {
	b := m.rules.HeaderBoundary
	if strings.HasPrefix(line, b) {
		*inHeader = !*inHeader
		// An opening boundary always goes; a closing one only when bare,
		// allowing for a trailing space or so.
		if *inHeader || len(line) < len(b)+2 {
			return false
		}
	}
	if *inHeader {
		for _, f := range m.rules.HeaderFields {
			if strings.HasPrefix(line, f) {
				return false
			}
		}
	}
	// Blank and near-blank rows.
	return len(line) > 2
}
