package ledger

import (
	"fmt"
	"strings"

	"github.com/starford/notesman/internal/apperr"
	"github.com/starford/notesman/internal/storage"
)

// Render joins lines into document bytes, one terminated row per line.
func Render(lines []string) []byte {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// writeLines is the safe-rewrite primitive shared by Publisher and Merger.
func writeLines(store storage.Provider, path string, lines []string) error {
	if err := store.Write(path, Render(lines)); err != nil {
		return fmt.Errorf("%w: overwrite %s: %w", apperr.ErrWrite, path, err)
	}
	return nil
}

// Publisher rewrites the current document.
type Publisher struct {
	store storage.Provider
}

// NewPublisher creates a Publisher writing through store.
func NewPublisher(store storage.Provider) *Publisher {
	return &Publisher{store: store}
}

// Backup copies path over backup. It must succeed before Publish is called.
func (p *Publisher) Backup(path, backup string) error {
	if err := p.store.Copy(path, backup); err != nil {
		return fmt.Errorf("%w: backup %s: %w", apperr.ErrWrite, path, err)
	}
	return nil
}

// Publish overwrites path with lines. It does not back up.
func (p *Publisher) Publish(path string, lines []string) error {
	return writeLines(p.store, path, lines)
}
