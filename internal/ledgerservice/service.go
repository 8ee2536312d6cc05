// Package ledgerservice coordinates ledger runs for the long-running modes.
// All runs go through one mutex so only one of them touches the documents
// at a time.
package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/starford/notesman/internal/apperr"
	"github.com/starford/notesman/internal/checksum"
	"github.com/starford/notesman/internal/ledger"
	"github.com/starford/notesman/internal/parser"
	"github.com/starford/notesman/internal/storage"
)

// Document kinds accepted by ReadDocument.
const (
	KindCurrent = "current"
	KindJournal = "journal"
	KindArchive = "archive"
)

// StatusDetail describes the current document without modifying it.
type StatusDetail struct {
	Paths       ledger.Paths            `json:"paths"`
	Title       string                  `json:"title"`
	Checksum    string                  `json:"checksum"`
	Frontmatter map[string]any          `json:"frontmatter,omitempty"`
	Sections    []parser.SectionSummary `json:"sections"`
	Lines       int                     `json:"lines"`
}

// Preview is the outcome a run would have.
type Preview struct {
	Report ledger.Report `json:"report"`
	Result ledger.Result `json:"result"`
}

// Document is the raw content of one ledger document.
type Document struct {
	Kind     string    `json:"kind"`
	Path     string    `json:"path"`
	Content  string    `json:"content"`
	Checksum string    `json:"checksum"`
	ReadAt   time.Time `json:"read_at"`
}

// Service serializes ledger runs and answers read-only queries.
type Service struct {
	store storage.Provider
	proc  *ledger.Processor
	rules ledger.Rules

	mu   sync.Mutex
	last string // checksum of the document as last published by a run

	hooksMu sync.Mutex
	hooks   []func(ledger.Report)
}

// NewService creates a new ledger service.
func NewService(store storage.Provider, proc *ledger.Processor, rules ledger.Rules) *Service {
	return &Service{store: store, proc: proc, rules: rules}
}

// Paths returns the documents the service maintains.
func (s *Service) Paths() ledger.Paths {
	return s.proc.Paths()
}

// OnProcessed registers fn to be called after every successful run.
func (s *Service) OnProcessed(fn func(ledger.Report)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Status parses the current document.
func (s *Service) Status(_ context.Context) (*StatusDetail, error) {
	data, err := s.read(s.Paths().Current)
	if err != nil {
		return nil, err
	}
	res := parser.Parse(data, s.rules)
	return &StatusDetail{
		Paths:       s.Paths(),
		Title:       res.Title,
		Checksum:    checksum.Sum(data),
		Frontmatter: res.Frontmatter,
		Sections:    res.Sections,
		Lines:       res.Lines,
	}, nil
}

// Preview classifies the current document without writing anything.
func (s *Service) Preview(ctx context.Context) (*Preview, error) {
	res, rep, err := s.proc.Preview(ctx)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return &Preview{Report: rep, Result: res}, nil
}

// Process runs the ledger. A non-empty ifMatch must equal the checksum of
// the current document or apperr.ErrConflict is returned.
func (s *Service) Process(ctx context.Context, ifMatch string) (ledger.Report, error) {
	s.mu.Lock()
	rep, err := s.proc.RunIfMatch(ctx, ifMatch)
	if err == nil {
		s.last = rep.Checksum
	}
	s.mu.Unlock()
	if err != nil {
		return ledger.Report{}, s.mapErr(err)
	}
	s.notify(rep)
	return rep, nil
}

// Changed reports whether the current document differs from what the last
// run published. Before any run every readable document counts as changed.
func (s *Service) Changed(_ context.Context) (bool, error) {
	data, err := s.read(s.Paths().Current)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return checksum.Sum(data) != s.last, nil
}

// ReadDocument returns the content of the current document, the journal or
// the archive.
func (s *Service) ReadDocument(_ context.Context, kind string) (*Document, error) {
	p := s.Paths()
	var name string
	switch kind {
	case KindCurrent, "":
		kind, name = KindCurrent, p.Current
	case KindJournal:
		name = p.Journal
	case KindArchive:
		name = p.Archive
	default:
		return nil, fmt.Errorf("%w: unknown document kind %q", apperr.ErrInvalidInput, kind)
	}
	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	return &Document{
		Kind:     kind,
		Path:     name,
		Content:  string(data),
		Checksum: checksum.Sum(data),
		ReadAt:   time.Now(),
	}, nil
}

func (s *Service) read(name string) ([]byte, error) {
	data, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrRead, err)
	}
	return data, nil
}

// mapErr turns a missing current document into ErrNotFound.
func (s *Service) mapErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	return err
}

func (s *Service) notify(rep ledger.Report) {
	s.hooksMu.Lock()
	hooks := append([]func(ledger.Report){}, s.hooks...)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(rep)
	}
}
