package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/notesman/internal/apperr"
	"github.com/starford/notesman/internal/checksum"
	"github.com/starford/notesman/internal/storage"
)

// Side-document labels used in generated headers.
const (
	LabelJournal = "journal"
	LabelArchive = "archive"
)

// Report summarises one run.
type Report struct {
	Paths     Paths  `json:"paths"`
	Stamp     string `json:"stamp"`
	Retained  int    `json:"retained"`
	Journaled int    `json:"journaled"`
	Archived  int    `json:"archived"`
	// Checksum is the digest of the current document after the run.
	Checksum string `json:"checksum"`
	DryRun   bool   `json:"dry_run"`
}

// Processor runs the classify-merge-publish cycle for one ledger.
type Processor struct {
	store  storage.Provider
	paths  Paths
	rules  Rules
	logger *slog.Logger
	now    func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger used to report runs.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// WithClock overrides the time source used for stamps.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a Processor for the documents named by paths, all of
// which live under the root of store.
func NewProcessor(store storage.Provider, paths Paths, rules Rules, opts ...ProcessorOption) *Processor {
	p := &Processor{
		store:  store,
		paths:  paths,
		rules:  rules,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Paths returns the documents this processor maintains.
func (p *Processor) Paths() Paths { return p.paths }

// Preview classifies the current document without writing anything.
func (p *Processor) Preview(ctx context.Context) (Result, Report, error) {
	data, err := p.readCurrent()
	if err != nil {
		return Result{}, Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, Report{}, err
	}
	stamp := NewStamp(p.now())
	res := Classify(SplitLines(string(data)), p.rules, stamp)
	rep := p.report(res, stamp)
	rep.DryRun = true
	return res, rep, nil
}

// Run classifies the current document, merges the journal and archive, then
// backs up and republishes the current document. Every step must succeed
// before the next starts; a failure leaves earlier writes in place.
func (p *Processor) Run(ctx context.Context) (Report, error) {
	data, err := p.readCurrent()
	if err != nil {
		return Report{}, err
	}
	return p.apply(ctx, data)
}

// RunIfMatch is Run guarded by the checksum of the current document.
func (p *Processor) RunIfMatch(ctx context.Context, want string) (Report, error) {
	data, err := p.readCurrent()
	if err != nil {
		return Report{}, err
	}
	if want != "" && want != checksum.Sum(data) {
		return Report{}, apperr.ErrConflict
	}
	return p.apply(ctx, data)
}

func (p *Processor) apply(ctx context.Context, data []byte) (Report, error) {
	stamp := NewStamp(p.now())
	res := Classify(SplitLines(string(data)), p.rules, stamp)

	merger := NewMerger(p.store, p.rules, stamp)
	steps := []struct {
		name string
		fn   func() error
	}{
		{p.paths.Journal, func() error {
			return merger.Merge(p.paths.Journal, Backup(p.paths.Journal), res.Journaled, LabelJournal)
		}},
		{p.paths.Archive, func() error {
			return merger.Merge(p.paths.Archive, Backup(p.paths.Archive), res.Archived, LabelArchive)
		}},
		{p.paths.Current, func() error {
			pub := NewPublisher(p.store)
			if err := pub.Backup(p.paths.Current, Backup(p.paths.Current)); err != nil {
				return err
			}
			return pub.Publish(p.paths.Current, res.Retained)
		}},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		if err := s.fn(); err != nil {
			p.logger.Error("ledger write failed",
				slog.String("document", s.name),
				slog.String("error", err.Error()))
			return Report{}, err
		}
	}

	rep := p.report(res, stamp)
	p.logger.Info("ledger processed",
		slog.String("current", p.paths.Current),
		slog.Int("retained", rep.Retained),
		slog.Int("journaled", rep.Journaled),
		slog.Int("archived", rep.Archived))
	return rep, nil
}

func (p *Processor) readCurrent() ([]byte, error) {
	data, err := p.store.Read(p.paths.Current)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrRead, err)
	}
	return data, nil
}

func (p *Processor) report(res Result, stamp Stamp) Report {
	return Report{
		Paths:     p.paths,
		Stamp:     stamp.Full,
		Retained:  len(res.Retained),
		Journaled: len(res.Journaled),
		Archived:  len(res.Archived),
		Checksum:  checksum.Lines(res.Retained),
	}
}
