// Package testutil provides shared test helpers for setting up ledgers.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/notesman/internal/ledger"
	"github.com/starford/notesman/internal/ledgerservice"
	"github.com/starford/notesman/internal/storage"
)

// SampleLedger is a small current document exercising every section.
const SampleLedger = `---
title: todo
date: 2023-01-01
---

## ACTIVE
- [ ] write tests] . 
- [ ] plan week
- [x] finish report

## BACKLOG
- some idea
- [x] dropped idea

## DONE
`

// FixedTime is the clock used by TestLedger.
var FixedTime = time.Date(2024, 1, 15, 9, 30, 0, 0, time.Local)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestLedger creates a temporary ledger directory holding todo.md with
// content and returns the directory, its storage and a service over it.
func TestLedger(t *testing.T, content string) (string, *storage.FS, *ledgerservice.Service) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write("todo.md", []byte(content)); err != nil {
		t.Fatal(err)
	}
	paths, err := ledger.DerivePaths("todo.md", ".md", ledger.NamingAuto, nil)
	if err != nil {
		t.Fatal(err)
	}
	rules := ledger.DefaultRules()
	proc := ledger.NewProcessor(store, paths, rules,
		ledger.WithLogger(Logger()),
		ledger.WithClock(func() time.Time { return FixedTime }))
	return dir, store, ledgerservice.NewService(store, proc, rules)
}
