package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/notesman/internal/apperr"
	"github.com/starford/notesman/internal/ledger"
	"github.com/starford/notesman/internal/testutil"
)

func testOptions(out *bytes.Buffer) []Option {
	return []Option{
		WithConfig(NewDefaultConfig()),
		WithLogger(testutil.Logger()),
		WithClock(func() time.Time { return testutil.FixedTime }),
		WithOutput(out),
	}
}

func writeLedger(t *testing.T, name, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestProcess_RejectsExtensionWithoutSideEffects(t *testing.T) {
	dir, path := writeLedger(t, "todo.txt", testutil.SampleLedger)
	var out bytes.Buffer

	err := Process(context.Background(), path, false, testOptions(&out)...)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the original file, found %d entries", len(entries))
	}
	data, _ := os.ReadFile(path)
	if string(data) != testutil.SampleLedger {
		t.Error("document was modified")
	}
}

func TestProcess_WritesAllDocuments(t *testing.T) {
	dir, path := writeLedger(t, "todo.md", testutil.SampleLedger)
	var out bytes.Buffer

	if err := Process(context.Background(), path, false, testOptions(&out)...); err != nil {
		t.Fatalf("Process: %v", err)
	}

	journal, err := os.ReadFile(filepath.Join(dir, "todo.journal.md"))
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if !strings.Contains(string(journal), "write tests] [2024-01-15, 09:30am] ") {
		t.Errorf("journal missing stamped line:\n%s", journal)
	}

	archive, err := os.ReadFile(filepath.Join(dir, "todo.archive.md"))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	for _, want := range []string{"finish report", "dropped idea"} {
		if !strings.Contains(string(archive), want) {
			t.Errorf("archive missing %q", want)
		}
	}

	current, _ := os.ReadFile(path)
	if strings.Contains(string(current), "finish report") {
		t.Error("completed line still in current document")
	}
	if _, err := os.Stat(filepath.Join(dir, ledger.Backup("todo.md"))); err != nil {
		t.Errorf("backup of current document missing: %v", err)
	}

	if !strings.Contains(out.String(), "journaled 1") || !strings.Contains(out.String(), "archived  2") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}

func TestProcess_DryRunWritesNothing(t *testing.T) {
	dir, path := writeLedger(t, "todo.md", testutil.SampleLedger)
	var out bytes.Buffer

	if err := Process(context.Background(), path, true, testOptions(&out)...); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dry run created files: %d entries", len(entries))
	}
	if !strings.Contains(out.String(), "- [2024-01-15, 09:30am]  finish report") {
		t.Errorf("dry run output missing archived line:\n%s", out.String())
	}
}

func TestProcess_MissingDocument(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "absent.md")

	err := Process(context.Background(), path, false, testOptions(&out)...)
	if !errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrRead) {
		t.Fatalf("expected a read error, got %v", err)
	}
}

func TestProcess_RequiresConfig(t *testing.T) {
	if err := Process(context.Background(), "todo.md", false); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestStatus_PrintsSections(t *testing.T) {
	_, path := writeLedger(t, "todo.md", testutil.SampleLedger)
	var out bytes.Buffer

	if err := Status(context.Background(), path, testOptions(&out)...); err != nil {
		t.Fatalf("Status: %v", err)
	}
	s := out.String()
	for _, want := range []string{"todo", "SECTION", "active", "backlog", "done"} {
		if !strings.Contains(s, want) {
			t.Errorf("status output missing %q:\n%s", want, s)
		}
	}
}

func TestOnDocumentChange_SkipsOwnWrites(t *testing.T) {
	_, _, svc := testutil.TestLedger(t, testutil.SampleLedger)
	app := &application{config: NewDefaultConfig(), logger: testutil.Logger()}

	runs := 0
	svc.OnProcessed(func(ledger.Report) { runs++ })

	cb := app.onDocumentChange(svc, nil)
	cb(context.Background(), "todo.md")
	if runs != 1 {
		t.Fatalf("runs after external edit = %d, want 1", runs)
	}

	cb(context.Background(), "todo.md")
	if runs != 1 {
		t.Errorf("runs after own write = %d, want 1", runs)
	}
}

func TestOnDocumentChange_ReportOnly(t *testing.T) {
	_, _, svc := testutil.TestLedger(t, testutil.SampleLedger)
	cfg := NewDefaultConfig()
	cfg.Watch.AutoProcess = false
	app := &application{config: cfg, logger: testutil.Logger()}

	runs := 0
	svc.OnProcessed(func(ledger.Report) { runs++ })

	app.onDocumentChange(svc, nil)(context.Background(), "todo.md")
	if runs != 0 {
		t.Errorf("runs = %d, want 0 with auto_process off", runs)
	}
}
