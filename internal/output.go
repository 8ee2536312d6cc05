package internal

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/starford/notesman/internal/ledger"
	"github.com/starford/notesman/internal/ledgerservice"
)

func printReport(w io.Writer, rep ledger.Report) {
	fmt.Fprintf(w, "%s %s\n", rep.Paths.Current, rep.Stamp)
	fmt.Fprintf(w, "  journaled %d -> %s\n", rep.Journaled, rep.Paths.Journal)
	fmt.Fprintf(w, "  archived  %d -> %s\n", rep.Archived, rep.Paths.Archive)
	fmt.Fprintf(w, "  retained  %d\n", rep.Retained)
}

func printPreview(w io.Writer, p *ledgerservice.Preview) {
	fmt.Fprintf(w, "dry run of %s %s\n", p.Report.Paths.Current, p.Report.Stamp)
	printLines(w, "journal", p.Report.Paths.Journal, p.Result.Journaled)
	printLines(w, "archive", p.Report.Paths.Archive, p.Result.Archived)
	fmt.Fprintf(w, "%d line(s) retained\n", len(p.Result.Retained))
}

func printLines(w io.Writer, label, path string, lines []string) {
	fmt.Fprintf(w, "%s (%s): %d line(s)\n", label, path, len(lines))
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}
}

func printStatus(w io.Writer, st *ledgerservice.StatusDetail) {
	title := st.Title
	if title == "" {
		title = st.Paths.Current
	}
	fmt.Fprintf(w, "%s (%d lines)\n", title, st.Lines)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tOPEN\tCOMPLETE\tTOUCHED")
	for _, s := range st.Sections {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Name, s.Open, s.Complete, s.Touched)
	}
	_ = tw.Flush()
}
