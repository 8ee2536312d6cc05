package ledger

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

var testStamp = Stamp{Full: "[2024-01-15, 09:30am]", Date: "2024-01-15", Clock: "09:30AM"}

func classifyText(t *testing.T, text string) Result {
	t.Helper()
	return Classify(SplitLines(text), DefaultRules(), testStamp)
}

func TestClassify_Journaling(t *testing.T) {
	r := classifyText(t, "## ACTIVE\n- [ ] buy milk] . \n")
	want := []string{"- [ ] buy milk] [2024-01-15, 09:30am] "}
	if !reflect.DeepEqual(r.Journaled, want) {
		t.Errorf("journaled = %q, want %q", r.Journaled, want)
	}
	wantRetained := []string{"## ACTIVE", "- [ ] buy milk] "}
	if !reflect.DeepEqual(r.Retained, wantRetained) {
		t.Errorf("retained = %q, want %q", r.Retained, wantRetained)
	}
	if len(r.Archived) != 0 {
		t.Errorf("archived = %q, want none", r.Archived)
	}
}

func TestClassify_TouchAfterCheckbox(t *testing.T) {
	r := classifyText(t, "## ACTIVE\n- [ ] . call the bank\n")
	if want := []string{"- [ ] [2024-01-15, 09:30am] call the bank"}; !reflect.DeepEqual(r.Journaled, want) {
		t.Errorf("journaled = %q, want %q", r.Journaled, want)
	}
	if r.Retained[1] != "- [ ] call the bank" {
		t.Errorf("retained = %q", r.Retained[1])
	}
}

func TestClassify_Completion(t *testing.T) {
	r := classifyText(t, "## ACTIVE\n- [x] finish report\n")
	want := []string{"- [2024-01-15, 09:30am]  finish report"}
	if !reflect.DeepEqual(r.Archived, want) {
		t.Errorf("archived = %q, want %q", r.Archived, want)
	}
	for _, l := range r.Retained {
		if strings.Contains(l, "finish report") {
			t.Errorf("completed line retained: %q", l)
		}
	}
}

func TestClassify_TouchedAndCompleted(t *testing.T) {
	r := classifyText(t, "## ACTIVE\n- [x] . ship it\n")
	if len(r.Journaled) != 1 || len(r.Archived) != 1 {
		t.Fatalf("journaled=%q archived=%q", r.Journaled, r.Archived)
	}
	if r.Journaled[0] != "- [x] [2024-01-15, 09:30am] ship it" {
		t.Errorf("journaled = %q", r.Journaled[0])
	}
	// Only the complete marker is rewritten on the archived copy.
	if r.Archived[0] != "- [2024-01-15, 09:30am]  . ship it" {
		t.Errorf("archived = %q", r.Archived[0])
	}
	if len(r.Retained) != 1 {
		t.Errorf("retained = %q, want only the header", r.Retained)
	}
}

func TestClassify_BacklogPassthrough(t *testing.T) {
	r := classifyText(t, "## BACKLOG\n- some idea\n- [ ] . not journaled here\n")
	want := []string{"## BACKLOG", "- some idea", "- [ ] . not journaled here"}
	if !reflect.DeepEqual(r.Retained, want) {
		t.Errorf("retained = %q, want %q", r.Retained, want)
	}
	if len(r.Archived)+len(r.Journaled) != 0 {
		t.Errorf("unexpected output: %+v", r)
	}
}

func TestClassify_DoneArchivesCompleted(t *testing.T) {
	r := classifyText(t, "## DONE\n- [x] old thing\n- loose note\n")
	if want := []string{"- [2024-01-15, 09:30am]  old thing"}; !reflect.DeepEqual(r.Archived, want) {
		t.Errorf("archived = %q, want %q", r.Archived, want)
	}
	if want := []string{"## DONE", "- loose note"}; !reflect.DeepEqual(r.Retained, want) {
		t.Errorf("retained = %q, want %q", r.Retained, want)
	}
}

func TestClassify_FrontMatterDate(t *testing.T) {
	r := classifyText(t, "---\ntitle: todo\ndate: 2023-01-01\n---\n")
	want := []string{"---", "title: todo", `date: "2024-01-15"`, "---"}
	if !reflect.DeepEqual(r.Retained, want) {
		t.Errorf("retained = %q, want %q", r.Retained, want)
	}
}

func TestClassify_FrontMatterDateKeyCaseInsensitive(t *testing.T) {
	r := classifyText(t, "---\nDate: 2023-01-01\n---\n")
	if r.Retained[1] != `date: "2024-01-15"` {
		t.Errorf("retained[1] = %q", r.Retained[1])
	}
}

func TestClassify_FrontMatterDateKeepsCRLF(t *testing.T) {
	r := classifyText(t, "---\r\ndate: 2023-01-01\r\n---\r\n## ACTIVE\r\n")
	want := []string{"---\r", "date: \"2024-01-15\"\r", "---\r", "## ACTIVE\r"}
	if !reflect.DeepEqual(r.Retained, want) {
		t.Errorf("retained = %q, want %q", r.Retained, want)
	}
}

func TestClassify_FrontMatterStaysOpenUntilHeader(t *testing.T) {
	// The second boundary does not close the block; only a header does.
	text := "---\ndate: x\n---\ndate: y\n## ACTIVE\n- [x] done\n"
	r := classifyText(t, text)
	if r.Retained[3] != `date: "2024-01-15"` {
		t.Errorf("line after closing boundary = %q, want rewritten date", r.Retained[3])
	}
	if len(r.Archived) != 1 {
		t.Errorf("archived = %q, want the ACTIVE item", r.Archived)
	}
}

func TestClassify_CloseFrontMatterOption(t *testing.T) {
	rules := DefaultRules()
	rules.CloseFrontMatter = true
	r := Classify(SplitLines("---\ndate: x\n---\ndate: y\n"), rules, testStamp)
	want := []string{"---", `date: "2024-01-15"`, "---", "date: y"}
	if !reflect.DeepEqual(r.Retained, want) {
		t.Errorf("retained = %q, want %q", r.Retained, want)
	}
}

func TestClassify_SectionReset(t *testing.T) {
	text := "## ACTIVE\n- [ ] a] . \n## NOTES\n- [x] keep me\n- [ ] b] . \n"
	r := classifyText(t, text)
	if len(r.Journaled) != 1 {
		t.Errorf("journaled = %q, want only the ACTIVE line", r.Journaled)
	}
	if len(r.Archived) != 0 {
		t.Errorf("archived = %q, want none", r.Archived)
	}
	tail := r.Retained[len(r.Retained)-3:]
	want := []string{"## NOTES", "- [x] keep me", "- [ ] b] . "}
	if !reflect.DeepEqual(tail, want) {
		t.Errorf("retained tail = %q, want %q", tail, want)
	}
}

func TestClassify_HeadersAndBlanksRetained(t *testing.T) {
	text := "# Todo\n\n## ACTIVE\n\n   \n## BACKLOG\n"
	r := classifyText(t, text)
	if !reflect.DeepEqual(r.Retained, SplitLines(text)) {
		t.Errorf("retained = %q", r.Retained)
	}
}

func TestClassify_Empty(t *testing.T) {
	r := classifyText(t, "")
	if len(r.Retained)+len(r.Journaled)+len(r.Archived) != 0 {
		t.Errorf("expected empty result, got %+v", r)
	}
}

func TestClassify_NoLoss(t *testing.T) {
	text := strings.Join([]string{
		"---", "date: 2023-01-01", "---",
		"## ACTIVE",
		"- [ ] one] . ",
		"- [ ] two",
		"- [x] three",
		"- [x] . four",
		"",
		"## BACKLOG",
		"- five",
		"- [x] six",
		"## DONE",
		"- [x] seven",
		"## MISC",
		"eight",
	}, "\n") + "\n"

	lines := SplitLines(text)
	r := classifyText(t, text)

	content := func(ls []string) int {
		n := 0
		for _, l := range ls {
			if strings.TrimSpace(l) != "" && !strings.HasPrefix(l, "## ") {
				n++
			}
		}
		return n
	}
	if got, want := content(r.Retained)+len(r.Archived), content(lines); got != want {
		t.Errorf("retained+archived content = %d, want %d", got, want)
	}
	if len(r.Journaled) != 2 {
		t.Errorf("journaled = %q, want 2 lines", r.Journaled)
	}
	if len(r.Archived) != 4 {
		t.Errorf("archived = %q, want 4 lines", r.Archived)
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\n", []string{"a", ""}},
		{"\n", []string{""}},
	}
	for _, c := range cases {
		if got := SplitLines(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRender_RoundTrip(t *testing.T) {
	for _, in := range []string{"a\n", "a\n\nb\n", "\n"} {
		if got := string(Render(SplitLines(in))); got != in {
			t.Errorf("Render(SplitLines(%q)) = %q", in, got)
		}
	}
}

func TestNewStamp(t *testing.T) {
	s := NewStamp(time.Date(2024, 1, 15, 21, 5, 0, 0, time.Local))
	if s.Full != "[2024-01-15, 09:05pm]" {
		t.Errorf("Full = %q", s.Full)
	}
	if s.Date != "2024-01-15" {
		t.Errorf("Date = %q", s.Date)
	}
	if s.Clock != "09:05PM" {
		t.Errorf("Clock = %q", s.Clock)
	}
}

func TestSection_String(t *testing.T) {
	if Active.String() != "active" || NoSection.String() != "none" {
		t.Errorf("unexpected names: %s %s", Active, NoSection)
	}
}
