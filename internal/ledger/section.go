package ledger

import "strings"

// Section identifies the region of the current document a line belongs to.
type Section int

const (
	NoSection Section = iota
	FrontMatter
	Active
	Backlog
	Done
)

func (s Section) String() string {
	switch s {
	case FrontMatter:
		return "front_matter"
	case Active:
		return "active"
	case Backlog:
		return "backlog"
	case Done:
		return "done"
	default:
		return "none"
	}
}

type transition struct {
	marker string
	to     Section
}

// namedSections is the header transition table, checked in order.
func (r Rules) namedSections() []transition {
	return []transition{
		{r.ActiveSection, Active},
		{r.BacklogSection, Backlog},
		{r.DoneSection, Done},
	}
}

// enter returns the section that governs line, given the section in force
// before it, and the section in force after it.
//
// Evaluation order:
//  1. the generic header prefix resets to NoSection;
//  2. a named section marker overrides that reset;
//  3. the front-matter boundary switches on FrontMatter unless already in it.
//
// With CloseFrontMatter set, a boundary seen inside FrontMatter is still
// classified as front matter but the section after it is NoSection.
func (r Rules) enter(cur Section, line string) (governing, after Section) {
	next := cur
	if strings.HasPrefix(line, r.SectionPrefix) {
		next = NoSection
	}
	for _, t := range r.namedSections() {
		if strings.HasPrefix(line, t.marker) {
			next = t.to
			break
		}
	}
	if strings.HasPrefix(line, r.FrontMatterBoundary) {
		if next != FrontMatter {
			return FrontMatter, FrontMatter
		}
		if r.CloseFrontMatter {
			return FrontMatter, NoSection
		}
	}
	return next, next
}

// Walk calls fn for every line with the section that governs it.
func (r Rules) Walk(lines []string, fn func(sec Section, line string)) {
	section := NoSection
	for _, line := range lines {
		var governing Section
		governing, section = r.enter(section, line)
		fn(governing, line)
	}
}
