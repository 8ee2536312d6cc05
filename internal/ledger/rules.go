// Package ledger implements the task-ledger core: the section-aware line
// classifier and the backup-then-merge write protocol that keeps the current
// document, its journal and its archive consistent across runs.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Rules holds the literal markers used to recognise sections and lines.
// A Rules value is built once per run and never mutated afterwards.
type Rules struct {
	// Touch marks a task that was worked on since the last run.
	Touch string `yaml:"touch"`
	// JournalLine is the compound "ready to journal" marker. It must end
	// with Touch.
	JournalLine string `yaml:"journal_line"`
	// Complete marks a finished task. It must start with ListItem.
	Complete string `yaml:"complete"`
	ListItem string `yaml:"list_item"`

	SectionPrefix  string `yaml:"section_prefix"`
	ActiveSection  string `yaml:"active_section"`
	BacklogSection string `yaml:"backlog_section"`
	DoneSection    string `yaml:"done_section"`

	FrontMatterBoundary string `yaml:"front_matter_boundary"`
	FrontMatterDateKey  string `yaml:"front_matter_date_key"`
	// CloseFrontMatter makes a second boundary line leave the front matter.
	// When false the front matter only ends at the next section header.
	CloseFrontMatter bool `yaml:"close_front_matter"`

	// HeaderBoundary delimits the header written to journal and archive.
	HeaderBoundary string `yaml:"header_boundary"`
	// HeaderFields are the field prefixes stripped from an old header.
	HeaderFields []string `yaml:"header_fields"`
}

// DefaultRules returns the stock markers.
func DefaultRules() Rules {
	return Rules{
		Touch:               " . ",
		JournalLine:         "] . ",
		Complete:            "- [x] ",
		ListItem:            "- ",
		SectionPrefix:       "## ",
		ActiveSection:       "## ACTIVE",
		BacklogSection:      "## BACKLOG",
		DoneSection:         "## DONE",
		FrontMatterBoundary: "---",
		FrontMatterDateKey:  "date:",
		HeaderBoundary:      "+++",
		HeaderFields:        []string{"Title =", "Date =", "Tags =", "Category ="},
	}
}

// Validate checks that every marker is set and that the markers cannot be
// confused with one another.
func (r *Rules) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Touch, validation.Required),
		validation.Field(&r.JournalLine, validation.Required, validation.By(suffixOf(r.Touch, "touch"))),
		validation.Field(&r.ListItem, validation.Required),
		validation.Field(&r.Complete, validation.Required, validation.By(longerPrefixOf(r.ListItem, "list_item"))),
		validation.Field(&r.SectionPrefix, validation.Required),
		validation.Field(&r.ActiveSection, validation.Required, validation.By(longerPrefixOf(r.SectionPrefix, "section_prefix"))),
		validation.Field(&r.BacklogSection, validation.Required, validation.By(longerPrefixOf(r.SectionPrefix, "section_prefix"))),
		validation.Field(&r.DoneSection, validation.Required, validation.By(longerPrefixOf(r.SectionPrefix, "section_prefix"))),
		validation.Field(&r.FrontMatterBoundary, validation.Required),
		validation.Field(&r.FrontMatterDateKey, validation.Required),
		validation.Field(&r.HeaderBoundary, validation.Required),
		validation.Field(&r.HeaderFields, validation.Required),
	); err != nil {
		return err
	}

	if strings.HasPrefix(r.FrontMatterBoundary, r.SectionPrefix) {
		return fmt.Errorf("front_matter_boundary %q must not start with section_prefix %q",
			r.FrontMatterBoundary, r.SectionPrefix)
	}
	named := []string{r.ActiveSection, r.BacklogSection, r.DoneSection}
	for i, a := range named {
		for j, b := range named {
			if i != j && strings.HasPrefix(a, b) {
				return fmt.Errorf("section marker %q is shadowed by %q", a, b)
			}
		}
	}
	return nil
}

func suffixOf(suffix, name string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if !strings.HasSuffix(s, suffix) {
			return fmt.Errorf("must end with the %s marker %q", name, suffix)
		}
		return nil
	}
}

func longerPrefixOf(prefix, name string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if !strings.HasPrefix(s, prefix) {
			return fmt.Errorf("must start with the %s marker %q", name, prefix)
		}
		if s == prefix {
			return errors.New("must differ from the " + name + " marker")
		}
		return nil
	}
}

// listItem formats line as a list item unless it already is one.
func (r Rules) listItem(line string) string {
	if strings.HasPrefix(line, r.ListItem) {
		return line
	}
	return r.ListItem + line
}
