package ledger

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/notesman/internal/apperr"
)

// Side-document naming schemes.
const (
	NamingAuto   = "auto"
	NamingDotted = "dotted"
	NamingLegacy = "legacy"
)

// Paths names the documents of one ledger. Every name is relative to Dir.
type Paths struct {
	Dir     string `json:"dir"`
	Current string `json:"current"`
	Journal string `json:"journal"`
	Archive string `json:"archive"`
}

// Backup returns the hidden rolling backup name for a document in Dir.
func Backup(name string) string {
	return "." + name + ".bak"
}

// DerivePaths validates path against ext and names its journal and archive.
// exists is consulted by NamingAuto: a legacy side document is reused when
// it exists and its dotted counterpart does not.
func DerivePaths(path, ext, naming string, exists func(name string) bool) (Paths, error) {
	base := filepath.Base(path)
	if ext == "" || !strings.HasSuffix(base, ext) {
		return Paths{}, fmt.Errorf("%w: %s does not end in %s", apperr.ErrInvalidInput, path, ext)
	}
	name := strings.TrimSuffix(base, ext)
	if name == "" || name == "." {
		return Paths{}, fmt.Errorf("%w: %s has no base name", apperr.ErrInvalidInput, path)
	}
	for _, s := range []string{".journal", ".archive", "-JOURNAL", "-ARCHIVE"} {
		if strings.HasSuffix(name, s) {
			return Paths{}, fmt.Errorf("%w: %s is already a side document", apperr.ErrInvalidInput, path)
		}
	}

	dotted := Paths{Journal: name + ".journal" + ext, Archive: name + ".archive" + ext}
	legacy := Paths{Journal: name + "-JOURNAL" + ext, Archive: name + "-ARCHIVE" + ext}

	p := dotted
	switch naming {
	case NamingLegacy:
		p = legacy
	case NamingDotted:
	case NamingAuto, "":
		if exists != nil {
			if exists(legacy.Journal) && !exists(dotted.Journal) {
				p.Journal = legacy.Journal
			}
			if exists(legacy.Archive) && !exists(dotted.Archive) {
				p.Archive = legacy.Archive
			}
		}
	default:
		return Paths{}, fmt.Errorf("%w: unknown naming scheme %q", apperr.ErrInvalidInput, naming)
	}

	p.Dir = filepath.Dir(path)
	p.Current = base
	return p, nil
}
