// Package report prints the plain-text progress and summary lines of a
// merge run.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MissingLimit is how many missing Strong's numbers the summary lists.
const MissingLimit = 20

const rule = 60

// Summary is what the final report needs to know about a run.
type Summary struct {
	DefinitionsPath string
	Updated         int
	NotFound        int
	Missing         []string // sorted
	DryRun          bool
	Unchanged       bool // the rewrite produced the bytes already on disk
}

// Reporter writes progress lines to w. Write errors are ignored, as with
// fmt.Println.
type Reporter struct {
	w io.Writer
}

// New returns a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// LoadingDefinitions announces the definitions file.
func (r *Reporter) LoadingDefinitions(path string) {
	r.printf("Loading Strong's definitions from %s...\n", path)
}

// DefinitionsLoaded reports the number of definitions read.
func (r *Reporter) DefinitionsLoaded(n int) {
	r.printf("  Loaded %d Strong's definitions\n", n)
}

// LoadingVerses announces the verse file.
func (r *Reporter) LoadingVerses(path string) {
	r.printf("\nLoading verses from %s...\n", path)
}

// VersesLoaded reports the number of verses read.
func (r *Reporter) VersesLoaded(n int) {
	r.printf("  Loaded %d verses\n", n)
}

// Updating announces the merge.
func (r *Reporter) Updating() {
	r.printf("\nUpdating strong_def fields...\n")
}

// Saving announces the rewrite of the verse file.
func (r *Reporter) Saving(path string, dryRun bool) {
	if dryRun {
		r.printf("\nDry run: not saving %s\n", path)
		return
	}
	r.printf("\nSaving updated verses to %s...\n", path)
}

// IndexWritten reports the optional SQLite index.
func (r *Reporter) IndexWritten(path string) {
	r.printf("\nWrote Strong's index to %s\n", path)
}

// Summary prints the counts and up to MissingLimit missing numbers.
func (r *Reporter) Summary(s Summary) {
	r.printf("\n%s\n", strings.Repeat("=", rule))
	r.printf("Summary:\n")
	r.printf("  - Definitions updated: %d\n", s.Updated)
	r.printf("  - Strong's numbers not found in %s: %d\n", filepath.Base(s.DefinitionsPath), s.NotFound)
	if s.Unchanged && !s.DryRun {
		r.printf("  - Verses file content unchanged\n")
	}

	if len(s.Missing) > 0 {
		r.printf("\n  Missing Strong's numbers (%d unique):\n", len(s.Missing))
		shown := s.Missing
		if len(shown) > MissingLimit {
			shown = shown[:MissingLimit]
		}
		for _, k := range shown {
			r.printf("    - %s\n", k)
		}
		if len(s.Missing) > MissingLimit {
			r.printf("    ... and %d more\n", len(s.Missing)-MissingLimit)
		}
	}
}

// Done prints the closing line.
func (r *Reporter) Done() {
	r.printf("\nDone!\n")
}
