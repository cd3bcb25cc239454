package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReporter_FullRun(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.LoadingDefinitions("/data/strongs_cleaned.json")
	r.DefinitionsLoaded(2)
	r.LoadingVerses("/data/verses.json")
	r.VersesLoaded(1)
	r.Updating()
	r.Saving("/data/verses.json", false)
	r.Summary(Summary{
		DefinitionsPath: "/data/strongs_cleaned.json",
		Updated:         1,
		NotFound:        1,
		Missing:         []string{"G9999"},
	})
	r.Done()

	want := `Loading Strong's definitions from /data/strongs_cleaned.json...
  Loaded 2 Strong's definitions

Loading verses from /data/verses.json...
  Loaded 1 verses

Updating strong_def fields...

Saving updated verses to /data/verses.json...

============================================================
Summary:
  - Definitions updated: 1
  - Strong's numbers not found in strongs_cleaned.json: 1

  Missing Strong's numbers (1 unique):
    - G9999

Done!
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestSummary_NoMissing(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Summary(Summary{DefinitionsPath: "strongs_cleaned.json", Updated: 3})

	out := buf.String()
	if strings.Contains(out, "Missing") {
		t.Errorf("no missing section expected:\n%s", out)
	}
	if !strings.Contains(out, "  - Definitions updated: 3\n") {
		t.Errorf("updated count missing:\n%s", out)
	}
}

func TestSummary_TruncatesMissing(t *testing.T) {
	var missing []string
	for i := 0; i < 25; i++ {
		missing = append(missing, fmt.Sprintf("G%04d", i))
	}

	var buf bytes.Buffer
	New(&buf).Summary(Summary{DefinitionsPath: "strongs_cleaned.json", NotFound: 40, Missing: missing})
	out := buf.String()

	if !strings.Contains(out, "Missing Strong's numbers (25 unique):") {
		t.Errorf("unique count missing:\n%s", out)
	}
	if !strings.Contains(out, "    - G0019\n") {
		t.Error("20th key should be listed")
	}
	if strings.Contains(out, "G0020") {
		t.Error("21st key should not be listed")
	}
	if !strings.Contains(out, "    ... and 5 more\n") {
		t.Errorf("overflow note missing:\n%s", out)
	}
}

func TestSummary_ExactlyLimit(t *testing.T) {
	var missing []string
	for i := 0; i < MissingLimit; i++ {
		missing = append(missing, fmt.Sprintf("H%d", i))
	}

	var buf bytes.Buffer
	New(&buf).Summary(Summary{Missing: missing})
	if strings.Contains(buf.String(), "more") {
		t.Error("no overflow note expected at the limit")
	}
}

func TestSaving_DryRun(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Saving("verses.json", true)
	r.Summary(Summary{DryRun: true, Unchanged: true})

	out := buf.String()
	if !strings.Contains(out, "Dry run: not saving verses.json") {
		t.Errorf("dry run line missing:\n%s", out)
	}
	if strings.Contains(out, "unchanged") {
		t.Error("unchanged note should be suppressed in a dry run")
	}
}

func TestSummary_Unchanged(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Summary(Summary{Unchanged: true})
	if !strings.Contains(buf.String(), "  - Verses file content unchanged\n") {
		t.Errorf("unchanged note missing:\n%s", buf.String())
	}
}
