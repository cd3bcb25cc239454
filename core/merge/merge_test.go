package merge

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"

	"github.com/FocuswithJustin/strongsdef/core/lexicon"
	"github.com/FocuswithJustin/strongsdef/core/verses"
)

var defs = lexicon.Definitions{"G26": json.RawMessage(`"love"`), "G5547": json.RawMessage(`"Christ"`)}

func parse(t *testing.T, in string) *verses.Collection {
	t.Helper()
	c, err := verses.Parse([]byte(in), "verses.json")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return c
}

func apply(t *testing.T, c *verses.Collection, d lexicon.Definitions) *Result {
	t.Helper()
	res, err := Apply(context.Background(), c, d)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return res
}

func TestApply_John316(t *testing.T) {
	c := parse(t, `{"John 3:16": {"tokens": [{"strongs": "G26", "strong_def": ""}, {"strongs": "G9999"}]}}`)

	res := apply(t, c, defs)

	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}
	if res.NotFound != 1 {
		t.Errorf("NotFound = %d, want 1", res.NotFound)
	}
	if diff := cmp.Diff([]string{"G9999"}, res.MissingSorted()); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}

	toks := c.Verses()[0].Tokens()
	if got := toks[0].StrongDef().String(); got != "love" {
		t.Errorf("token 1 strong_def = %q, want love", got)
	}
	if got := toks[1].Raw(); got != `{"strongs": "G9999"}` {
		t.Errorf("token 2 changed: %s", got)
	}
}

func TestApply_NoOp(t *testing.T) {
	c := parse(t, `{"John 3:16": {"tokens": [{"strongs": "G26", "strong_def": "love"}]}}`)

	res := apply(t, c, defs)

	if res.Updated != 0 {
		t.Errorf("Updated = %d, want 0", res.Updated)
	}
	if res.NotFound != 0 {
		t.Errorf("NotFound = %d, want 0", res.NotFound)
	}
}

func TestApply_FalsyStrongs(t *testing.T) {
	c := parse(t, `{"Gen 1:1": {"tokens": [
		{"word": "a"},
		{"strongs": "", "strong_def": "keep"},
		{"strongs": null},
		{"strongs": 0, "strong_def": "zero"},
		{"strongs": false}
	]}}`)
	before := rawTokens(c)

	res := apply(t, c, defs)

	if res.Updated != 0 || res.NotFound != 0 || len(res.Missing) != 0 {
		t.Errorf("falsy strongs should not count: %+v", res)
	}
	if diff := cmp.Diff(before, rawTokens(c)); diff != "" {
		t.Errorf("falsy tokens changed (-before +after):\n%s", diff)
	}
}

func TestApply_MissingDeduplicated(t *testing.T) {
	c := parse(t, `{
		"Matt 1:1": {"tokens": [{"strongs": "G9999"}, {"strongs": "G26"}, {"strongs": "G9999"}]},
		"Matt 1:2": {"tokens": [{"strongs": "H0001"}, {"strongs": "G9999", "strong_def": "old"}]}
	}`)

	res := apply(t, c, defs)

	if res.NotFound != 4 {
		t.Errorf("NotFound = %d, want 4", res.NotFound)
	}
	if diff := cmp.Diff([]string{"G9999", "H0001"}, res.MissingSorted()); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	if res.Occurrences["G9999"] != 3 {
		t.Errorf("Occurrences[G9999] = %d, want 3", res.Occurrences["G9999"])
	}
	if got := c.Verses()[1].Tokens()[1].StrongDef().String(); got != "old" {
		t.Errorf("missing token strong_def = %q, want old", got)
	}
}

func TestApply_SkipsRecordsWithoutTokens(t *testing.T) {
	c := parse(t, `{"Ps 23:1": {"text": "The LORD is my shepherd"}, "Ps 23:2": ["x"], "Ps 23:3": {"tokens": {"strongs": "G26"}}}`)

	res := apply(t, c, defs)

	if res.Updated != 0 || res.NotFound != 0 {
		t.Errorf("records without a tokens array should be skipped: %+v", res)
	}
}

func TestApply_KnownStrongsMatchDefinition(t *testing.T) {
	c := parse(t, `{
		"Rom 5:8": {"tokens": [{"strongs": "G26", "strong_def": "charity"}, {"strongs": "G5547"}, {"strongs": "G26", "strong_def": null}]}
	}`)

	res := apply(t, c, defs)

	if res.Updated != 3 {
		t.Errorf("Updated = %d, want 3", res.Updated)
	}
	for i, tok := range c.Verses()[0].Tokens() {
		strongs, _ := tok.Strongs()
		if !tok.HasStrongDef(defs[strongs]) {
			t.Errorf("token %d strong_def = %s, want %s", i, tok.StrongDef().Raw, defs[strongs])
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	c := parse(t, `{"John 1:1": {"tokens": [{"strongs": "G26"}, {"strongs": "G5547", "strong_def": "anointed"}, {"strongs": "G1"}]}}`)

	first := apply(t, c, defs)
	if first.Updated != 2 {
		t.Fatalf("first pass Updated = %d, want 2", first.Updated)
	}
	out := c.Marshal()

	second := apply(t, c, defs)
	if second.Updated != 0 {
		t.Errorf("second pass Updated = %d, want 0", second.Updated)
	}
	if second.NotFound != first.NotFound {
		t.Errorf("second pass NotFound = %d, want %d", second.NotFound, first.NotFound)
	}
	if string(c.Marshal()) != string(out) {
		t.Error("second pass changed the document")
	}
}

func TestApply_DefinitionsUntouched(t *testing.T) {
	d := lexicon.Definitions{"G26": json.RawMessage(`"love"`)}
	c := parse(t, `{"1 John 4:8": {"tokens": [{"strongs": "G26"}, {"strongs": "G2316"}]}}`)

	apply(t, c, d)

	if diff := cmp.Diff(lexicon.Definitions{"G26": json.RawMessage(`"love"`)}, d); diff != "" {
		t.Errorf("definitions mutated (-want +got):\n%s", diff)
	}
}

func TestApply_PreservesOtherTokenFields(t *testing.T) {
	c := parse(t, `{"Gen 1:1": {"tokens": [{"word": "בְּרֵאשִׁית", "strongs": "H7225", "morph": "Ncfsa"}]}}`)

	apply(t, c, lexicon.Definitions{"H7225": json.RawMessage(`"beginning"`)})

	tok := gjson.Parse(c.Verses()[0].Tokens()[0].Raw())
	if tok.Get("word").String() != "בְּרֵאשִׁית" || tok.Get("morph").String() != "Ncfsa" {
		t.Errorf("other fields changed: %s", tok.Raw)
	}
	if tok.Get("strong_def").String() != "beginning" {
		t.Errorf("strong_def = %q, want beginning", tok.Get("strong_def").String())
	}
}

func TestApply_NullDefinition(t *testing.T) {
	c := parse(t, `{"Acts 1:1": {"tokens": [{"strongs": "G1"}, {"strongs": "G1", "strong_def": null}, {"strongs": "G1", "strong_def": ""}]}}`)

	res := apply(t, c, lexicon.Definitions{"G1": json.RawMessage(`null`)})

	if res.Updated != 2 {
		t.Errorf("Updated = %d, want 2", res.Updated)
	}
	want := []string{
		`{"strongs": "G1","strong_def":null}`,
		`{"strongs": "G1", "strong_def": null}`,
		`{"strongs": "G1", "strong_def": null}`,
	}
	if diff := cmp.Diff(want, rawTokens(c)); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_NonStringStrongs(t *testing.T) {
	c := parse(t, `{"Acts 1:2": {"tokens": [{"strongs": 123}, {"strongs": ["G26"]}]}}`)

	res := apply(t, c, lexicon.Definitions{"123": json.RawMessage(`"one two three"`)})

	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}
	if got := c.Verses()[0].Tokens()[0].StrongDef().String(); got != "one two three" {
		t.Errorf("strong_def = %q, want the definition keyed by the number's JSON text", got)
	}
	if diff := cmp.Diff([]string{`["G26"]`}, res.MissingSorted()); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingSorted_Empty(t *testing.T) {
	res := &Result{Missing: map[string]struct{}{}}
	if got := res.MissingSorted(); len(got) != 0 {
		t.Errorf("MissingSorted() = %v, want empty", got)
	}
}

func rawTokens(c *verses.Collection) []string {
	var out []string
	for _, v := range c.Verses() {
		for _, tok := range v.Tokens() {
			out = append(out, tok.Raw())
		}
	}
	return out
}
