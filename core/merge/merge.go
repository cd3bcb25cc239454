// Package merge joins the verse collection with the Strong's definitions map.
package merge

import (
	"context"
	"sort"

	"github.com/FocuswithJustin/strongsdef/core/errors"
	"github.com/FocuswithJustin/strongsdef/core/lexicon"
	"github.com/FocuswithJustin/strongsdef/core/verses"
	"github.com/FocuswithJustin/strongsdef/internal/logging"
)

// Result holds the aggregates of one merge pass.
type Result struct {
	// Updated counts tokens whose strong_def was rewritten.
	Updated int
	// NotFound counts tokens whose Strong's number has no definition.
	NotFound int
	// Missing is the set of Strong's numbers without a definition.
	Missing map[string]struct{}
	// Occurrences counts tokens per referenced Strong's number, found or not.
	Occurrences map[string]int
}

// MissingSorted returns the missing Strong's numbers in ascending order.
func (r *Result) MissingSorted() []string {
	keys := make([]string, 0, len(r.Missing))
	for k := range r.Missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply sets every token's strong_def to the definition of its Strong's
// number. Tokens without a Strong's number are left alone; tokens whose
// number has no definition are counted in NotFound. The collection is
// modified in place and defs is only read.
func Apply(ctx context.Context, c *verses.Collection, defs lexicon.Definitions) (*Result, error) {
	res := &Result{
		Missing:     make(map[string]struct{}),
		Occurrences: make(map[string]int),
	}

	for _, v := range c.Verses() {
		if !v.HasTokens() {
			continue
		}
		for i, tok := range v.Tokens() {
			strongs, ok := tok.Strongs()
			if !ok {
				continue
			}
			res.Occurrences[strongs]++

			def, found := defs.Lookup(strongs)
			if !found {
				res.NotFound++
				res.Missing[strongs] = struct{}{}
				logging.MissingStrongs(ctx, v.Ref, strongs)
				continue
			}
			if tok.HasStrongDef(def) {
				continue
			}
			if err := tok.SetStrongDef(def); err != nil {
				return nil, errors.Wrapf(err, "%s token %d", v.Ref, i)
			}
			res.Updated++
		}
	}
	return res, nil
}
