// Package lexicon loads the Strong's definitions map (strongs_cleaned.json).
package lexicon

import (
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/FocuswithJustin/strongsdef/core/errors"
	"github.com/FocuswithJustin/strongsdef/internal/fileutil"
)

// Definitions maps a Strong's number (e.g. "G26") to its definition. Values
// are kept as the JSON text they were read from: usually a string, but null
// or any other JSON value is carried into strong_def unchanged. The map is
// never modified after loading.
type Definitions map[string]json.RawMessage

// Lookup returns the JSON value of the definition for a Strong's number.
func (d Definitions) Lookup(strongs string) (json.RawMessage, bool) {
	def, ok := d[strongs]
	return def, ok
}

// Text returns a definition as plain text: the string itself for a JSON
// string, the JSON source for any other value. ok is false when the number
// is unknown or its definition is null.
func (d Definitions) Text(strongs string) (string, bool) {
	def, ok := d[strongs]
	if !ok {
		return "", false
	}
	r := gjson.ParseBytes(def)
	switch r.Type {
	case gjson.Null:
		return "", false
	case gjson.String:
		return r.Str, true
	}
	return r.Raw, true
}

// Len returns the number of loaded definitions.
func (d Definitions) Len() int {
	return len(d)
}

// Parse decodes a JSON object keyed by Strong's number. Duplicate keys
// resolve to the last occurrence.
func Parse(data []byte, name string) (Definitions, error) {
	var defs Definitions
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, errors.NewParse("JSON", name, err)
	}
	if defs == nil {
		return nil, errors.NewValidation(name, "top-level value must be an object")
	}
	return defs, nil
}

// Load reads and parses the definitions file at path. The file may be xz or
// gzip compressed.
func Load(path string) (Definitions, error) {
	data, _, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}
