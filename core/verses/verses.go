// Package verses holds the verse collection read from verses.json.
//
// The collection keeps every verse and token as the raw JSON it was read
// from. Only tokens whose strong_def is rewritten, objects with repeated
// keys and strings holding \u escapes of non-ASCII characters are
// re-encoded, so key order and all other fields survive a load/save cycle
// unchanged.
package verses

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/FocuswithJustin/strongsdef/core/errors"
	"github.com/FocuswithJustin/strongsdef/internal/fileutil"
)

// Field names used by the merge.
const (
	TokensField    = "tokens"
	StrongsField   = "strongs"
	StrongDefField = "strong_def"
)

// Two-space indentation; Width 0 keeps every array element on its own line.
var outputOptions = &pretty.Options{Indent: "  "}

// Collection is an ordered mapping of verse reference to verse record.
type Collection struct {
	// Compression is how the source file was stored. Save writes it back the
	// same way.
	Compression fileutil.Compression
	// SourceDigest is the BLAKE3 digest of the uncompressed source bytes.
	SourceDigest string

	verses []*Verse
}

// Verse is one verse record.
type Verse struct {
	// Ref is the verse reference key, e.g. "John 3:16".
	Ref string

	key       string // raw JSON key
	raw       string // raw JSON value
	fields    []field
	collapsed bool // fields had repeated keys
	tokensAt  int  // index of the tokens field in fields, -1 if absent
	tokens    []*Token
}

type field struct {
	name  string // decoded key
	key   string // raw JSON key
	value string // raw JSON value
}

// Token is one word-level record inside a verse's tokens array.
type Token struct {
	raw   string
	dirty bool
}

// Parse builds a collection from a JSON document whose top level is an
// object. name is used in error messages. A key repeated within one object
// keeps its first position and takes its last value.
func Parse(data []byte, name string) (*Collection, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.NewParse("JSON", name, syntaxError(data))
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.NewValidation(name, "top-level value must be an object")
	}

	c := &Collection{Compression: fileutil.CompressionNone}
	fields, _ := objectFields(root)
	for _, f := range fields {
		c.verses = append(c.verses, newVerse(f))
	}
	return c, nil
}

// syntaxError asks the decoder for a positioned error message.
func syntaxError(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return fmt.Errorf("invalid JSON document")
}

// objectFields lists the members of an object in order, collapsing repeated
// keys. dup reports whether any key was repeated.
func objectFields(obj gjson.Result) (fields []field, dup bool) {
	at := make(map[string]int)
	obj.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if i, ok := at[name]; ok {
			fields[i].value = v.Raw
			dup = true
			return true
		}
		at[name] = len(fields)
		fields = append(fields, field{name: name, key: k.Raw, value: v.Raw})
		return true
	})
	return fields, dup
}

func appendObject(buf []byte, fields []field) []byte {
	buf = append(buf, '{')
	for i, f := range fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, f.key...)
		buf = append(buf, ':')
		buf = append(buf, f.value...)
	}
	return append(buf, '}')
}

func newVerse(f field) *Verse {
	v := &Verse{
		Ref:      f.name,
		key:      f.key,
		raw:      f.value,
		tokensAt: -1,
	}
	value := gjson.Parse(f.value)
	if !value.IsObject() {
		return v
	}

	v.fields, v.collapsed = objectFields(value)
	for i, fv := range v.fields {
		if fv.name != TokensField {
			continue
		}
		tokens := gjson.Parse(fv.value)
		if !tokens.IsArray() {
			break
		}
		v.tokensAt = i
		for _, t := range tokens.Array() {
			v.tokens = append(v.tokens, newToken(t))
		}
		break
	}
	return v
}

func newToken(r gjson.Result) *Token {
	if !r.IsObject() {
		return &Token{raw: r.Raw}
	}
	fields, dup := objectFields(r)
	if !dup {
		return &Token{raw: r.Raw}
	}
	return &Token{raw: string(appendObject(nil, fields)), dirty: true}
}

// Load reads and parses the verse file at path. The file may be xz or gzip
// compressed.
func Load(path string) (*Collection, error) {
	data, comp, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	c.Compression = comp
	c.SourceDigest = fileutil.Digest(data)
	return c, nil
}

// Save overwrites path with the marshaled collection and returns the
// uncompressed bytes that were written.
func (c *Collection) Save(path string) ([]byte, error) {
	data := c.Marshal()
	if err := fileutil.WriteFile(path, data, c.Compression); err != nil {
		return nil, err
	}
	return data, nil
}

// Len returns the number of verse records.
func (c *Collection) Len() int {
	return len(c.verses)
}

// Verses returns the verse records in file order.
func (c *Collection) Verses() []*Verse {
	return c.verses
}

// Marshal encodes the collection as two-space indented JSON. Non-ASCII text
// is written as UTF-8, never as \u escapes.
func (c *Collection) Marshal() []byte {
	buf := make([]byte, 0, c.size())
	buf = append(buf, '{')
	for i, v := range c.verses {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, v.key...)
		buf = append(buf, ':')
		buf = v.appendJSON(buf)
	}
	buf = append(buf, '}')

	out := pretty.PrettyOptions(unescapeNonASCII(buf), outputOptions)
	return bytes.TrimSuffix(out, []byte("\n"))
}

func (c *Collection) size() int {
	n := 2
	for _, v := range c.verses {
		n += len(v.key) + len(v.raw) + 2
	}
	return n
}

// HasTokens reports whether the record carries a tokens array.
func (v *Verse) HasTokens() bool {
	return v.tokensAt >= 0
}

// Tokens returns the token records in order.
func (v *Verse) Tokens() []*Token {
	return v.tokens
}

func (v *Verse) dirty() bool {
	for _, t := range v.tokens {
		if t.dirty {
			return true
		}
	}
	return false
}

func (v *Verse) appendJSON(buf []byte) []byte {
	if !v.collapsed && !v.dirty() {
		return append(buf, v.raw...)
	}
	if v.tokensAt >= 0 {
		v.fields[v.tokensAt].value = v.joinTokens()
	}
	return appendObject(buf, v.fields)
}

func (v *Verse) joinTokens() string {
	buf := []byte{'['}
	for i, t := range v.tokens {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, t.raw...)
	}
	return string(append(buf, ']'))
}

// Raw returns the token's current JSON encoding.
func (t *Token) Raw() string {
	return t.raw
}

func (t *Token) get(name string) gjson.Result {
	if !gjson.Parse(t.raw).IsObject() {
		return gjson.Result{}
	}
	return gjson.Get(t.raw, name)
}

// Strongs returns the token's Strong's number. ok is false when the field is
// absent or falsy: null, false, "", 0, [] or {}. A truthy non-string value is
// returned as its JSON text.
func (t *Token) Strongs() (string, bool) {
	r := t.get(StrongsField)
	if !truthy(r) {
		return "", false
	}
	if r.Type == gjson.String {
		return r.Str, true
	}
	return r.Raw, true
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	}
	return true
}

// StrongDef returns the token's strong_def value. An absent field reads as
// the empty string.
func (t *Token) StrongDef() gjson.Result {
	r := t.get(StrongDefField)
	if !r.Exists() {
		return gjson.Result{Type: gjson.String, Raw: `""`}
	}
	return r
}

// HasStrongDef reports whether the token's strong_def already holds the JSON
// value def. Values are compared by content, so "a" and "\u0061" are equal
// and so are 1 and 1.0.
func (t *Token) HasStrongDef(def json.RawMessage) bool {
	return sameValue(t.StrongDef(), gjson.ParseBytes(def))
}

func sameValue(a, b gjson.Result) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case gjson.String:
		return a.Str == b.Str
	case gjson.Number:
		return a.Num == b.Num
	case gjson.JSON:
		var av, bv any
		if json.Unmarshal([]byte(a.Raw), &av) != nil || json.Unmarshal([]byte(b.Raw), &bv) != nil {
			return false
		}
		return reflect.DeepEqual(av, bv)
	}
	return true
}

// SetStrongDef stores the JSON value def as the token's strong_def,
// replacing the field in place or appending it when the token has none.
func (t *Token) SetStrongDef(def json.RawMessage) error {
	raw, err := sjson.SetRaw(t.raw, StrongDefField, string(def))
	if err != nil {
		return errors.Wrap(err, "set strong_def")
	}
	t.raw = raw
	t.dirty = true
	return nil
}

// unescapeNonASCII rewrites every string in a JSON document that spells a
// non-ASCII character as a \u escape, so the text is written as UTF-8.
// All other bytes are copied unchanged.
func unescapeNonASCII(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] != '"' {
			out = append(out, data[i])
			i++
			continue
		}
		end := stringEnd(data, i)
		s := data[i:end]
		if hasNonASCIIEscape(s) {
			if enc := literalString(gjson.ParseBytes(s).Str); enc != nil {
				s = enc
			}
		}
		out = append(out, s...)
		i = end
	}
	return out
}

// stringEnd returns the offset just past the string literal opening at i.
func stringEnd(data []byte, i int) int {
	for j := i + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(data)
}

func hasNonASCIIEscape(s []byte) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '\\' {
			continue
		}
		if s[i+1] == 'u' && i+6 <= len(s) {
			if n, err := strconv.ParseUint(string(s[i+2:i+6]), 16, 32); err == nil && n >= 0x80 {
				return true
			}
		}
		i++
	}
	return false
}

// literalString encodes s as a JSON string with only the escapes JSON
// requires. It returns nil if s cannot be encoded.
func literalString(s string) []byte {
	enc, err := json.MarshalWithOption(s, json.DisableHTMLEscape())
	if err != nil {
		return nil
	}
	if !bytes.Contains(enc, []byte(`\u202`)) {
		return enc
	}
	// The encoder escapes U+2028 and U+2029 for JavaScript; JSON does not
	// need it.
	out := make([]byte, 0, len(enc))
	for i := 0; i < len(enc); i++ {
		if enc[i] != '\\' {
			out = append(out, enc[i])
			continue
		}
		switch {
		case bytes.HasPrefix(enc[i:], []byte(`\u2028`)):
			out = append(out, "\u2028"...)
			i += 5
		case bytes.HasPrefix(enc[i:], []byte(`\u2029`)):
			out = append(out, "\u2029"...)
			i += 5
		default:
			out = append(out, enc[i], enc[i+1])
			i++
		}
	}
	return out
}
