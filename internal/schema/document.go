package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidJSON is returned by operations that refuse to run while the
// document text does not parse.
var ErrInvalidJSON = errors.New("document is not valid json")

// Document holds the live schema text and the state derived from it. Every
// call to SetText reparses the full text; on success the added-fields set and
// the referenced-API set are recomputed, on failure they are left at their
// last good value and the validity flag is cleared.
type Document struct {
	text  string
	valid bool
	added map[string]struct{}
	apis  map[string]struct{}
}

func NewDocument() *Document {
	d := &Document{}
	d.SetText("{}")
	return d
}

func (d *Document) Text() string { return d.text }

func (d *Document) Valid() bool { return d.valid }

// SetText replaces the document text and resynchronizes derived state.
func (d *Document) SetText(text string) {
	d.text = text

	var v any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil || dec.More() {
		d.valid = false
		return
	}

	added := map[string]struct{}{}
	apis := map[string]struct{}{}
	collect(v, "", added, apis)
	d.valid = true
	d.added = added
	d.apis = apis
}

// collect walks the parsed document gathering every key path (container and
// leaf) into added, and the api prefix of every leaf string value into apis.
func collect(v any, prefix string, added, apis map[string]struct{}) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			added[p] = struct{}{}
			collect(child, p, added, apis)
		}
	case []any:
		for _, item := range val {
			collect(item, prefix, added, apis)
		}
	case string:
		if i := strings.Index(val, "."); i > 0 {
			apis[val[:i]] = struct{}{}
		}
	}
}

// Has reports whether the field path is already present in the document.
func (d *Document) Has(path string) bool {
	_, ok := d.added[path]
	return ok
}

// Added returns the current added-fields set, sorted.
func (d *Document) Added() []string {
	out := make([]string, 0, len(d.added))
	for p := range d.added {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ReferencedAPIs returns the names of the APIs referenced by the document's
// leaf values, sorted.
func (d *Document) ReferencedAPIs() []string {
	out := make([]string, 0, len(d.apis))
	for a := range d.apis {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Insert splices a rendered snippet in as a new top-level member, just before
// the document's closing brace, adding a separating comma when the top-level
// object already has members. The document must be a valid object. A splice
// that fails validation leaves the document untouched.
func (d *Document) Insert(snippet string) error {
	if !d.valid {
		return ErrInvalidJSON
	}

	var v any
	dec := json.NewDecoder(strings.NewReader(d.text))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return ErrInvalidJSON
	}
	if _, ok := v.(map[string]any); !ok {
		return fmt.Errorf("document is not a json object")
	}

	// The decoder stops right past the structural closing brace; braces
	// inside string literals don't fool it the way a raw text search would.
	i := int(dec.InputOffset()) - 1

	prev := d.text
	head := strings.TrimRight(d.text[:i], " \t\n")
	sep := "\n"
	if !strings.HasSuffix(head, "{") {
		sep = ",\n"
	}
	d.SetText(head + sep + snippet + "\n" + d.text[i:])
	if !d.valid {
		d.SetText(prev)
		return fmt.Errorf("snippet insertion produced invalid json")
	}
	return nil
}

// Format normalizes the document with two-space indentation. Formatting an
// invalid document is refused.
func (d *Document) Format() error {
	if !d.valid {
		return ErrInvalidJSON
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(d.text))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return ErrInvalidJSON
	}
	b, err := json.MarshalIndent(v, "", IndentStep)
	if err != nil {
		return err
	}
	d.SetText(string(b))
	return nil
}

// Value parses and returns the document as a generic JSON value.
func (d *Document) Value() (any, error) {
	if !d.valid {
		return nil, ErrInvalidJSON
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(d.text))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, ErrInvalidJSON
	}
	return v, nil
}
