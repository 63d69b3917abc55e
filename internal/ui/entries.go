package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jroimartin/gocui"

	"github.com/dantome/json-editor/internal/model"
	"github.com/dantome/json-editor/internal/schema"
)

// entry is one insertable row of the catalog browser: a top-level field of an
// API. A base entry carries a subtree of dotted descendants that gets
// tree-built into a nested snippet on insertion.
type entry struct {
	api    string
	key    string
	base   bool
	leaves int
}

func buildEntries(cat *model.Catalog) []entry {
	var out []entry
	for _, api := range cat.APIs() {
		seen := map[string]bool{}
		var keys []string
		for _, path := range api.Outputs {
			key := path
			if i := strings.Index(path, "."); i >= 0 {
				key = path[:i]
			}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)

		for _, key := range keys {
			e := entry{api: api.Name, key: key}
			if desc := schema.Descendants(key, api.Outputs); len(desc) > 0 {
				e.base = true
				e.leaves = len(desc)
			}
			out = append(out, e)
		}
	}
	return out
}

func (e entry) label() string {
	if e.base {
		return fmt.Sprintf("%s.%s (%d fields)", e.api, e.key, e.leaves)
	}
	return e.api + "." + e.key
}

func (a *App) recomputeFilter() {
	needle := strings.TrimSpace(a.filter)
	if needle == "" {
		a.filtered = a.filtered[:0]
		for i := range a.entries {
			a.filtered = append(a.filtered, i)
		}
		return
	}

	var scored []scoredIdx
	for i, e := range a.entries {
		if s, ok := fuzzyMatchScore(needle, e.api+" "+e.key); ok {
			scored = append(scored, scoredIdx{idx: i, score: s})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score == scored[j].score {
			return scored[i].idx < scored[j].idx
		}
		return scored[i].score < scored[j].score
	})
	a.filtered = a.filtered[:0]
	for _, s := range scored {
		a.filtered = append(a.filtered, s.idx)
	}
	if a.selected >= len(a.filtered) {
		a.selected = 0
	}
}

func (a *App) renderFields() {
	v, err := a.g.View("fields")
	if err != nil {
		return
	}
	v.Clear()

	for _, idx := range a.filtered {
		e := a.entries[idx]
		mark := "[ ]"
		if a.doc.Has(e.key) {
			mark = "[" + colorGreen + "x" + colorReset + "]"
		}
		fmt.Fprintf(v, "%s %s%s%s %s\n", mark, colorCyan, e.api, colorReset, strings.TrimPrefix(e.label(), e.api+"."))
	}
	v.SetCursor(0, a.selected)
}

func (a *App) renderPreview() {
	v, err := a.g.View("preview")
	if err != nil {
		return
	}
	v.Clear()
	v.Title = "Document"
	if !a.doc.Valid() {
		v.Title = "Document (invalid json)"
	}
	fmt.Fprintln(v, a.doc.Text())
}

// insertSelected inserts the selected catalog field into the document: base
// entries expand to their full nested subtree, plain entries to a single
// leaf. Re-inserting a field that is already present is refused.
func (a *App) insertSelected(*gocui.Gui, *gocui.View) error {
	if a.scr != screenCatalog || len(a.filtered) == 0 {
		return nil
	}
	e := a.entries[a.filtered[a.selected]]

	if a.doc.Has(e.key) {
		a.errorMsg = fmt.Sprintf("field %s already in document", e.key)
		a.renderFooter()
		return nil
	}
	if !a.doc.Valid() {
		a.errorMsg = "document is not valid json; fix it before inserting"
		a.renderFooter()
		return nil
	}

	api, ok := a.catalog.Get(e.api)
	if !ok {
		return nil
	}

	tree := schema.Tree{}
	if e.base {
		tree = schema.BuildTree(e.key, schema.Descendants(e.key, api.Outputs))
	}
	snippet := schema.RenderSnippet(e.api, e.key, schema.IndentStep, tree)
	if err := a.doc.Insert(snippet); err != nil {
		a.errorMsg = err.Error()
		a.renderFooter()
		return nil
	}
	a.logger.Debug("inserted field", "api", e.api, "key", e.key)

	a.errorMsg = ""
	a.renderFooter()
	a.renderFields()
	a.renderPreview()
	return nil
}
