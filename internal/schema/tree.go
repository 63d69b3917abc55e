package schema

import (
	"sort"
	"strings"
)

// IndentStep is the two-space indentation unit used for snippets and
// document formatting.
const IndentStep = "  "

// Tree is a recursive mapping from path segment to subtree. Leaves are empty
// mappings.
type Tree map[string]Tree

// BuildTree groups a list of dotted field paths, all prefixed by baseKey+".",
// into a nested tree keyed by path segment. Intermediate nodes are created on
// demand. Paths that do not actually carry the prefix are inserted as-is and
// silently produce a wrong tree; catalog input is static and trusted.
func BuildTree(baseKey string, paths []string) Tree {
	root := Tree{}
	prefix := baseKey + "."
	for _, p := range paths {
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" {
			continue
		}
		node := root
		for _, seg := range strings.Split(rest, ".") {
			child, ok := node[seg]
			if !ok {
				child = Tree{}
				node[seg] = child
			}
			node = child
		}
	}
	return root
}

// Leaves returns the full dotted paths of every leaf in the tree, prefixed by
// baseKey, sorted.
func (t Tree) Leaves(baseKey string) []string {
	var out []string
	t.walk(baseKey, func(path string, leaf bool) {
		if leaf {
			out = append(out, path)
		}
	})
	sort.Strings(out)
	return out
}

// Paths returns every node path in the tree, container and leaf alike,
// prefixed by baseKey, sorted. The baseKey itself is included.
func (t Tree) Paths(baseKey string) []string {
	out := []string{baseKey}
	t.walk(baseKey, func(path string, leaf bool) {
		out = append(out, path)
	})
	sort.Strings(out)
	return out
}

func (t Tree) walk(prefix string, fn func(path string, leaf bool)) {
	for seg, child := range t {
		p := prefix + "." + seg
		fn(p, len(child) == 0)
		child.walk(p, fn)
	}
}

// RenderSnippet serializes the tree as an indented pseudo-JSON object member
// for insertion into the document:
//
//	"baseKey": {
//	  "leaf": "api.baseKey.leaf",
//	  "nested": {
//	    "inner": "api.baseKey.nested.inner"
//	  }
//	}
//
// Leaf keys render as the api-qualified full path, internal keys open a
// nested object block. Each level indents by two spaces relative to the
// caller-supplied base indent. An empty tree renders the base key as a plain
// leaf.
func RenderSnippet(api, baseKey, baseIndent string, t Tree) string {
	key := lastSegment(baseKey)
	if len(t) == 0 {
		return baseIndent + quote(key) + ": " + quote(api+"."+baseKey)
	}
	var sb strings.Builder
	sb.WriteString(baseIndent + quote(key) + ": {\n")
	renderBody(&sb, api, baseKey, baseIndent+IndentStep, t)
	sb.WriteString(baseIndent + "}")
	return sb.String()
}

func renderBody(sb *strings.Builder, api, prefix, indent string, t Tree) {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		child := t[k]
		full := prefix + "." + k
		if len(child) == 0 {
			sb.WriteString(indent + quote(k) + ": " + quote(api+"."+full))
		} else {
			sb.WriteString(indent + quote(k) + ": {\n")
			renderBody(sb, api, full, indent+IndentStep, child)
			sb.WriteString(indent + "}")
		}
		if i < len(keys)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
}

func quote(s string) string { return `"` + s + `"` }

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// IsBaseObject reports whether path is a strict prefix (plus a dot) of some
// other path in the set.
func IsBaseObject(path string, all []string) bool {
	prefix := path + "."
	for _, p := range all {
		if p != path && strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Descendants returns the paths in all that are strictly below path.
func Descendants(path string, all []string) []string {
	prefix := path + "."
	var out []string
	for _, p := range all {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}
