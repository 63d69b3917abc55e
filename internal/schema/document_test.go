package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentSetTextCollectsPaths(t *testing.T) {
	d := NewDocument()
	d.SetText(`{
  "user": {
    "name": "lookup.user.name",
    "address": {
      "city": "lookup.user.address.city"
    }
  },
  "total": "billing.total"
}`)

	require.True(t, d.Valid())
	require.Equal(t,
		[]string{"total", "user", "user.address", "user.address.city", "user.name"},
		d.Added())
	require.Equal(t, []string{"billing", "lookup"}, d.ReferencedAPIs())
	require.True(t, d.Has("user.address"))
	require.False(t, d.Has("user.address.zip"))
}

func TestDocumentAddedIdempotent(t *testing.T) {
	d := NewDocument()
	text := `{"user": {"name": "lookup.user.name"}}`
	d.SetText(text)
	first := d.Added()
	d.SetText(text)
	require.Equal(t, first, d.Added())
}

func TestDocumentInvalidKeepsLastGoodState(t *testing.T) {
	d := NewDocument()
	d.SetText(`{"user": {"name": "lookup.user.name"}}`)
	added := d.Added()
	apis := d.ReferencedAPIs()

	d.SetText(`{"user": {`)
	require.False(t, d.Valid())
	require.Equal(t, added, d.Added())
	require.Equal(t, apis, d.ReferencedAPIs())

	// Recovering from the parse error resynchronizes.
	d.SetText(`{}`)
	require.True(t, d.Valid())
	require.Empty(t, d.Added())
}

func TestDocumentRejectsTrailingJSON(t *testing.T) {
	d := NewDocument()
	d.SetText(`{} {}`)
	require.False(t, d.Valid())
}

func TestDocumentInsert(t *testing.T) {
	d := NewDocument()
	require.NoError(t, d.Insert(`  "name": "lookup.user.name"`))
	require.True(t, d.Valid())
	require.True(t, d.Has("name"))

	// Second member gets a separating comma.
	require.NoError(t, d.Insert(`  "email": "lookup.user.email"`))
	require.True(t, d.Valid())
	require.Equal(t, []string{"email", "name"}, d.Added())
}

func TestDocumentInsertSubtree(t *testing.T) {
	d := NewDocument()
	tree := BuildTree("user", []string{"user.name", "user.address.city"})
	require.NoError(t, d.Insert(RenderSnippet("lookup", "user", "  ", tree)))
	require.True(t, d.Valid())
	require.Equal(t,
		[]string{"user", "user.address", "user.address.city", "user.name"},
		d.Added())
	require.Equal(t, []string{"lookup"}, d.ReferencedAPIs())
}

func TestDocumentInsertInvalid(t *testing.T) {
	d := NewDocument()
	d.SetText(`{"x": `)
	require.ErrorIs(t, d.Insert(`"y": "a.y"`), ErrInvalidJSON)
}

func TestDocumentInsertRequiresObject(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"array", `[{"a": 1}]`},
		{"string with brace", `"a}"`},
		{"number", `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDocument()
			d.SetText(tt.text)
			require.True(t, d.Valid())

			err := d.Insert(`"name": "lookup.user.name"`)
			require.ErrorContains(t, err, "not a json object")
			require.Equal(t, tt.text, d.Text())
		})
	}
}

func TestDocumentInsertBraceInString(t *testing.T) {
	// A closing brace inside a string literal must not become the splice
	// point; the new member lands at the top level.
	d := NewDocument()
	d.SetText(`{"note": "a}b"}`)
	require.NoError(t, d.Insert(`"name": "lookup.user.name"`))
	require.True(t, d.Valid())
	require.Equal(t, []string{"name", "note"}, d.Added())
}

func TestDocumentInsertFailureLeavesTextUntouched(t *testing.T) {
	d := NewDocument()
	d.SetText(`{"a": 1}`)

	err := d.Insert(`"broken": `)
	require.ErrorContains(t, err, "invalid json")
	require.Equal(t, `{"a": 1}`, d.Text())
	require.True(t, d.Valid())
	require.Equal(t, []string{"a"}, d.Added())
}

func TestDocumentFormat(t *testing.T) {
	d := NewDocument()
	d.SetText(`{"user":{"name":"lookup.user.name"}}`)
	require.NoError(t, d.Format())
	require.Equal(t, "{\n  \"user\": {\n    \"name\": \"lookup.user.name\"\n  }\n}", d.Text())

	d.SetText(`{"broken"`)
	require.ErrorIs(t, d.Format(), ErrInvalidJSON)
}
