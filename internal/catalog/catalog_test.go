package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dantome/json-editor/internal/model"
)

const jsonCatalog = `{
  "apis": {
    "lookup": {
      "title": "User lookup",
      "requiredFields": ["userId", {"name": "region", "type": "string", "required": false}],
      "outputFields": ["user.name", "user.address.city"]
    },
    "billing": {
      "requiredFields": [],
      "outputFields": ["total"]
    }
  }
}`

func TestParseJSON(t *testing.T) {
	c, err := ParseJSON([]byte(jsonCatalog))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	// APIs come out sorted by name.
	require.Equal(t, []string{"billing", "lookup"}, c.Names())

	lookup, ok := c.Get("lookup")
	require.True(t, ok)
	require.Equal(t, "User lookup", lookup.Title)
	require.Equal(t, []string{"user.name", "user.address.city"}, lookup.Outputs)

	// Bare string fields are required strings; objects carry their own flags.
	require.Len(t, lookup.Required, 2)
	require.Equal(t, model.Input{Name: "userId", Type: model.TypeString, Required: true}, lookup.Required[0])
	require.Equal(t, model.Input{Name: "region", Type: model.TypeString, Required: false}, lookup.Required[1])
	require.Equal(t, []string{"userId"}, lookup.RequiredNames())

	billing, ok := c.Get("billing")
	require.True(t, ok)
	require.Empty(t, billing.Required)
}

func TestParseYAML(t *testing.T) {
	c, err := ParseYAML([]byte(`
apis:
  lookup:
    title: User lookup
    requiredFields:
      - userId
      - name: limit
        type: integer
    outputFields:
      - user.name
`))
	require.NoError(t, err)

	lookup, ok := c.Get("lookup")
	require.True(t, ok)
	require.Equal(t, "User lookup", lookup.Title)
	require.Len(t, lookup.Required, 2)
	require.Equal(t, "userId", lookup.Required[0].Name)
	require.Equal(t, model.TypeInteger, lookup.Required[1].Type)
	require.True(t, lookup.Required[1].Required)
}

func TestParseYAMLStrict(t *testing.T) {
	_, err := ParseYAML([]byte("apis:\n  lookup:\n    outputs: [x]\n"))
	require.Error(t, err)
}

func TestParseEmptyCatalog(t *testing.T) {
	c, err := ParseJSON([]byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, 0, c.Len())
}

func TestParseRejectsEmptyFieldName(t *testing.T) {
	_, err := ParseJSON([]byte(`{"apis": {"a": {"requiredFields": [""]}}}`))
	require.Error(t, err)
}

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(jsonCatalog))
	}))
	defer srv.Close()

	c, err := FetchURL(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
}

func TestFetchURLNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := FetchURL(context.Background(), srv.URL)
	require.Error(t, err)
}
