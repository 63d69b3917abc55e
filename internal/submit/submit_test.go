package submit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dantome/json-editor/internal/model"
	"github.com/dantome/json-editor/internal/schema"
)

func testCatalog() *model.Catalog {
	return model.NewCatalog([]model.API{
		{
			Name: "lookup",
			Required: []model.Input{
				{Name: "userId", Type: model.TypeString, Required: true},
				{Name: "region", Type: model.TypeString, Required: false},
			},
			Outputs: []string{"user.name", "user.address.city"},
		},
		{
			Name:    "billing",
			Outputs: []string{"total"},
		},
	})
}

func docWithText(t *testing.T, text string) *schema.Document {
	t.Helper()
	d := schema.NewDocument()
	d.SetText(text)
	return d
}

func TestBuildPayload(t *testing.T) {
	doc := docWithText(t, `{"user": {"name": "lookup.user.name"}, "total": "billing.total"}`)

	p, err := BuildPayload(doc, testCatalog(), map[string]string{"userId": "42"})
	require.NoError(t, err)
	require.Len(t, p.APIs, 2)
	require.Equal(t, map[string]string{"userId": "42"}, p.APIs["lookup"].Inputs)
	require.Empty(t, p.APIs["billing"].Inputs)
}

func TestBuildPayloadMissingRequiredInput(t *testing.T) {
	doc := docWithText(t, `{"user": {"name": "lookup.user.name"}}`)

	_, err := BuildPayload(doc, testCatalog(), map[string]string{"userId": "  "})
	require.ErrorContains(t, err, "missing required input userId")
}

func TestBuildPayloadInvalidDocument(t *testing.T) {
	doc := docWithText(t, `{"user": `)

	_, err := BuildPayload(doc, testCatalog(), map[string]string{"userId": "42"})
	require.ErrorIs(t, err, schema.ErrInvalidJSON)
}

func TestBuildPayloadIgnoresUnreferencedAPIs(t *testing.T) {
	doc := docWithText(t, `{"total": "billing.total"}`)

	// A stale lookup value must not appear in the payload, and lookup's
	// required inputs must not gate submission.
	p, err := BuildPayload(doc, testCatalog(), map[string]string{"userId": "42"})
	require.NoError(t, err)
	require.Len(t, p.APIs, 1)
	_, ok := p.APIs["lookup"]
	require.False(t, ok)
}

func TestBuildPayloadSkipsUnknownAPIRefs(t *testing.T) {
	doc := docWithText(t, `{"x": "mystery.x"}`)

	p, err := BuildPayload(doc, testCatalog(), nil)
	require.NoError(t, err)
	require.Empty(t, p.APIs)
}

func TestSubmitStub(t *testing.T) {
	doc := docWithText(t, `{"total": "billing.total"}`)
	p, err := BuildPayload(doc, testCatalog(), nil)
	require.NoError(t, err)

	res, err := Submit(context.Background(), "", p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.True(t, res.Stubbed)
	require.Contains(t, res.Body, `"billing"`)
}

func TestSubmitPost(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	doc := docWithText(t, `{"user": {"name": "lookup.user.name"}}`)
	p, err := BuildPayload(doc, testCatalog(), map[string]string{"userId": "42", "region": "eu"})
	require.NoError(t, err)

	res, err := Submit(context.Background(), srv.URL, p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.False(t, res.Stubbed)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	require.Equal(t, `{"ok": true}`, res.Body)
	require.Equal(t, map[string]string{"userId": "42", "region": "eu"}, got.APIs["lookup"].Inputs)
}
