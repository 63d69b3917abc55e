package ui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dantome/json-editor/internal/model"
)

func testApp(t *testing.T) *App {
	t.Helper()
	return NewApp(model.NewCatalog(nil), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func editorFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunExternalEditorRoundTrip(t *testing.T) {
	// "true" leaves the file as written, so the round trip reads it back,
	// resynchronizes and normalizes.
	t.Setenv("JSON_EDITOR_EDITOR", "true")

	a := testApp(t)
	file := editorFile(t, `{"user":{"name":"lookup.user.name"}}`)

	require.NoError(t, a.runExternalEditor(file))
	require.True(t, a.doc.Valid())
	require.Equal(t, "{\n  \"user\": {\n    \"name\": \"lookup.user.name\"\n  }\n}", a.doc.Text())
	require.Equal(t, []string{"user", "user.name"}, a.doc.Added())

	// The temp file is cleaned up after the edit.
	_, err := os.Stat(file)
	require.True(t, os.IsNotExist(err))
}

func TestRunExternalEditorInvalidJSON(t *testing.T) {
	t.Setenv("JSON_EDITOR_EDITOR", "true")

	a := testApp(t)
	file := editorFile(t, `{"user": `)

	err := a.runExternalEditor(file)
	require.ErrorContains(t, err, "not valid json")

	// The edited text is kept; the validity flag gates everything else.
	require.False(t, a.doc.Valid())
	require.Equal(t, `{"user": `, a.doc.Text())
}
