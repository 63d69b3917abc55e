package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dantome/json-editor/internal/catalog"
	"github.com/dantome/json-editor/internal/logging"
	"github.com/dantome/json-editor/internal/model"
	"github.com/dantome/json-editor/internal/ui"
)

const loadTimeout = 15 * time.Second

func main() {
	var (
		catalogFile string
		catalogURL  string
		openapiURL  string
		submitURL   string
		logLevel    string
	)

	flag.StringVar(&catalogFile, "catalog-file", "", "Path to a JSON or YAML field catalog")
	flag.StringVar(&catalogURL, "catalog-url", "", "URL of a JSON field catalog")
	flag.StringVar(&openapiURL, "openapi-url", "", "OpenAPI spec URL or file path to derive a catalog from")
	flag.StringVar(&submitURL, "submit-url", "", "Endpoint for schema submission (empty = stub)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	// CLI args take precedence over env.
	if catalogFile == "" {
		catalogFile = strings.TrimSpace(os.Getenv("JSON_EDITOR_CATALOG_FILE"))
	}
	if catalogURL == "" {
		catalogURL = strings.TrimSpace(os.Getenv("JSON_EDITOR_CATALOG_URL"))
	}
	if openapiURL == "" {
		openapiURL = strings.TrimSpace(os.Getenv("JSON_EDITOR_OPENAPI_URL"))
	}
	if submitURL == "" {
		submitURL = strings.TrimSpace(os.Getenv("JSON_EDITOR_SUBMIT_URL"))
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.New(level)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	var cat *model.Catalog
	switch {
	case catalogFile != "":
		cat, err = catalog.LoadFile(catalogFile)
	case catalogURL != "":
		cat, err = catalog.FetchURL(ctx, catalogURL)
	case openapiURL != "":
		cat, err = catalog.LoadOpenAPI(ctx, openapiURL)
	default:
		err = fmt.Errorf("catalog required (use --catalog-file, --catalog-url or --openapi-url, or set JSON_EDITOR_CATALOG_FILE/JSON_EDITOR_CATALOG_URL/JSON_EDITOR_OPENAPI_URL)")
	}
	if err != nil {
		logger.Error("catalog load failed", "error", err)
		os.Exit(2)
	}
	logger.Info("catalog loaded", "apis", cat.Len())

	// While gocui owns the terminal the app logs to a file (enabled with
	// JSON_EDITOR_DEBUG=1) instead of stderr.
	uiLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("JSON_EDITOR_DEBUG") == "1" {
		if f, ferr := os.OpenFile("/tmp/json-editor.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644); ferr == nil {
			defer f.Close()
			uiLogger = logging.NewWriter(f, slog.LevelDebug)
		}
	}

	app := ui.NewApp(cat, uiLogger)
	if submitURL != "" {
		app.SetSubmitURL(submitURL)
	}
	if err := app.Run(); err != nil {
		logger.Error("ui error", "error", err)
		os.Exit(1)
	}
}
