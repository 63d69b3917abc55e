package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/dantome/json-editor/internal/model"
)

const fetchTimeout = 10 * time.Second

// fileDoc is the on-disk catalog format: API name -> required inputs plus
// output field paths.
type fileDoc struct {
	APIs map[string]fileAPI `json:"apis" yaml:"apis"`
}

type fileAPI struct {
	Title          string      `json:"title" yaml:"title"`
	RequiredFields []fileInput `json:"requiredFields" yaml:"requiredFields"`
	OutputFields   []string    `json:"outputFields" yaml:"outputFields"`
}

// fileInput accepts either a bare field name or an object with metadata.
type fileInput struct {
	Name        string          `json:"name" yaml:"name"`
	Type        model.InputType `json:"type" yaml:"type"`
	Required    *bool           `json:"required" yaml:"required"`
	Description string          `json:"description" yaml:"description"`
	Example     string          `json:"example" yaml:"example"`
	Default     string          `json:"default" yaml:"default"`
}

func (f *fileInput) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &f.Name)
	}
	type plain fileInput
	return json.Unmarshal(b, (*plain)(f))
}

func (f *fileInput) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err == nil {
		f.Name = s
		return nil
	}
	type plain fileInput
	return yaml.UnmarshalWithOptions(b, (*plain)(f), yaml.Strict())
}

func (f fileInput) toModel() model.Input {
	in := model.Input{
		Name:        f.Name,
		Type:        f.Type,
		Required:    true,
		Description: f.Description,
		Example:     f.Example,
		Default:     f.Default,
	}
	if f.Required != nil {
		in.Required = *f.Required
	}
	if in.Type == "" {
		in.Type = model.TypeString
	}
	return in
}

// LoadFile loads a catalog from a JSON or YAML file, dispatched on the file
// extension.
func LoadFile(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".yml", ".yaml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported catalog file extension: %s", ext)
	}
}

// ParseJSON loads a catalog from JSON bytes.
func ParseJSON(data []byte) (*model.Catalog, error) {
	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog json: %w", err)
	}
	return fromFileDoc(doc)
}

// ParseYAML loads a catalog from YAML bytes, strictly.
func ParseYAML(data []byte) (*model.Catalog, error) {
	var doc fileDoc
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return fromFileDoc(doc)
}

// FetchURL retrieves a JSON catalog over HTTP.
func FetchURL(ctx context.Context, url string) (*model.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	var doc fileDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse catalog json: %w", err)
	}
	return fromFileDoc(doc)
}

func fromFileDoc(doc fileDoc) (*model.Catalog, error) {
	if len(doc.APIs) == 0 {
		return model.NewCatalog(nil), nil
	}

	names := make([]string, 0, len(doc.APIs))
	for name := range doc.APIs {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("catalog api with empty name")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	apis := make([]model.API, 0, len(names))
	for _, name := range names {
		fa := doc.APIs[name]
		api := model.API{Name: name, Title: fa.Title, Outputs: fa.OutputFields}
		for _, fi := range fa.RequiredFields {
			if strings.TrimSpace(fi.Name) == "" {
				return nil, fmt.Errorf("api %s: required field with empty name", name)
			}
			api.Required = append(api.Required, fi.toModel())
		}
		apis = append(apis, api)
	}
	return model.NewCatalog(apis), nil
}
