package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/dantome/json-editor/internal/model"
)

// maxSchemaDepth bounds response-schema flattening so cyclic refs terminate.
const maxSchemaDepth = 8

// LoadOpenAPI loads and validates an OpenAPI document from an http(s) URL or
// a local file path, then derives a field catalog from it.
func LoadOpenAPI(ctx context.Context, location string) (*model.Catalog, error) {
	loader := &openapi3.Loader{Context: ctx}
	loader.IsExternalRefsAllowed = true

	var (
		doc *openapi3.T
		err error
	)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		doc, err = loadFromURL(ctx, loader, location)
	} else {
		doc, err = loader.LoadFromFile(location)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}
	return FromOpenAPI(doc), nil
}

func loadFromURL(ctx context.Context, loader *openapi3.Loader, url string) (*openapi3.T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return loader.LoadFromIoReader(resp.Body)
}

// FromOpenAPI turns each operation of the document into a catalog API: its
// required path/query parameters and required JSON body fields become the
// required inputs, and its 200-response JSON schema is flattened into dotted
// output field paths.
func FromOpenAPI(doc *openapi3.T) *model.Catalog {
	if doc == nil || doc.Paths == nil {
		return model.NewCatalog(nil)
	}

	var apis []model.API
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		commonParams := item.Parameters

		addOp := func(method string, op *openapi3.Operation) {
			if op == nil {
				return
			}
			api := model.API{
				Name:  opName(method, path, op),
				Title: strings.TrimSpace(op.Summary),
			}

			params := append(openapi3.Parameters{}, commonParams...)
			params = append(params, op.Parameters...)
			for _, p := range params {
				if p == nil || p.Value == nil {
					continue
				}
				if p.Value.In != "path" && p.Value.In != "query" {
					continue
				}
				api.Required = append(api.Required, model.Input{
					Name:        p.Value.Name,
					Type:        schemaType(p.Value.Schema),
					Required:    p.Value.Required || p.Value.In == "path",
					Description: strings.TrimSpace(p.Value.Description),
				})
			}
			api.Required = append(api.Required, bodyInputs(op)...)
			api.Outputs = responseFields(op)

			apis = append(apis, api)
		}

		addOp("get", item.Get)
		addOp("post", item.Post)
		addOp("put", item.Put)
		addOp("patch", item.Patch)
		addOp("delete", item.Delete)
	}

	sort.Slice(apis, func(i, j int) bool { return apis[i].Name < apis[j].Name })
	return model.NewCatalog(apis)
}

func opName(method, path string, op *openapi3.Operation) string {
	if id := strings.TrimSpace(op.OperationID); id != "" {
		return id
	}
	slug := strings.NewReplacer("/", "_", "{", "", "}", "").Replace(strings.Trim(path, "/"))
	return strings.ToLower(method) + "_" + slug
}

func bodyInputs(op *openapi3.Operation) []model.Input {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil
	}
	s := mt.Schema.Value
	if s.Type == nil || !s.Type.Is("object") {
		return nil
	}

	required := map[string]bool{}
	for _, name := range s.Required {
		required[name] = true
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []model.Input
	for _, name := range names {
		out = append(out, model.Input{
			Name:     name,
			Type:     schemaType(s.Properties[name]),
			Required: required[name],
		})
	}
	return out
}

// responseFields flattens the operation's 200-response JSON schema into
// dotted leaf paths. Arrays are traversed through their item schema without
// extending the path.
func responseFields(op *openapi3.Operation) []string {
	if op.Responses == nil {
		return nil
	}
	resp := op.Responses.Status(200)
	if resp == nil || resp.Value == nil {
		return nil
	}
	mt := resp.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return nil
	}

	var out []string
	flattenSchema(mt.Schema, "", 0, &out)
	sort.Strings(out)
	return out
}

func flattenSchema(ref *openapi3.SchemaRef, prefix string, depth int, out *[]string) {
	if ref == nil || ref.Value == nil || depth > maxSchemaDepth {
		return
	}
	s := ref.Value

	if s.Type != nil && s.Type.Is("array") {
		flattenSchema(s.Items, prefix, depth+1, out)
		return
	}

	if len(s.Properties) == 0 {
		if prefix != "" {
			*out = append(*out, prefix)
		}
		return
	}

	for name, prop := range s.Properties {
		p := name
		if prefix != "" {
			p = prefix + "." + name
		}
		flattenSchema(prop, p, depth+1, out)
	}
}

func schemaType(ref *openapi3.SchemaRef) model.InputType {
	if ref == nil || ref.Value == nil || ref.Value.Type == nil {
		return model.TypeUnknown
	}
	switch {
	case ref.Value.Type.Is("string"):
		return model.TypeString
	case ref.Value.Type.Is("integer"):
		return model.TypeInteger
	case ref.Value.Type.Is("number"):
		return model.TypeNumber
	case ref.Value.Type.Is("boolean"):
		return model.TypeBoolean
	default:
		return model.TypeUnknown
	}
}
