package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dantome/json-editor/internal/model"
	"github.com/dantome/json-editor/internal/schema"
)

const defaultTimeout = 10 * time.Second

// Payload is the submission body: the parsed schema document plus, for every
// API it references, the user-supplied input values.
type Payload struct {
	Schema any                  `json:"schema"`
	APIs   map[string]APIInputs `json:"apis"`
}

type APIInputs struct {
	Inputs map[string]string `json:"inputs"`
}

// Result describes the outcome of a submission.
type Result struct {
	StatusCode int
	Status     string
	Elapsed    time.Duration
	Body       string
	Stubbed    bool
}

// BuildPayload assembles the submission payload. It fails while the document
// is invalid or while any required input of a referenced API is missing or
// blank; inputs is the merged field-name -> value map. APIs the document does
// not reference contribute nothing, even if values for them linger in inputs.
func BuildPayload(doc *schema.Document, cat *model.Catalog, inputs map[string]string) (Payload, error) {
	v, err := doc.Value()
	if err != nil {
		return Payload{}, err
	}

	apis := map[string]APIInputs{}
	for _, name := range doc.ReferencedAPIs() {
		api, ok := cat.Get(name)
		if !ok {
			continue
		}
		vals := map[string]string{}
		for _, in := range api.Required {
			val := strings.TrimSpace(inputs[in.Name])
			if val == "" {
				if in.Required {
					return Payload{}, fmt.Errorf("missing required input %s for api %s", in.Name, name)
				}
				continue
			}
			vals[in.Name] = val
		}
		apis[name] = APIInputs{Inputs: vals}
	}

	return Payload{Schema: v, APIs: apis}, nil
}

// Submit posts the payload to the endpoint. An empty endpoint selects the
// stub transport: the payload is logged and reported as accepted without any
// network I/O.
func Submit(ctx context.Context, endpoint string, p Payload, logger *slog.Logger) (Result, error) {
	body, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return Result{}, err
	}

	if strings.TrimSpace(endpoint) == "" {
		logger.Info("submission stubbed, no endpoint configured", "payload_bytes", len(body))
		return Result{
			Status:  "accepted (stub)",
			Body:    string(body),
			Stubbed: true,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	client := &http.Client{Timeout: defaultTimeout}
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	logger.Info("submission sent", "endpoint", endpoint, "status", resp.StatusCode, "elapsed", elapsed)

	return Result{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Elapsed:    elapsed,
		Body:       string(b),
	}, nil
}
