// Package contract describes the classification backend as an embedded
// OpenAPI document. It resolves endpoint paths by operation id and checks
// request and response bodies against the component schemas.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation ids of the backend endpoints.
const (
	OpEvaluate  = "evaluate"
	OpExport    = "export"
	OpExportAct = "exportAct"
	OpActSelf   = "actSelf"
)

const jsonContentType = "application/json"

//go:embed openapi.yaml
var embeddedDocument []byte

// Document returns a copy of the embedded OpenAPI description.
func Document() []byte {
	return append([]byte(nil), embeddedDocument...)
}

// ErrUnknownOperation reports an operation id missing from the document.
var ErrUnknownOperation = errors.New("contract: unknown operation")

// Endpoint is one backend route.
type Endpoint struct {
	OperationID string
	Method      string
	Path        string

	operation *openapi3.Operation
}

// Contract is a loaded and validated backend description.
type Contract struct {
	doc       *openapi3.T
	endpoints map[string]Endpoint
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return Parse(ctx, embeddedDocument)
}

// Parse loads an OpenAPI document and indexes its operations.
func Parse(ctx context.Context, data []byte) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("contract: document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}

	c := &Contract{doc: doc, endpoints: make(map[string]Endpoint)}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID == "" {
				continue
			}
			if _, dup := c.endpoints[op.OperationID]; dup {
				return nil, fmt.Errorf("contract: duplicate operation %q", op.OperationID)
			}
			c.endpoints[op.OperationID] = Endpoint{
				OperationID: op.OperationID,
				Method:      method,
				Path:        path,
				operation:   op,
			}
		}
	}
	return c, nil
}

// Operations lists the indexed operation ids, sorted.
func (c *Contract) Operations() []string {
	out := make([]string, 0, len(c.endpoints))
	for id := range c.endpoints {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Endpoint resolves an operation id.
func (c *Contract) Endpoint(operationID string) (Endpoint, error) {
	ep, ok := c.endpoints[operationID]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknownOperation, operationID)
	}
	return ep, nil
}

// ValidateRequest checks a JSON request body against the operation's request
// schema. Operations without a JSON body accept only an empty body.
func (c *Contract) ValidateRequest(operationID string, body []byte) error {
	ep, err := c.Endpoint(operationID)
	if err != nil {
		return err
	}
	schema := requestSchema(ep.operation)
	if schema == nil {
		if len(body) > 0 {
			return fmt.Errorf("contract: %s does not take a request body", operationID)
		}
		return nil
	}
	return visit(operationID, "request", schema, body)
}

// ValidateResponse checks a JSON response body for the given status. Binary
// responses and undocumented statuses are not checked.
func (c *Contract) ValidateResponse(operationID string, status int, body []byte) error {
	ep, err := c.Endpoint(operationID)
	if err != nil {
		return err
	}
	schema := responseSchema(ep.operation, status)
	if schema == nil {
		return nil
	}
	return visit(operationID, "response", schema, body)
}

// ResponseContentType reports the documented media type of a successful
// response.
func (c *Contract) ResponseContentType(operationID string) string {
	ep, err := c.Endpoint(operationID)
	if err != nil || ep.operation.Responses == nil {
		return ""
	}
	ref := ep.operation.Responses.Status(http.StatusOK)
	if ref == nil || ref.Value == nil {
		return ""
	}
	for mediaType := range ref.Value.Content {
		return mediaType
	}
	return ""
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get(jsonContentType)
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

func responseSchema(op *openapi3.Operation, status int) *openapi3.Schema {
	if op.Responses == nil {
		return nil
	}
	ref := op.Responses.Status(status)
	if ref == nil || ref.Value == nil {
		return nil
	}
	media := ref.Value.Content.Get(jsonContentType)
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

func visit(operationID, direction string, schema *openapi3.Schema, body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("contract: %s %s is not valid JSON: %w", operationID, direction, err)
	}
	if err := schema.VisitJSON(value); err != nil {
		return fmt.Errorf("contract: %s %s: %w", operationID, direction, err)
	}
	return nil
}
