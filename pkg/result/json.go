package result

import (
	"context"
	"encoding/json"
)

// JSONRenderer emits the view as indented JSON for scripting.
type JSONRenderer struct{}

// NewJSONRenderer returns the JSON renderer.
func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Name() string        { return "json" }
func (r *JSONRenderer) ContentType() string { return "application/json" }

// Render marshals view.
func (r *JSONRenderer) Render(ctx context.Context, view View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(view, "", "  ")
}
