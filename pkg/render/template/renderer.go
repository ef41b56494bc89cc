package template

import (
	"io"
)

// TemplateRenderer renders named templates with a data context. Output is
// returned and optionally copied to every writer.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
