package ispdn

import (
	"io/fs"

	"github.com/goliatone/go-ispdn/pkg/contract"
	"github.com/goliatone/go-ispdn/pkg/result"
	"github.com/goliatone/go-ispdn/pkg/wizard"
)

// CatalogsFS exposes the embedded step catalogs so callers can copy one as a
// starting point for their own.
func CatalogsFS() fs.FS {
	return wizard.CatalogsFS()
}

// ResultTemplatesFS exposes the HTML result templates. Pass a modified copy
// to result.WithTemplatesFS to restyle the markup.
func ResultTemplatesFS() fs.FS {
	return result.TemplatesFS()
}

// ContractDocument returns the embedded OpenAPI description of the backend.
func ContractDocument() []byte {
	return contract.Document()
}
