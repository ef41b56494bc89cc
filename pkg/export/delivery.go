package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-ispdn/pkg/model"
)

// Delivery hands a finished document to the user.
type Delivery interface {
	Deliver(ctx context.Context, doc model.Document) (string, error)
}

// DeliveryFunc adapts a function into a Delivery.
type DeliveryFunc func(ctx context.Context, doc model.Document) (string, error)

// Deliver calls fn.
func (fn DeliveryFunc) Deliver(ctx context.Context, doc model.Document) (string, error) {
	return fn(ctx, doc)
}

// DirDelivery writes documents into Dir, replacing files with the same name.
type DirDelivery struct {
	Dir string
}

// Deliver writes doc and returns the written path.
func (d DirDelivery) Deliver(ctx context.Context, doc model.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create %s: %w", dir, err)
	}
	// the name is already sanitized; Base guards against a bare separator
	target := filepath.Join(dir, filepath.Base(doc.Name))
	if err := os.WriteFile(target, doc.Body, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", target, err)
	}
	return target, nil
}
