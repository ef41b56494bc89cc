// Package testsupport holds fixture and golden file helpers shared by the
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ispdn/pkg/model"
)

// MustLoadEvaluation reads a JSON backend response fixture.
func MustLoadEvaluation(t *testing.T, path string) model.EvaluationResult {
	t.Helper()

	res, err := LoadEvaluation(path)
	if err != nil {
		t.Fatalf("load evaluation: %v", err)
	}
	return res
}

// LoadEvaluation reads a JSON backend response fixture without testing.T.
func LoadEvaluation(path string) (model.EvaluationResult, error) {
	if path == "" {
		return model.EvaluationResult{}, errors.New("testsupport: evaluation path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.EvaluationResult{}, fmt.Errorf("testsupport: read evaluation: %w", err)
	}
	var out model.EvaluationResult
	if err := json.Unmarshal(data, &out); err != nil {
		return model.EvaluationResult{}, fmt.Errorf("testsupport: unmarshal evaluation: %w", err)
	}
	return out, nil
}

// MustLoadAnswers reads an answers fixture. YAML is a superset of JSON so
// both encodings are accepted.
func MustLoadAnswers(t *testing.T, path string) model.AnswerSet {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read answers: %v", err)
	}
	var out model.AnswerSet
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal answers: %v", err)
	}
	return out
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
