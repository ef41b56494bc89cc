package wizard

import (
	"github.com/goliatone/go-ispdn/pkg/selection"
)

// Kind binds a step to its answer field and validator.
type Kind string

const (
	KindDataType         Kind = "dataType"
	KindThreats          Kind = "threats"
	KindEmployeesOnly    Kind = "employeesOnly"
	KindNonEmployeeScope Kind = "nonEmployeeScope"
)

// Option values of the employeesOnly step.
const (
	OptionYes = "yes"
	OptionNo  = "no"
)

func (k Kind) valid() bool {
	switch k {
	case KindDataType, KindThreats, KindEmployeesOnly, KindNonEmployeeScope:
		return true
	}
	return false
}

// StepDescriptor describes one wizard step. Descriptors are immutable once a
// Definition is loaded.
type StepDescriptor struct {
	ID          string             `json:"id" yaml:"id"`
	Kind        Kind               `json:"kind" yaml:"kind"`
	Title       string             `json:"title,omitempty" yaml:"title,omitempty"`
	Help        string             `json:"help,omitempty" yaml:"help,omitempty"`
	Options     []selection.Option `json:"options" yaml:"options"`
	Message     string             `json:"message,omitempty" yaml:"message,omitempty"`
	VisibleWhen string             `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
}

// Definition is an ordered step catalog.
type Definition struct {
	Name       string           `json:"name" yaml:"name"`
	ThreatMode selection.Mode   `json:"threatMode,omitempty" yaml:"threatMode,omitempty"`
	Steps      []StepDescriptor `json:"steps" yaml:"steps"`
}

// Step returns the descriptor with the given id.
func (d Definition) Step(id string) (StepDescriptor, bool) {
	for _, step := range d.Steps {
		if step.ID == id {
			return step, true
		}
	}
	return StepDescriptor{}, false
}

// StepByKind returns the descriptor bound to kind.
func (d Definition) StepByKind(kind Kind) (StepDescriptor, bool) {
	for _, step := range d.Steps {
		if step.Kind == kind {
			return step, true
		}
	}
	return StepDescriptor{}, false
}

// groupMode reports the selection mode used for step.
func (d Definition) groupMode(step StepDescriptor) selection.Mode {
	if step.Kind == KindThreats && d.ThreatMode != selection.ModeSingle {
		return selection.ModeMulti
	}
	return selection.ModeSingle
}

func (s StepDescriptor) clone() StepDescriptor {
	out := s
	out.Options = append([]selection.Option(nil), s.Options...)
	return out
}

func (d Definition) clone() Definition {
	out := d
	out.Steps = make([]StepDescriptor, len(d.Steps))
	for i, step := range d.Steps {
		out.Steps[i] = step.clone()
	}
	return out
}
