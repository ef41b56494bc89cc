package wizard

import (
	"fmt"

	"github.com/goliatone/go-ispdn/pkg/selection"
	"github.com/goliatone/go-ispdn/pkg/visibility"
)

// Form holds the live input state of every step, one selection group per
// step. It is not safe for concurrent use; the Controller serialises access.
type Form struct {
	def    Definition
	groups map[string]*selection.Group
}

// NewForm builds empty groups for every step in def.
func NewForm(def Definition) *Form {
	f := &Form{def: def, groups: make(map[string]*selection.Group, len(def.Steps))}
	for _, step := range def.Steps {
		f.groups[step.ID] = selection.NewGroup(step.ID, def.groupMode(step), step.Options)
	}
	return f
}

// Group exposes the selection group behind stepID.
func (f *Form) Group(stepID string) (*selection.Group, bool) {
	group, ok := f.groups[stepID]
	return group, ok
}

// Change forwards a single change notification to the step group.
func (f *Form) Change(stepID, value string, checked bool) error {
	group, ok := f.groups[stepID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}
	group.Change(value, checked)
	return nil
}

// Replace sets the whole selection of a step.
func (f *Form) Replace(stepID string, values []string) error {
	group, ok := f.groups[stepID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}
	group.Replace(values)
	return nil
}

// Reset clears every group.
func (f *Form) Reset() {
	for _, group := range f.groups {
		group.Reset()
	}
}

// visibilityContext exposes every answer regardless of step visibility so
// rules can reference any field.
func (f *Form) visibilityContext() visibility.Context {
	answers := Build(f, nil)
	values := map[string]any{
		string(KindDataType):         string(answers.DataType),
		string(KindNonEmployeeScope): string(answers.NonEmployeeScope),
		string(KindEmployeesOnly):    answers.EmployeesOnly,
	}
	threats := make([]string, 0, len(answers.Threats))
	for _, threat := range answers.Threats {
		threats = append(threats, string(threat))
	}
	values[string(KindThreats)] = threats
	return visibility.Context{Values: values}
}
