package wizard

import (
	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/selection"
)

// Build reads the form into an AnswerSet. Unset answers stay at their zero
// value and Threats is never nil. When visible is non-nil, answers of steps
// it reports as hidden are left out.
func Build(form *Form, visible func(stepID string) bool) model.AnswerSet {
	answers := model.AnswerSet{Threats: []model.ThreatType{}}
	if form == nil {
		return answers
	}

	for _, step := range form.def.Steps {
		if visible != nil && !visible(step.ID) {
			continue
		}
		group := form.groups[step.ID]
		switch step.Kind {
		case KindDataType:
			if value, ok := group.First(); ok {
				answers.DataType = model.DataType(value)
			}
		case KindThreats:
			answers.Threats = threatList(group)
		case KindEmployeesOnly:
			if value, ok := group.First(); ok {
				answers.EmployeesOnly = model.Bool(value == OptionYes)
			}
		case KindNonEmployeeScope:
			if value, ok := group.First(); ok {
				answers.NonEmployeeScope = model.Scope(value)
			}
		}
	}
	return answers
}

// threatList maps checked threats to a list. Single mode groups hold at most
// one value, which ends up wrapped in a one element list.
func threatList(group *selection.Group) []model.ThreatType {
	out := []model.ThreatType{}
	if group.Mode() == selection.ModeSingle {
		if value, ok := group.First(); ok {
			out = append(out, model.ThreatType(value))
		}
		return out
	}
	for _, value := range group.Checked() {
		out = append(out, model.ThreatType(value))
	}
	return out
}

// stepValues is the inverse of Build for a single step: the option values
// that represent answers for kind.
func stepValues(kind Kind, answers model.AnswerSet) []string {
	switch kind {
	case KindDataType:
		if answers.DataType != "" {
			return []string{string(answers.DataType)}
		}
	case KindThreats:
		out := make([]string, 0, len(answers.Threats))
		for _, threat := range answers.Threats {
			out = append(out, string(threat))
		}
		return out
	case KindEmployeesOnly:
		if answers.EmployeesOnly != nil {
			if *answers.EmployeesOnly {
				return []string{OptionYes}
			}
			return []string{OptionNo}
		}
	case KindNonEmployeeScope:
		if answers.NonEmployeeScope != "" {
			return []string{string(answers.NonEmployeeScope)}
		}
	}
	return nil
}
