package wizard

import (
	"fmt"

	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/selection"
)

// Default failure messages per step kind.
const (
	MessageDataType         = "Выберите тип данных."
	MessageThreats          = "Отметьте хотя бы один тип угроз."
	MessageEmployeesOnly    = "Укажите, обрабатываются ли только данные сотрудников."
	MessageNonEmployeeScope = "Укажите количество субъектов персональных данных."
)

// ValidateStep checks the answers owned by stepID. It returns nil when the
// step is complete, a *ValidationError when it is not, and ErrUnknownStep for
// ids outside the catalog.
func (d Definition) ValidateStep(stepID string, answers model.AnswerSet) error {
	step, ok := d.Step(stepID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}
	if validators[step.Kind](step, d.ThreatMode, answers) {
		return nil
	}
	return &ValidationError{StepID: step.ID, Kind: step.Kind, Message: step.failureMessage()}
}

type validator func(step StepDescriptor, mode selection.Mode, answers model.AnswerSet) bool

var validators = map[Kind]validator{
	KindDataType: func(step StepDescriptor, _ selection.Mode, answers model.AnswerSet) bool {
		return answers.DataType != "" && step.hasOption(string(answers.DataType))
	},
	KindThreats: func(step StepDescriptor, mode selection.Mode, answers model.AnswerSet) bool {
		if mode == selection.ModeSingle && len(answers.Threats) != 1 {
			return false
		}
		if len(answers.Threats) == 0 {
			return false
		}
		for _, threat := range answers.Threats {
			if !step.hasOption(string(threat)) {
				return false
			}
		}
		return true
	},
	KindEmployeesOnly: func(_ StepDescriptor, _ selection.Mode, answers model.AnswerSet) bool {
		return answers.EmployeesOnly != nil
	},
	KindNonEmployeeScope: func(step StepDescriptor, _ selection.Mode, answers model.AnswerSet) bool {
		return answers.NonEmployeeScope != "" && step.hasOption(string(answers.NonEmployeeScope))
	},
}

func (s StepDescriptor) failureMessage() string {
	if s.Message != "" {
		return s.Message
	}
	switch s.Kind {
	case KindDataType:
		return MessageDataType
	case KindThreats:
		return MessageThreats
	case KindEmployeesOnly:
		return MessageEmployeesOnly
	default:
		return MessageNonEmployeeScope
	}
}

func (s StepDescriptor) hasOption(value string) bool {
	for _, opt := range s.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
