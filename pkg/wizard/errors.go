package wizard

import "errors"

var (
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("wizard: submission in progress")
	// ErrNoEvaluation reports that no evaluation has succeeded yet.
	ErrNoEvaluation = errors.New("wizard: no evaluation available")
	// ErrUnknownStep reports a step id that is not part of the catalog.
	ErrUnknownStep = errors.New("wizard: unknown step")
	// ErrEvaluate wraps every backend failure returned from Next.
	ErrEvaluate = errors.New("wizard: evaluation failed")
)

// ValidationError is returned when the displayed step is incomplete. Message
// is the user facing text.
type ValidationError struct {
	StepID  string
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}
