// Package visibility decides whether a conditional wizard step is reachable
// given the answers collected so far.
package visibility

// Evaluator determines whether a step should be visible based on a rule
// string and the current answers.
type Evaluator interface {
	Eval(stepID, rule string, ctx Context) (bool, error)
}

// Context carries the answers keyed by their payload member name
// (dataType, threats, employeesOnly, nonEmployeeScope).
type Context struct {
	Values map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(stepID, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(stepID, rule string, ctx Context) (bool, error) {
	return fn(stepID, rule, ctx)
}
