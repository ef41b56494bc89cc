package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/result"
	"github.com/goliatone/go-ispdn/pkg/visibility"
	"github.com/goliatone/go-ispdn/pkg/visibility/expr"
)

// Primary action labels.
const (
	LabelNext      = "Далее"
	LabelCompute   = "Рассчитать"
	LabelComputing = "Считаем..."
)

// MessageEvaluateFailed is shown when the backend call fails.
const MessageEvaluateFailed = "Не удалось получить результат"

// Evaluator is the classification backend.
type Evaluator interface {
	Evaluate(ctx context.Context, answers model.AnswerSet) (model.EvaluationResult, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(ctx context.Context, answers model.AnswerSet) (model.EvaluationResult, error)

// Evaluate calls fn.
func (fn EvaluatorFunc) Evaluate(ctx context.Context, answers model.AnswerSet) (model.EvaluationResult, error) {
	return fn(ctx, answers)
}

// Transition reports what Next did.
type Transition string

const (
	// TransitionStay means the index did not move.
	TransitionStay Transition = "stay"
	// TransitionAdvanced means the next step is now displayed.
	TransitionAdvanced Transition = "advanced"
	// TransitionEvaluated means the final step was submitted successfully.
	TransitionEvaluated Transition = "evaluated"
)

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for submission failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPalette sets the badge palette used for rendered results.
func WithPalette(palette result.Palette) Option {
	return func(c *Controller) {
		c.palette = palette
	}
}

// WithVisibilityEvaluator replaces the visibleWhen rule evaluator.
func WithVisibilityEvaluator(evaluator visibility.Evaluator) Option {
	return func(c *Controller) {
		if evaluator != nil {
			c.rules = evaluator
		}
	}
}

// Controller owns the wizard state: the visible step list, the active index,
// the message surface and the last successful evaluation.
type Controller struct {
	mu      sync.Mutex
	def     Definition
	form    *Form
	backend Evaluator
	rules   visibility.Evaluator
	palette result.Palette
	logger  *slog.Logger

	visible []StepDescriptor
	index   int
	message string
	busy    bool

	lastPayload *model.AnswerSet
	lastResult  *model.EvaluationResult
	view        *result.View

	onRestart []func()
}

// NewController builds a controller positioned on the first visible step.
func NewController(def Definition, backend Evaluator, opts ...Option) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("wizard: evaluator is required")
	}
	source := strings.TrimSpace(def.Name)
	if source == "" {
		source = "definition"
	}
	def, err := normaliseDefinition(def.clone(), source)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		def:     def,
		backend: backend,
		rules:   expr.New(),
		palette: result.DefaultPalette(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.form = NewForm(c.def)
	c.recalculate()
	return c, nil
}

// Definition returns the catalog driving the controller.
func (c *Controller) Definition() Definition {
	return c.def.clone()
}

// Steps lists the currently visible steps.
func (c *Controller) Steps() []StepDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StepDescriptor, len(c.visible))
	for i, step := range c.visible {
		out[i] = step.clone()
	}
	return out
}

// Change applies a change notification on stepID and recalculates which steps
// are visible.
func (c *Controller) Change(stepID, value string, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.form.Change(stepID, value, checked); err != nil {
		return err
	}
	c.recalculate()
	return nil
}

// Replace sets the whole selection of stepID.
func (c *Controller) Replace(stepID string, values []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.form.Replace(stepID, values); err != nil {
		return err
	}
	c.recalculate()
	return nil
}

// Fill replaces the selection of every step with the matching field of
// answers, as if the user had answered each question.
func (c *Controller) Fill(answers model.AnswerSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	for _, step := range c.def.Steps {
		if err := c.form.Replace(step.ID, stepValues(step.Kind, answers)); err != nil {
			return err
		}
	}
	c.recalculate()
	return nil
}

// Checked lists the checked option values of stepID.
func (c *Controller) Checked(stepID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	group, ok := c.form.Group(stepID)
	if !ok {
		return nil
	}
	return group.Checked()
}

// Answers builds the payload from the current input state.
func (c *Controller) Answers() model.AnswerSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload()
}

// Next validates the displayed step. On failure the message surface carries
// the validation text and the *ValidationError is returned. On the last step
// the answers are submitted; the index never moves past the last step.
func (c *Controller) Next(ctx context.Context) (Transition, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return TransitionStay, ErrBusy
	}

	c.recalculate()
	c.message = ""
	step := c.visible[c.index]
	answers := c.payload()
	if err := c.def.ValidateStep(step.ID, answers); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.message = verr.Message
		}
		c.mu.Unlock()
		return TransitionStay, err
	}

	if c.index < len(c.visible)-1 {
		c.index++
		c.mu.Unlock()
		return TransitionAdvanced, nil
	}

	c.busy = true
	c.mu.Unlock()

	res, err := c.backend.Evaluate(ctx, answers.Clone())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.message = MessageEvaluateFailed
		c.logger.WarnContext(ctx, "evaluation failed", slog.String("step", step.ID), slog.Any("error", err))
		return TransitionStay, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}

	view := result.Render(res, c.palette)
	payload := answers.Clone()
	stored := res.Clone()
	c.lastPayload = &payload
	c.lastResult = &stored
	c.view = &view
	c.logger.DebugContext(ctx, "evaluation rendered", slog.String("mode", string(view.Mode)), slog.Int("measures", view.MeasureCount))
	return TransitionEvaluated, nil
}

// Prev moves one step back. It never validates and stops at the first step.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.recalculate()
	if c.index > 0 {
		c.index--
	}
	c.message = ""
	return nil
}

// Restart clears the answers, the result and the message and returns to the
// first step. Hooks registered with OnRestart run after the state is reset.
func (c *Controller) Restart() error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.form.Reset()
	c.index = 0
	c.message = ""
	c.lastPayload = nil
	c.lastResult = nil
	c.view = nil
	c.recalculate()
	hooks := append([]func(){}, c.onRestart...)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return nil
}

// OnRestart registers fn to run after every Restart.
func (c *Controller) OnRestart(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRestart = append(c.onRestart, fn)
}

// SetMessage writes text to the shared message surface.
func (c *Controller) SetMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = text
}

// Evaluation returns the payload and result of the last successful
// submission, or ErrNoEvaluation.
func (c *Controller) Evaluation() (model.AnswerSet, model.EvaluationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastPayload == nil || c.lastResult == nil {
		return model.AnswerSet{}, model.EvaluationResult{}, ErrNoEvaluation
	}
	return c.lastPayload.Clone(), c.lastResult.Clone(), nil
}

// View is a snapshot of everything a surface needs to draw the wizard.
type View struct {
	Step            StepDescriptor `json:"step"`
	Index           int            `json:"index"`
	Total           int            `json:"total"`
	Progress        float64        `json:"progress"`
	PrimaryLabel    string         `json:"primaryLabel"`
	PrimaryDisabled bool           `json:"primaryDisabled"`
	PrevDisabled    bool           `json:"prevDisabled"`
	Message         string         `json:"message,omitempty"`
	Badge           result.Badge   `json:"badge"`
	Result          *result.View   `json:"result,omitempty"`
	ActionsVisible  bool           `json:"actionsVisible"`
}

// Last reports whether the displayed step is the final one.
func (v View) Last() bool {
	return v.Index == v.Total-1
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := len(c.visible)
	view := View{
		Step:            c.visible[c.index].clone(),
		Index:           c.index,
		Total:           total,
		Progress:        float64(c.index+1) / float64(total),
		PrimaryLabel:    LabelNext,
		PrimaryDisabled: c.busy,
		PrevDisabled:    c.busy || c.index == 0,
		Message:         c.message,
		Badge:           result.InitialBadge(),
	}
	if c.index == total-1 {
		view.PrimaryLabel = LabelCompute
	}
	if c.busy {
		view.PrimaryLabel = LabelComputing
	}
	if c.view != nil {
		rendered := *c.view
		view.Result = &rendered
		view.Badge = rendered.Badge
		view.ActionsVisible = true
	}
	return view
}

// payload builds the AnswerSet without answers of hidden steps. Callers hold
// the lock.
func (c *Controller) payload() model.AnswerSet {
	hidden := make(map[string]bool)
	for _, step := range c.def.Steps {
		hidden[step.ID] = true
	}
	for _, step := range c.visible {
		delete(hidden, step.ID)
	}
	return Build(c.form, func(stepID string) bool { return !hidden[stepID] })
}

// recalculate rebuilds the visible step list and keeps the index on the same
// step when it is still visible, clamping it otherwise. Callers hold the lock.
func (c *Controller) recalculate() {
	current := ""
	if c.index < len(c.visible) {
		current = c.visible[c.index].ID
	}

	ctx := c.form.visibilityContext()
	visible := make([]StepDescriptor, 0, len(c.def.Steps))
	for _, step := range c.def.Steps {
		ok, err := c.rules.Eval(step.ID, step.VisibleWhen, ctx)
		if err != nil {
			c.logger.Warn("visibility rule failed", slog.String("step", step.ID), slog.Any("error", err))
			ok = true
		}
		if ok {
			visible = append(visible, step)
		}
	}
	if len(visible) == 0 {
		visible = append(visible, c.def.Steps[0])
	}
	c.visible = visible

	for i, step := range visible {
		if step.ID == current {
			c.index = i
			return
		}
	}
	if c.index >= len(visible) {
		c.index = len(visible) - 1
	}
	if c.index < 0 {
		c.index = 0
	}
}
