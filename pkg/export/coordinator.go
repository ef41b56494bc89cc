// Package export coordinates the document downloads offered after an
// evaluation: the report, the act filled with organisation details, and the
// blank act template.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-ispdn/pkg/model"
)

var (
	// ErrNoEvaluation is returned when an intent needs a prior evaluation.
	ErrNoEvaluation = errors.New("export: no evaluation available")
	// ErrUnknownThreats is returned for acts requested on an unknown threat type.
	ErrUnknownThreats = errors.New("export: threat type is unknown")
	// ErrMissingField reports a blank organisation field.
	ErrMissingField = errors.New("export: required field is blank")
	// ErrBusy is returned while the same intent is in flight.
	ErrBusy = errors.New("export: request in progress")
)

// User facing messages.
const (
	MessageNoEvaluation   = "Сначала пройдите опрос, чтобы сохранить отчёт."
	MessageSaveFailed     = "Не удалось сохранить отчёт"
	MessageActNoEval      = "Сначала пройдите опрос, чтобы сформировать акт."
	MessageActUnknown     = "Тип угроз не определен. Скачайте акт для самостоятельного заполнения."
	MessageActFailed      = "Не удалось сформировать акт"
	MessageTemplateFailed = "Не удалось скачать шаблон акта"
	MessageMissingField   = "Заполните поле «%s»."
)

// ActTemplateBaseName names the blank act.
const ActTemplateBaseName = "Акт ИСПДн"

// Intent names one of the download actions.
type Intent string

const (
	IntentReport      Intent = "report"
	IntentAct         Intent = "act"
	IntentActTemplate Intent = "actTemplate"
)

// Control is the state of the button triggering an intent.
type Control struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

var idleLabels = map[Intent]string{
	IntentReport:      "Сохранить отчёт",
	IntentAct:         "Сформировать акт",
	IntentActTemplate: "Заполнить акт самостоятельно",
}

var busyLabels = map[Intent]string{
	IntentReport:      "Сохраняем...",
	IntentAct:         "Формируем...",
	IntentActTemplate: "Скачиваем...",
}

// FieldLabels are the dialog captions of the act fields.
var FieldLabels = struct {
	Organization string
	HeadPosition string
	SystemName   string
}{
	Organization: "Наименование организации",
	HeadPosition: "Должность ответственного",
	SystemName:   "Наименование информационной системы",
}

// Backend is the subset of the backend client used for documents.
type Backend interface {
	Export(ctx context.Context, req model.ExportRequest) (model.Document, error)
	ExportAct(ctx context.Context, req model.ActExportRequest) (model.Document, error)
	ActTemplate(ctx context.Context) (model.Document, error)
}

// Source exposes the last successful evaluation.
type Source interface {
	Evaluation() (model.AnswerSet, model.EvaluationResult, error)
}

// Surface is a message area.
type Surface interface {
	SetMessage(text string)
}

// SurfaceFunc adapts a function into a Surface.
type SurfaceFunc func(text string)

// SetMessage calls fn.
func (fn SurfaceFunc) SetMessage(text string) { fn(text) }

// InputsFunc collects the act fields, typically through a blocking dialog.
type InputsFunc func(ctx context.Context) (model.UserInputs, error)

// Delivered describes a document handed to the user.
type Delivered struct {
	Name        string
	Location    string
	ContentType string
	Size        int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSurface sets the main form message area.
func WithSurface(surface Surface) Option {
	return func(c *Coordinator) {
		if surface != nil {
			c.surface = surface
		}
	}
}

// WithDelivery sets where documents go. Defaults to the working directory.
func WithDelivery(delivery Delivery) Option {
	return func(c *Coordinator) {
		if delivery != nil {
			c.delivery = delivery
		}
	}
}

// WithLogger sets the failure logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Coordinator runs the download intents. Each intent has its own control;
// re-entering an intent in flight returns ErrBusy.
type Coordinator struct {
	backend  Backend
	source   Source
	surface  Surface
	delivery Delivery
	logger   *slog.Logger

	mu         sync.Mutex
	busy       map[Intent]bool
	generation uint64
}

// New builds a coordinator reading evaluations from source.
func New(backend Backend, source Source, opts ...Option) (*Coordinator, error) {
	if backend == nil {
		return nil, errors.New("export: backend is required")
	}
	if source == nil {
		return nil, errors.New("export: evaluation source is required")
	}
	c := &Coordinator{
		backend:  backend,
		source:   source,
		surface:  SurfaceFunc(func(string) {}),
		delivery: DirDelivery{Dir: "."},
		logger:   slog.New(slog.DiscardHandler),
		busy:     make(map[Intent]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Control reports the button state of intent.
func (c *Coordinator) Control(intent Intent) Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[intent] {
		return Control{Label: busyLabels[intent], Disabled: true}
	}
	return Control{Label: idleLabels[intent]}
}

// Reset runs on restart. Intents in flight keep their control busy until
// they return, but their messages no longer reach the surface.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
}

// SaveReport exports the report for the last evaluation under a sanitized
// version of desiredName.
func (c *Coordinator) SaveReport(ctx context.Context, desiredName string) (Delivered, error) {
	payload, _, err := c.source.Evaluation()
	if err != nil {
		c.surface.SetMessage(MessageNoEvaluation)
		return Delivered{}, fmt.Errorf("%w: %w", ErrNoEvaluation, err)
	}

	surface, release, err := c.acquire(IntentReport, c.surface)
	if err != nil {
		return Delivered{}, err
	}
	defer release()

	name := SanitizeFileName(desiredName)
	doc, err := c.backend.Export(ctx, model.ExportRequest{FileName: name, Payload: payload})
	if err != nil {
		return Delivered{}, c.fail(ctx, surface, MessageSaveFailed, IntentReport, err)
	}
	return c.deliver(ctx, surface, MessageSaveFailed, IntentReport, name, doc)
}

// DownloadActTemplate fetches the blank act. It needs no evaluation.
func (c *Coordinator) DownloadActTemplate(ctx context.Context) (Delivered, error) {
	return c.downloadTemplate(ctx, c.surface)
}

// ExportAct generates the act for the last evaluation. Failures are written
// to dialog, or to the main surface when dialog is nil.
func (c *Coordinator) ExportAct(ctx context.Context, inputs model.UserInputs, dialog Surface) (Delivered, error) {
	if dialog == nil {
		dialog = c.surface
	}
	payload, _, err := c.source.Evaluation()
	if err != nil {
		dialog.SetMessage(MessageActNoEval)
		return Delivered{}, fmt.Errorf("%w: %w", ErrNoEvaluation, err)
	}
	if payload.HasUnknownThreats() {
		dialog.SetMessage(MessageActUnknown)
		return Delivered{}, ErrUnknownThreats
	}

	inputs, err = normaliseInputs(inputs)
	if err != nil {
		var missing *MissingFieldError
		if errors.As(err, &missing) {
			dialog.SetMessage(fmt.Sprintf(MessageMissingField, missing.Label))
		}
		return Delivered{}, err
	}

	dialog, release, err := c.acquire(IntentAct, dialog)
	if err != nil {
		return Delivered{}, err
	}
	defer release()

	name := SanitizeFileName(inputs.SystemName)
	doc, err := c.backend.ExportAct(ctx, model.ActExportRequest{FileName: name, Payload: payload, UserInputs: inputs})
	if err != nil {
		return Delivered{}, c.fail(ctx, dialog, MessageActFailed, IntentAct, err)
	}
	return c.deliver(ctx, dialog, MessageActFailed, IntentAct, name, doc)
}

// Act runs the act flow: without a settled threat type it falls back to the
// blank template, otherwise it collects the fields and exports the act.
func (c *Coordinator) Act(ctx context.Context, collect InputsFunc, dialog Surface) (Delivered, error) {
	if dialog == nil {
		dialog = c.surface
	}
	payload, _, err := c.source.Evaluation()
	if err != nil || payload.HasUnknownThreats() {
		return c.downloadTemplate(ctx, dialog)
	}
	if collect == nil {
		return Delivered{}, errors.New("export: act fields collector is required")
	}
	inputs, err := collect(ctx)
	if err != nil {
		return Delivered{}, err
	}
	return c.ExportAct(ctx, inputs, dialog)
}

func (c *Coordinator) downloadTemplate(ctx context.Context, surface Surface) (Delivered, error) {
	surface, release, err := c.acquire(IntentActTemplate, surface)
	if err != nil {
		return Delivered{}, err
	}
	defer release()

	doc, err := c.backend.ActTemplate(ctx)
	if err != nil {
		return Delivered{}, c.fail(ctx, surface, MessageTemplateFailed, IntentActTemplate, err)
	}
	return c.deliver(ctx, surface, MessageTemplateFailed, IntentActTemplate, sanitize("", ActTemplateBaseName), doc)
}

func (c *Coordinator) deliver(ctx context.Context, surface Surface, message string, intent Intent, name string, doc model.Document) (Delivered, error) {
	doc.Name = name
	location, err := c.delivery.Deliver(ctx, doc)
	if err != nil {
		return Delivered{}, c.fail(ctx, surface, message, intent, err)
	}
	c.logger.InfoContext(ctx, "document delivered",
		slog.String("intent", string(intent)),
		slog.String("location", location),
		slog.Int("bytes", len(doc.Body)))
	return Delivered{Name: name, Location: location, ContentType: doc.ContentType, Size: len(doc.Body)}, nil
}

func (c *Coordinator) fail(ctx context.Context, surface Surface, message string, intent Intent, err error) error {
	surface.SetMessage(message)
	c.logger.WarnContext(ctx, "export failed", slog.String("intent", string(intent)), slog.Any("error", err))
	return fmt.Errorf("export: %s: %w", intent, err)
}

// acquire marks intent busy and returns surface guarded against a Reset
// happening before the intent returns.
func (c *Coordinator) acquire(intent Intent, surface Surface) (Surface, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[intent] {
		return nil, nil, ErrBusy
	}
	c.busy[intent] = true
	generation := c.generation
	guarded := SurfaceFunc(func(text string) {
		c.mu.Lock()
		current := c.generation == generation
		c.mu.Unlock()
		if current {
			surface.SetMessage(text)
		}
	})
	return guarded, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.busy, intent)
	}, nil
}

// MissingFieldError names the blank act field.
type MissingFieldError struct {
	Field string
	Label string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("export: field %s is required", e.Field)
}

// Unwrap lets errors.Is match ErrMissingField.
func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

func normaliseInputs(inputs model.UserInputs) (model.UserInputs, error) {
	inputs.Organization = strings.TrimSpace(inputs.Organization)
	inputs.HeadPosition = strings.TrimSpace(inputs.HeadPosition)
	inputs.SystemName = strings.TrimSpace(inputs.SystemName)
	switch {
	case inputs.Organization == "":
		return inputs, &MissingFieldError{Field: "organization", Label: FieldLabels.Organization}
	case inputs.HeadPosition == "":
		return inputs, &MissingFieldError{Field: "headPosition", Label: FieldLabels.HeadPosition}
	case inputs.SystemName == "":
		return inputs, &MissingFieldError{Field: "systemName", Label: FieldLabels.SystemName}
	}
	return inputs, nil
}
