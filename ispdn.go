// Package ispdn assembles the questionnaire wizard: backend client, step
// controller, export coordinator and the interactive terminal session.
package ispdn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-ispdn/pkg/client"
	"github.com/goliatone/go-ispdn/pkg/contract"
	"github.com/goliatone/go-ispdn/pkg/export"
	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/result"
	"github.com/goliatone/go-ispdn/pkg/tui"
	"github.com/goliatone/go-ispdn/pkg/wizard"
)

// Option configures NewWizard.
type Option func(*settings)

type settings struct {
	definition *wizard.Definition
	catalog    string
	httpClient *http.Client
	timeout    time.Duration
	validate   bool
	palette    *result.Palette
	delivery   export.Delivery
	surface    export.Surface
	logger     *slog.Logger
}

// WithCatalog selects a built-in step catalog by name.
func WithCatalog(name string) Option {
	return func(s *settings) {
		s.catalog = name
	}
}

// WithDefinition supplies a step catalog directly.
func WithDefinition(def wizard.Definition) Option {
	return func(s *settings) {
		s.definition = &def
	}
}

// WithHTTPClient overrides the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.httpClient = hc
	}
}

// WithTimeout bounds every backend call.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithContractValidation toggles request and response checks against the
// embedded OpenAPI contract. Enabled by default.
func WithContractValidation(enabled bool) Option {
	return func(s *settings) {
		s.validate = enabled
	}
}

// WithPalette sets the badge palette.
func WithPalette(palette result.Palette) Option {
	return func(s *settings) {
		s.palette = &palette
	}
}

// WithDelivery sets where exported documents end up.
func WithDelivery(delivery export.Delivery) Option {
	return func(s *settings) {
		s.delivery = delivery
	}
}

// WithSurface routes export messages to surface. By default they share the
// controller message.
func WithSurface(surface export.Surface) Option {
	return func(s *settings) {
		s.surface = surface
	}
}

// WithLogger shares logger with every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Wizard bundles the wired components.
type Wizard struct {
	Client     *client.Client
	Controller *wizard.Controller
	Exports    *export.Coordinator
}

// NewWizard wires a wizard talking to the backend at baseURL. Documents are
// Restarting the controller drops messages from export intents still in flight.
// Restarting the controller mutes export intents still in flight.
func NewWizard(ctx context.Context, baseURL string, options ...Option) (*Wizard, error) {
	s := settings{catalog: wizard.DefaultCatalog, validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}

	def, err := s.resolveDefinition()
	if err != nil {
		return nil, err
	}

	clientOpts := []client.Option{client.WithHTTPClient(s.httpClient), client.WithTimeout(s.timeout), client.WithLogger(s.logger)}
	if s.validate {
		spec, err := contract.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("ispdn: load contract: %w", err)
		}
		clientOpts = append(clientOpts, client.WithContract(spec))
	}
	backend, err := client.New(baseURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	ctrlOpts := []wizard.Option{wizard.WithLogger(s.logger)}
	if s.palette != nil {
		ctrlOpts = append(ctrlOpts, wizard.WithPalette(*s.palette))
	}
	ctrl, err := wizard.NewController(def, backend, ctrlOpts...)
	if err != nil {
		return nil, err
	}

	surface := s.surface
	if surface == nil {
		surface = ctrl
	}
	exportOpts := []export.Option{export.WithLogger(s.logger), export.WithSurface(surface), export.WithDelivery(s.delivery)}
	exports, err := export.New(backend, ctrl, exportOpts...)
	if err != nil {
		return nil, err
	}
	ctrl.OnRestart(exports.Reset)

	return &Wizard{Client: backend, Controller: ctrl, Exports: exports}, nil
}

// Session builds an interactive terminal session over the wizard.
func (w *Wizard) Session(options ...tui.Option) (*tui.Session, error) {
	return tui.NewSession(w.Controller, w.Exports, options...)
}

// Submit restarts the controller, fills it with answers and walks every
// visible step. A step that fails validation stops the walk with its
// *wizard.ValidationError.
func (w *Wizard) Submit(ctx context.Context, answers model.AnswerSet) (result.View, error) {
	if err := w.Controller.Restart(); err != nil {
		return result.View{}, err
	}
	if err := w.Controller.Fill(answers); err != nil {
		return result.View{}, err
	}
	for range len(w.Controller.Definition().Steps) + 1 {
		transition, err := w.Controller.Next(ctx)
		if err != nil {
			return result.View{}, err
		}
		if transition == wizard.TransitionEvaluated {
			view := w.Controller.View()
			return *view.Result, nil
		}
	}
	return result.View{}, errors.New("ispdn: wizard did not reach the last step")
}

func (s settings) resolveDefinition() (wizard.Definition, error) {
	if s.definition != nil {
		return *s.definition, nil
	}
	return wizard.Builtin(s.catalog)
}
