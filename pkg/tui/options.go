package tui

import (
	"log/slog"

	"github.com/goliatone/go-ispdn/pkg/result"
)

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithResultRenderer selects how results are printed. Defaults to the text
// renderer.
func WithResultRenderer(renderer result.Renderer) Option {
	return func(s *Session) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithColor toggles ANSI colouring of the level badge.
func WithColor(enabled bool) Option {
	return func(s *Session) {
		s.color = enabled
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
