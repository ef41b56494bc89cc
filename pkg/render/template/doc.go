// Package template defines the template rendering seam used by markup
// renderers, keeping them independent of the concrete engine.
package template
