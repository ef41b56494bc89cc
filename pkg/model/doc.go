// Package model defines the request and response contract exchanged with the
// classification backend: the AnswerSet collected by the wizard, the
// EvaluationResult computed from it, and the export payloads built from both.
// Optional answers are pointers or empty values tagged `omitempty` so unset
// inputs are carried as absent JSON members instead of zero values.
package model
