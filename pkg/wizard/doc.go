// Package wizard implements the questionnaire flow: step catalogs loaded as
// data, per-step validation, the form state behind each step, payload
// assembly, and the Controller state machine that sequences the steps and
// submits the final answers to an Evaluator.
//
// A minimal session:
//
//	def, _ := wizard.Builtin(wizard.CatalogThreeStep)
//	ctrl, _ := wizard.NewController(def, backend)
//	_ = ctrl.Change("dataType", "public", true)
//	_, _ = ctrl.Next(ctx)
//
// The Controller is safe for concurrent use. A submission in flight blocks
// navigation with ErrBusy until the Evaluator returns.
package wizard
