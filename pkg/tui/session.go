// Package tui runs the questionnaire in a terminal: one prompt per visible
// step, a navigation menu after each answer, and a result menu exposing the
// document downloads once an evaluation succeeded.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/goliatone/go-ispdn/pkg/export"
	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/result"
	"github.com/goliatone/go-ispdn/pkg/selection"
	"github.com/goliatone/go-ispdn/pkg/wizard"
)

// Menu captions.
const (
	LabelBack         = "Назад"
	LabelRestart      = "Начать заново"
	LabelQuit         = "Выйти"
	LabelEditAnswers  = "Изменить ответы"
	LabelActTemplate  = "Скачать шаблон акта"
	PromptReportName  = "Введите название отчёта"
	PromptNavigation  = "Что дальше?"
	PromptResultMenu  = "Действия с результатом"
	progressBarLength = 20
)

// Session drives a wizard.Controller and an export.Coordinator through a
// PromptDriver.
type Session struct {
	ctrl     *wizard.Controller
	exports  *export.Coordinator
	driver   PromptDriver
	renderer result.Renderer
	color    bool
	logger   *slog.Logger

	showResult bool
}

// NewSession wires a session. exports may be nil, in which case the result
// menu only offers navigation.
func NewSession(ctrl *wizard.Controller, exports *export.Coordinator, opts ...Option) (*Session, error) {
	if ctrl == nil {
		return nil, errors.New("tui: controller is required")
	}
	s := &Session{
		ctrl:     ctrl,
		exports:  exports,
		renderer: result.NewTextRenderer(),
		color:    !color.NoColor,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

type menuItem struct {
	label  string
	action func(ctx context.Context) (bool, error)
}

// Run loops until the user quits. ErrAborted is returned on Ctrl+C.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		view := s.ctrl.View()
		if s.showResult && view.Result != nil {
			done, err := s.resultMenu(ctx)
			if err != nil || done {
				return err
			}
			continue
		}

		if err := s.header(ctx, view); err != nil {
			return err
		}
		if err := s.askStep(ctx, view.Step); err != nil {
			return err
		}
		done, err := s.navigate(ctx)
		if err != nil || done {
			return err
		}
	}
}

func (s *Session) header(ctx context.Context, view wizard.View) error {
	filled := int(view.Progress * progressBarLength)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarLength-filled)
	lines := []string{fmt.Sprintf("%s  Шаг %d из %d", bar, view.Index+1, view.Total)}
	if view.Step.Help != "" {
		lines = append(lines, view.Step.Help)
	}
	return s.driver.Info(ctx, strings.Join(lines, "\n"))
}

func (s *Session) askStep(ctx context.Context, step wizard.StepDescriptor) error {
	labels := make([]string, len(step.Options))
	for i, opt := range step.Options {
		labels[i] = opt.Label
	}
	checked := make(map[string]bool)
	for _, value := range s.ctrl.Checked(step.ID) {
		checked[value] = true
	}

	cfg := SelectConfig{Message: step.Title, Options: labels, Help: step.Help, DefaultIndex: -1}
	for i, opt := range step.Options {
		if checked[opt.Value] {
			cfg.Defaults = append(cfg.Defaults, i)
			if cfg.DefaultIndex < 0 {
				cfg.DefaultIndex = i
			}
		}
	}

	if s.multi(step) {
		picked, err := s.driver.MultiSelect(ctx, cfg)
		if err != nil {
			return err
		}
		values := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(step.Options) {
				values = append(values, step.Options[idx].Value)
			}
		}
		return s.ctrl.Replace(step.ID, values)
	}

	idx, err := s.driver.Select(ctx, cfg)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(step.Options) {
		return nil
	}
	return s.ctrl.Change(step.ID, step.Options[idx].Value, true)
}

func (s *Session) multi(step wizard.StepDescriptor) bool {
	return step.Kind == wizard.KindThreats && s.ctrl.Definition().ThreatMode != selection.ModeSingle
}

// navigate offers the primary action and the secondary controls. It reports
// true when the user chose to quit.
func (s *Session) navigate(ctx context.Context) (bool, error) {
	view := s.ctrl.View()
	items := []menuItem{{label: view.PrimaryLabel, action: s.next}}
	if !view.PrevDisabled {
		items = append(items, menuItem{label: LabelBack, action: s.prev})
	}
	items = append(items,
		menuItem{label: LabelRestart, action: s.restart},
		menuItem{label: LabelQuit, action: quit},
	)
	return s.choose(ctx, PromptNavigation, items)
}

func (s *Session) resultMenu(ctx context.Context) (bool, error) {
	var items []menuItem
	if s.exports != nil {
		items = append(items,
			menuItem{label: s.exports.Control(export.IntentReport).Label, action: s.saveReport},
			menuItem{label: s.exports.Control(export.IntentAct).Label, action: s.act},
			menuItem{label: LabelActTemplate, action: s.actTemplate},
		)
	}
	items = append(items,
		menuItem{label: LabelEditAnswers, action: s.edit},
		menuItem{label: LabelRestart, action: s.restart},
		menuItem{label: LabelQuit, action: quit},
	)
	return s.choose(ctx, PromptResultMenu, items)
}

func (s *Session) choose(ctx context.Context, message string, items []menuItem) (bool, error) {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.label
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: labels})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx >= len(items) {
		return false, nil
	}
	done, err := items[idx].action(ctx)
	if err != nil {
		return done, err
	}
	return done, s.flushMessage(ctx)
}

func (s *Session) next(ctx context.Context) (bool, error) {
	transition, err := s.ctrl.Next(ctx)
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, wizard.ErrEvaluate):
		// the message surface carries the user facing text
		return false, nil
	case err != nil:
		return false, err
	}
	if transition == wizard.TransitionEvaluated {
		s.showResult = true
		return false, s.printResult(ctx)
	}
	return false, nil
}

func (s *Session) prev(context.Context) (bool, error) {
	return false, s.ctrl.Prev()
}

func (s *Session) restart(context.Context) (bool, error) {
	s.showResult = false
	return false, s.ctrl.Restart()
}

// edit leaves the result menu and returns to the last step.
func (s *Session) edit(context.Context) (bool, error) {
	s.showResult = false
	return false, nil
}

func quit(context.Context) (bool, error) {
	return true, nil
}

func (s *Session) saveReport(ctx context.Context) (bool, error) {
	name, err := s.driver.Input(ctx, InputConfig{Message: PromptReportName, Default: export.DefaultBaseName})
	if err != nil {
		return false, err
	}
	delivered, err := s.exports.SaveReport(ctx, name)
	return false, s.reportDelivery(ctx, delivered, err)
}

func (s *Session) act(ctx context.Context) (bool, error) {
	dialog := export.SurfaceFunc(func(text string) {
		if err := s.driver.Info(ctx, s.paint(result.ToneUndetermined, text)); err != nil {
			s.logger.Debug("dialog message not shown", slog.Any("error", err))
		}
	})
	delivered, err := s.exports.Act(ctx, s.collectInputs, dialog)
	if errors.Is(err, ErrAborted) {
		return false, err
	}
	return false, s.reportDelivery(ctx, delivered, err)
}

func (s *Session) actTemplate(ctx context.Context) (bool, error) {
	delivered, err := s.exports.DownloadActTemplate(ctx)
	return false, s.reportDelivery(ctx, delivered, err)
}

func (s *Session) collectInputs(ctx context.Context) (model.UserInputs, error) {
	required := func(text string) error {
		if strings.TrimSpace(text) == "" {
			return errors.New("поле обязательно")
		}
		return nil
	}
	var inputs model.UserInputs
	var err error
	if inputs.Organization, err = s.driver.Input(ctx, InputConfig{Message: export.FieldLabels.Organization, Validator: required}); err != nil {
		return inputs, err
	}
	if inputs.HeadPosition, err = s.driver.Input(ctx, InputConfig{Message: export.FieldLabels.HeadPosition, Validator: required}); err != nil {
		return inputs, err
	}
	if inputs.SystemName, err = s.driver.Input(ctx, InputConfig{Message: export.FieldLabels.SystemName, Validator: required}); err != nil {
		return inputs, err
	}
	return inputs, nil
}

// reportDelivery prints where a document went. Coordinator failures have
// already been written to a message surface, so only prompt errors escape.
func (s *Session) reportDelivery(ctx context.Context, delivered export.Delivered, err error) error {
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return err
		}
		s.logger.Debug("export intent failed", slog.Any("error", err))
		return nil
	}
	return s.driver.Info(ctx, fmt.Sprintf("Сохранено: %s", delivered.Location))
}

func (s *Session) printResult(ctx context.Context) error {
	view := s.ctrl.View()
	if view.Result == nil {
		return nil
	}
	body, err := s.renderer.Render(ctx, *view.Result)
	if err != nil {
		return fmt.Errorf("tui: render result: %w", err)
	}
	text := string(body)
	badge := "[" + view.Badge.Text + "]"
	if strings.HasPrefix(text, badge) {
		text = s.paint(view.Badge.Tone, badge) + strings.TrimPrefix(text, badge)
	}
	return s.driver.Info(ctx, strings.TrimRight(text, "\n"))
}

func (s *Session) flushMessage(ctx context.Context) error {
	view := s.ctrl.View()
	if view.Message == "" {
		return nil
	}
	s.ctrl.SetMessage("")
	return s.driver.Info(ctx, s.paint(result.ToneUndetermined, view.Message))
}

func (s *Session) paint(tone result.Tone, text string) string {
	var c *color.Color
	switch tone {
	case result.ToneCritical:
		c = color.New(color.FgRed, color.Bold)
	case result.ToneLevel:
		c = color.New(color.FgBlue, color.Bold)
	case result.ToneUndetermined:
		c = color.New(color.FgYellow)
	default:
		return text
	}
	if s.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}
