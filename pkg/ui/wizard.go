package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgchart/pkg/config"
)

// WizardAnswers holds the raw form values of the config wizard.
type WizardAnswers struct {
	Source     string
	CardWidth  string
	CardHeight string
	WrapWidth  string
	Accordion  bool
	Addr       string
	Transition string
	Strict     bool
}

// NewWizardAnswers pre-fills the form from cfg.
func NewWizardAnswers(cfg config.Config) WizardAnswers {
	return WizardAnswers{
		Source:     cfg.Source,
		CardWidth:  strconv.FormatFloat(cfg.Card.Width, 'f', -1, 64),
		CardHeight: strconv.FormatFloat(cfg.Card.Height, 'f', -1, 64),
		WrapWidth:  strconv.Itoa(cfg.Card.WrapWidth),
		Accordion:  cfg.Server.Accordion,
		Addr:       cfg.Server.Addr,
		Transition: cfg.Server.Transition.String(),
		Strict:     cfg.Strict,
	}
}

// Apply parses the answers onto a copy of cfg and validates the result.
func (a WizardAnswers) Apply(cfg config.Config) (config.Config, error) {
	var err error
	cfg.Source = strings.TrimSpace(a.Source)
	if cfg.Card.Width, err = parsePositive(a.CardWidth); err != nil {
		return cfg, fmt.Errorf("card width: %w", err)
	}
	if cfg.Card.Height, err = parsePositive(a.CardHeight); err != nil {
		return cfg, fmt.Errorf("card height: %w", err)
	}
	wrap, err := parsePositive(a.WrapWidth)
	if err != nil {
		return cfg, fmt.Errorf("wrap width: %w", err)
	}
	cfg.Card.WrapWidth = int(wrap)
	cfg.Server.Accordion = a.Accordion
	cfg.Server.Addr = strings.TrimSpace(a.Addr)
	if cfg.Server.Transition, err = time.ParseDuration(strings.TrimSpace(a.Transition)); err != nil {
		return cfg, fmt.Errorf("transition: %w", err)
	}
	cfg.Strict = a.Strict
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if v <= 0 {
		return 0, errors.New("must be greater than zero")
	}
	return v, nil
}

func validatePositive(s string) error {
	_, err := parsePositive(s)
	return err
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return errors.New("use a duration like 300ms")
	}
	if d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// wizardTheme styles the form with the browser's palette.
func wizardTheme() *huh.Theme {
	t := huh.ThemeBase()
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	t.Focused.Title = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(theme.Muted)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(theme.Primary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(theme.Highlight)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(theme.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(theme.Muted)
	t.Focused.FocusedButton = lipgloss.NewStyle().Background(theme.Primary).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(theme.Muted).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(theme.Muted)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(theme.Muted)
	return t
}

// ConfigForm builds the wizard over a. When candidates is non-empty the
// source is picked from them, otherwise typed in.
func ConfigForm(a *WizardAnswers, candidates []string) *huh.Form {
	var source huh.Field
	if len(candidates) > 0 {
		opts := make([]huh.Option[string], 0, len(candidates)+1)
		for _, c := range candidates {
			opts = append(opts, huh.NewOption(c, c))
		}
		if a.Source != "" {
			opts = append(opts, huh.NewOption(a.Source+" (current)", a.Source))
		}
		source = huh.NewSelect[string]().
			Title("Data source").
			Options(opts...).
			Value(&a.Source)
	} else {
		source = huh.NewInput().
			Title("Data source").
			Description("CSV URL, .csv file or sqlite:<path>?table=<name>. Blank uses the default sheet.").
			Value(&a.Source)
	}

	return huh.NewForm(
		huh.NewGroup(
			source,
			huh.NewConfirm().
				Title("Reject duplicate ids and extra roots?").
				Value(&a.Strict),
		),
		huh.NewGroup(
			huh.NewInput().Title("Card width").Value(&a.CardWidth).Validate(validatePositive),
			huh.NewInput().Title("Card height").Value(&a.CardHeight).Validate(validatePositive),
			huh.NewInput().Title("Wrap after (characters)").Value(&a.WrapWidth).Validate(validatePositive),
		),
		huh.NewGroup(
			huh.NewInput().Title("Listen address").Value(&a.Addr),
			huh.NewInput().Title("Transition").Placeholder("300ms").Value(&a.Transition).Validate(validateDuration),
			huh.NewConfirm().
				Title("Accordion mode?").
				Description("Expanding a person collapses their siblings.").
				Value(&a.Accordion),
		),
	).WithTheme(wizardTheme()).WithShowHelp(false)
}

// RunConfigWizard asks for the main settings interactively and returns cfg
// with the answers applied.
func RunConfigWizard(cfg config.Config, candidates []string) (config.Config, error) {
	answers := NewWizardAnswers(cfg)
	if err := ConfigForm(&answers, candidates).Run(); err != nil {
		return cfg, err
	}
	return answers.Apply(cfg)
}
