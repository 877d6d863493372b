package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/orgchart/pkg/config"
)

func TestWizardAnswersRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	got, err := NewWizardAnswers(cfg).Apply(cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Card.Width != cfg.Card.Width || got.Card.Height != cfg.Card.Height {
		t.Errorf("card size changed: %vx%v", got.Card.Width, got.Card.Height)
	}
	if got.Server.Transition != cfg.Server.Transition {
		t.Errorf("transition = %v", got.Server.Transition)
	}
}

func TestWizardApply(t *testing.T) {
	cfg := config.DefaultConfig()
	a := NewWizardAnswers(cfg)
	a.Source = "  people.csv "
	a.CardWidth = "320"
	a.CardHeight = "160.5"
	a.WrapWidth = "30"
	a.Accordion = true
	a.Addr = "127.0.0.1:9000"
	a.Transition = "0s"
	a.Strict = true

	got, err := a.Apply(cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Source != "people.csv" {
		t.Errorf("Source = %q", got.Source)
	}
	if got.Card.Width != 320 || got.Card.Height != 160.5 || got.Card.WrapWidth != 30 {
		t.Errorf("card = %v x %v wrap %d", got.Card.Width, got.Card.Height, got.Card.WrapWidth)
	}
	if !got.Server.Accordion || !got.Strict {
		t.Error("flags not applied")
	}
	if got.Server.Transition != 0 {
		t.Errorf("Transition = %v", got.Server.Transition)
	}
	if cfg.Source != "" || cfg.Card.Width == 320 {
		t.Error("Apply modified its argument")
	}
}

func TestWizardApplyRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WizardAnswers)
		want   string
	}{
		{"width", func(a *WizardAnswers) { a.CardWidth = "wide" }, "card width"},
		{"height", func(a *WizardAnswers) { a.CardHeight = "-1" }, "card height"},
		{"wrap", func(a *WizardAnswers) { a.WrapWidth = "0" }, "wrap width"},
		{"transition", func(a *WizardAnswers) { a.Transition = "soon" }, "transition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewWizardAnswers(config.DefaultConfig())
			tt.mutate(&a)
			_, err := a.Apply(config.DefaultConfig())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestWizardValidators(t *testing.T) {
	if err := validatePositive("12"); err != nil {
		t.Errorf("validatePositive(12) = %v", err)
	}
	for _, bad := range []string{"", "0", "-3", "abc"} {
		if validatePositive(bad) == nil {
			t.Errorf("validatePositive(%q) accepted", bad)
		}
	}
	if err := validateDuration((250 * time.Millisecond).String()); err != nil {
		t.Errorf("validateDuration = %v", err)
	}
	for _, bad := range []string{"", "fast", "-1s"} {
		if validateDuration(bad) == nil {
			t.Errorf("validateDuration(%q) accepted", bad)
		}
	}
}

func TestConfigFormBuilds(t *testing.T) {
	a := NewWizardAnswers(config.DefaultConfig())
	if ConfigForm(&a, nil) == nil {
		t.Fatal("nil form")
	}
	if ConfigForm(&a, []string{"a.csv", "b.csv"}) == nil {
		t.Fatal("nil form with candidates")
	}
}
