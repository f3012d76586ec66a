package whatsapp

import (
	"context"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/apptintake/internal/model"
)

func fullConfig() Config {
	return Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "whatsapp:+14155238886",
		To:         "whatsapp:+15551234567",
	}
}

func TestConfig_Configured(t *testing.T) {
	if !fullConfig().Configured() {
		t.Fatal("complete config should be configured")
	}

	blank := func(mutate func(*Config)) Config {
		cfg := fullConfig()
		mutate(&cfg)
		return cfg
	}
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no sid", blank(func(c *Config) { c.AccountSID = "" })},
		{"no token", blank(func(c *Config) { c.AuthToken = "" })},
		{"no from", blank(func(c *Config) { c.From = "" })},
		{"no to", blank(func(c *Config) { c.To = " " })},
	}
	for _, tc := range cases {
		if tc.cfg.Configured() {
			t.Fatalf("%s: partial config must not count as configured", tc.name)
		}
	}
}

func TestNewSender_Unconfigured(t *testing.T) {
	s := NewSender(Config{})
	if s.Configured() {
		t.Fatal("sender without config must report unconfigured")
	}
	if _, err := s.Attempt(context.Background(), model.AppointmentRequest{}); err == nil {
		t.Fatal("attempt on an unconfigured sender must fail")
	}
}

func TestMessageBody_AllFields(t *testing.T) {
	appt := model.AppointmentRequest{
		Name:       "A",
		Email:      "a@x.com",
		Phone:      "1",
		Department: "D",
		Date:       "2026-09-01",
		Notes:      "first visit",
	}
	body := MessageBody(appt)

	lines := strings.Split(body, "\n")
	want := []string{
		"New Appointment Request",
		"Name: A",
		"Email: a@x.com",
		"Phone: 1",
		"Department: D",
		"Date: 2026-09-01",
		"Notes: first visit",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), body)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestMessageBody_AbsentOptionalsRenderDash(t *testing.T) {
	body := MessageBody(model.AppointmentRequest{Name: "A", Email: "a@x.com", Phone: "1", Department: "D"})
	if !strings.Contains(body, "Date: -") {
		t.Fatalf("absent date should render as dash: %q", body)
	}
	if !strings.Contains(body, "Notes: -") {
		t.Fatalf("absent notes should render as dash: %q", body)
	}
}
