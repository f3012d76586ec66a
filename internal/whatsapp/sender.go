package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/md-rashed-zaman/apptintake/internal/model"
	"github.com/md-rashed-zaman/apptintake/libs/config"
)

// Config holds the Twilio WhatsApp channel settings. All four values are
// mandatory; missing any one leaves the channel unconfigured and it is never
// attempted. From/To carry the provider's "whatsapp:+<number>" form.
type Config struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

func ConfigFromEnv() Config {
	return Config{
		AccountSID: config.String("TWILIO_ACCOUNT_SID", ""),
		AuthToken:  config.String("TWILIO_AUTH_TOKEN", ""),
		From:       config.String("TWILIO_WHATSAPP_FROM", ""),
		To:         config.String("WHATSAPP_TO", ""),
	}
}

func (c Config) Configured() bool {
	return strings.TrimSpace(c.AccountSID) != "" &&
		strings.TrimSpace(c.AuthToken) != "" &&
		strings.TrimSpace(c.From) != "" &&
		strings.TrimSpace(c.To) != ""
}

// Sender notifies a fixed recipient about each new appointment request.
type Sender struct {
	cfg    Config
	client *twilio.RestClient
}

func NewSender(cfg Config) *Sender {
	s := &Sender{cfg: cfg}
	if !cfg.Configured() {
		return s
	}
	tc := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(cfg.AccountSID, cfg.AuthToken),
	}
	tc.SetTimeout(10 * time.Second)
	s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
		Client:   tc,
	})
	return s
}

func (s *Sender) Name() string { return "whatsapp" }

func (s *Sender) Configured() bool { return s.client != nil }

// Attempt sends one message and returns the provider message SID as the
// delivery token. Exactly one attempt; a transient provider failure is a
// terminal failure for this request.
func (s *Sender) Attempt(ctx context.Context, appt model.AppointmentRequest) (string, error) {
	if s.client == nil {
		return "", errors.New("whatsapp channel not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(s.cfg.From)
	params.SetTo(s.cfg.To)
	params.SetBody(MessageBody(appt))

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	if msg.Sid == nil || *msg.Sid == "" {
		return "", errors.New("provider returned no message sid")
	}
	return *msg.Sid, nil
}

// MessageBody renders the fixed human-readable notification. Absent date and
// notes show as "-" so the recipient sees every line either way.
func MessageBody(appt model.AppointmentRequest) string {
	return strings.Join([]string{
		"New Appointment Request",
		"Name: " + appt.Name,
		"Email: " + appt.Email,
		"Phone: " + appt.Phone,
		"Department: " + appt.Department,
		"Date: " + orDash(appt.Date),
		"Notes: " + orDash(appt.Notes),
	}, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
