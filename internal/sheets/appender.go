package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/md-rashed-zaman/apptintake/internal/model"
	"github.com/md-rashed-zaman/apptintake/libs/config"
)

// DefaultWorksheet is used when GOOGLE_SHEETS_WORKSHEET is unset.
const DefaultWorksheet = "Sheet1"

// Config holds everything the spreadsheet-log channel needs. The channel
// counts as configured only when credentials and the spreadsheet id are both
// present; presence is checked, validity is not.
type Config struct {
	CredentialsJSON string
	SpreadsheetID   string
	Worksheet       string
}

func ConfigFromEnv() Config {
	return Config{
		CredentialsJSON: config.String("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		SpreadsheetID:   config.String("GOOGLE_SHEETS_SPREADSHEET", ""),
		Worksheet:       config.String("GOOGLE_SHEETS_WORKSHEET", DefaultWorksheet),
	}
}

func (c Config) Configured() bool {
	return strings.TrimSpace(c.CredentialsJSON) != "" && strings.TrimSpace(c.SpreadsheetID) != ""
}

// Appender logs each appointment as one row in a Google Sheet.
type Appender struct {
	cfg Config
}

func NewAppender(cfg Config) *Appender {
	if strings.TrimSpace(cfg.Worksheet) == "" {
		cfg.Worksheet = DefaultWorksheet
	}
	return &Appender{cfg: cfg}
}

func (a *Appender) Name() string { return "google_sheets" }

func (a *Appender) Configured() bool { return a.cfg.Configured() }

// Attempt appends one row to the configured worksheet, falling back to the
// spreadsheet's first sheet when the named one does not exist. The returned
// token is the title of the worksheet actually written to.
func (a *Appender) Attempt(ctx context.Context, appt model.AppointmentRequest) (string, error) {
	jwt, err := google.JWTConfigFromJSON([]byte(a.cfg.CredentialsJSON), gsheets.SpreadsheetsScope)
	if err != nil {
		return "", fmt.Errorf("parse service account credentials: %w", err)
	}

	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return "", fmt.Errorf("init sheets client: %w", err)
	}

	doc, err := svc.Spreadsheets.Get(a.cfg.SpreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}

	title := ResolveWorksheet(worksheetTitles(doc), a.cfg.Worksheet)
	if title == "" {
		return "", errors.New("spreadsheet has no worksheets")
	}

	values := &gsheets.ValueRange{Values: [][]any{AppointmentRow(appt)}}
	_, err = svc.Spreadsheets.Values.Append(a.cfg.SpreadsheetID, "'"+title+"'!A1", values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append row: %w", err)
	}
	return title, nil
}

func worksheetTitles(doc *gsheets.Spreadsheet) []string {
	titles := make([]string, 0, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties == nil {
			continue
		}
		titles = append(titles, sh.Properties.Title)
	}
	return titles
}

// ResolveWorksheet picks the named worksheet when it exists, otherwise the
// first one. Empty when the spreadsheet has no sheets at all.
func ResolveWorksheet(titles []string, want string) string {
	for _, t := range titles {
		if t == want {
			return t
		}
	}
	if len(titles) > 0 {
		return titles[0]
	}
	return ""
}

// AppointmentRow fixes the logged column order: name, email, phone,
// department, date, notes. Absent optionals stay empty cells.
func AppointmentRow(appt model.AppointmentRequest) []any {
	return []any{appt.Name, appt.Email, appt.Phone, appt.Department, appt.Date, appt.Notes}
}
