package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env"
)

const (
	BackendGoogle = "google"
	BackendCalDAV = "caldav"

	NotifierGmail = "gmail"
	NotifierSNS   = "sns"
	NotifierLog   = "log"
)

// Config is read from the environment, after an optional .env file is loaded.
type Config struct {
	SpreadsheetID string `env:"SPREADSHEET_ID,required"`
	SheetName     string `env:"SHEET_NAME" envDefault:"Events"`

	CalendarBackend  string `env:"CALENDAR_BACKEND" envDefault:"google"`
	GoogleCalendarID string `env:"GOOGLE_CALENDAR_ID" envDefault:"primary"`
	GoogleClientID   string `env:"GOOGLE_CLIENT_ID"`
	GoogleSecret     string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleAccount    string `env:"GOOGLE_ACCOUNT" envDefault:"default"`

	CalDAVEndpoint string `env:"CALDAV_ENDPOINT" envDefault:"https://caldav.icloud.com/"`
	CalDAVUsername string `env:"CALDAV_USERNAME"`
	CalDAVPassword string `env:"CALDAV_PASSWORD"`
	CalDAVCalendar string `env:"CALDAV_CALENDAR_NAME"`

	Notifier    string `env:"NOTIFIER" envDefault:"gmail"`
	NotifyEmail string `env:"NOTIFY_EMAIL"`
	SNSTopicARN string `env:"SNS_TOPIC_ARN"`

	TimeZone string `env:"PRIMARY_TIMEZONE" envDefault:"Local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing environment variables: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.CalendarBackend = strings.ToLower(strings.TrimSpace(c.CalendarBackend))
	c.Notifier = strings.ToLower(strings.TrimSpace(c.Notifier))
	c.SpreadsheetID = strings.TrimSpace(c.SpreadsheetID)
	c.NotifyEmail = strings.TrimSpace(c.NotifyEmail)
}

func (c Config) Validate() error {
	if c.SpreadsheetID == "" {
		return errors.New("SPREADSHEET_ID is required")
	}
	if c.SheetName == "" {
		return errors.New("SHEET_NAME must not be empty")
	}

	switch c.CalendarBackend {
	case BackendGoogle:
		if c.GoogleCalendarID == "" {
			return errors.New("GOOGLE_CALENDAR_ID is required when CALENDAR_BACKEND=google")
		}
	case BackendCalDAV:
		if c.CalDAVUsername == "" || c.CalDAVPassword == "" || c.CalDAVCalendar == "" {
			return errors.New("CALDAV_USERNAME, CALDAV_PASSWORD and CALDAV_CALENDAR_NAME are required when CALENDAR_BACKEND=caldav")
		}
	default:
		return fmt.Errorf("invalid calendar backend: %s", c.CalendarBackend)
	}

	switch c.Notifier {
	case NotifierGmail:
		if c.NotifyEmail == "" {
			return errors.New("NOTIFY_EMAIL is required when NOTIFIER=gmail")
		}
	case NotifierSNS:
		if c.SNSTopicARN == "" {
			return errors.New("SNS_TOPIC_ARN is required when NOTIFIER=sns")
		}
	case NotifierLog:
	default:
		return fmt.Errorf("invalid notifier: %s", c.Notifier)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// Location returns the zone dates are read and formatted in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.TimeZone, err)
	}
	return loc, nil
}
