package configform

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/pmwatch/internal/model"
)

// Values are the editable settings, held as strings for the form fields.
type Values struct {
	BaseURL           string
	NotificationsPath string
	IntervalSec       string
	Driver            string
	Token             string
	ForgetToken       bool
}

// FromConfig seeds form values from cfg. The token is never prefilled.
func FromConfig(cfg *model.AppConfig) Values {
	return Values{
		BaseURL:           cfg.Backend.BaseURL,
		NotificationsPath: cfg.Backend.NotificationsPath,
		IntervalSec:       strconv.Itoa(cfg.Poll.IntervalSec),
		Driver:            cfg.ReadState.Driver,
	}
}

// Apply copies the values into cfg.
func (v Values) Apply(cfg *model.AppConfig) error {
	interval, err := strconv.Atoi(strings.TrimSpace(v.IntervalSec))
	if err != nil {
		return fmt.Errorf("poll interval: %w", err)
	}

	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(v.BaseURL), "/")
	cfg.Backend.NotificationsPath = strings.TrimSpace(v.NotificationsPath)
	cfg.Poll.IntervalSec = interval
	cfg.ReadState.Driver = v.Driver
	return cfg.Validate()
}

// Build returns the configuration form bound to v.
func Build(v *Values) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Root URL of the project-management backend").
				Placeholder("https://pm.example.com").
				Value(&v.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Notifications path").
				Description("Endpoint returning the notification list").
				Placeholder("/api/notifications").
				Value(&v.NotificationsPath).
				Validate(validatePath),
			huh.NewInput().
				Title("Poll interval (seconds)").
				Value(&v.IntervalSec).
				Validate(validatePositiveInt),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Read-state storage").
				Options(
					huh.NewOption("JSON file", model.ReadStateFile),
					huh.NewOption("SQLite database", model.ReadStateSQLite),
					huh.NewOption("Redis (shared)", model.ReadStateRedis),
					huh.NewOption("Memory (forget on exit)", model.ReadStateMemory),
				).
				Value(&v.Driver),
			huh.NewInput().
				Title("Session token").
				Description("Stored in the system keyring; leave empty to keep the current one").
				EchoMode(huh.EchoModePassword).
				Value(&v.Token),
			huh.NewConfirm().
				Title("Forget the stored token?").
				Description("Only used when the token field is empty").
				Value(&v.ForgetToken),
		),
	)
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validatePath(s string) error {
	if !strings.HasPrefix(strings.TrimSpace(s), "/") {
		return fmt.Errorf("path must start with /")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

// SaveToken stores a newly entered token, or removes the stored one when
// the field was left empty and ForgetToken is set.
func (v Values) SaveToken(set func(key, value string) error, remove func(key string) error, key string) error {
	tok := strings.TrimSpace(v.Token)
	switch {
	case tok != "":
		if err := set(key, tok); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
	case v.ForgetToken:
		if err := remove(key); err != nil {
			return fmt.Errorf("removing token: %w", err)
		}
	}
	return nil
}
