package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	httpAdapter "github.com/bft-labs/herald/internal/adapters/http"
	"github.com/bft-labs/herald/internal/domain"
	"github.com/bft-labs/herald/internal/payload"
)

// Ledger drivers.
const (
	LedgerDriverFile   = "file"
	LedgerDriverSQLite = "sqlite"
)

// Default file locations, relative to the working directory.
const (
	DefaultProfilesPath   = "bms.json"
	DefaultLeadsPath      = "100k.csv"
	DefaultLedgerPath     = "sent_log.csv"
	DefaultSQLiteLedger   = "sent_log.db"
	DefaultLanguage       = "pt_BR"
	DefaultPhoneColumn    = "telefone"
	DefaultMessageColumn  = "mensagem"
	DefaultHTTPTimeoutSec = 30
)

// Config holds CLI configuration for a send run.
type Config struct {
	ProfilesPath string
	Profile      string

	LeadsPath     string
	PhoneColumn   string
	MessageColumn string

	LedgerDriver string
	LedgerPath   string

	Language      string
	Workers       int
	Random        bool
	NoRecord      bool
	Preflight     bool
	RatePerSecond float64

	UseURLButton bool
	ButtonIndex  int
	URLParams    []string

	BaseURL     string
	APIVersion  string
	Tor         bool
	ProxyURL    string
	HTTPTimeout time.Duration

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ProfilesPath:  DefaultProfilesPath,
		LeadsPath:     DefaultLeadsPath,
		PhoneColumn:   DefaultPhoneColumn,
		MessageColumn: DefaultMessageColumn,
		LedgerDriver:  LedgerDriverFile,
		Language:      DefaultLanguage,
		Workers:       1,
		Preflight:     true,
		BaseURL:       httpAdapter.DefaultBaseURL,
		APIVersion:    httpAdapter.DefaultAPIVersion,
		HTTPTimeout:   DefaultHTTPTimeoutSec * time.Second,
		LogLevel:      "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// Every returned error wraps domain.ErrConfiguration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProfilesPath) == "" {
		return configErr("profiles path is required")
	}
	if strings.TrimSpace(c.LeadsPath) == "" {
		return configErr("leads path is required")
	}
	if c.Workers < 1 {
		return configErr("workers must be at least 1, got %d", c.Workers)
	}
	if c.ButtonIndex < 0 {
		return configErr("button index must be non-negative, got %d", c.ButtonIndex)
	}
	if c.RatePerSecond < 0 {
		return configErr("rate must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return configErr("http timeout must be positive")
	}

	switch c.LedgerDriver {
	case "", LedgerDriverFile:
		c.LedgerDriver = LedgerDriverFile
		if c.LedgerPath == "" {
			c.LedgerPath = DefaultLedgerPath
		}
	case LedgerDriverSQLite:
		if c.LedgerPath == "" {
			c.LedgerPath = DefaultSQLiteLedger
		}
	default:
		return configErr("unknown ledger driver %q", c.LedgerDriver)
	}

	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if len(c.URLParams) > 0 {
		c.UseURLButton = true
	}
	if c.UseURLButton {
		if _, err := payload.ParseURLParams(c.URLParams); err != nil {
			return err
		}
	}

	if c.Tor && c.ProxyURL == "" {
		c.ProxyURL = httpAdapter.DefaultTorProxy
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// RecordSends reports whether successes should be written to the ledger.
// Random runs never record.
func (c Config) RecordSends() bool {
	return !c.Random && !c.NoRecord
}

func configErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrConfiguration, fmt.Sprintf(format, args...))
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings replaces a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f < 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// splitList splits a comma separated env value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
