package herald

import (
	"fmt"
	"time"

	"github.com/bft-labs/herald/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/herald/internal/adapters/http"
	"github.com/bft-labs/herald/internal/app"
	"github.com/bft-labs/herald/internal/domain"
)

// Ledger drivers.
const (
	LedgerFile   = "file"
	LedgerSQLite = "sqlite"
)

// Config holds the settings of one dispatch run.
type Config struct {
	ProfilesPath string

	// Profile selects the stored profile. It may be empty when exactly one
	// profile is stored.
	Profile string

	LeadsPath     string
	PhoneColumn   string
	MessageColumn string

	LedgerDriver string
	LedgerPath   string

	Language string
	Workers  int

	// Shuffle randomizes recipient order. Shuffled runs never write to the
	// ledger, whatever RecordSends says.
	Shuffle bool

	// RecordSends appends successful recipients to the ledger.
	RecordSends bool

	Preflight     bool
	RatePerSecond float64

	// Button enables the URL call-to-action button when non-nil.
	Button *ButtonConfig

	BaseURL     string
	APIVersion  string
	ProxyURL    string
	HTTPTimeout time.Duration
}

// ButtonConfig describes the URL button. Params are "otp", "col:<name>" or
// "lit:<value>" tokens.
type ButtonConfig struct {
	Index  int
	Params []string
}

// DefaultConfig returns a Config with the defaults of the CLI.
func DefaultConfig() Config {
	return Config{
		ProfilesPath:  fs.DefaultProfileFile,
		PhoneColumn:   fs.DefaultPhoneColumn,
		MessageColumn: fs.DefaultMessageColumn,
		LedgerDriver:  LedgerFile,
		LedgerPath:    fs.DefaultLedgerFile,
		Language:      app.DefaultLanguage,
		Workers:       1,
		RecordSends:   true,
		Preflight:     true,
		BaseURL:       httpAdapter.DefaultBaseURL,
		APIVersion:    httpAdapter.DefaultAPIVersion,
		HTTPTimeout:   30 * time.Second,
	}
}

// Validate checks the configuration. Errors wrap ErrConfiguration.
func (c Config) Validate() error {
	if c.ProfilesPath == "" {
		return fmt.Errorf("%w: profiles path is required", domain.ErrConfiguration)
	}
	if c.LeadsPath == "" {
		return fmt.Errorf("%w: leads path is required", domain.ErrConfiguration)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", domain.ErrConfiguration)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive", domain.ErrConfiguration)
	}
	switch c.LedgerDriver {
	case LedgerFile, LedgerSQLite:
	default:
		return fmt.Errorf("%w: unknown ledger driver %q", domain.ErrConfiguration, c.LedgerDriver)
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("%w: ledger path is required", domain.ErrConfiguration)
	}
	return nil
}

// recordSends reports whether successes are written to the ledger.
func (c Config) recordSends() bool {
	return c.RecordSends && !c.Shuffle
}
