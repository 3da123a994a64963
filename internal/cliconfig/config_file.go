package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ProfilesPath  string   `toml:"profiles_path"`
	Profile       string   `toml:"profile"`
	LeadsPath     string   `toml:"leads_path"`
	PhoneColumn   string   `toml:"phone_column"`
	MessageColumn string   `toml:"message_column"`
	LedgerDriver  string   `toml:"ledger_driver"`
	LedgerPath    string   `toml:"ledger_path"`
	Language      string   `toml:"language"`
	Workers       int      `toml:"workers"`
	RatePerSecond float64  `toml:"rate_per_second"`
	ButtonIndex   int      `toml:"button_index"`
	URLParams     []string `toml:"url_params"`
	BaseURL       string   `toml:"base_url"`
	APIVersion    string   `toml:"api_version"`
	ProxyURL      string   `toml:"proxy_url"`
	HTTPTimeout   string   `toml:"http_timeout"`
	LogLevel      string   `toml:"log_level"`
	Random        *bool    `toml:"random"`
	NoRecord      *bool    `toml:"no_record"`
	Preflight     *bool    `toml:"preflight"`
	UseURLButton  *bool    `toml:"use_url_button"`
	Tor           *bool    `toml:"tor"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.herald/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".herald", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("profiles", fc.ProfilesPath, &cfg.ProfilesPath)
	s.setString("profile", fc.Profile, &cfg.Profile)
	s.setString("leads", fc.LeadsPath, &cfg.LeadsPath)
	s.setString("phone-column", fc.PhoneColumn, &cfg.PhoneColumn)
	s.setString("message-column", fc.MessageColumn, &cfg.MessageColumn)
	s.setString("ledger-driver", fc.LedgerDriver, &cfg.LedgerDriver)
	s.setString("ledger", fc.LedgerPath, &cfg.LedgerPath)
	s.setString("lang", fc.Language, &cfg.Language)
	s.setString("base-url", fc.BaseURL, &cfg.BaseURL)
	s.setString("api-version", fc.APIVersion, &cfg.APIVersion)
	s.setString("proxy", fc.ProxyURL, &cfg.ProxyURL)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setStrings("url-param", fc.URLParams, &cfg.URLParams)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("button-index", fc.ButtonIndex, &cfg.ButtonIndex)
	s.setFloat("rate", fc.RatePerSecond, &cfg.RatePerSecond)

	s.setBool("random", fc.Random, &cfg.Random)
	s.setBool("no-record", fc.NoRecord, &cfg.NoRecord)
	s.setBool("preflight", fc.Preflight, &cfg.Preflight)
	s.setBool("use-url-button", fc.UseURLButton, &cfg.UseURLButton)
	s.setBool("tor", fc.Tor, &cfg.Tor)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
