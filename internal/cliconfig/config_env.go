package cliconfig

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (HERALD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("profiles", os.Getenv("HERALD_PROFILES_PATH"), &cfg.ProfilesPath)
	s.setString("profile", os.Getenv("HERALD_PROFILE"), &cfg.Profile)
	s.setString("leads", os.Getenv("HERALD_LEADS_PATH"), &cfg.LeadsPath)
	s.setString("phone-column", os.Getenv("HERALD_PHONE_COLUMN"), &cfg.PhoneColumn)
	s.setString("message-column", os.Getenv("HERALD_MESSAGE_COLUMN"), &cfg.MessageColumn)
	s.setString("ledger-driver", os.Getenv("HERALD_LEDGER_DRIVER"), &cfg.LedgerDriver)
	s.setString("ledger", os.Getenv("HERALD_LEDGER_PATH"), &cfg.LedgerPath)
	s.setString("lang", os.Getenv("HERALD_LANGUAGE"), &cfg.Language)
	s.setString("base-url", os.Getenv("HERALD_BASE_URL"), &cfg.BaseURL)
	s.setString("api-version", os.Getenv("HERALD_API_VERSION"), &cfg.APIVersion)
	s.setString("proxy", os.Getenv("HERALD_PROXY_URL"), &cfg.ProxyURL)
	s.setString("log-level", os.Getenv("HERALD_LOG_LEVEL"), &cfg.LogLevel)
	s.setStrings("url-param", splitList(os.Getenv("HERALD_URL_PARAMS")), &cfg.URLParams)

	if err := s.setDuration("timeout", os.Getenv("HERALD_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("HERALD_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("button-index", os.Getenv("HERALD_BUTTON_INDEX"), &cfg.ButtonIndex); err != nil {
		return err
	}
	if err := s.setFloatFromString("rate", os.Getenv("HERALD_RATE_PER_SECOND"), &cfg.RatePerSecond); err != nil {
		return err
	}

	s.setBoolFromString("random", os.Getenv("HERALD_RANDOM"), &cfg.Random)
	s.setBoolFromString("no-record", os.Getenv("HERALD_NO_RECORD"), &cfg.NoRecord)
	s.setBoolFromString("preflight", os.Getenv("HERALD_PREFLIGHT"), &cfg.Preflight)
	s.setBoolFromString("use-url-button", os.Getenv("HERALD_USE_URL_BUTTON"), &cfg.UseURLButton)
	s.setBoolFromString("tor", os.Getenv("HERALD_TOR"), &cfg.Tor)

	return nil
}
