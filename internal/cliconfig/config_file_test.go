package cliconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				ProfilesPath:  "/etc/herald/bms.json",
				Profile:       "main",
				LeadsPath:     "/data/leads.csv",
				LedgerDriver:  "sqlite",
				Workers:       8,
				RatePerSecond: 12.5,
				ButtonIndex:   1,
				URLParams:     []string{"otp", "col:token"},
				HTTPTimeout:   "10s",
				Random:        &trueVal,
				Preflight:     &falseVal,
			},
			changed: map[string]bool{},
			initial: Config{Preflight: true},
			expected: Config{
				ProfilesPath:  "/etc/herald/bms.json",
				Profile:       "main",
				LeadsPath:     "/data/leads.csv",
				LedgerDriver:  "sqlite",
				Workers:       8,
				RatePerSecond: 12.5,
				ButtonIndex:   1,
				URLParams:     []string{"otp", "col:token"},
				HTTPTimeout:   10 * time.Second,
				Random:        true,
				Preflight:     false,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Profile: "from-file",
				Workers: 4,
			},
			changed: map[string]bool{"profile": true},
			initial: Config{Profile: "from-flag", Workers: 1},
			expected: Config{
				Profile: "from-flag", // unchanged because flag was set
				Workers: 4,
			},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{HTTPTimeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config = %+v\nwant %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
profile = "main"
leads_path = "leads.csv"
workers = 4
url_params = ["otp", "lit:FIXED"]
http_timeout = "45s"
tor = true
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.Profile != "main" || fc.LeadsPath != "leads.csv" || fc.Workers != 4 {
		t.Errorf("unexpected file config: %+v", fc)
	}
	if len(fc.URLParams) != 2 || fc.URLParams[1] != "lit:FIXED" {
		t.Errorf("URLParams = %v", fc.URLParams)
	}
	if fc.Tor == nil || !*fc.Tor {
		t.Errorf("Tor = %v, want true", fc.Tor)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %v, want 45s", cfg.HTTPTimeout)
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("workers = ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists reported a missing file")
	}
	p := filepath.Join(dir, "present")
	if err := os.WriteFile(p, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !FileExists(p) {
		t.Error("FileExists missed an existing file")
	}
}
