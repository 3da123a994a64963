package herald_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bft-labs/herald/pkg/herald"
)

type capturedRequest struct {
	Path string
	Auth string
	Body map[string]interface{}
}

type provider struct {
	mu       sync.Mutex
	requests []capturedRequest
	reject   map[string]bool
	calls    atomic.Int32
}

func newProvider(t *testing.T, reject ...string) (*provider, *httptest.Server) {
	t.Helper()
	p := &provider{reject: map[string]bool{}}
	for _, phone := range reject {
		p.reject[phone] = true
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)
		data, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(data, &body)

		p.mu.Lock()
		p.requests = append(p.requests, capturedRequest{
			Path: r.URL.Path,
			Auth: r.Header.Get("Authorization"),
			Body: body,
		})
		p.mu.Unlock()

		to, _ := body["to"].(string)
		if p.reject[to] {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":131026,"fbtrace_id":"AbC"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	t.Cleanup(srv.Close)
	return p, srv
}

func (p *provider) Requests() []capturedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]capturedRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Fields(string(data))
}

func testConfig(t *testing.T, baseURL string) herald.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := herald.DefaultConfig()
	cfg.ProfilesPath = filepath.Join(dir, "bms.json")
	cfg.LeadsPath = filepath.Join(dir, "leads.csv")
	cfg.LedgerPath = filepath.Join(dir, "sent_log.csv")
	cfg.BaseURL = baseURL
	cfg.Preflight = false

	err := herald.SaveProfile(context.Background(), cfg.ProfilesPath, herald.Profile{
		Name:          "acme",
		PhoneNumberID: "1234",
		AccessToken:   "secret",
		Templates:     []string{"t_a", "t_b"},
	})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	writeFile(t, cfg.LeadsPath, "telefone,mensagem,nome\n5511000000001,111111,Ana\n5511000000002,222222,Bia\n5511000000003,333333,Caio\n")
	return cfg
}

func TestDispatcher_Run(t *testing.T) {
	p, srv := newProvider(t)
	cfg := testConfig(t, srv.URL)

	d, err := herald.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if res.Profile != "acme" {
		t.Errorf("Profile = %q, want acme", res.Profile)
	}
	if res.Summary.Total != 3 || res.Summary.Succeeded != 3 {
		t.Errorf("Summary = %+v, want 3 of 3 succeeded", res.Summary)
	}

	reqs := p.Requests()
	if len(reqs) != 3 {
		t.Fatalf("requests = %d, want 3", len(reqs))
	}
	for _, r := range reqs {
		if r.Path != "/v23.0/1234/messages" {
			t.Errorf("path = %q", r.Path)
		}
		if r.Auth != "Bearer secret" {
			t.Errorf("auth = %q", r.Auth)
		}
	}

	got := readLines(t, cfg.LedgerPath)
	if len(got) != 3 {
		t.Errorf("ledger lines = %v, want 3 phones", got)
	}
}

func TestDispatcher_SecondRunSendsNothing(t *testing.T) {
	p, srv := newProvider(t)
	cfg := testConfig(t, srv.URL)

	for i := 0; i < 2; i++ {
		d, err := herald.New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		res, err := d.Run(context.Background())
		if err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		if i == 1 {
			if res.Summary.Total != 0 {
				t.Errorf("second run total = %d, want 0", res.Summary.Total)
			}
			if res.Skipped != 3 {
				t.Errorf("second run skipped = %d, want 3", res.Skipped)
			}
		}
	}

	if n := p.calls.Load(); n != 3 {
		t.Errorf("provider calls = %d, want 3", n)
	}
}

func TestDispatcher_NoRecord(t *testing.T) {
	_, srv := newProvider(t)
	cfg := testConfig(t, srv.URL)
	cfg.Shuffle = true
	cfg.RecordSends = false

	d, err := herald.New(cfg, herald.WithShuffle(func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.Succeeded != 3 {
		t.Errorf("Succeeded = %d, want 3", res.Summary.Succeeded)
	}
	if got := readLines(t, cfg.LedgerPath); len(got) != 0 {
		t.Errorf("ledger = %v, want untouched", got)
	}
}

func TestDispatcher_ShuffleNeverRecords(t *testing.T) {
	_, srv := newProvider(t)
	cfg := testConfig(t, srv.URL)
	cfg.Shuffle = true

	d, err := herald.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.Succeeded != 3 {
		t.Errorf("Succeeded = %d, want 3", res.Summary.Succeeded)
	}
	if got := readLines(t, cfg.LedgerPath); len(got) != 0 {
		t.Errorf("shuffled run wrote ledger entries: %v", got)
	}
}

func TestDispatcher_ProviderErrorNotRecorded(t *testing.T) {
	_, srv := newProvider(t, "5511000000002")
	cfg := testConfig(t, srv.URL)

	var mu sync.Mutex
	var failed []herald.Outcome
	handler := outcomeFunc(func(o herald.Outcome, preflight bool) {
		if !o.OK() {
			mu.Lock()
			failed = append(failed, o)
			mu.Unlock()
		}
	})

	d, err := herald.New(cfg, herald.WithEventHandler(handler))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Summary.Succeeded != 2 || res.Summary.ProviderFailed != 1 || res.Summary.Failed() != 1 {
		t.Errorf("Summary = %+v", res.Summary)
	}
	if len(failed) != 1 {
		t.Fatalf("failed outcomes = %d, want 1", len(failed))
	}
	if pe := failed[0].Provider; pe == nil || pe.Code != "131026" || pe.TraceID != "AbC" {
		t.Errorf("provider error = %+v", pe)
	}

	for _, phone := range readLines(t, cfg.LedgerPath) {
		if phone == "5511000000002" {
			t.Error("rejected phone was recorded")
		}
	}
}

func TestDispatcher_Preflight(t *testing.T) {
	p, srv := newProvider(t)
	cfg := testConfig(t, srv.URL)
	cfg.Preflight = true

	d, err := herald.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Summary.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Summary.Total)
	}
	if n := p.calls.Load(); n != 4 {
		t.Errorf("provider calls = %d, want 4", n)
	}
}

func TestDispatcher_URLButton(t *testing.T) {
	p, srv := newProvider(t)
	cfg := testConfig(t, srv.URL)
	cfg.Workers = 2
	cfg.Button = &herald.ButtonConfig{Index: 0, Params: []string{"otp", "col:nome", "lit:x"}}

	d, err := herald.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, r := range p.Requests() {
		tmpl := r.Body["template"].(map[string]interface{})
		components := tmpl["components"].([]interface{})
		if len(components) != 2 {
			t.Fatalf("components = %d, want 2", len(components))
		}
		button := components[1].(map[string]interface{})
		if button["sub_type"] != "url" || button["index"] != "0" {
			t.Errorf("button = %v", button)
		}
		if params := button["parameters"].([]interface{}); len(params) != 3 {
			t.Errorf("button params = %d, want 3", len(params))
		}
	}
}

func TestDispatcher_SQLiteLedger(t *testing.T) {
	p, srv := newProvider(t)
	cfg := testConfig(t, srv.URL)
	cfg.LedgerDriver = herald.LedgerSQLite
	cfg.LedgerPath = filepath.Join(t.TempDir(), "sent.db")

	for i := 0; i < 2; i++ {
		d, err := herald.New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := d.Run(context.Background()); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}
	if n := p.calls.Load(); n != 3 {
		t.Errorf("provider calls = %d, want 3", n)
	}
}

func TestDispatcher_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, cfg *herald.Config)
	}{
		{
			name: "unknown profile",
			mutate: func(t *testing.T, cfg *herald.Config) {
				cfg.Profile = "missing"
			},
		},
		{
			name: "ambiguous profile",
			mutate: func(t *testing.T, cfg *herald.Config) {
				err := herald.SaveProfile(context.Background(), cfg.ProfilesPath, herald.Profile{
					Name: "other", PhoneNumberID: "9", AccessToken: "x", Templates: []string{"t"},
				})
				if err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "empty templates",
			mutate: func(t *testing.T, cfg *herald.Config) {
				err := herald.SaveProfile(context.Background(), cfg.ProfilesPath, herald.Profile{
					Name: "acme", PhoneNumberID: "1234", AccessToken: "secret",
				})
				if err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "invalid url param",
			mutate: func(t *testing.T, cfg *herald.Config) {
				cfg.Button = &herald.ButtonConfig{Params: []string{"bogus"}}
			},
		},
		{
			name: "missing required column",
			mutate: func(t *testing.T, cfg *herald.Config) {
				writeFile(t, cfg.LeadsPath, "phone,msg\n1,2\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, srv := newProvider(t)
			cfg := testConfig(t, srv.URL)
			tt.mutate(t, &cfg)

			d, err := herald.New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_, err = d.Run(context.Background())
			if !errors.Is(err, herald.ErrConfiguration) {
				t.Errorf("err = %v, want configuration error", err)
			}
			if n := p.calls.Load(); n != 0 {
				t.Errorf("provider calls = %d, want 0", n)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := herald.DefaultConfig()
	cfg.LeadsPath = "leads.csv"
	cfg.Workers = 0

	if _, err := herald.New(cfg); !errors.Is(err, herald.ErrConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}
}

type outcomeFunc func(o herald.Outcome, preflight bool)

func (f outcomeFunc) OnOutcome(o herald.Outcome, preflight bool) { f(o, preflight) }
