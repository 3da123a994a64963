package herald

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/herald/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/herald/internal/adapters/http"
	logAdapter "github.com/bft-labs/herald/internal/adapters/log"
	"github.com/bft-labs/herald/internal/adapters/sqlite"
	"github.com/bft-labs/herald/internal/app"
	"github.com/bft-labs/herald/internal/domain"
	"github.com/bft-labs/herald/internal/payload"
	"github.com/bft-labs/herald/internal/ports"
)

// Result describes a finished run.
type Result struct {
	RunID   string
	Profile string
	Loaded  int
	Skipped int
	Summary Summary
}

// Dispatcher runs one bulk send.
type Dispatcher struct {
	config   Config
	opts     options
	profiles ports.ProfileRepository
	source   ports.RecipientSource
	sender   ports.MessageSender
	logger   ports.Logger
}

// New creates a Dispatcher. It validates the configuration and builds the
// HTTP client but performs no I/O.
func New(cfg Config, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.httpClient == nil {
		client, err := httpAdapter.NewClient(cfg.HTTPTimeout, cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
		o.httpClient = client
	}
	if o.logger == nil {
		o.logger = logAdapter.NewNoopLogger()
	}

	return &Dispatcher{
		config:   cfg,
		opts:     o,
		profiles: fs.NewProfileFile(cfg.ProfilesPath),
		source:   fs.NewRecipientCSV(cfg.LeadsPath, cfg.PhoneColumn, cfg.MessageColumn),
		sender:   httpAdapter.NewMessageSender(o.httpClient, cfg.BaseURL, cfg.APIVersion),
		logger:   o.logger,
	}, nil
}

// Run performs the dispatch and blocks until every item has an outcome.
// The returned error is non-nil only when the run could not start.
func (d *Dispatcher) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	logger := withRunID(d.logger, res.RunID)

	profile, err := d.resolveProfile(ctx)
	if err != nil {
		return res, err
	}
	if err := profile.Validate(); err != nil {
		return res, err
	}
	res.Profile = profile.Name

	var button *payload.Button
	if d.config.Button != nil {
		if button, err = payload.NewButton(d.config.Button.Index, d.config.Button.Params); err != nil {
			return res, err
		}
	}

	recipients, err := d.source.Read(ctx)
	if err != nil {
		return res, err
	}
	res.Loaded = len(recipients)

	ledger, err := d.openLedger()
	if err != nil {
		return res, fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("failed to close ledger", ports.Err(err))
		}
	}()
	if err := ledger.Load(ctx); err != nil {
		return res, fmt.Errorf("load ledger: %w", err)
	}

	items, err := app.NewFeed(d.opts.shuffle).Prepare(recipients, profile, ledger, d.config.Shuffle)
	if err != nil {
		return res, err
	}
	res.Skipped = len(recipients) - len(items)
	record := d.config.recordSends()

	fields := []ports.Field{
		ports.String("profile", profile.Name),
		ports.Int("total", len(items)),
		ports.Int("skipped", res.Skipped),
		ports.Any("templates", profile.Templates),
		ports.String("language", d.config.Language),
		ports.Int("workers", d.config.Workers),
		ports.Bool("shuffle", d.config.Shuffle),
		ports.Bool("record", record),
	}
	if button != nil {
		fields = append(fields,
			ports.Int("button_index", button.Index),
			ports.Any("url_params", d.config.Button.Params),
		)
	}
	logger.Info("starting dispatch", fields...)

	var emitter app.OutcomeEmitter
	if d.opts.eventHandler != nil {
		emitter = d.opts.eventHandler
	}
	coord := app.NewCoordinator(d.sender, ledger, logger, emitter)
	summary, err := coord.Run(ctx, items, profile, app.DispatchOptions{
		Workers:       d.config.Workers,
		Language:      d.config.Language,
		Button:        button,
		Preflight:     d.config.Preflight,
		RecordSends:   record,
		RatePerSecond: d.config.RatePerSecond,
	})
	if err != nil {
		return res, err
	}
	res.Summary = summary

	logger.Info("dispatch finished",
		ports.Int("total", summary.Total),
		ports.Int("succeeded", summary.Succeeded),
		ports.Int("provider_failed", summary.ProviderFailed),
		ports.Int("transport_failed", summary.TransportFailed),
		ports.Int("build_failed", summary.BuildFailed),
		ports.Duration("duration", summary.Duration.Round(time.Millisecond)),
	)
	return res, nil
}

// resolveProfile returns the configured profile, or the only stored one
// when none is configured.
func (d *Dispatcher) resolveProfile(ctx context.Context) (domain.Profile, error) {
	if d.config.Profile != "" {
		return d.profiles.Get(ctx, d.config.Profile)
	}
	profiles, err := d.profiles.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	if len(profiles) != 1 {
		return domain.Profile{}, fmt.Errorf("%w: choose one of %v", domain.ErrProfileNotFound, profileNames(profiles))
	}
	for _, p := range profiles {
		return p, nil
	}
	return domain.Profile{}, domain.ErrProfileNotFound
}

func (d *Dispatcher) openLedger() (ports.Ledger, error) {
	if d.opts.ledger != nil {
		return d.opts.ledger, nil
	}
	if d.config.LedgerDriver == LedgerSQLite {
		return sqlite.Open(d.config.LedgerPath)
	}
	return fs.NewLedgerFile(d.config.LedgerPath), nil
}

// LoadProfiles returns every profile stored at path.
func LoadProfiles(ctx context.Context, path string) (map[string]Profile, error) {
	return fs.NewProfileFile(path).Load(ctx)
}

// SaveProfile adds or replaces a profile in the store at path.
func SaveProfile(ctx context.Context, path string, p Profile) error {
	return fs.NewProfileFile(path).Put(ctx, p)
}

func profileNames(profiles map[string]domain.Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// withRunID tags every line of a zerolog-backed logger with the run id.
func withRunID(l ports.Logger, runID string) ports.Logger {
	if z, ok := l.(*logAdapter.ZerologAdapter); ok {
		return z.With(ports.String("run_id", runID))
	}
	return l
}

// NewZerologLogger adapts a zerolog logger for WithLogger.
var NewZerologLogger = logAdapter.NewZerologAdapterWithLogger
