package herald

import (
	"github.com/bft-labs/herald/internal/app"
	"github.com/bft-labs/herald/internal/domain"
	"github.com/bft-labs/herald/internal/ports"
)

// Re-exported types for callers outside the module.
type (
	// Logger is the structured logging interface.
	Logger = ports.Logger

	// LogField is a structured log field.
	LogField = ports.Field

	// HTTPClient is satisfied by *http.Client.
	HTTPClient = ports.HTTPClient

	// Ledger records recipients already messaged.
	Ledger = ports.Ledger

	// Profile is a stored sender profile.
	Profile = domain.Profile

	// Outcome is the result of one send.
	Outcome = domain.Outcome

	// Summary aggregates a run.
	Summary = domain.Summary
)

// Sentinel errors.
var (
	ErrConfiguration   = domain.ErrConfiguration
	ErrProfileNotFound = domain.ErrProfileNotFound
	ErrNoTemplates     = domain.ErrNoTemplates
	ErrInvalidURLParam = domain.ErrInvalidURLParam
	ErrMissingColumn   = domain.ErrMissingColumn
)

// EventHandler receives every outcome as it happens. Calls may be
// concurrent when more than one worker is configured.
type EventHandler interface {
	OnOutcome(o Outcome, preflight bool)
}

// Option configures optional behavior of a Dispatcher.
type Option func(*options)

type options struct {
	httpClient   ports.HTTPClient
	logger       ports.Logger
	eventHandler EventHandler
	ledger       ports.Ledger
	shuffle      app.ShuffleFunc
}

// WithHTTPClient sets a custom HTTP client. It replaces the client built
// from HTTPTimeout and ProxyURL.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for per-item outcomes.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithLedger replaces the ledger selected by LedgerDriver. The dispatcher
// still calls Load and Close on it.
func WithLedger(ledger Ledger) Option {
	return func(o *options) {
		o.ledger = ledger
	}
}

// WithShuffle replaces the permutation used by shuffled runs.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(o *options) {
		o.shuffle = shuffle
	}
}
