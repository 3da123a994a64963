package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bft-labs/herald/internal/domain"
	"github.com/bft-labs/herald/internal/payload"
	"github.com/bft-labs/herald/internal/ports"
)

// DefaultLanguage is the template language used when none is configured.
const DefaultLanguage = "pt_BR"

// DispatchOptions tune a single run.
type DispatchOptions struct {
	// Workers is the number of concurrent sends. Must be at least 1.
	Workers int

	// Language is the template language code.
	Language string

	// Button adds a URL button component when non-nil.
	Button *payload.Button

	// Preflight sends the first item once, unrecorded and uncounted,
	// before the bulk phase.
	Preflight bool

	// RecordSends controls whether successes are written to the ledger.
	// Randomized exploratory runs turn it off.
	RecordSends bool

	// RatePerSecond paces request starts across all workers. Zero disables pacing.
	RatePerSecond float64
}

// Validate reports a configuration error for unusable options.
func (o DispatchOptions) Validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", domain.ErrConfiguration, o.Workers)
	}
	if o.RatePerSecond < 0 {
		return fmt.Errorf("%w: rate must not be negative", domain.ErrConfiguration)
	}
	return nil
}

// OutcomeEmitter is called once per terminal outcome.
// Calls may arrive concurrently from several workers.
type OutcomeEmitter interface {
	OnOutcome(o domain.Outcome, preflight bool)
}

// Coordinator drives bounded-concurrency delivery of prepared items.
type Coordinator struct {
	sender  ports.MessageSender
	ledger  ports.Ledger
	logger  ports.Logger
	emitter OutcomeEmitter
	phases  *phases
}

// NewCoordinator creates a coordinator. emitter may be nil.
func NewCoordinator(sender ports.MessageSender, ledger ports.Ledger, logger ports.Logger, emitter OutcomeEmitter) *Coordinator {
	return &Coordinator{
		sender:  sender,
		ledger:  ledger,
		logger:  logger,
		emitter: emitter,
		phases:  newPhases(logger),
	}
}

// Phase reports the stage of the current run.
func (c *Coordinator) Phase() Phase {
	return c.phases.current()
}

// Run sends every item and waits for all of them to finish. Item failures
// never stop the run; the only errors returned are a configuration error
// detected before the first send and ErrRunInProgress for overlapping runs.
func (c *Coordinator) Run(ctx context.Context, items []domain.Item, profile domain.Profile, opts DispatchOptions) (domain.Summary, error) {
	if err := opts.Validate(); err != nil {
		return domain.Summary{}, err
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	builder := payload.NewBuilder(opts.Language, profile.Namespace, opts.Button)
	metadata := ports.SendMetadata{
		PhoneNumberID: profile.PhoneNumberID,
		AccessToken:   profile.AccessToken,
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	first := PhaseDispatching
	preflight := opts.Preflight && len(items) > 0
	if preflight {
		first = PhasePreflight
	}
	if err := c.phases.transitionTo(first); err != nil {
		return domain.Summary{}, err
	}
	defer func() { _ = c.phases.transitionTo(PhaseIdle) }()

	start := time.Now()

	if preflight {
		c.logger.Info("sending preflight", ports.String("phone", items[0].Recipient.Phone))
		o := c.dispatch(ctx, builder, metadata, limiter, items[0], false)
		c.report(o, true)
		c.logger.Info("preflight done", ports.String("result", o.Kind.String()))
		if err := c.phases.transitionTo(PhaseDispatching); err != nil {
			return domain.Summary{}, err
		}
	}

	var (
		mu      sync.Mutex
		summary domain.Summary
		g       errgroup.Group
	)
	g.SetLimit(opts.Workers)

	for _, item := range items {
		g.Go(func() error {
			o := c.dispatch(ctx, builder, metadata, limiter, item, opts.RecordSends)
			c.report(o, false)

			mu.Lock()
			summary.Add(o)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	summary.Duration = time.Since(start)
	return summary, nil
}

// dispatch runs the full lifecycle of one item.
func (c *Coordinator) dispatch(ctx context.Context, builder *payload.Builder, metadata ports.SendMetadata, limiter *rate.Limiter, item domain.Item, record bool) domain.Outcome {
	start := time.Now()
	o := domain.Outcome{Item: item}

	msg, err := builder.Build(item)
	if err != nil {
		o.Kind = domain.OutcomeBuildError
		o.Err = err
		o.Duration = time.Since(start)
		return o
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			o.Kind = domain.OutcomeTransportError
			o.Err = err
			o.Duration = time.Since(start)
			return o
		}
	}

	c.logger.Debug("sending",
		ports.String("phone", item.Recipient.Phone),
		ports.String("template", item.Template),
	)

	resp, err := c.sender.Send(ctx, metadata, msg)
	o.Kind, o.Provider = classify(resp, err)
	o.Err = err
	o.Duration = time.Since(start)

	if o.OK() && record && c.ledger != nil {
		if err := c.ledger.Record(ctx, item.Recipient.Phone); err != nil {
			c.logger.Error("failed to record send",
				ports.String("phone", item.Recipient.Phone),
				ports.Err(err),
			)
		}
	}
	return o
}

// report logs one outcome and forwards it to the emitter.
func (c *Coordinator) report(o domain.Outcome, preflight bool) {
	fields := []ports.Field{
		ports.String("phone", o.Item.Recipient.Phone),
		ports.String("template", o.Item.Template),
		ports.Duration("took", o.Duration),
	}
	if preflight {
		fields = append(fields, ports.Bool("preflight", true))
	}

	switch o.Kind {
	case domain.OutcomeSuccess:
		c.logger.Info("sent", fields...)
	case domain.OutcomeProviderError:
		fields = append(fields,
			ports.Int("status", o.Provider.Status),
			ports.String("code", o.Provider.Code),
			ports.String("fbtrace_id", o.Provider.TraceID),
			ports.String("details", o.Provider.Raw),
		)
		c.logger.Warn("provider rejected message", fields...)
	case domain.OutcomeTransportError:
		c.logger.Error("transport failed", append(fields, ports.Err(o.Err))...)
	case domain.OutcomeBuildError:
		c.logger.Error("payload build failed", append(fields, ports.Err(o.Err))...)
	}

	if c.emitter != nil {
		c.emitter.OnOutcome(o, preflight)
	}
}
