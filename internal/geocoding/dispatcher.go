package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/UnknownOlympus/compass/internal/metrics"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome describes how a single resolver invocation ended.
type Outcome string

const (
	OutcomeFound  Outcome = "found"
	OutcomeAbsent Outcome = "absent"
	OutcomeFailed Outcome = "failed"
)

// Attempt records one resolver invocation made while dispatching an address.
type Attempt struct {
	Resolver string  // Name the resolver was registered under
	Outcome  Outcome // How the invocation ended
	Err      error   // Failure cause when Outcome is OutcomeFailed
}

type namedResolver struct {
	name     string
	resolver Resolver
}

// Dispatcher resolves addresses with a primary resolver and falls back to one random backup.
// It is read-only once built and safe for concurrent use.
type Dispatcher struct {
	resolvers []namedResolver
	pick      func(n int) int // returns a backup index in [0, n)
	timeout   time.Duration
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger handed to the dispatcher and the resolvers it builds.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithMetrics sets the collectors updated on every resolver invocation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithPicker replaces the random source used to choose a backup. pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(d *Dispatcher) { d.pick = pick }
}

// WithTimeout sets the transport timeout of the live resolvers built by NewDispatcher.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// New creates a dispatcher without resolvers. Use Add to register them.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pick:    rand.IntN,
		timeout: defaultTimeout,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		d.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}

	return d
}

// NewDispatcher builds a resolver for every name, in order, with credentials taken from env.
// The first name becomes the primary. Any unknown name or missing credential fails the whole
// construction, as does an empty list.
func NewDispatcher(names []string, env map[string]string, opts ...Option) (*Dispatcher, error) {
	if len(names) == 0 {
		return nil, ErrNoResolvers
	}

	d := New(opts...)
	for _, name := range names {
		resolver, err := NewProvider(ProviderConfig{
			Type:        ParseProviderType(name),
			Credentials: CredentialsFor(name, env),
			Timeout:     d.timeout,
			Logger:      d.log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure resolver %q: %w", name, err)
		}
		d.Add(name, resolver)
	}

	return d, nil
}

// Add appends a resolver. The first one added is the primary, later ones are backups.
// Add must not be called once the dispatcher is serving requests.
func (d *Dispatcher) Add(name string, resolver Resolver) {
	d.resolvers = append(d.resolvers, namedResolver{name: name, resolver: resolver})
}

// Resolvers returns the registered resolvers in configuration order.
func (d *Dispatcher) Resolvers() []Resolver {
	resolvers := make([]Resolver, 0, len(d.resolvers))
	for _, nr := range d.resolvers {
		resolvers = append(resolvers, nr.resolver)
	}

	return resolvers
}

// Resolve returns the coordinates of the address, or nil when neither the primary nor the chosen
// backup found it. Resolver failures are treated like a missing result; only a blank address
// (and a dispatcher without resolvers) produce an error.
func (d *Dispatcher) Resolve(ctx context.Context, address string) (*models.Coordinates, error) {
	coords, _, err := d.ResolveWithTrace(ctx, address)
	return coords, err
}

// ResolveWithTrace behaves like Resolve and also reports every resolver invocation, which keeps
// an upstream outage distinguishable from an unknown address.
func (d *Dispatcher) ResolveWithTrace(ctx context.Context, address string) (*models.Coordinates, []Attempt, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, nil, err
	}
	if len(d.resolvers) == 0 {
		return nil, nil, ErrNoResolvers
	}

	plan := d.plan()
	attempts := make([]Attempt, 0, len(plan))
	for i, nr := range plan {
		if i > 0 {
			d.metrics.Fallbacks.Inc()
			d.log.InfoContext(ctx, "Falling back to backup resolver", "resolver", nr.name, "address", address)
		}

		coords, attempt := d.attempt(ctx, nr, address)
		attempts = append(attempts, attempt)

		if errors.Is(attempt.Err, ErrValidation) {
			return nil, attempts, attempt.Err
		}
		if coords != nil {
			return coords, attempts, nil
		}
	}

	d.log.DebugContext(ctx, "No resolver found the address", "address", address, "attempts", len(attempts))

	return nil, attempts, nil
}

// plan lists the primary followed by at most one randomly chosen backup.
func (d *Dispatcher) plan() []namedResolver {
	plan := []namedResolver{d.resolvers[0]}

	backups := d.resolvers[1:]
	if len(backups) > 0 {
		plan = append(plan, backups[d.pick(len(backups))])
	}

	return plan
}

func (d *Dispatcher) attempt(ctx context.Context, nr namedResolver, address string) (*models.Coordinates, Attempt) {
	startTime := time.Now()
	coords, err := nr.resolver.Resolve(ctx, address)
	d.metrics.ResolverSeconds.WithLabelValues(nr.name).Observe(time.Since(startTime).Seconds())

	attempt := Attempt{Resolver: nr.name}
	switch {
	case err != nil:
		attempt.Outcome, attempt.Err = OutcomeFailed, err
		coords = nil
		d.log.WarnContext(ctx, "Resolver failed", "resolver", nr.name, "address", address, "error", err)
	case coords == nil:
		attempt.Outcome = OutcomeAbsent
		d.log.DebugContext(ctx, "Resolver found no result", "resolver", nr.name, "address", address)
	default:
		attempt.Outcome = OutcomeFound
		d.log.DebugContext(ctx, "Resolver found result", "resolver", nr.name,
			"lat", coords.Latitude, "lon", coords.Longitude)
	}
	d.metrics.ResolverCalls.WithLabelValues(nr.name, string(attempt.Outcome)).Inc()

	return coords, attempt
}
