package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/compass/internal/metrics"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/UnknownOlympus/compass/internal/repository"
)

// errNoResult is stored as geocoding error when no resolver knew the address.
const errNoResult = "no result"

// Geocoder resolves one address; *geocoding.Dispatcher implements it.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*models.Coordinates, error)
}

// BackfillConfig tunes the backfill loop.
type BackfillConfig struct {
	Workers     int           // Number of concurrent workers
	Interval    time.Duration // Interval between polls
	BatchSize   int           // Addresses fetched per poll
	MaxAttempts int           // Attempts before an address is skipped
}

// BackfillService periodically resolves stored addresses that have no coordinates yet.
// Each address goes through the geocoder on its own, so failover applies per address.
type BackfillService struct {
	log      *slog.Logger         // Logger for logging service activities
	repo     repository.Interface // Interface for data repository access
	geocoder Geocoder             // Geocoder used for every address
	metrics  *metrics.Metrics     // Metrics for tracking service performance
	cfg      BackfillConfig
}

// NewBackfillService creates a new instance of BackfillService.
func NewBackfillService(
	log *slog.Logger,
	repo repository.Interface,
	geocoder Geocoder,
	metrics *metrics.Metrics,
	cfg BackfillConfig,
) *BackfillService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &BackfillService{
		log:      log,
		repo:     repo,
		geocoder: geocoder,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// Run starts the backfill loop, which periodically polls for pending addresses.
// It listens for a cancellation signal from the context to gracefully stop the service.
func (bs *BackfillService) Run(ctx context.Context) {
	ticker := time.NewTicker(bs.cfg.Interval)
	defer ticker.Stop()

	bs.log.InfoContext(ctx, "Backfill service started...")

	for {
		select {
		case <-ctx.Done():
			bs.log.InfoContext(ctx, "Backfill service stopped.")
			return
		case <-ticker.C:
			bs.log.InfoContext(ctx, "Polling for pending addresses...")
			bs.processBatch(ctx)
		}
	}
}

// processBatch fetches pending addresses, hands them to a worker pool and waits for all workers to finish.
func (bs *BackfillService) processBatch(ctx context.Context) {
	addresses, err := bs.repo.FetchPendingAddresses(ctx, bs.cfg.BatchSize, bs.cfg.MaxAttempts)
	if err != nil {
		bs.log.ErrorContext(ctx, "Failed to fetch pending addresses", "error", err)
		return
	}
	if len(addresses) == 0 {
		bs.log.InfoContext(ctx, "No addresses to process.")
		return
	}

	bs.log.InfoContext(ctx, "Found addresses to process. Starting worker pool.",
		"jobs", len(addresses), "num_workers", bs.cfg.Workers)

	jobs := make(chan models.PendingAddress, len(addresses))
	var wgr sync.WaitGroup

	for i := 1; i <= bs.cfg.Workers; i++ {
		wgr.Add(1)
		go bs.worker(ctx, i, &wgr, jobs)
	}

	for _, address := range addresses {
		jobs <- address
	}
	close(jobs)

	wgr.Wait()
	bs.log.InfoContext(ctx, "Processing batch finished")
}

func (bs *BackfillService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.PendingAddress) {
	defer wg.Done()
	for address := range jobs {
		bs.metrics.ActiveWorkers.Inc()
		bs.process(ctx, idx, address)
		bs.metrics.ActiveWorkers.Dec()
	}
}

// process resolves one address and stores either its coordinates or the reason it has none.
func (bs *BackfillService) process(ctx context.Context, idx int, address models.PendingAddress) {
	bs.log.DebugContext(ctx, "Processing address", "worker", idx, "address_id", address.ID)

	coords, err := bs.geocoder.Resolve(ctx, address.Address)

	var failure string
	switch {
	case err != nil:
		bs.log.ErrorContext(ctx, "Failed to geocode", "worker", idx, "address_id", address.ID, "error", err)
		bs.metrics.AddressProcessed.WithLabelValues("failure").Inc()
		failure = err.Error()
	case coords == nil:
		bs.log.InfoContext(ctx, "Address not found", "worker", idx, "address_id", address.ID)
		bs.metrics.AddressProcessed.WithLabelValues("not_found").Inc()
		failure = errNoResult
	}

	if failure != "" {
		if err = bs.repo.IncrementFailureCount(ctx, address.ID, failure); err != nil {
			bs.log.ErrorContext(ctx, "Could not update failure count for address",
				"worker", idx, "address_id", address.ID, "error", err)
		}
		return
	}

	bs.metrics.AddressProcessed.WithLabelValues("success").Inc()

	if err = bs.repo.UpdateCoordinates(ctx, address.ID, *coords); err != nil {
		bs.log.ErrorContext(ctx, "Failed to update coordinates for address",
			"worker", idx, "address_id", address.ID, "error", err)
		return
	}

	bs.log.DebugContext(ctx, "Worker successfully processed the address", "worker", idx, "address_id", address.ID)
}
