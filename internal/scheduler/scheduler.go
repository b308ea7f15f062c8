package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/atomic"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
)

// Pair is one scheduled unit of work: one adapter polled for one target.
type Pair struct {
	Adapter aqi.Adapter
	Target  aqi.Target
}

// Options configures the polling scheduler.
type Options struct {
	// Interval between cycles.
	Interval time.Duration
	// TargetDelay staggers consecutive fetch launches within a cycle.
	TargetDelay time.Duration
	// MaxConcurrent caps in-flight fetches within a cycle.
	MaxConcurrent int
	// ConfigCooldown is how long a misconfigured adapter is skipped before
	// its fetches are attempted again.
	ConfigCooldown time.Duration
	// FetchTimeout bounds a single (adapter, target) ingestion.
	FetchTimeout time.Duration
}

// Scheduler periodically ingests data for every configured (adapter, target)
// pair. One pair's failure never aborts the rest of the cycle, and no error
// terminates the loop; only Stop does.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *aqi.Service
	pairs     []Pair
	opts      Options

	running *atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu            sync.Mutex
	cooldownUntil map[string]time.Time // adapter name -> earliest next attempt
}

// New creates a Scheduler. Zero option fields get defaults.
func New(service *aqi.Service, pairs []Pair, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Minute
	}
	if opts.TargetDelay < 0 {
		opts.TargetDelay = 0
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.ConfigCooldown <= 0 {
		opts.ConfigCooldown = time.Hour
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		service:       service,
		pairs:         pairs,
		opts:          opts,
		running:       atomic.NewBool(false),
		ctx:           ctx,
		cancel:        cancel,
		cooldownUntil: make(map[string]time.Time),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.pairs) == 0 {
		log.Println("scheduler: no targets configured; nothing to schedule")
		return nil
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	_, err := s.scheduler.Every(s.opts.Interval).Do(func() {
		s.runCycle(s.ctx)
	})
	if err != nil {
		s.running.Store(false)
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop cancels the scheduler. Fetches not yet started do not begin;
// ingestions already in flight run to completion so committed records are
// never corrupted.
func (s *Scheduler) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.cancel()
	s.scheduler.Stop()
}

// runCycle iterates every configured pair through a bounded worker pool.
func (s *Scheduler) runCycle(ctx context.Context) {
	log.Printf("scheduler: starting cycle over %d targets", len(s.pairs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.opts.MaxConcurrent)

	for i, pair := range s.pairs {
		// Cooperative cancellation: never start a new fetch after Stop.
		if ctx.Err() != nil {
			log.Println("scheduler: cancelled; skipping remaining targets")
			break
		}

		if s.inCooldown(pair.Adapter.Name()) {
			continue
		}

		// Stagger launches to throttle the outbound request rate.
		if i > 0 && s.opts.TargetDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.opts.TargetDelay):
			}
			if ctx.Err() != nil {
				break
			}
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(pair Pair) {
			defer wg.Done()
			defer func() { <-sem }()
			s.ingest(pair)
		}(pair)
	}

	wg.Wait()
	log.Println("scheduler: cycle complete")
}

// ingest runs one (adapter, target) ingestion with its own timeout. The
// timeout context is detached from the scheduler context so an in-flight
// ingestion commits even if Stop is called meanwhile.
func (s *Scheduler) ingest(pair Pair) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.FetchTimeout)
	defer cancel()

	name := pair.Adapter.Name()
	err := s.service.IngestScheduled(ctx, pair.Adapter, pair.Target)
	switch {
	case err == nil:
		log.Printf("scheduler: stored record for %s via %s", pair.Target.City, name)
	case aqi.IsConfigError(err):
		s.startCooldown(name)
		log.Printf("scheduler: %v; backing off adapter for %s", err, s.opts.ConfigCooldown)
	default:
		// Transient failure: retried on the next cycle, siblings unaffected.
		log.Printf("scheduler: fetch failed for %s via %s: %v", pair.Target.City, name, err)
	}
}

func (s *Scheduler) inCooldown(adapter string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.cooldownUntil[adapter]
	return ok && time.Now().Before(until)
}

func (s *Scheduler) startCooldown(adapter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldownUntil[adapter] = time.Now().Add(s.opts.ConfigCooldown)
}
