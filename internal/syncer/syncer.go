package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	conf "pricefeed/internal/config"
	"pricefeed/internal/db"
	"pricefeed/internal/feed"
	"pricefeed/internal/pipeline"
)

// ErrRunInProgress is returned when a run is requested while another one
// is still going. Overlapping schedule ticks and HTTP triggers share one
// guard.
var ErrRunInProgress = errors.New("feed run already in progress")

// FetchFunc delivers the decoded feed for one run.
type FetchFunc func(ctx context.Context) ([]feed.Batch, error)

type Syncer struct {
	log     zerolog.Logger
	mu      sync.Mutex
	cfg     *conf.Config
	fetch   FetchFunc
	pipe    *pipeline.Pipeline
	running bool // loop started
	busy    bool // a run is executing right now
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	ticks   uint64
}

func New(log zerolog.Logger, cfg *conf.Config, fetch FetchFunc, pipe *pipeline.Pipeline) *Syncer {
	return &Syncer{
		log:   log.With().Str("component", "syncer").Logger(),
		cfg:   cfg,
		fetch: fetch,
		pipe:  pipe,
	}
}

// Start launches the schedule loop: one run immediately, then one per
// interval. Safe to call twice.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.ticks = 0
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info().Msg("syncer: start")
	go s.loop(ctx)
	return nil
}

// Stop is idempotent.
func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("syncer: stop")
}

func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Syncer) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg != nil && s.cfg.Sync.IntervalMinutes > 0 {
		return time.Duration(s.cfg.Sync.IntervalMinutes) * time.Minute
	}
	return time.Hour
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	// first run right away
	s.tickOnce(ctx)

	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("syncer: loop done")
			return
		case <-ticker.C:
			// pick up interval changes between ticks
			ticker.Reset(s.interval())
			s.tickOnce(ctx)
		}
	}
}

func (s *Syncer) tickOnce(ctx context.Context) {
	s.mu.Lock()
	s.ticks++
	n := s.ticks
	s.mu.Unlock()

	s.log.Info().Uint64("tick", n).Msg("syncer: scheduled run")
	if _, err := s.RunOnce(ctx, "schedule"); err != nil && !errors.Is(err, ErrRunInProgress) {
		s.log.Error().Err(err).Msg("scheduled run failed")
	}
}

// RunOnce fetches the feed and pushes it through the pipeline. At most one
// run executes at a time; callers hitting an in-flight run get
// ErrRunInProgress instead of a second run.
func (s *Syncer) RunOnce(ctx context.Context, source string) (*db.FeedRun, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	batches, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.pipe.Run(ctx, source, batches)
}
