package discord

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSchedule refreshes the member count every five minutes
const DefaultSchedule = "@every 5m"

// Refresher keeps the cached member count warm on a cron schedule
type Refresher struct {
	client   *Client
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
}

// NewRefresher creates a refresher for client
func NewRefresher(client *Client, schedule string) *Refresher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Refresher{
		client:   client,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the refresh job and warms the cache once
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}
	if !r.client.Configured() {
		log.Info().Msg("Discord not configured, member count refresher disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, r.refresh); err != nil {
		return err
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.running = true
	r.cron.Start()

	go r.refresh()

	log.Info().Str("schedule", r.schedule).Msg("Discord member count refresher started")
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.running = false
	r.mu.Unlock()

	// A job in flight takes r.mu, so wait outside the lock
	ctx := r.cron.Stop()
	<-ctx.Done()

	log.Info().Msg("Discord member count refresher stopped")
}

func (r *Refresher) refresh() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		return
	}

	if _, err := r.client.Refresh(ctx); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("Failed to refresh Discord member count")
	}
}
