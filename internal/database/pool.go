package database

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/config"
)

// Provider owns the process-wide connection pool.
// The pool is created on the first Get and shared by every later caller.
type Provider struct {
	open func() (*DB, error)
	once sync.Once
	db   *DB
	err  error
}

// NewProvider returns a provider that builds its pool with open
func NewProvider(open func() (*DB, error)) *Provider {
	return &Provider{open: open}
}

// NewConfigProvider returns a provider for the configured backend
func NewConfigProvider(cfg *config.Config) *Provider {
	return NewProvider(func() (*DB, error) {
		return OpenConfig(cfg)
	})
}

// Get returns the shared pool, creating it on first use
func (p *Provider) Get() (*DB, error) {
	p.once.Do(func() {
		p.db, p.err = p.open()
	})
	return p.db, p.err
}

// Close releases the pool. Get returns ErrClosed afterwards if the pool was never created.
func (p *Provider) Close() error {
	p.once.Do(func() {
		p.err = ErrClosed
	})
	if p.db == nil {
		return nil
	}
	log.Debug().Msg("Closing database pool")
	return p.db.Close()
}
