package database

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/eduvance/portal/internal/config"
)

// Dialect identifies the SQL flavour spoken by the store
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

const (
	// MaxOpenConns bounds concurrent connections; callers beyond it wait for a free one
	MaxOpenConns = 10
	MaxIdleConns = 5

	defaultQueryTimeout = 10 * time.Second
)

// DB wraps the shared connection pool
type DB struct {
	*sqlx.DB
	dialect      Dialect
	queryTimeout time.Duration
	// serializes transactions on SQLite, which allows a single writer
	mu sync.Mutex
}

// Open creates a connection pool for the given dialect and DSN.
// No connection is made until the first query.
func Open(dialect Dialect, dsn string) (*DB, error) {
	var driverName string
	switch dialect {
	case DialectMySQL:
		driverName = "mysql"
	case DialectSQLite:
		// modernc registers itself as "sqlite"
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q: must be mysql or sqlite", dialect)
	}

	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	conn.SetMaxOpenConns(MaxOpenConns)
	conn.SetMaxIdleConns(MaxIdleConns)
	if dialect == DialectMySQL {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	log.Debug().Str("driver", string(dialect)).Int("max_open_conns", MaxOpenConns).Msg("Database pool created")

	return &DB{
		DB:           conn,
		dialect:      dialect,
		queryTimeout: defaultQueryTimeout,
	}, nil
}

// OpenConfig opens the pool described by the service configuration
func OpenConfig(cfg *config.Config) (*DB, error) {
	var (
		db  *DB
		err error
	)
	switch Dialect(cfg.Database.Driver) {
	case DialectSQLite:
		db, err = Open(DialectSQLite, SQLiteDSN(cfg.Database.Path))
	default:
		db, err = Open(DialectMySQL, MySQLDSN(cfg.MySQL))
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeouts.Query > 0 {
		db.SetQueryTimeout(cfg.Timeouts.Query)
	}
	return db, nil
}

// MySQLDSN builds a go-sql-driver DSN from the connection settings
func MySQLDSN(cfg config.MySQLConfig) string {
	dsn := mysql.NewConfig()
	dsn.User = cfg.EffectiveUser()
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dsn.DBName = cfg.Database
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	return dsn.FormatDSN()
}

// SQLiteDSN builds a modernc sqlite DSN with WAL, a busy timeout and foreign keys enabled
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// Dialect returns the SQL dialect of the pool
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// SetQueryTimeout bounds every store call
func (db *DB) SetQueryTimeout(d time.Duration) {
	db.queryTimeout = d
}

// queryContext derives the per-call context from the request context
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// Transaction wraps a function in a database transaction
func (db *DB) Transaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if db.dialect == DialectSQLite {
		db.mu.Lock()
		defer db.mu.Unlock()
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
