package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"lager/internal/config"
	"lager/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotInitialized is returned when the pool is used before Open completed.
	ErrNotInitialized = errors.New("database pool not initialized")
	// ErrClosed is returned once shutdown has started.
	ErrClosed = errors.New("database pool closed")
	// ErrUnavailable wraps failures to obtain or finish a pooled connection.
	ErrUnavailable = errors.New("database unavailable")
)

// Options configures Open.
type Options struct {
	Driver          string
	DSN             string
	MinConns        int
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// Pool owns a bounded set of live connections. Every unit of work runs in its own
// transaction on one exclusively held connection.
type Pool struct {
	db *gorm.DB

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// Open connects, applies the pool bounds and warms MinConns connections.
func Open(ctx context.Context, opts Options) (*Pool, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns < 1 {
		return nil, fmt.Errorf("pool max size must be at least 1 (got %d)", opts.MaxConns)
	}
	if opts.MinConns < 0 || opts.MinConns > opts.MaxConns {
		return nil, fmt.Errorf("pool min size %d outside 0..%d", opts.MinConns, opts.MaxConns)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxConns)
	sqlDB.SetMaxIdleConns(opts.MaxConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := warm(ctx, sqlDB, opts.MinConns); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	log.Printf("Database pool ready: driver=%s min=%d max=%d", opts.Driver, opts.MinConns, opts.MaxConns)
	return &Pool{db: db}, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// warm opens n connections at once and hands them back so they stay idle in the pool.
func warm(ctx context.Context, sqlDB *sql.DB, n int) error {
	conns := make([]*sql.Conn, 0, n)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < n; i++ {
		c, err := sqlDB.Conn(ctx)
		if err != nil {
			return err
		}
		conns = append(conns, c)
	}
	return nil
}

func (p *Pool) acquire() (func(), error) {
	if p == nil {
		return nil, ErrNotInitialized
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, ErrNotInitialized
	}
	if p.closed {
		return nil, ErrClosed
	}
	p.inflight.Add(1)
	return p.inflight.Done, nil
}

// WithTx runs fn inside a transaction on one pooled connection. The transaction is
// committed when fn returns nil and rolled back on error or panic; the connection is
// always returned to the pool. Begin blocks while every connection is in use.
func (p *Pool) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	release, err := p.acquire()
	if err != nil {
		return err
	}
	defer release()

	tx := p.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%w: begin: %v", ErrUnavailable, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if err != nil {
			if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("tx rollback failed: %v", rbErr)
			}
			return
		}
		if cErr := tx.Commit().Error; cErr != nil {
			err = fmt.Errorf("%w: commit: %v", ErrUnavailable, cErr)
		}
	}()

	return fn(tx)
}

// Migrate creates or updates the articles table.
func (p *Pool) Migrate(ctx context.Context) error {
	release, err := p.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := p.db.WithContext(ctx).AutoMigrate(&models.Article{}); err != nil {
		return fmt.Errorf("failed to migrate articles: %w", err)
	}
	return nil
}

// Ping checks that a connection can be reached.
func (p *Pool) Ping(ctx context.Context) error {
	release, err := p.acquire()
	if err != nil {
		return err
	}
	defer release()

	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Stats exposes the underlying database/sql pool counters.
func (p *Pool) Stats() sql.DBStats {
	if p == nil || p.db == nil {
		return sql.DBStats{}
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Close stops accepting work, waits for in-flight operations and closes all connections.
// It is safe to call more than once.
func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed || p.db == nil {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.inflight.Wait()

	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database pool: %w", err)
	}
	log.Println("Database pool closed")
	return nil
}
