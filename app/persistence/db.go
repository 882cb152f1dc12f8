package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// DBParams defines connection pool settings
type DBParams struct {
	Path     string        // sqlite file
	MaxConns int           // max open connections, also the limit of in-flight units of work
	Timeout  time.Duration // max time a caller waits for a unit of work
}

// DB is a pool of sqlite connections. All database access goes through submit or inTx,
// which run the work in background and wait for it with a fixed upper bound.
type DB struct {
	db      *sqlx.DB
	sem     sync.Locker
	timeout time.Duration
}

// OpenDB opens sqlite database with WAL mode and foreign keys enabled
func OpenDB(params DBParams) (*DB, error) {
	// pragmas passed in dsn as they have to be set on each pooled connection
	dsn := "file:" + params.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewDB(db, params.MaxConns, params.Timeout), nil
}

// NewDB wraps opened connection pool
func NewDB(db *sqlx.DB, maxConns int, timeout time.Duration) *DB {
	if maxConns <= 0 {
		maxConns = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	db.SetMaxOpenConns(maxConns)
	return &DB{db: db, sem: syncs.NewSemaphore(maxConns), timeout: timeout}
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// submit runs fn as an independent unit of work and waits for it up to the timeout.
// On timeout or ctx cancellation the caller gets an error, but fn keeps running to completion;
// it is executed with a background context and never cancelled.
func (d *DB) submit(ctx context.Context, op string, fn func(ctx context.Context, q sqlx.ExtContext) error) error {
	done := make(chan error, 1) // buffered, so abandoned work can still finish
	go func() {
		d.sem.Lock()
		defer d.sem.Unlock()
		done <- fn(context.Background(), d.db)
	}()

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		log.Printf("[WARN] %s not completed in %v, left running", op, d.timeout)
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// inTx is submit with fn running inside a transaction, committed if fn returns no error
func (d *DB) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return d.submit(ctx, op, func(ctx context.Context, _ sqlx.ExtContext) error {
		tx, err := d.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback() // nolint errcheck, no-op after commit

		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}
