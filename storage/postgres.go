// storage/postgres.go

package storage

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger implements Ledger on a PostgreSQL table. Lines are rendered
// exactly like the flat-file ledger.
type PostgresLedger struct {
	db  *pgxpool.Pool
	Now func() time.Time
}

// NewPostgresLedger connects to the database and initializes the schema.
func NewPostgresLedger(ctx context.Context, connString string) (*PostgresLedger, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database for a few seconds
	for i := 0; i < 5; i++ {
		pool, err = pgxpool.New(ctx, connString)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to database after retries: %w", err)
	}

	ledger := &PostgresLedger{db: pool, Now: time.Now}
	if err := ledger.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return ledger, nil
}

// initSchema creates the transactions table if it doesn't exist.
func (l *PostgresLedger) initSchema(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS transactions (
        id BIGSERIAL PRIMARY KEY,
        owner TEXT NOT NULL,
        account_name TEXT NOT NULL,
        description TEXT NOT NULL,
        recorded_at TIMESTAMPTZ NOT NULL
    );`
	if _, err := l.db.Exec(ctx, query); err != nil {
		return err
	}
	index := `
    CREATE INDEX IF NOT EXISTS transactions_owner_account_idx
        ON transactions (owner, account_name, id);`
	_, err := l.db.Exec(ctx, index)
	return err
}

// Close releases the connection pool.
func (l *PostgresLedger) Close() {
	l.db.Close()
}

// RecordTransaction inserts one entry. Rows are never updated or deleted.
func (l *PostgresLedger) RecordTransaction(ctx context.Context, owner, account, description string) error {
	query := `
		INSERT INTO transactions (owner, account_name, description, recorded_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := l.db.Exec(ctx, query, owner, account, description, l.Now()); err != nil {
		return fmt.Errorf("could not record transaction for %s/%s: %w", owner, account, err)
	}
	return nil
}

// History returns every entry for the account in insertion order.
func (l *PostgresLedger) History(ctx context.Context, owner, account string) ([]string, error) {
	query := `
        SELECT description, recorded_at FROM transactions
        WHERE owner = $1 AND account_name = $2
        ORDER BY id`
	return l.query(ctx, query, owner, account)
}

// LastN returns the trailing n entries, oldest first.
func (l *PostgresLedger) LastN(ctx context.Context, owner, account string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultLastN
	}
	query := `
        SELECT description, recorded_at FROM transactions
        WHERE owner = $1 AND account_name = $2
        ORDER BY id DESC LIMIT $3`
	lines, err := l.query(ctx, query, owner, account, n)
	if err != nil {
		return nil, err
	}
	slices.Reverse(lines)
	return lines, nil
}

func (l *PostgresLedger) query(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query history: %w", err)
	}
	defer rows.Close()

	lines := []string{}
	for rows.Next() {
		var description string
		var at time.Time
		if err := rows.Scan(&description, &at); err != nil {
			return nil, fmt.Errorf("could not scan history row: %w", err)
		}
		lines = append(lines, entryLine(description, at.Local()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read history rows: %w", err)
	}
	return lines, nil
}
