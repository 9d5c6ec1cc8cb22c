// storage/postgres_test.go
package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testLedger *PostgresLedger

// TestMain starts a PostgreSQL container for the Postgres ledger tests.
// Without Docker, or with SKIP_POSTGRES_TESTS set, those tests are skipped.
func TestMain(m *testing.M) {
	if os.Getenv("SKIP_POSTGRES_TESTS") != "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:14-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		log.Printf("could not start postgres container, skipping postgres tests: %s", err)
		os.Exit(m.Run())
	}

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("could not get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		log.Fatalf("could not connect to test database: %s", err)
	}

	testLedger = &PostgresLedger{db: pool, Now: time.Now}
	if err := testLedger.initSchema(ctx); err != nil {
		log.Fatalf("could not initialize schema: %s", err)
	}

	code := m.Run()

	pool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("could not terminate postgres container: %s", err)
	}
	os.Exit(code)
}

func requirePostgres(t *testing.T) {
	t.Helper()
	if testLedger == nil {
		t.Skip("postgres tests disabled")
	}
}

// truncateTables clears the transactions table between tests to ensure isolation.
func truncateTables(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := testLedger.db.Exec(ctx, "TRUNCATE TABLE transactions RESTART IDENTITY")
	require.NoError(t, err, "failed to truncate tables")
}

func TestPostgresLedgerRecordAndHistory(t *testing.T) {
	requirePostgres(t)
	ctx := context.Background()
	truncateTables(t, ctx)

	at := time.Date(2025, time.March, 7, 14, 5, 9, 0, time.Local)
	testLedger.Now = fixedClock(at)
	t.Cleanup(func() { testLedger.Now = time.Now })

	t.Run("empty history", func(t *testing.T) {
		lines, err := testLedger.History(ctx, "alice", "Everyday")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("lines match the flat-file format", func(t *testing.T) {
		// Arrange
		require.NoError(t, testLedger.RecordTransaction(ctx, "alice", "Everyday", "Transfer to Rainy Day: $75.50"))
		require.NoError(t, testLedger.RecordTransaction(ctx, "alice", "Rainy Day", "Transfer from Everyday: $75.50"))

		// Act
		lines, err := testLedger.History(ctx, "alice", "Everyday")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"Transfer to Rainy Day: $75.50, 03-07-2025 14:05:09"}, lines)
	})
}

func TestPostgresLedgerLastN(t *testing.T) {
	requirePostgres(t)
	ctx := context.Background()
	truncateTables(t, ctx)

	for i := 1; i <= 7; i++ {
		require.NoError(t, testLedger.RecordTransaction(ctx, "alice", "Everyday", fmt.Sprintf("Transaction %d", i)))
	}

	lastFive, err := testLedger.LastN(ctx, "alice", "Everyday", 5)
	require.NoError(t, err)
	require.Len(t, lastFive, 5)
	assert.Contains(t, lastFive[0], "Transaction 3")
	assert.Contains(t, lastFive[4], "Transaction 7")

	all, err := testLedger.LastN(ctx, "alice", "Everyday", 50)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestPostgresLedgerContextCancellation(t *testing.T) {
	requirePostgres(t)
	ctx := context.Background()
	truncateTables(t, ctx)

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	err := testLedger.RecordTransaction(cancelCtx, "alice", "Everyday", "Deposit: $1.00")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}
