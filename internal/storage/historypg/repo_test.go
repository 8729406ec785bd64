// Integration tests for the History Store, following the same
// testcontainers shape walletpg's repo_test.go uses. Run with Docker
// available; skipped in -short mode.
package historypg

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/historyprojector"
	"github.com/ledgerbridge/walletplatform/internal/money"
)

type testDB struct {
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
}

func setupTestDB(t *testing.T) *testDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping testcontainers integration test in short mode")
	}

	ctx := context.Background()
	migrationsPath := filepath.Join("..", "..", "..", "migrations", "history")

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("history_test"),
		tcpostgres.WithUsername("history_test"),
		tcpostgres.WithPassword("history_test"),
		tcpostgres.WithInitScripts(filepath.Join(migrationsPath, "0001_history.up.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))

	return &testDB{container: container, pool: pool}
}

func (db *testDB) truncate(t *testing.T) {
	t.Helper()
	_, err := db.pool.Exec(context.Background(), "TRUNCATE history_records")
	require.NoError(t, err)
}

func insertRecord(t *testing.T, uow *UnitOfWork, rec domain.HistoryRecord) {
	t.Helper()
	err := uow.WithinTx(context.Background(), func(ctx context.Context, s historyprojector.Store) error {
		return s.InsertRecord(ctx, rec)
	})
	require.NoError(t, err)
}

func TestHistoryStore_InsertAndExists(t *testing.T) {
	db := setupTestDB(t)
	uow := NewUnitOfWork(db.pool)
	ctx := context.Background()

	amount, _ := money.Parse("10.0000")
	insertRecord(t, uow, domain.HistoryRecord{
		ID: "h-1", WalletID: "w-1", UserID: "u-1", Amount: amount,
		EventType: domain.EventTypeWalletFunded, TransactionID: "tx-1",
		RawEvent: []byte(`{}`), ArrivedAt: time.Now().UTC(),
	})

	var exists bool
	err := uow.WithinTx(ctx, func(ctx context.Context, s historyprojector.Store) error {
		var err error
		exists, err = s.ExistsByTransactionID(ctx, "tx-1")
		return err
	})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHistoryStore_InsertRecord_RejectsDuplicateTransactionID(t *testing.T) {
	db := setupTestDB(t)
	db.truncate(t)
	uow := NewUnitOfWork(db.pool)

	amount, _ := money.Parse("5.0000")
	rec := domain.HistoryRecord{
		ID: "h-2", WalletID: "w-1", UserID: "u-1", Amount: amount,
		EventType: domain.EventTypeWalletFunded, TransactionID: "tx-dup",
		RawEvent: []byte(`{}`), ArrivedAt: time.Now().UTC(),
	}
	insertRecord(t, uow, rec)

	rec.ID = "h-3"
	err := uow.WithinTx(context.Background(), func(ctx context.Context, s historyprojector.Store) error {
		return s.InsertRecord(ctx, rec)
	})
	assert.Error(t, err)
}

func TestHistoryStore_ListByWallet_OrderedDescendingWithTotal(t *testing.T) {
	db := setupTestDB(t)
	db.truncate(t)
	uow := NewUnitOfWork(db.pool)
	store := NewStore(db.pool)
	ctx := context.Background()

	base := time.Now().UTC()
	amount, _ := money.Parse("1.0000")
	for i, txID := range []string{"tx-a", "tx-b", "tx-c"} {
		insertRecord(t, uow, domain.HistoryRecord{
			ID: "h-" + txID, WalletID: "w-list", UserID: "u-list", Amount: amount,
			EventType: domain.EventTypeWalletFunded, TransactionID: txID,
			RawEvent: []byte(`{}`), ArrivedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	records, total, err := store.ListByWallet(ctx, "w-list", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, records, 2)
	assert.Equal(t, "tx-c", records[0].TransactionID)
	assert.Equal(t, "tx-b", records[1].TransactionID)
}

func TestHistoryStore_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	db.truncate(t)
	uow := NewUnitOfWork(db.pool)
	store := NewStore(db.pool)
	ctx := context.Background()

	amount, _ := money.Parse("2.5000")
	insertRecord(t, uow, domain.HistoryRecord{
		ID: "h-u1", WalletID: "w-9", UserID: "u-shared", Amount: amount,
		EventType: domain.EventTypeWalletCreated, TransactionID: "tx-u1",
		RawEvent: []byte(`{}`), ArrivedAt: time.Now().UTC(),
	})
	insertRecord(t, uow, domain.HistoryRecord{
		ID: "h-u2", WalletID: "w-10", UserID: "u-shared", Amount: amount,
		EventType: domain.EventTypeWalletCreated, TransactionID: "tx-u2",
		RawEvent: []byte(`{}`), ArrivedAt: time.Now().UTC(),
	})

	records, total, err := store.ListByUser(ctx, "u-shared", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, records, 2)
}
