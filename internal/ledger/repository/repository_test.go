package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ledger.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Item{}, &domain.StockMovement{}))
	return db
}

func createItem(t *testing.T, db *gorm.DB, sku string) *domain.Item {
	t.Helper()
	repo := NewGormItemRepository(db)
	item := &domain.Item{SKU: sku, Name: "Item " + sku, Unit: "pcs"}
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func appendMovement(t *testing.T, db *gorm.DB, itemID uint, mvType domain.MovementType, qty int64, movedAt time.Time) *domain.StockMovement {
	t.Helper()
	repo := NewGormMovementRepository(db)
	m := &domain.StockMovement{ItemID: itemID, Type: mvType, Qty: qty, MovedAt: movedAt}
	require.NoError(t, repo.Append(context.Background(), m))
	return m
}

func TestGormItemRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)

	item := createItem(t, db, "BOLT-M8")
	require.NotZero(t, item.ID)

	found, err := repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "BOLT-M8", found.SKU)
	assert.Equal(t, int64(0), found.Version)

	found, err = repo.FindBySKU(context.Background(), "BOLT-M8")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	_, err = repo.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = repo.FindBySKU(context.Background(), "NO-SUCH")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestGormItemRepository_DuplicateSKU(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)

	createItem(t, db, "BOLT-M8")

	dup := &domain.Item{SKU: "BOLT-M8", Name: "duplicate", Unit: "pcs"}
	err := repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestGormItemRepository_BumpVersion(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	item := createItem(t, db, "BOLT-M8")

	require.NoError(t, repo.BumpVersion(context.Background(), item.ID, 0))

	found, err := repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Version)

	// A stale expected version means another writer got there first.
	err = repo.BumpVersion(context.Background(), item.ID, 0)
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err = repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Version, "failed fence must not move the version")
}

func TestGormItemRepository_UpdateFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	item := createItem(t, db, "BOLT-M8")

	name := "renamed"
	minStock := int64(12)
	err := repo.UpdateFields(context.Background(), item.ID, domain.ItemUpdate{Name: &name, MinStock: &minStock})
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Name)
	assert.Equal(t, int64(12), found.MinStock)
	assert.Equal(t, "pcs", found.Unit, "untouched fields stay")

	// Empty update is a no-op, not an error.
	require.NoError(t, repo.UpdateFields(context.Background(), item.ID, domain.ItemUpdate{}))

	err = repo.UpdateFields(context.Background(), 404, domain.ItemUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestGormItemRepository_FindAllAndCategories(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)

	tools := "tools"
	fasteners := "fasteners"
	for _, it := range []*domain.Item{
		{SKU: "A-1", Name: "a1", Unit: "pcs", Category: &tools},
		{SKU: "A-2", Name: "a2", Unit: "pcs", Category: &fasteners},
		{SKU: "A-3", Name: "a3", Unit: "pcs", Category: &tools},
		{SKU: "A-4", Name: "a4", Unit: "pcs"},
	} {
		require.NoError(t, repo.Create(context.Background(), it))
	}

	items, err := repo.FindAll(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A-2", items[0].SKU)
	assert.Equal(t, "A-3", items[1].SKU)

	all, err := repo.FindAll(context.Background(), -1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fasteners", "tools"}, categories)
}

func TestGormItemRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormItemRepository(db)
	item := createItem(t, db, "BOLT-M8")

	require.NoError(t, repo.Delete(context.Background(), item.ID))

	_, err := repo.FindByID(context.Background(), item.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	err = repo.Delete(context.Background(), item.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestGormMovementRepository_BalanceFold(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMovementRepository(db)
	item := createItem(t, db, "BOLT-M8")
	now := time.Now().UTC()

	balance, err := repo.Balance(context.Background(), item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "no movements folds to zero")

	appendMovement(t, db, item.ID, domain.MovementIn, 100, now)
	appendMovement(t, db, item.ID, domain.MovementOut, 30, now)
	appendMovement(t, db, item.ID, domain.MovementAdjust, -5, now)
	appendMovement(t, db, item.ID, domain.MovementAdjust, 2, now)

	balance, err = repo.Balance(context.Background(), item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(67), balance)

	// The for-update path degrades to a plain fold on sqlite.
	balance, err = repo.Balance(context.Background(), item.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(67), balance)
}

func TestGormMovementRepository_BalancesForAndAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMovementRepository(db)
	now := time.Now().UTC()

	a := createItem(t, db, "A")
	b := createItem(t, db, "B")
	createItem(t, db, "C")

	appendMovement(t, db, a.ID, domain.MovementIn, 10, now)
	appendMovement(t, db, b.ID, domain.MovementIn, 5, now)
	appendMovement(t, db, b.ID, domain.MovementOut, 2, now)

	balances, err := repo.BalancesFor(context.Background(), []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{a.ID: 10, b.ID: 3}, balances)

	balances, err = repo.BalancesFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, balances)

	all, err := repo.AllBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{a.ID: 10, b.ID: 3}, all, "items without movements are absent")
}

func TestGormMovementRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMovementRepository(db)
	item := createItem(t, db, "BOLT-M8")
	other := createItem(t, db, "NUT-M8")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	appendMovement(t, db, item.ID, domain.MovementIn, 10, base)
	appendMovement(t, db, item.ID, domain.MovementOut, 4, base.AddDate(0, 0, 1))
	appendMovement(t, db, item.ID, domain.MovementIn, 6, base.AddDate(0, 0, 2))
	appendMovement(t, db, other.ID, domain.MovementIn, 99, base)

	movements, total, err := repo.List(context.Background(), item.ID, domain.MovementFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, movements, 3)
	assert.Equal(t, int64(6), movements[0].Qty, "newest first")
	assert.Equal(t, int64(10), movements[2].Qty)

	out := domain.MovementOut
	movements, total, err = repo.List(context.Background(), item.ID, domain.MovementFilter{Type: &out, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementOut, movements[0].Type)

	from := base.AddDate(0, 0, 1)
	movements, total, err = repo.List(context.Background(), item.ID, domain.MovementFilter{From: &from, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, movements, 2)

	movements, total, err = repo.List(context.Background(), item.ID, domain.MovementFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "total ignores pagination")
	require.Len(t, movements, 1)
	assert.Equal(t, int64(10), movements[0].Qty)
}

func TestGormMovementRepository_MetadataRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMovementRepository(db)
	item := createItem(t, db, "BOLT-M8")

	ref := "PO-1001"
	m := &domain.StockMovement{
		ItemID:  item.ID,
		Type:    domain.MovementIn,
		Qty:     5,
		Ref:     &ref,
		Meta:    domain.Metadata{"source": "api", "operator": "jdoe"},
		MovedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Append(context.Background(), m))

	movements, _, err := repo.List(context.Background(), item.ID, domain.MovementFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, movements, 1)

	stored := movements[0]
	require.NotNil(t, stored.Ref)
	assert.Equal(t, "PO-1001", *stored.Ref)
	assert.Equal(t, "api", stored.Meta["source"])
	assert.Equal(t, "jdoe", stored.Meta["operator"])
}

func TestGormMovementRepository_DeleteByItem(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMovementRepository(db)
	item := createItem(t, db, "BOLT-M8")
	other := createItem(t, db, "NUT-M8")
	now := time.Now().UTC()

	appendMovement(t, db, item.ID, domain.MovementIn, 10, now)
	appendMovement(t, db, item.ID, domain.MovementOut, 2, now)
	appendMovement(t, db, other.ID, domain.MovementIn, 7, now)

	require.NoError(t, repo.DeleteByItem(context.Background(), item.ID))

	_, total, err := repo.List(context.Background(), item.ID, domain.MovementFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	balance, err := repo.Balance(context.Background(), other.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance, "other items keep their ledger")
}

func TestGormTransactor_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	tx := NewGormTransactor(db, 0)

	sentinel := errors.New("abort")
	err := tx.WithinTx(context.Background(), func(repos domain.Repositories) error {
		item := &domain.Item{SKU: "ROLLBACK-1", Name: "never lands", Unit: "pcs"}
		if err := repos.Items().Create(context.Background(), item); err != nil {
			return err
		}
		movement := &domain.StockMovement{ItemID: item.ID, Type: domain.MovementIn, Qty: 1, MovedAt: time.Now().UTC()}
		if err := repos.Movements().Append(context.Background(), movement); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	repo := NewGormItemRepository(db)
	_, err = repo.FindBySKU(context.Background(), "ROLLBACK-1")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestGormTransactor_CommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	tx := NewGormTransactor(db, 5*time.Second)

	err := tx.WithinTx(context.Background(), func(repos domain.Repositories) error {
		return repos.Items().Create(context.Background(), &domain.Item{SKU: "COMMIT-1", Name: "lands", Unit: "pcs"})
	})
	require.NoError(t, err)

	repo := NewGormItemRepository(db)
	found, err := repo.FindBySKU(context.Background(), "COMMIT-1")
	require.NoError(t, err)
	assert.Equal(t, "COMMIT-1", found.SKU)
}
