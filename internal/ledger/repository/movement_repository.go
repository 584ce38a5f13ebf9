package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// balanceExpr folds the ledger in SQL: IN adds, OUT subtracts, ADJUST
// applies the signed qty as stored.
const balanceExpr = "COALESCE(SUM(CASE type WHEN 'IN' THEN qty WHEN 'OUT' THEN -qty ELSE qty END), 0)"

type GormMovementRepository struct {
	db *gorm.DB
}

func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.StockMovement{})
}

func (r *GormMovementRepository) Append(ctx context.Context, movement *domain.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return wrapStorageErr("append movement", err)
	}
	return nil
}

// Balance computes the current stock level for one item. An item with no
// movements folds to zero. Postgres disallows FOR UPDATE on aggregates, so
// the for-update mode first locks the item's movement rows and then
// aggregates inside the same transaction; together with the item row lock
// this serializes concurrent sufficiency checks.
func (r *GormMovementRepository) Balance(ctx context.Context, itemID uint, forUpdate bool) (int64, error) {
	if forUpdate && supportsRowLocks(r.db) {
		var ids []uint
		err := r.db.WithContext(ctx).
			Model(&domain.StockMovement{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("item_id = ?", itemID).
			Pluck("id", &ids).Error
		if err != nil {
			return 0, wrapStorageErr("lock movements", err)
		}
	}

	var balance int64
	err := r.db.WithContext(ctx).
		Model(&domain.StockMovement{}).
		Select(balanceExpr).
		Where("item_id = ?", itemID).
		Scan(&balance).Error
	if err != nil {
		return 0, wrapStorageErr("compute balance", err)
	}
	return balance, nil
}

type itemBalance struct {
	ItemID  uint
	Balance int64
}

func (r *GormMovementRepository) BalancesFor(ctx context.Context, itemIDs []uint) (map[uint]int64, error) {
	balances := make(map[uint]int64, len(itemIDs))
	if len(itemIDs) == 0 {
		return balances, nil
	}

	var rows []itemBalance
	err := r.db.WithContext(ctx).
		Model(&domain.StockMovement{}).
		Select("item_id", balanceExpr+" AS balance").
		Where("item_id IN ?", itemIDs).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStorageErr("compute balances", err)
	}
	for _, row := range rows {
		balances[row.ItemID] = row.Balance
	}
	return balances, nil
}

func (r *GormMovementRepository) AllBalances(ctx context.Context) (map[uint]int64, error) {
	var rows []itemBalance
	err := r.db.WithContext(ctx).
		Model(&domain.StockMovement{}).
		Select("item_id", balanceExpr+" AS balance").
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStorageErr("compute all balances", err)
	}
	balances := make(map[uint]int64, len(rows))
	for _, row := range rows {
		balances[row.ItemID] = row.Balance
	}
	return balances, nil
}

func (r *GormMovementRepository) List(ctx context.Context, itemID uint, filter domain.MovementFilter) ([]domain.StockMovement, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&domain.StockMovement{}).
		Where("item_id = ?", itemID)
	if filter.From != nil {
		base = base.Where("moved_at >= ?", *filter.From)
	}
	if filter.To != nil {
		base = base.Where("moved_at <= ?", *filter.To)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, wrapStorageErr("count movements", err)
	}

	var movements []domain.StockMovement
	err := base.Session(&gorm.Session{}).
		Order("moved_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&movements).Error
	if err != nil {
		return nil, 0, wrapStorageErr("list movements", err)
	}
	return movements, total, nil
}

func (r *GormMovementRepository) DeleteByItem(ctx context.Context, itemID uint) error {
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&domain.StockMovement{}).Error
	if err != nil {
		return wrapStorageErr("delete movements", err)
	}
	return nil
}

var _ domain.MovementRepository = (*GormMovementRepository)(nil)
