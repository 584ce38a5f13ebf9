package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Item{})
}

func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create item %q: %w", item.SKU, domain.ErrDuplicateSKU)
		}
		return wrapStorageErr("create item", err)
	}
	return nil
}

func (r *GormItemRepository) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
		}
		return nil, wrapStorageErr("find item", err)
	}
	return &item, nil
}

// FindByIDForUpdate takes the row lock writers serialize on. Only meaningful
// inside a transaction; on dialects without FOR UPDATE (sqlite in tests) it
// degrades to a plain read and the engine's write serialization applies.
func (r *GormItemRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	tx := r.db.WithContext(ctx)
	if supportsRowLocks(r.db) {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := tx.First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
		}
		return nil, wrapStorageErr("lock item", err)
	}
	return &item, nil
}

func (r *GormItemRepository) FindBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sku %q: %w", sku, domain.ErrItemNotFound)
		}
		return nil, wrapStorageErr("find item by sku", err)
	}
	return &item, nil
}

func (r *GormItemRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.WithContext(ctx).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, wrapStorageErr("list items", err)
	}
	return items, nil
}

func (r *GormItemRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("category IS NOT NULL").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, wrapStorageErr("list categories", err)
	}
	return categories, nil
}

func (r *GormItemRepository) UpdateFields(ctx context.Context, id uint, update domain.ItemUpdate) error {
	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Category != nil {
		fields["category"] = *update.Category
	}
	if update.Unit != nil {
		fields["unit"] = *update.Unit
	}
	if update.MinStock != nil {
		fields["min_stock"] = *update.MinStock
	}
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrapStorageErr("update item", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	return nil
}

// BumpVersion is the optimistic-lock fence: the update only lands when the
// row still carries fromVersion. Zero rows affected means another writer
// committed in between and the whole operation must re-run.
func (r *GormItemRepository) BumpVersion(ctx context.Context, id uint, fromVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ? AND version = ?", id, fromVersion).
		Updates(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return wrapStorageErr("bump item version", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d version %d: %w", id, fromVersion, domain.ErrConflict)
	}
	return nil
}

func (r *GormItemRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Item{}, id)
	if res.Error != nil {
		return wrapStorageErr("delete item", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	return nil
}

func supportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

var _ domain.ItemRepository = (*GormItemRepository)(nil)
