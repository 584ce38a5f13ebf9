package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// GormTransactor scopes ledger repositories to one database transaction.
// Every write operation of the ledger runs through it so the item row lock,
// the balance read, the movement append and the version bump commit or roll
// back as a unit.
type GormTransactor struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormTransactor creates a transactor. lockTimeout bounds how long a
// transaction waits on a conflicting row lock before failing; zero keeps the
// server default.
func NewGormTransactor(db *gorm.DB, lockTimeout time.Duration) *GormTransactor {
	return &GormTransactor{db: db, lockTimeout: lockTimeout}
}

func (t *GormTransactor) WithinTx(ctx context.Context, fn func(repos domain.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.lockTimeout > 0 && supportsRowLocks(t.db) {
			// SET LOCAL scopes the timeout to this transaction. A lock wait
			// that exceeds it fails with 55P03, which classifies as a
			// retryable conflict.
			timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())
			if err := tx.Exec(timeout).Error; err != nil {
				return wrapStorageErr("set lock timeout", err)
			}
		}
		return fn(&txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r *txRepositories) Items() domain.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *txRepositories) Movements() domain.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var _ domain.Transactor = (*GormTransactor)(nil)

// PoolRepositories exposes the same repositories outside any transaction,
// backed by the shared connection pool. Read paths use these.
type PoolRepositories struct {
	items     domain.ItemRepository
	movements domain.MovementRepository
}

func NewPoolRepositories(items domain.ItemRepository, movements domain.MovementRepository) *PoolRepositories {
	return &PoolRepositories{items: items, movements: movements}
}

func (r *PoolRepositories) Items() domain.ItemRepository {
	return r.items
}

func (r *PoolRepositories) Movements() domain.MovementRepository {
	return r.movements
}

var _ domain.Repositories = (*PoolRepositories)(nil)
