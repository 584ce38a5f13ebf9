package ledger

import (
	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/config"
	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/repository"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
)

// ProvideItemRepository provides the item repository with tracing
func ProvideItemRepository(db *gorm.DB) domain.ItemRepository {
	return repository.NewTracingItemRepository(repository.NewGormItemRepository(db))
}

// ProvideMovementRepository provides the movement repository with tracing
func ProvideMovementRepository(db *gorm.DB) domain.MovementRepository {
	return repository.NewTracingMovementRepository(repository.NewGormMovementRepository(db))
}

// ProvideRepositories bundles the pool-backed repositories
func ProvideRepositories(items domain.ItemRepository, movements domain.MovementRepository) domain.Repositories {
	return repository.NewPoolRepositories(items, movements)
}

// ProvideTransactor provides the transaction scope with the configured lock timeout
func ProvideTransactor(db *gorm.DB, cfg *config.Config) domain.Transactor {
	return repository.NewGormTransactor(db, cfg.Ledger.LockTimeout)
}

// ProvideBalanceCache provides the balance cache with the configured TTL
func ProvideBalanceCache(cfg *config.Config) *cache.BalanceCache {
	return cache.New(cfg.Ledger.CacheTTL)
}

// ProvideRetrier provides the conflict retrier with the configured bound
func ProvideRetrier(cfg *config.Config) command.Retrier {
	return command.NewRetrier(cfg.Ledger.RetryAttempts, cfg.Ledger.RetryBackoff)
}
