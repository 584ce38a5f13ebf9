//go:build wireinject
// +build wireinject

package ledger

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/config"
	httpDelivery "github.com/tair/stock-ledger/internal/ledger/delivery/http"
	"github.com/tair/stock-ledger/internal/ledger/events"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideItemRepository,
	ProvideMovementRepository,
	ProvideRepositories,
	ProvideTransactor,
)

var UsecaseSet = wire.NewSet(
	ProvideBalanceCache,
	ProvideRetrier,
	command.NewCreateItemHandler,
	command.NewUpdateItemHandler,
	command.NewDeleteItemHandler,
	command.NewRecordReceiptHandler,
	command.NewRecordIssueHandler,
	command.NewRecordAdjustmentHandler,
	query.NewGetItemHandler,
	query.NewListItemsHandler,
	query.NewListCategoriesHandler,
	query.NewLowStockHandler,
	query.NewGetBalanceHandler,
	query.NewListMovementsHandler,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, cfg *config.Config, publisher events.Publisher) (*httpDelivery.LedgerHandler, error) {
	wire.Build(
		RepositorySet,
		UsecaseSet,
		wire.Struct(new(httpDelivery.Usecases), "*"),
		httpDelivery.NewLedgerHandler,
	)
	return nil, nil
}
