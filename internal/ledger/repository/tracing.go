package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

var tracer = otel.Tracer("ledger-repository")

// TracingItemRepository wraps an ItemRepository with tracing
type TracingItemRepository struct {
	domain.ItemRepository
}

// NewTracingItemRepository creates a new item repository with tracing
func NewTracingItemRepository(inner domain.ItemRepository) *TracingItemRepository {
	return &TracingItemRepository{ItemRepository: inner}
}

func (r *TracingItemRepository) Create(ctx context.Context, item *domain.Item) error {
	ctx, span := tracer.Start(ctx, "repository.CreateItem",
		trace.WithAttributes(attribute.String("item.sku", item.SKU)),
	)
	defer span.End()

	err := r.ItemRepository.Create(ctx, item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("item.id", int(item.ID)))
	return nil
}

func (r *TracingItemRepository) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.FindItem",
		trace.WithAttributes(attribute.Int("item.id", int(id))),
	)
	defer span.End()

	item, err := r.ItemRepository.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("item.sku", item.SKU))
	return item, nil
}

// TracingMovementRepository wraps a MovementRepository with tracing
type TracingMovementRepository struct {
	domain.MovementRepository
}

// NewTracingMovementRepository creates a new movement repository with tracing
func NewTracingMovementRepository(inner domain.MovementRepository) *TracingMovementRepository {
	return &TracingMovementRepository{MovementRepository: inner}
}

func (r *TracingMovementRepository) Balance(ctx context.Context, itemID uint, forUpdate bool) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.Balance",
		trace.WithAttributes(
			attribute.Int("item.id", int(itemID)),
			attribute.Bool("balance.for_update", forUpdate),
		),
	)
	defer span.End()

	balance, err := r.MovementRepository.Balance(ctx, itemID, forUpdate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("balance.value", balance))
	return balance, nil
}

func (r *TracingMovementRepository) List(ctx context.Context, itemID uint, filter domain.MovementFilter) ([]domain.StockMovement, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.ListMovements",
		trace.WithAttributes(attribute.Int("item.id", int(itemID))),
	)
	defer span.End()

	movements, total, err := r.MovementRepository.List(ctx, itemID, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}
	span.SetAttributes(attribute.Int64("movements.total", total))
	return movements, total, nil
}
