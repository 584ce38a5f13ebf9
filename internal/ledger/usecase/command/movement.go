package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/events"
	"github.com/tair/stock-ledger/internal/ledger/metrics"
	"github.com/tair/stock-ledger/pkg/logger"
)

// MovementResult is what a successful write operation returns: the appended
// movement, the balance reflecting it, and the item's new version.
type MovementResult struct {
	Movement    domain.StockMovement `json:"movement"`
	Balance     int64                `json:"balance"`
	ItemVersion int64                `json:"item_version"`
}

// ledgerWriter holds the collaborators shared by all write handlers and
// implements the per-operation state machine: begin, lock, validate, append,
// commit, then invalidate the cache and publish the event.
type ledgerWriter struct {
	tx       domain.Transactor
	balances *cache.BalanceCache
	pub      events.Publisher
	retrier  Retrier
}

func newLedgerWriter(tx domain.Transactor, balances *cache.BalanceCache, pub events.Publisher, retrier Retrier) ledgerWriter {
	return ledgerWriter{tx: tx, balances: balances, pub: pub, retrier: retrier}
}

// record runs one movement write under the retry policy. Validation of the
// quantity's shape has already happened in the calling handler; what remains
// here is everything that needs fresh state: existence, sufficiency, append,
// version fence.
func (w ledgerWriter) record(ctx context.Context, itemID uint, mvType domain.MovementType, qty int64, ref *string, meta domain.Metadata) (*MovementResult, error) {
	var (
		result MovementResult
		sku    string
	)

	err := w.retrier.Do(ctx, func(ctx context.Context) error {
		return w.tx.WithinTx(ctx, func(repos domain.Repositories) error {
			item, err := repos.Items().FindByIDForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			sku = item.SKU

			// OUT and ADJUST decide against the current balance, so the
			// fold has to be read under the row lock. IN never needs the
			// prior balance.
			var before int64
			if mvType != domain.MovementIn {
				before, err = repos.Movements().Balance(ctx, item.ID, true)
				if err != nil {
					return err
				}
			}
			if mvType == domain.MovementOut && before < qty {
				return fmt.Errorf("item %d: have %d, requested %d: %w",
					item.ID, before, qty, domain.ErrInsufficientStock)
			}

			movement := &domain.StockMovement{
				ItemID:  item.ID,
				Type:    mvType,
				Qty:     qty,
				Ref:     ref,
				Meta:    movementMeta(mvType, meta, before),
				MovedAt: time.Now().UTC(),
			}
			if err := repos.Movements().Append(ctx, movement); err != nil {
				return err
			}
			if err := repos.Items().BumpVersion(ctx, item.ID, item.Version); err != nil {
				return err
			}

			var after int64
			switch mvType {
			case domain.MovementIn:
				after, err = repos.Movements().Balance(ctx, item.ID, false)
				if err != nil {
					return err
				}
			case domain.MovementOut:
				after = before - qty
			default:
				after = before + qty
			}

			result = MovementResult{
				Movement:    *movement,
				Balance:     after,
				ItemVersion: item.Version + 1,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects. The cache entry is stale the moment the
	// transaction lands, so drop it before anyone can read it.
	w.balances.Invalidate(itemID)
	metrics.MovementsRecorded.WithLabelValues(string(mvType)).Inc()
	w.publish(ctx, sku, result)

	return &result, nil
}

func (w ledgerWriter) publish(ctx context.Context, sku string, result MovementResult) {
	if w.pub == nil {
		return
	}
	event := events.MovementRecordedEvent{
		ItemID:      result.Movement.ItemID,
		SKU:         sku,
		MovementID:  result.Movement.ID,
		Type:        string(result.Movement.Type),
		Qty:         result.Movement.Qty,
		Balance:     result.Balance,
		ItemVersion: result.ItemVersion,
	}
	if result.Movement.Ref != nil {
		event.Ref = *result.Movement.Ref
	}
	if err := w.pub.PublishMovementRecorded(ctx, event); err != nil {
		// The movement is committed; losing the event must not fail the call.
		logger.Warn(ctx).
			Err(err).
			Uint("item_id", result.Movement.ItemID).
			Msg("Failed to publish movement event")
	}
}

// movementMeta normalizes the caller-supplied metadata. Adjustments record
// the balance they were applied against.
func movementMeta(mvType domain.MovementType, meta domain.Metadata, before int64) domain.Metadata {
	out := domain.Metadata{"source": "api"}
	for k, v := range meta {
		out[k] = v
	}
	if mvType == domain.MovementAdjust {
		out["previous_balance"] = before
	}
	return out
}
