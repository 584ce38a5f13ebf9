package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// Postgres error codes that signal a concurrency conflict rather than a
// genuine storage failure. A write that trips one of these is safe to re-run
// from scratch.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isConcurrencyFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	}
	return false
}

// wrapStorageErr maps a driver-level error into the domain taxonomy: lock
// timeouts, deadlocks, serialization failures and unique races become
// ErrConflict, everything else ErrStorage.
func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConcurrencyFailure(err) || isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}
