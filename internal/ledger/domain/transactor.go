package domain

import "context"

// Transactor runs a function inside a single storage transaction. All
// repository operations performed through the passed Repositories share that
// transaction and commit or roll back atomically; an error from fn rolls
// everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to the ledger repositories, either transaction
// scoped (inside Transactor.WithinTx) or backed by the shared pool.
type Repositories interface {
	Items() ItemRepository
	Movements() MovementRepository
}
