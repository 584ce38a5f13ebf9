// Package memory provides an in-process implementation of the ledger
// repositories. It backs unit tests and local experiments; the semantics
// mirror the gorm repositories, including the optimistic-lock fence and
// transactional rollback.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// Store holds items and movements in maps. A coarse mutex serializes
// transactions, which matches the single-item row-lock semantics closely
// enough for tests: same-item writers never interleave.
type Store struct {
	mu sync.Mutex

	items          map[uint]domain.Item
	movements      map[uint]domain.StockMovement
	nextItemID     uint
	nextMovementID uint
}

func NewStore() *Store {
	return &Store{
		items:          make(map[uint]domain.Item),
		movements:      make(map[uint]domain.StockMovement),
		nextItemID:     1,
		nextMovementID: 1,
	}
}

// WithinTx snapshots the store, runs fn, and restores the snapshot when fn
// fails, so a conflicted attempt leaves no partial writes behind.
func (s *Store) WithinTx(_ context.Context, fn func(repos domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[uint]domain.Item, len(s.items))
	for id, it := range s.items {
		items[id] = it
	}
	movements := make(map[uint]domain.StockMovement, len(s.movements))
	for id, m := range s.movements {
		movements[id] = m
	}
	nextItem, nextMovement := s.nextItemID, s.nextMovementID

	if err := fn(&repos{store: s}); err != nil {
		s.items = items
		s.movements = movements
		s.nextItemID = nextItem
		s.nextMovementID = nextMovement
		return err
	}
	return nil
}

// Repos returns non-transactional access for read paths. Individual calls
// still lock the store mutex.
func (s *Store) Repos() domain.Repositories {
	return &lockedRepos{store: s}
}

var _ domain.Transactor = (*Store)(nil)

type repos struct {
	store *Store
}

func (r *repos) Items() domain.ItemRepository         { return &itemRepo{store: r.store} }
func (r *repos) Movements() domain.MovementRepository { return &movementRepo{store: r.store} }

// lockedRepos wraps every call in the store mutex for use outside WithinTx.
type lockedRepos struct {
	store *Store
}

func (r *lockedRepos) Items() domain.ItemRepository {
	return &itemRepo{store: r.store, lock: true}
}

func (r *lockedRepos) Movements() domain.MovementRepository {
	return &movementRepo{store: r.store, lock: true}
}

type itemRepo struct {
	store *Store
	lock  bool
}

func (r *itemRepo) enter() func() {
	if !r.lock {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *itemRepo) Create(_ context.Context, item *domain.Item) error {
	defer r.enter()()
	for _, existing := range r.store.items {
		if existing.SKU == item.SKU {
			return fmt.Errorf("create item %q: %w", item.SKU, domain.ErrDuplicateSKU)
		}
	}
	item.ID = r.store.nextItemID
	r.store.nextItemID++
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.store.items[item.ID] = *item
	return nil
}

func (r *itemRepo) FindByID(_ context.Context, id uint) (*domain.Item, error) {
	defer r.enter()()
	item, ok := r.store.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	return &item, nil
}

func (r *itemRepo) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Item, error) {
	return r.FindByID(ctx, id)
}

func (r *itemRepo) FindBySKU(_ context.Context, sku string) (*domain.Item, error) {
	defer r.enter()()
	for _, item := range r.store.items {
		if item.SKU == sku {
			it := item
			return &it, nil
		}
	}
	return nil, fmt.Errorf("sku %q: %w", sku, domain.ErrItemNotFound)
}

func (r *itemRepo) FindAll(_ context.Context, limit, offset int) ([]domain.Item, error) {
	defer r.enter()()
	items := make([]domain.Item, 0, len(r.store.items))
	for _, item := range r.store.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if offset > 0 {
		if offset >= len(items) {
			return nil, nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (r *itemRepo) Categories(_ context.Context) ([]string, error) {
	defer r.enter()()
	seen := map[string]bool{}
	var categories []string
	for _, item := range r.store.items {
		if item.Category == nil || seen[*item.Category] {
			continue
		}
		seen[*item.Category] = true
		categories = append(categories, *item.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *itemRepo) UpdateFields(_ context.Context, id uint, update domain.ItemUpdate) error {
	defer r.enter()()
	item, ok := r.store.items[id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Category != nil {
		item.Category = update.Category
	}
	if update.Unit != nil {
		item.Unit = *update.Unit
	}
	if update.MinStock != nil {
		item.MinStock = *update.MinStock
	}
	item.UpdatedAt = time.Now().UTC()
	r.store.items[id] = item
	return nil
}

func (r *itemRepo) BumpVersion(_ context.Context, id uint, fromVersion int64) error {
	defer r.enter()()
	item, ok := r.store.items[id]
	if !ok || item.Version != fromVersion {
		return fmt.Errorf("item %d version %d: %w", id, fromVersion, domain.ErrConflict)
	}
	item.Version++
	item.UpdatedAt = time.Now().UTC()
	r.store.items[id] = item
	return nil
}

func (r *itemRepo) Delete(_ context.Context, id uint) error {
	defer r.enter()()
	if _, ok := r.store.items[id]; !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
	}
	delete(r.store.items, id)
	return nil
}

type movementRepo struct {
	store *Store
	lock  bool
}

func (r *movementRepo) enter() func() {
	if !r.lock {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *movementRepo) Append(_ context.Context, movement *domain.StockMovement) error {
	defer r.enter()()
	movement.ID = r.store.nextMovementID
	r.store.nextMovementID++
	if movement.MovedAt.IsZero() {
		movement.MovedAt = time.Now().UTC()
	}
	r.store.movements[movement.ID] = *movement
	return nil
}

func (r *movementRepo) Balance(_ context.Context, itemID uint, _ bool) (int64, error) {
	defer r.enter()()
	return r.store.balanceLocked(itemID), nil
}

func (r *movementRepo) BalancesFor(_ context.Context, itemIDs []uint) (map[uint]int64, error) {
	defer r.enter()()
	balances := make(map[uint]int64, len(itemIDs))
	for _, id := range itemIDs {
		if b, ok := r.store.foldLocked(id); ok {
			balances[id] = b
		}
	}
	return balances, nil
}

func (r *movementRepo) AllBalances(_ context.Context) (map[uint]int64, error) {
	defer r.enter()()
	balances := map[uint]int64{}
	for _, m := range r.store.movements {
		balances[m.ItemID] += m.Delta()
	}
	return balances, nil
}

func (r *movementRepo) List(_ context.Context, itemID uint, filter domain.MovementFilter) ([]domain.StockMovement, int64, error) {
	defer r.enter()()
	var matched []domain.StockMovement
	for _, m := range r.store.movements {
		if m.ItemID != itemID {
			continue
		}
		if filter.From != nil && m.MovedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.MovedAt.After(*filter.To) {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].MovedAt.Equal(matched[j].MovedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].MovedAt.After(matched[j].MovedAt)
	})
	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *movementRepo) DeleteByItem(_ context.Context, itemID uint) error {
	defer r.enter()()
	for id, m := range r.store.movements {
		if m.ItemID == itemID {
			delete(r.store.movements, id)
		}
	}
	return nil
}

func (s *Store) balanceLocked(itemID uint) int64 {
	balance, _ := s.foldLocked(itemID)
	return balance
}

func (s *Store) foldLocked(itemID uint) (int64, bool) {
	var balance int64
	found := false
	for _, m := range s.movements {
		if m.ItemID == itemID {
			balance += m.Delta()
			found = true
		}
	}
	return balance, found
}
