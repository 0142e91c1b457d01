package mocks

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
)

// MockEntryRepository is an in-memory EntryRepository. Entries are kept in append order.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.Entry
	seq     int64

	LockAccountFunc   func(ctx context.Context, tx usecase.Transaction, accountID string) error
	GetLatestFunc     func(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Entry, error)
	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	BeforeCreateFunc  func(entry *domain.Entry) error
	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) LockAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	if m.LockAccountFunc != nil {
		return m.LockAccountFunc(ctx, tx, accountID)
	}
	return nil
}

func (m *MockEntryRepository) GetLatest(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Entry, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].AccountID == accountID {
			return m.entries[i], nil
		}
	}
	return nil, nil
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	if m.BeforeCreateFunc != nil {
		if err := m.BeforeCreateFunc(entry); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	entry.Sequence = m.seq
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	all := m.Entries(accountID)
	slices.Reverse(all)
	if offset >= len(all) {
		return []*domain.Entry{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockEntryRepository) ListAllByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	return m.Entries(accountID), nil
}

func (m *MockEntryRepository) ListAccountIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, e := range m.entries {
		if !slices.Contains(ids, e.AccountID) {
			ids = append(ids, e.AccountID)
		}
	}
	return ids, nil
}

// Append stores entry as is, bypassing snapshot computation.
func (m *MockEntryRepository) Append(entry *domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	entry.Sequence = m.seq
	m.entries = append(m.entries, entry)
}

// Entries returns an account's entries oldest first.
func (m *MockEntryRepository) Entries(accountID string) []*domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of stored entries across all accounts.
func (m *MockEntryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// MockOrderRepository is an in-memory OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	order  []string

	CreateFunc              func(ctx context.Context, order *domain.Order) error
	UpdateProgressFunc      func(ctx context.Context, order *domain.Order) error
	AssignTrackingTokenFunc func(ctx context.Context, orderID, token string, at time.Time) (bool, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
	m.order = append(m.order, order.ID)
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByPaymentRef(ctx context.Context, ref string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.PaymentRef == ref {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockOrderRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool { return o.OwnerID == ownerID }, limit, offset), nil
}

func (m *MockOrderRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool { return o.HasSeller(sellerID) }, limit, offset), nil
}

func (m *MockOrderRepository) list(match func(*domain.Order) bool, limit, offset int) []*domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Order{}
	for i := len(m.order) - 1; i >= 0; i-- {
		o := m.orders[m.order[i]]
		if match(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*domain.Order{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (m *MockOrderRepository) UpdateProgress(ctx context.Context, order *domain.Order) error {
	if m.UpdateProgressFunc != nil {
		return m.UpdateProgressFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Progress = order.Progress
	o.UpdatedAt = order.UpdatedAt
	return nil
}

func (m *MockOrderRepository) AssignTrackingToken(ctx context.Context, orderID, token string, at time.Time) (bool, error) {
	if m.AssignTrackingTokenFunc != nil {
		return m.AssignTrackingTokenFunc(ctx, orderID, token, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.TrackingToken != "" {
		return false, nil
	}
	o.TrackingToken = token
	o.UpdatedAt = at
	return true, nil
}

// Count returns the number of stored orders.
func (m *MockOrderRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// MockItemRepository is an in-memory ItemRepository.
type MockItemRepository struct {
	mu    sync.Mutex
	items map[string]*domain.Item

	DecrementStockFunc func(ctx context.Context, id string, qty int) error
	RestoreStockFunc   func(ctx context.Context, id string, qty int) error
}

func NewMockItemRepository(items ...*domain.Item) *MockItemRepository {
	m := &MockItemRepository{items: make(map[string]*domain.Item)}
	for _, it := range items {
		m.Put(it)
	}
	return m
}

// Put stores a copy of item.
func (m *MockItemRepository) Put(item *domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.items[item.ID] = &cp
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *MockItemRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Item
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockItemRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	if m.DecrementStockFunc != nil {
		return m.DecrementStockFunc(ctx, id, qty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if it.QuantityInStock < qty {
		return &domain.InsufficientStockError{ItemID: id, ItemName: it.Name, Requested: qty, Available: it.QuantityInStock}
	}
	it.QuantityInStock -= qty
	return nil
}

func (m *MockItemRepository) RestoreStock(ctx context.Context, id string, qty int) error {
	if m.RestoreStockFunc != nil {
		return m.RestoreStockFunc(ctx, id, qty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	it.QuantityInStock += qty
	return nil
}

// Stock returns the current stock of id, or -1 if unknown.
func (m *MockItemRepository) Stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[id]; ok {
		return it.QuantityInStock
	}
	return -1
}

// MockDiscountRepository is an in-memory DiscountRepository.
type MockDiscountRepository struct {
	discounts map[string]*domain.Discount
}

func NewMockDiscountRepository(discounts ...*domain.Discount) *MockDiscountRepository {
	m := &MockDiscountRepository{discounts: make(map[string]*domain.Discount)}
	for _, d := range discounts {
		m.discounts[d.ID] = d
	}
	return m
}

func (m *MockDiscountRepository) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	if d, ok := m.discounts[id]; ok {
		return d, nil
	}
	return nil, domain.ErrDiscountNotFound
}

// MockUserRepository is an in-memory UserRepository.
type MockUserRepository struct {
	users map[string]*domain.User
}

func NewMockUserRepository(users ...*domain.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrAccountNotFound
}

// MockTrackingTokenRepository is an in-memory TrackingTokenRepository.
type MockTrackingTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.TrackingToken

	ExistsFunc func(ctx context.Context, token string) (bool, error)
	CreateFunc func(ctx context.Context, token *domain.TrackingToken) error
}

func NewMockTrackingTokenRepository() *MockTrackingTokenRepository {
	return &MockTrackingTokenRepository{tokens: make(map[string]*domain.TrackingToken)}
}

func (m *MockTrackingTokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[token]
	return ok, nil
}

func (m *MockTrackingTokenRepository) Create(ctx context.Context, token *domain.TrackingToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[token.Token]; ok {
		return domain.ErrDuplicateToken
	}
	m.tokens[token.Token] = token
	return nil
}

func (m *MockTrackingTokenRepository) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *MockTrackingTokenRepository) GetByOrder(ctx context.Context, orderID string) (*domain.TrackingToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.OrderID == orderID {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Count returns the number of reserved tokens.
func (m *MockTrackingTokenRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns every stored event.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Stored returns the value held under key, if any.
func (m *MockIdempotencyStore) Stored(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}
