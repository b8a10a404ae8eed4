//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/adapter"
	"telegram-promo-activator/internal/domain/ports/repository"
	"telegram-promo-activator/internal/infra/worker"
)

// newTestLogger creates a silent zerolog.Logger so logs never clutter test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestPool(workers int) *worker.Pool {
	return worker.NewPool(workers, newTestLogger())
}

// ---- Mock AccountRepository ----

type MockAccountRepo struct {
	mu    sync.Mutex
	store map[string]*model.Account // by token
	next  int64

	SaveFunc          func(ctx context.Context, tx repository.Tx, a *model.Account) error
	ListActiveFunc    func(ctx context.Context, tx repository.Tx) ([]*model.Account, error)
	UpdateBalanceFunc func(ctx context.Context, tx repository.Tx, accountID, balance int64) error
}

var _ repository.AccountRepository = (*MockAccountRepo)(nil)

func NewMockAccountRepo() *MockAccountRepo {
	return &MockAccountRepo{store: make(map[string]*model.Account)}
}

func (m *MockAccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[a.Token]; ok {
		a.ID = existing.ID
		a.Balance = existing.Balance
		a.CreatedAt = existing.CreatedAt
	} else {
		m.next++
		a.ID = m.next
	}
	cp := *a
	m.store[a.Token] = &cp
	return nil
}

func (m *MockAccountRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.store {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAccountRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Account, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Account
	for _, a := range m.store {
		if a.IsActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockAccountRepo) UpdateBalance(ctx context.Context, tx repository.Tx, accountID, balance int64) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, accountID, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.store {
		if a.ID == accountID {
			a.Balance = balance
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockAccountRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.store {
		if a.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *MockAccountRepo) SumBalances(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, a := range m.store {
		if a.IsActive {
			sum += a.Balance
		}
	}
	return sum, nil
}

// BalanceOf is a test helper, not part of the port.
func (m *MockAccountRepo) BalanceOf(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.store {
		if a.ID == id {
			return a.Balance
		}
	}
	return -1
}

// Count is a test helper reporting rows regardless of active flag.
func (m *MockAccountRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// ---- Mock ActivationRepository ----

type MockActivationRepo struct {
	mu      sync.Mutex
	Records []model.ActivationRecord

	RecordFunc func(ctx context.Context, tx repository.Tx, rec *model.ActivationRecord) error
}

var _ repository.ActivationRepository = (*MockActivationRepo)(nil)

func NewMockActivationRepo() *MockActivationRepo {
	return &MockActivationRepo{}
}

func (m *MockActivationRepo) Record(ctx context.Context, tx repository.Tx, rec *model.ActivationRecord) error {
	if m.RecordFunc != nil {
		if err := m.RecordFunc(ctx, tx, rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.Records) + 1)
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *MockActivationRepo) CountSuccessful(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.Records {
		if r.Success {
			n++
		}
	}
	return n, nil
}

func (m *MockActivationRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records), nil
}

func (m *MockActivationRepo) SumStars(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, r := range m.Records {
		sum += r.StarsReported
	}
	return sum, nil
}

func (m *MockActivationRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.ActivationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActivationRecord
	for i := len(m.Records) - 1; i >= 0 && len(out) < limit; i-- {
		cp := m.Records[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockActivationRepo) Rows() []model.ActivationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ActivationRecord, len(m.Records))
	copy(out, m.Records)
	return out
}

// ---- Mock GiftsBattleAdapter ----

type MockGiftsAPI struct {
	mu            sync.Mutex
	ActivateCalls int
	ProfileCalls  int

	FetchProfileFunc func(ctx context.Context, token string) (*adapter.Profile, error)
	ActivateFunc     func(ctx context.Context, token, promoCode string) (adapter.ActivationResult, error)
}

var _ adapter.GiftsBattleAdapter = (*MockGiftsAPI)(nil)

func (m *MockGiftsAPI) FetchProfile(ctx context.Context, token string) (*adapter.Profile, error) {
	m.mu.Lock()
	m.ProfileCalls++
	m.mu.Unlock()
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, token)
	}
	return nil, domain.ErrProfileUnavailable
}

func (m *MockGiftsAPI) Activate(ctx context.Context, token, promoCode string) (adapter.ActivationResult, error) {
	m.mu.Lock()
	m.ActivateCalls++
	m.mu.Unlock()
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, token, promoCode)
	}
	return adapter.ActivationResult{}, nil
}

// ---- Mock TransactionManager ----

// mockTxManager runs the callback without a real transaction; repositories
// accept a nil handle for the non-transactional path.
type mockTxManager struct{}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
