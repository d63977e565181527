package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"tradelab/pkg/models"
)

// Memory is a mutex-guarded in-process Repository, the default adapter
// when no postgres DSN is configured and the fixture for engine tests.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]models.User
	holdings     map[string]map[string]models.Holding // userID -> symbol -> holding
	transactions map[string][]models.Transaction
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]models.User),
		holdings:     make(map[string]map[string]models.Holding),
		transactions: make(map[string][]models.Transaction),
	}
}

// PutUser seeds a profile; identity creation itself belongs to the
// external identity provider.
func (m *Memory) PutUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *Memory) GetUser(ctx context.Context, userID string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) UpdateWalletBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Wallet = balance
	m.users[userID] = user
	return nil
}

func (m *Memory) GetHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bySymbol := m.holdings[userID]
	out := make([]models.Holding, 0, len(bySymbol))
	for _, h := range bySymbol {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *Memory) UpsertHolding(ctx context.Context, userID string, holding models.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holdings[userID]; !ok {
		m.holdings[userID] = make(map[string]models.Holding)
	}
	m.holdings[userID][holding.Symbol] = holding
	return nil
}

func (m *Memory) DeleteHolding(ctx context.Context, userID string, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.holdings[userID], symbol)
	return nil
}

func (m *Memory) AppendTransaction(ctx context.Context, userID string, tx models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions[userID] = append(m.transactions[userID], tx)
	return nil
}

func (m *Memory) GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.transactions[userID]
	out := make([]models.Transaction, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
