package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"tradelab/pkg/models"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the narrow port onto the document store. The store
// itself (durability, multi-tenancy, indexing) is an external
// collaborator; the core only reads and writes through this interface.
type Repository interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	UpdateWalletBalance(ctx context.Context, userID string, balance decimal.Decimal) error

	GetHoldings(ctx context.Context, userID string) ([]models.Holding, error)
	UpsertHolding(ctx context.Context, userID string, holding models.Holding) error
	DeleteHolding(ctx context.Context, userID string, symbol string) error

	AppendTransaction(ctx context.Context, userID string, tx models.Transaction) error
	// GetTransactions lists ledger entries newest first.
	GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
}
