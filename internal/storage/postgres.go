package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"tradelab/pkg/models"

	_ "github.com/lib/pq"
)

// Postgres backs the Repository port with a relational document layout:
// one row per user, per user-symbol holding, and per ledger entry.
// Money columns are NUMERIC and scanned through shopspring/decimal.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *Postgres) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *Postgres) GetUser(ctx context.Context, userID string) (models.User, error) {
	const q = `
		SELECT id, email, display_name, wallet, active
		FROM users WHERE id = $1
	`
	var (
		user   models.User
		wallet string
	)
	err := p.db.QueryRowContext(ctx, q, userID).Scan(&user.ID, &user.Email, &user.DisplayName, &wallet, &user.Active)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	user.Wallet, err = decimal.NewFromString(wallet)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (p *Postgres) UpdateWalletBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	const q = `UPDATE users SET wallet = $2 WHERE id = $1`
	res, err := p.db.ExecContext(ctx, q, userID, balance.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	const q = `
		SELECT symbol, quantity, avg_cost, total_cost
		FROM holdings WHERE user_id = $1
		ORDER BY symbol
	`
	rows, err := p.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Holding
	for rows.Next() {
		var (
			h                  models.Holding
			avgCost, totalCost string
		)
		if err := rows.Scan(&h.Symbol, &h.Quantity, &avgCost, &totalCost); err != nil {
			return nil, err
		}
		if h.AvgCost, err = decimal.NewFromString(avgCost); err != nil {
			return nil, err
		}
		if h.TotalCost, err = decimal.NewFromString(totalCost); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (p *Postgres) UpsertHolding(ctx context.Context, userID string, holding models.Holding) error {
	const q = `
		INSERT INTO holdings (user_id, symbol, quantity, avg_cost, total_cost)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, symbol)
		DO UPDATE SET quantity = EXCLUDED.quantity, avg_cost = EXCLUDED.avg_cost, total_cost = EXCLUDED.total_cost
	`
	_, err := p.db.ExecContext(ctx, q, userID, holding.Symbol, holding.Quantity, holding.AvgCost.String(), holding.TotalCost.String())
	return err
}

func (p *Postgres) DeleteHolding(ctx context.Context, userID string, symbol string) error {
	const q = `DELETE FROM holdings WHERE user_id = $1 AND symbol = $2`
	_, err := p.db.ExecContext(ctx, q, userID, symbol)
	return err
}

func (p *Postgres) AppendTransaction(ctx context.Context, userID string, tx models.Transaction) error {
	const q = `
		INSERT INTO transactions (id, user_id, symbol, quantity, price, total_cost, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := p.db.ExecContext(ctx, q, tx.ID, userID, tx.Symbol, tx.Quantity, tx.Price.String(), tx.TotalCost.String(), string(tx.Type), tx.Timestamp)
	return err
}

func (p *Postgres) GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	const q = `
		SELECT id, symbol, quantity, price, total_cost, type, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := p.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			tx               models.Transaction
			price, totalCost string
			txType           string
		)
		if err := rows.Scan(&tx.ID, &tx.Symbol, &tx.Quantity, &price, &totalCost, &txType, &tx.Timestamp); err != nil {
			return nil, err
		}
		if tx.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if tx.TotalCost, err = decimal.NewFromString(totalCost); err != nil {
			return nil, err
		}
		tx.Type = models.TransactionType(txType)
		out = append(out, tx)
	}
	return out, rows.Err()
}
