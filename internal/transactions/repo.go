package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
)

// Entry is a ledger row joined with its product and actor.
type Entry struct {
	ID              uuid.UUID `json:"id"`
	ProductName     string    `json:"product_name"`
	ProductSKU      string    `json:"product_sku"`
	Quantity        int       `json:"quantity"`
	TransactionType string    `json:"transaction_type"`
	Timestamp       time.Time `json:"timestamp"`
	User            string    `json:"user"`
}

// Repository defines persistence operations for the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, record *models.StockTransaction) error
	List(ctx context.Context) ([]Entry, error)
	CountAll(ctx context.Context) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Append(ctx context.Context, record *models.StockTransaction) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// List returns the full ledger, newest first, with product and actor names
// resolved.
func (r *repositoryImpl) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Select(`stock_transactions.id,
			products.name AS product_name,
			products.sku AS product_sku,
			stock_transactions.quantity,
			stock_transactions.transaction_type,
			stock_transactions.created_at AS "timestamp",
			users.username AS "user"`).
		Joins("JOIN products ON products.id = stock_transactions.product_id").
		Joins("JOIN users ON users.id = stock_transactions.user_id").
		Order("stock_transactions.created_at DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Count(&count).Error
	return count, err
}
