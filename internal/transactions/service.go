package transactions

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunaetstella/smartstock-backend/internal/products"
	"github.com/lunaetstella/smartstock-backend/pkg/db"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"github.com/lunaetstella/smartstock-backend/pkg/errors"
)

// CreateTransactionRequest is the payload for recording a stock movement.
// Presence checks live in the service so the wire messages stay exact.
type CreateTransactionRequest struct {
	ProductID       uuid.UUID `json:"product_id"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
}

// LowStockNotifier receives the post-mutation product state when stock falls
// to or below its threshold. Implementations must not block.
type LowStockNotifier interface {
	NotifyLowStock(product models.Product)
}

// Service applies stock movements against the catalog and keeps the ledger.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, input CreateTransactionRequest) (int, error)
	List(ctx context.Context) ([]Entry, error)
}

// ServiceParams wires the dependencies for the transaction service.
type ServiceParams struct {
	DB          *db.Client
	Repo        Repository
	ProductRepo products.Repository
	Notifier    LowStockNotifier
}

type service struct {
	db       *db.Client
	repo     Repository
	prodRepo products.Repository
	notifier LowStockNotifier
}

// NewService constructs the transaction service. Notifier may be nil when
// alerting is disabled.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		prodRepo: params.ProductRepo,
		notifier: params.Notifier,
	}, nil
}

// Create applies the stock movement and appends the ledger row in a single
// transaction. The sufficiency check and the mutation are guarded by a
// conditional update so concurrent outgoing movements cannot drive stock
// negative. Returns the resulting stock level.
func (s *service) Create(ctx context.Context, actorID uuid.UUID, input CreateTransactionRequest) (int, error) {
	if input.ProductID == uuid.Nil || input.TransactionType == "" || input.Quantity == 0 {
		return 0, errors.New(errors.CodeValidation, "Missing fields")
	}
	if !models.TransactionType(input.TransactionType).IsValid() {
		return 0, errors.New(errors.CodeValidation, "Invalid transaction type")
	}
	if input.Quantity < 0 {
		return 0, errors.New(errors.CodeValidation, "Quantity must be positive")
	}

	delta := input.Quantity
	if input.TransactionType == string(models.TransactionOut) {
		delta = -input.Quantity
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		prodRepo := s.prodRepo.WithTx(tx)

		current, err := prodRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "Product not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load product")
		}
		if delta < 0 && current.StockQuantity < input.Quantity {
			return errors.New(errors.CodeInsufficientStock, "Insufficient stock")
		}

		rows, err := prodRepo.AdjustStock(ctx, input.ProductID, delta)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to adjust stock")
		}
		if rows == 0 {
			// Lost a race with a concurrent movement.
			return errors.New(errors.CodeInsufficientStock, "Insufficient stock")
		}

		record := &models.StockTransaction{
			ProductID: input.ProductID,
			UserID:    actorID,
			Quantity:  input.Quantity,
			Type:      models.TransactionType(input.TransactionType),
		}
		if err := s.repo.WithTx(tx).Append(ctx, record); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to record transaction")
		}

		product, err = prodRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to reload product")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.notifier != nil && delta < 0 && product.BelowThreshold() {
		s.notifier.NotifyLowStock(*product)
	}
	return product.StockQuantity, nil
}

// List returns the full ledger, newest first.
func (s *service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list transactions")
	}
	return entries, nil
}
