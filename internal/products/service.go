package products

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunaetstella/smartstock-backend/pkg/db"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"github.com/lunaetstella/smartstock-backend/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateProductRequest) (*ProductView, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductView, error)
	List(ctx context.Context) ([]ProductView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductRequest) (*ProductView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams wires the dependencies for the catalog service.
type ServiceParams struct {
	Repo Repository
}

type service struct {
	repo Repository
}

// NewService constructs the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: params.Repo}, nil
}

// Create registers a new catalog item. The SKU must be unique.
func (s *service) Create(ctx context.Context, input CreateProductRequest) (*ProductView, error) {
	if strings.TrimSpace(input.SKU) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, errors.New(errors.CodeValidation, "Missing required fields")
	}

	product := &models.Product{
		SKU:           input.SKU,
		Name:          input.Name,
		Category:      input.Category,
		Supplier:      input.Supplier,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
	}
	if input.MinStockThreshold != nil {
		product.MinStockThreshold = *input.MinStockThreshold
	} else {
		product.MinStockThreshold = models.DefaultMinStockThreshold
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, errors.New(errors.CodeConflict, "Product with this SKU already exists")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create product")
	}
	return toView(product), nil
}

// Get loads a single catalog item.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(product), nil
}

// List returns the full catalog.
func (s *service) List(ctx context.Context) ([]ProductView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list products")
	}
	views := make([]ProductView, 0, len(items))
	for i := range items {
		views = append(views, *toView(&items[i]))
	}
	return views, nil
}

// Update applies the provided fields to an existing product. Setting
// stock_quantity here is a manual correction outside the ledger.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductRequest) (*ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Supplier != nil {
		product.Supplier = input.Supplier
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if input.MinStockThreshold != nil {
		product.MinStockThreshold = *input.MinStockThreshold
	}

	if err := s.repo.Save(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, errors.New(errors.CodeConflict, "Product with this SKU already exists")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update product")
	}
	return toView(product), nil
}

// Delete removes the product. Its transaction history is removed with it.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete product")
	}
	if rows == 0 {
		return errors.New(errors.CodeNotFound, "Product not found")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "Product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}
	return product, nil
}
