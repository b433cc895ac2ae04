package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountBelowThreshold(ctx context.Context) (int64, error)
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

func (r *repositoryImpl) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns the full catalog ordered by name.
func (r *repositoryImpl) List(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repositoryImpl) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// AdjustStock applies a signed delta to stock_quantity with a guard that the
// resulting quantity never drops below zero. A zero row count means either
// the product is gone or the guard rejected the change.
func (r *repositoryImpl) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// CountBelowThreshold counts products at or under their own minimum level.
func (r *repositoryImpl) CountBelowThreshold(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("stock_quantity <= min_stock_threshold").
		Count(&count).Error
	return count, err
}
