package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListAdminsWithEmail(ctx context.Context) ([]models.User, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repositoryImpl) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) ListByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	var list []models.User
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (r *repositoryImpl) ListAdminsWithEmail(ctx context.Context) ([]models.User, error) {
	var admins []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleAdmin).
		Where("email IS NOT NULL AND email <> ''").
		Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
