package loginlogs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Entry is a login-log row joined with its user's identity fields for the
// admin listing.
type Entry struct {
	Username   string     `json:"username"`
	Name       *string    `json:"name"`
	Role       string     `json:"role"`
	LoginTime  time.Time  `json:"login_time"`
	LogoutTime *time.Time `json:"logout_time"`
}

// Repository exposes the login audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, userID uuid.UUID, at time.Time) error
	CloseLatestOpen(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error)
	List(ctx context.Context) ([]Entry, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a login-log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Append(ctx context.Context, userID uuid.UUID, at time.Time) error {
	log := models.LoginLog{
		UserID:    userID,
		LoginTime: at,
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

// CloseLatestOpen stamps logout_time on the user's most recent open entry.
// Returns false without error when no open entry exists, so that a double
// logout stays a no-op.
func (r *repositoryImpl) CloseLatestOpen(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error) {
	var latest models.LoginLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND logout_time IS NULL", userID).
		Order("login_time DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&models.LoginLog{}).
		Where("id = ?", latest.ID).
		UpdateColumn("logout_time", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Model(&models.LoginLog{}).
		Select("users.username, users.name, users.role, login_logs.login_time, login_logs.logout_time").
		Joins("JOIN users ON users.id = login_logs.user_id").
		Order("login_logs.login_time DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
