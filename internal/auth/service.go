package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunaetstella/smartstock-backend/internal/loginlogs"
	"github.com/lunaetstella/smartstock-backend/internal/users"
	pkgAuth "github.com/lunaetstella/smartstock-backend/pkg/auth"
	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	pkgerrors "github.com/lunaetstella/smartstock-backend/pkg/errors"
	"github.com/lunaetstella/smartstock-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "Invalid credentials"

// Service covers registration, credential verification, token issuance and
// the pending-user approval workflow.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	PendingUsers(ctx context.Context) ([]PendingUser, error)
	Approve(ctx context.Context, userID uuid.UUID) error
	Reject(ctx context.Context, userID uuid.UUID) error
	LoginLogs(ctx context.Context) ([]loginlogs.Entry, error)
}

type service struct {
	db     *db.Client
	users  users.Repository
	logs   loginlogs.Repository
	jwtCfg config.JWTConfig
	pwdCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DB             *db.Client
	UserRepo       users.Repository
	LoginLogRepo   loginlogs.Repository
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.LoginLogRepo == nil {
		return nil, fmt.Errorf("login log repository is required")
	}
	return &service{
		db:     params.DB,
		users:  params.UserRepo,
		logs:   params.LoginLogRepo,
		jwtCfg: params.JWTConfig,
		pwdCfg: params.PasswordConfig,
	}, nil
}

// Register persists a new user. The first-ever user is promoted to an
// approved admin; everyone after that starts as a pending employee. The
// lookup, count and insert share one transaction, with the unique username
// index catching duplicate registrations that race past the lookup. Under
// READ COMMITTED the count itself is not serialized, so two simultaneous
// first registrations with distinct usernames could in principle both seat
// an admin.
func (s *service) Register(ctx context.Context, req RegisterRequest) error {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing username")
	}
	if req.Password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing password")
	}

	hash, err := security.HashPassword(req.Password, s.pwdCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txUsers := s.users.WithTx(tx)

		if _, err := txUsers.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "User already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}

		count, err := txUsers.Count(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
		}

		role, status := models.RoleEmployee, models.UserStatusPending
		if count == 0 {
			role, status = models.RoleAdmin, models.UserStatusApproved
		}

		user := models.User{
			Username:     username,
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: hash,
			Role:         role,
			Status:       status,
		}
		if err := txUsers.Create(ctx, &user); err != nil {
			if db.IsUniqueViolation(err, "idx_users_username") {
				return pkgerrors.New(pkgerrors.CodeConflict, "User already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return nil
	})
	return err
}

// Login verifies credentials, gates on approval status, mints a token and
// appends a login-log entry.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.verify(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	if user.Status != models.UserStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodePendingApproval, "Account is pending approval.")
	}

	now := time.Now().UTC()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	if err := s.logs.Append(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}

	return &LoginResponse{
		Token:    token,
		Role:     user.Role.String(),
		Username: user.Username,
	}, nil
}

// verify resolves the user and checks the password. Unknown usernames and
// wrong passwords produce the identical error, so callers cannot enumerate
// accounts.
func (s *service) verify(ctx context.Context, username, password string) (*models.User, error) {
	input := strings.TrimSpace(username)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing data")
	}

	user, err := s.users.FindByUsername(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	return user, nil
}

// Logout closes the most recent open login-log entry. Logging out twice in a
// row is a no-op, never an error.
func (s *service) Logout(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.logs.CloseLatestOpen(ctx, userID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close login log")
	}
	return nil
}

func (s *service) PendingUsers(ctx context.Context) ([]PendingUser, error) {
	list, err := s.users.ListByStatus(ctx, models.UserStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending users")
	}

	out := make([]PendingUser, 0, len(list))
	for _, u := range list {
		out = append(out, PendingUser{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Email:    u.Email,
			Role:     u.Role.String(),
		})
	}
	return out, nil
}

func (s *service) Approve(ctx context.Context, userID uuid.UUID) error {
	affected, err := s.users.UpdateStatus(ctx, userID, models.UserStatusApproved)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approve user")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return nil
}

// Reject hard-deletes a pending registration. Users already approved are
// never deleted through this path since their ledger and audit rows refer to
// them.
func (s *service) Reject(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.Status != models.UserStatusPending {
		return pkgerrors.New(pkgerrors.CodeConflict, "Only pending users can be rejected")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) LoginLogs(ctx context.Context) ([]loginlogs.Entry, error) {
	entries, err := s.logs.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list login logs")
	}
	return entries, nil
}
