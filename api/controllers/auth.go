package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lunaetstella/smartstock-backend/api/middleware"
	"github.com/lunaetstella/smartstock-backend/api/responses"
	"github.com/lunaetstella/smartstock-backend/api/validators"
	"github.com/lunaetstella/smartstock-backend/internal/auth"
	"github.com/lunaetstella/smartstock-backend/internal/loginlogs"
	pkgerrors "github.com/lunaetstella/smartstock-backend/pkg/errors"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
)

// AuthRegister handles self-service registration. The first user ever
// registered becomes an approved admin.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Register(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusCreated, "Registration successful. Please wait for Admin approval.")
	}
}

// AuthLogin verifies credentials and returns a bearer token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthLogout closes the caller's most recent open login-log entry. A second
// logout is a no-op, not an error.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token is invalid!"))
			return
		}

		if err := svc.Logout(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "Logged out successfully")
	}
}

// AuthPendingUsers lists users awaiting approval.
func AuthPendingUsers(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := svc.PendingUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]auth.PendingUser{"users": pending})
	}
}

// AuthApprove marks a pending user as approved.
func AuthApprove(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "User not found"))
			return
		}

		if err := svc.Approve(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "User approved")
	}
}

// AuthReject deletes a pending user outright.
func AuthReject(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "User not found"))
			return
		}

		if err := svc.Reject(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "User rejected")
	}
}

// AuthLoginLogs returns the login audit trail, newest first.
func AuthLoginLogs(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := svc.LoginLogs(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]loginlogs.Entry{"logs": logs})
	}
}
