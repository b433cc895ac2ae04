package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lunaetstella/smartstock-backend/api/middleware"
	"github.com/lunaetstella/smartstock-backend/api/responses"
	"github.com/lunaetstella/smartstock-backend/api/validators"
	"github.com/lunaetstella/smartstock-backend/internal/transactions"
	pkgerrors "github.com/lunaetstella/smartstock-backend/pkg/errors"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
)

// TransactionsList returns the stock ledger, newest first.
func TransactionsList(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]transactions.Entry{"transactions": entries})
	}
}

// TransactionsCreate records a stock movement and returns the resulting
// stock level. The authenticated caller is credited as the actor.
func TransactionsCreate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token is invalid!"))
			return
		}

		var body transactions.CreateTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProductID(r.Context(), body.ProductID.String())
		newStock, err := svc.Create(ctx, actorID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message":   "Transaction recorded",
			"new_stock": newStock,
		})
	}
}
