package handler

import (
	"encoding/json"
	"net/http"

	"github.com/controleapp/controle-bfa-go/internal/domain"
	"github.com/controleapp/controle-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions — /v1/users/{userId}/transactions
// ============================================================

func listTransactionsHandler(svc *service.Tracker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/transactions")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		span.SetAttributes(attribute.String("user.id", userID))

		transactions, err := svc.ListTransactions(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		transactions = filterTransactions(transactions, r)
		limit := parseLimit(r, len(transactions), 500)
		if limit < len(transactions) {
			transactions = transactions[:limit]
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

// filterTransactions applies the optional type/category/platform query
// filters.
func filterTransactions(transactions []domain.Transaction, r *http.Request) []domain.Transaction {
	q := r.URL.Query()
	txType := q.Get("type")
	category := q.Get("category")
	platform := q.Get("platform")
	if txType == "" && category == "" && platform == "" {
		return transactions
	}

	filtered := make([]domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if txType != "" && string(t.Type) != txType {
			continue
		}
		if category != "" && string(t.Category) != category {
			continue
		}
		if platform != "" && !matchesPlatform(&t, platform) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

func matchesPlatform(t *domain.Transaction, platform string) bool {
	if string(t.Platform) == platform {
		return true
	}
	for _, pr := range t.PlatformRides {
		if string(pr.Platform) == platform {
			return true
		}
	}
	return false
}

func createTransactionHandler(svc *service.Tracker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/transactions")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		span.SetAttributes(attribute.String("user.id", userID))

		var req domain.TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.CreateTransaction(ctx, userID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func updateTransactionHandler(svc *service.Tracker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{userId}/transactions/{transactionId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		transactionID := chi.URLParam(r, "transactionId")
		if userID == "" || transactionID == "" {
			writeError(w, http.StatusBadRequest, "user_id and transaction_id are required")
			return
		}

		var req domain.TransactionUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.UpdateTransaction(ctx, userID, transactionID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func deleteTransactionHandler(svc *service.Tracker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userId}/transactions/{transactionId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		transactionID := chi.URLParam(r, "transactionId")
		if userID == "" || transactionID == "" {
			writeError(w, http.StatusBadRequest, "user_id and transaction_id are required")
			return
		}

		if err := svc.DeleteTransaction(ctx, userID, transactionID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{
			Message: "transaction deleted",
			ID:      transactionID,
		})
	}
}
