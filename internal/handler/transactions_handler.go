package handler

import (
	"net/http"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GET /v1/transactions?q=
func listTransactionsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		q := r.URL.Query().Get("q")
		span.SetAttributes(attribute.String("query", q))

		views, err := svc.ListTransactions(ctx, q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.TransactionView]{
			Data:  views,
			Total: len(views),
		})
	}
}

// POST /v1/transactions
func createTransactionHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var req domain.NewTransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.AddTransaction(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("transaction.id", view.ID))
		writeJSON(w, http.StatusCreated, view)
	}
}
