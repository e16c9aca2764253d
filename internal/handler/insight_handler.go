package handler

import (
	"net/http"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// POST /v1/insights?window=
// Model failures are answered with a fallback insight and status 200.
func insightHandler(svc *service.InsightService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/insights")
		defer span.End()

		win, err := parseWindow(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		result, err := svc.Generate(ctx, win)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("insight.source", string(result.Source)),
			attribute.Int("insight.transactions", result.TransactionCount),
		)
		writeJSON(w, http.StatusOK, result)
	}
}
