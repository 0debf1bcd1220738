package middleware

import (
	"log/slog"
	"net/http"

	"github.com/omar3814/baeed-wa-qareeb-store/pkg/logger"
)

// RequestLogger builds a request-scoped logger carrying correlation_id,
// client_id, user_id, trace_id and span_id, and stores it in the context.
//
// Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			if clientID := r.Header.Get(HeaderClientID); clientID != "" && logger.ClientIDFromContext(ctx) == "" {
				ctx = logger.WithClientID(ctx, clientID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
