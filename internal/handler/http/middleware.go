package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/omar3814/baeed-wa-qareeb-store/pkg/httputil"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/logger"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/middleware"
)

type contextKey string

const clientIDKey contextKey = "client_id"

// ClientID requires an X-Client-ID header holding a UUID and stores its
// canonical form in the request context. The ID is generated by the browser
// and namespaces the client's basket and quick view state.
func ClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(middleware.HeaderClientID))
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:      "INVALID_INPUT",
					Message:   middleware.HeaderClientID + " header must be a UUID",
					RequestID: logger.CorrelationIDFromContext(r.Context()),
				},
			})
			return
		}

		ctx := context.WithValue(r.Context(), clientIDKey, id.String())
		ctx = logger.WithClientID(ctx, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIDFromContext returns the ID stored by ClientID.
func clientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// writeNullable writes {"data": v}. Unlike WriteData it keeps "data": null
// for a nil pointer.
func writeNullable(w http.ResponseWriter, v any) {
	httputil.WriteJSON(w, http.StatusOK, struct {
		Data any `json:"data"`
	}{Data: v})
}
