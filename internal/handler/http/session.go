package http

import (
	"net/http"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/session"
)

// GetSession handles GET /api/v1/session. Anonymous requests get a null
// session rather than an error.
func GetSession(w http.ResponseWriter, r *http.Request) {
	writeNullable(w, session.FromContext(r.Context()))
}
