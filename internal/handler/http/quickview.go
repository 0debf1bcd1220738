package http

import (
	"log/slog"
	"net/http"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/service"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/httputil"
)

// QuickViewHandler handles the quick view endpoints.
type QuickViewHandler struct {
	service *service.QuickViewService
	logger  *slog.Logger
}

// NewQuickViewHandler creates a new quick view HTTP handler.
func NewQuickViewHandler(svc *service.QuickViewService, logger *slog.Logger) *QuickViewHandler {
	return &QuickViewHandler{service: svc, logger: logger}
}

// OpenQuickViewRequest is the JSON request body for opening a quick view.
type OpenQuickViewRequest struct {
	ProductID string `json:"product_id" validate:"required,notblank,max=128"`
}

// Current handles GET /api/v1/quickview
func (h *QuickViewHandler) Current(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Current(r.Context(), clientIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeNullable(w, p)
}

// Open handles PUT /api/v1/quickview
func (h *QuickViewHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenQuickViewRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	p, err := h.service.Open(r.Context(), clientIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// Close handles DELETE /api/v1/quickview
func (h *QuickViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), clientIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
