package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/service"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/httputil"
)

// BasketHandler handles HTTP requests for basket endpoints.
type BasketHandler struct {
	service *service.BasketService
	logger  *slog.Logger
}

// NewBasketHandler creates a new basket HTTP handler.
func NewBasketHandler(svc *service.BasketService, logger *slog.Logger) *BasketHandler {
	return &BasketHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a fully described line.
type AddItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,notblank,max=128"`
	Size      string  `json:"size" validate:"required,notblank,max=32,excludes=_"`
	Name      string  `json:"name" validate:"required,notblank,max=500"`
	Price     int64   `json:"price" validate:"gte=0,lte=100000000"`
	ImageURL  *string `json:"image_url" validate:"omitempty,url"`
	MaxStock  int     `json:"max_stock" validate:"lte=100000"`
	Quantity  int     `json:"quantity" validate:"gte=0,lte=1000"`
}

// AddProductRequest is the JSON request body for adding a catalog product.
type AddProductRequest struct {
	Size     string `json:"size" validate:"required,notblank,max=32,excludes=_"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=1000"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// --- Handlers ---

// GetBasket handles GET /api/v1/basket
func (h *BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetBasket(r.Context(), clientIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// AddItem handles POST /api/v1/basket/items
func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.service.AddItem(r.Context(), clientIDFromContext(r.Context()), domain.Candidate{
		ProductID: req.ProductID,
		Size:      req.Size,
		Name:      req.Name,
		Price:     req.Price,
		ImageURL:  req.ImageURL,
		MaxStock:  req.MaxStock,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// AddProduct handles POST /api/v1/basket/products/{productId}
func (h *BasketHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.service.AddProduct(r.Context(), clientIDFromContext(r.Context()),
		chi.URLParam(r, "productId"), req.Size, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// UpdateItemQuantity handles PUT /api/v1/basket/items/{uniqueId}
func (h *BasketHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.service.UpdateItemQuantity(r.Context(), clientIDFromContext(r.Context()),
		chi.URLParam(r, "uniqueId"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/v1/basket/items/{uniqueId}
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveItem(r.Context(), clientIDFromContext(r.Context()), chi.URLParam(r, "uniqueId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// ClearBasket handles DELETE /api/v1/basket
func (h *BasketHandler) ClearBasket(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ClearBasket(r.Context(), clientIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}
