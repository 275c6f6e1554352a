package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marhaba-kitchen/storefront/internal/store"
	"github.com/sirupsen/logrus"
)

// ShopStore defines the database methods needed by shop settings handlers.
// Satisfied by *store.Queries.
type ShopStore interface {
	GetSettings(ctx context.Context) (store.Settings, error)
	SetShopOpen(ctx context.Context, isOpen bool) error
}

// ShopHandler handles the shop-availability gate endpoints.
type ShopHandler struct {
	store ShopStore
}

func NewShopHandler(store ShopStore) *ShopHandler {
	return &ShopHandler{store: store}
}

func (h *ShopHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/shop/status", h.Status)
}

func (h *ShopHandler) RegisterAdminRoutes(r chi.Router) {
	r.Patch("/shop/status", h.UpdateStatus)
}

// --- Request / Response types ---

type shopStatusResponse struct {
	Success  bool         `json:"success"`
	Settings shopSettings `json:"settings"`
}

type shopSettings struct {
	IsOpen             bool              `json:"isOpen"`
	ClosedMessage      map[string]string `json:"closedMessage"`
	OpeningHours       string            `json:"openingHours"`
	OpeningHoursArabic string            `json:"openingHoursArabic"`
}

type updateShopStatusRequest struct {
	IsOpen *bool `json:"isOpen"`
}

// --- Handlers ---

// Status handles GET /api/shop/status (public). Polled once per menu-page
// visit; there is no live subscription for the gate.
func (h *ShopHandler) Status(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetSettings(r.Context())
	if err != nil {
		logrus.Errorf("get shop settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, shopStatusResponse{
		Success: true,
		Settings: shopSettings{
			IsOpen: s.IsOpen,
			ClosedMessage: map[string]string{
				"en": s.ClosedMessageEn,
				"ar": s.ClosedMessageAr,
			},
			OpeningHours:       s.OpeningHours,
			OpeningHoursArabic: s.OpeningHoursAr,
		},
	})
}

// UpdateStatus handles PATCH /api/shop/status (bearer-protected).
func (h *ShopHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateShopStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.IsOpen == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "isOpen is required"})
		return
	}

	if err := h.store.SetShopOpen(r.Context(), *req.IsOpen); err != nil {
		logrus.Errorf("set shop open: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
