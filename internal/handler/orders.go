package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/marhaba-kitchen/storefront/internal/enum"
	"github.com/marhaba-kitchen/storefront/internal/service"
	"github.com/marhaba-kitchen/storefront/internal/store"
	"github.com/marhaba-kitchen/storefront/internal/ws"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update
// handlers. Satisfied by *store.Queries.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	GetOrderByTrackingNumber(ctx context.Context, trackingNumber string) (store.Order, error)
	ListOrders(ctx context.Context) ([]store.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg store.UpdateOrderStatusParams) (store.Order, error)
	OrderAnalytics(ctx context.Context) (store.OrderAnalyticsRow, error)
}

// Broadcaster fans an event out to all live listeners. Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterPublicRoutes registers the storefront-facing order endpoints.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/orders/create", h.Create)
	r.Get("/orders/track/{trackingNumber}", h.Track)
}

// RegisterAdminRoutes registers the bearer-protected order endpoints.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/analytics", h.Analytics)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName  string                   `json:"customerName"`
	Email         string                   `json:"email"`
	PhoneNumber   string                   `json:"phoneNumber"`
	ExtraRequests string                   `json:"extraRequests"`
	PaymentMethod string                   `json:"paymentMethod"`
	Items         []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	Name     string          `json:"name"`
	NameAr   string          `json:"nameAr"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"quantity"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	TrackingNumber string              `json:"trackingNumber"`
	CustomerName   string              `json:"customerName"`
	Email          string              `json:"email"`
	PhoneNumber    string              `json:"phoneNumber"`
	ExtraRequests  string              `json:"extraRequests,omitempty"`
	PaymentMethod  string              `json:"paymentMethod"`
	OrderStatus    string              `json:"orderStatus"`
	Items          []orderItemResponse `json:"items"`
	TotalAmount    float64             `json:"totalAmount"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type orderItemResponse struct {
	Name     string  `json:"name"`
	NameAr   string  `json:"nameAr"`
	Price    float64 `json:"price"`
	Quantity int32   `json:"quantity"`
}

type createOrderResponse struct {
	Success        bool   `json:"success"`
	TrackingNumber string `json:"trackingNumber"`
}

type trackOrderResponse struct {
	Success bool          `json:"success"`
	Order   orderResponse `json:"order"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type analyticsResponse struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int64   `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	PendingOrders     int64   `json:"pendingOrders"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Create handles POST /api/orders/create. The storefront sends JSON when
// there is no payment proof and multipart (receipt file field) when there is.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateOrder(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), *req)
	if err != nil {
		if service.IsValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		logrus.Errorf("create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastOrder(enum.EventNewOrder, result.Order, result.Items)

	writeJSON(w, http.StatusCreated, createOrderResponse{
		Success:        true,
		TrackingNumber: result.Order.TrackingNumber,
	})
}

// decodeCreateOrder reads either encoding of the create request.
func decodeCreateOrder(w http.ResponseWriter, r *http.Request) (*service.CreateOrderRequest, error) {
	// Receipt limit plus headroom for the order fields themselves.
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxReceiptSize+1<<20)

	var req createOrderRequest
	var receipt *service.Receipt

	if isMultipart(r) {
		if err := r.ParseMultipartForm(service.MaxReceiptSize + 1<<20); err != nil {
			return nil, fmt.Errorf("invalid multipart body")
		}
		req.CustomerName = r.FormValue("customerName")
		req.Email = r.FormValue("email")
		req.PhoneNumber = r.FormValue("phoneNumber")
		req.ExtraRequests = r.FormValue("extraRequests")
		req.PaymentMethod = r.FormValue("paymentMethod")
		if itemsJSON := r.FormValue("items"); itemsJSON != "" {
			if err := json.Unmarshal([]byte(itemsJSON), &req.Items); err != nil {
				return nil, fmt.Errorf("invalid items field")
			}
		}

		file, header, err := r.FormFile("receipt")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, service.MaxReceiptSize+1))
			if err != nil {
				return nil, fmt.Errorf("failed to read receipt")
			}
			receipt = &service.Receipt{Filename: header.Filename, Data: data}
		} else if !errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("invalid receipt field")
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body")
		}
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			Name:     item.Name,
			NameAr:   item.NameAr,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}

	return &service.CreateOrderRequest{
		CustomerName:  req.CustomerName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		ExtraRequests: req.ExtraRequests,
		PaymentMethod: req.PaymentMethod,
		Items:         svcItems,
		Receipt:       receipt,
	}, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

// Track handles GET /api/orders/track/{trackingNumber}.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")

	order, err := h.store.GetOrderByTrackingNumber(r.Context(), trackingNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"message": "order not found",
			})
			return
		}
		logrus.Errorf("track order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		logrus.Errorf("list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, trackOrderResponse{
		Success: true,
		Order:   toOrderResponse(order, items),
	})
}

// List handles GET /api/orders (bearer-protected), newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		logrus.Errorf("list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			logrus.Errorf("list order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp[i] = toOrderResponse(o, items)
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp})
}

// Analytics handles GET /api/orders/analytics (bearer-protected).
func (h *OrderHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.OrderAnalytics(r.Context())
	if err != nil {
		logrus.Errorf("order analytics: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		TotalRevenue:      numericToFloat(a.TotalRevenue),
		TotalOrders:       a.TotalOrders,
		AverageOrderValue: numericToFloat(a.AverageOrderValue),
		PendingOrders:     a.PendingOrders,
	})
}

// UpdateStatus handles PATCH /api/orders/{id}/status (bearer-protected).
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	if !enum.IsValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		logrus.Errorf("get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := validateStatusTransition(current.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), store.UpdateOrderStatusParams{
		ID:         orderID,
		Status:     req.Status,
		PrevStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The status changed between our read and write (race condition)
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		logrus.Errorf("update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), updated.ID)
	if err != nil {
		logrus.Errorf("list order items for broadcast: %v", err)
		items = nil
	}
	h.broadcastOrder(enum.EventOrderStatusUpdated, updated, items)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Helpers ---

// allowedTransitions defines valid status transitions.
// The progression is strictly forward with no skips from this surface.
var allowedTransitions = map[string]string{
	enum.OrderStatusPending: enum.OrderStatusReady,
	enum.OrderStatusReady:   enum.OrderStatusDelivered,
}

func validateStatusTransition(current, next string) error {
	if allowedTransitions[current] != next {
		return fmt.Errorf("cannot transition from %s to %s", current, next)
	}
	return nil
}

// broadcastOrder pushes the full order object to every live listener.
func (h *OrderHandler) broadcastOrder(eventType string, order store.Order, items []store.OrderItem) {
	payload, err := json.Marshal(toOrderResponse(order, items))
	if err != nil {
		logrus.Errorf("marshal %s payload: %v", eventType, err)
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: payload})
}

func toOrderResponse(o store.Order, items []store.OrderItem) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		TrackingNumber: o.TrackingNumber,
		CustomerName:   o.CustomerName,
		Email:          o.Email,
		PhoneNumber:    o.PhoneNumber,
		PaymentMethod:  o.PaymentMethod,
		OrderStatus:    o.Status,
		TotalAmount:    numericToFloat(o.TotalAmount),
		CreatedAt:      o.CreatedAt,
	}
	if o.ExtraRequests.Valid {
		resp.ExtraRequests = o.ExtraRequests.String
	}

	resp.Items = make([]orderItemResponse, len(items))
	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			Name:     it.Name,
			NameAr:   it.NameAr,
			Price:    numericToFloat(it.Price),
			Quantity: it.Quantity,
		}
	}
	return resp
}

func numericToFloat(n pgtype.Numeric) float64 {
	if !n.Valid {
		return 0
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return 0
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
