// Package client is a typed HTTP client for the storefront API. The
// browser-facing packages (checkout, track, shop, admin) go through it
// rather than shaping requests themselves.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors callers branch on with errors.Is.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrOrderNotFound = errors.New("order not found")
)

// APIError carries the backend's error envelope for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// Client talks to the storefront API.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent requests. An empty
// token clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Wire types ---

// Order is an order as the API returns it, both over REST and inside
// push event payloads.
type Order struct {
	ID             string      `json:"id"`
	TrackingNumber string      `json:"trackingNumber"`
	CustomerName   string      `json:"customerName"`
	Email          string      `json:"email"`
	PhoneNumber    string      `json:"phoneNumber"`
	ExtraRequests  string      `json:"extraRequests,omitempty"`
	PaymentMethod  string      `json:"paymentMethod"`
	OrderStatus    string      `json:"orderStatus"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	CreatedAt      time.Time   `json:"createdAt"`
}

type OrderItem struct {
	Name     string  `json:"name"`
	NameAr   string  `json:"nameAr"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ShopStatus is the availability gate state.
type ShopStatus struct {
	IsOpen             bool              `json:"isOpen"`
	ClosedMessage      map[string]string `json:"closedMessage"`
	OpeningHours       string            `json:"openingHours"`
	OpeningHoursArabic string            `json:"openingHoursArabic"`
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int64   `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	PendingOrders     int64   `json:"pendingOrders"`
}

// CreateOrderRequest is the order submission payload. Prices stay
// decimal so the backend recomputes the same total the cart showed.
type CreateOrderRequest struct {
	CustomerName  string                   `json:"customerName"`
	Email         string                   `json:"email"`
	PhoneNumber   string                   `json:"phoneNumber"`
	ExtraRequests string                   `json:"extraRequests,omitempty"`
	PaymentMethod string                   `json:"paymentMethod"`
	Items         []CreateOrderItemRequest `json:"items"`
	Receipt       *Attachment              `json:"-"`
}

type CreateOrderItemRequest struct {
	Name     string          `json:"name"`
	NameAr   string          `json:"nameAr"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Attachment is an uploaded payment proof.
type Attachment struct {
	Filename string
	Data     []byte
}

// --- Operations ---

// CreateOrder submits an order and returns its tracking number. The
// request goes out as multipart when a receipt is attached, plain JSON
// otherwise.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	var httpReq *http.Request
	var err error

	if req.Receipt != nil {
		httpReq, err = c.newMultipartCreate(ctx, req)
	} else {
		httpReq, err = c.newRequest(ctx, http.MethodPost, "/api/orders/create", req)
	}
	if err != nil {
		return "", err
	}

	var resp struct {
		Success        bool   `json:"success"`
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := c.do(httpReq, &resp); err != nil {
		return "", err
	}
	return resp.TrackingNumber, nil
}

func (c *Client) newMultipartCreate(ctx context.Context, req CreateOrderRequest) (*http.Request, error) {
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"customerName":  req.CustomerName,
		"email":         req.Email,
		"phoneNumber":   req.PhoneNumber,
		"extraRequests": req.ExtraRequests,
		"paymentMethod": req.PaymentMethod,
		"items":         string(itemsJSON),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("receipt", req.Receipt.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Receipt.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders/create", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	return httpReq, nil
}

// TrackOrder looks an order up by tracking number. A missing order is
// ErrOrderNotFound.
func (c *Client) TrackOrder(ctx context.Context, trackingNumber string) (*Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/orders/track/"+trackingNumber, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success bool  `json:"success"`
		Order   Order `json:"order"`
	}
	if err := c.do(req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &resp.Order, nil
}

// ShopStatus fetches the availability gate state.
func (c *Client) ShopStatus(ctx context.Context) (*ShopStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/shop/status", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success  bool       `json:"success"`
		Settings ShopStatus `json:"settings"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp.Settings, nil
}

// SetShopOpen flips the availability gate (bearer-protected).
func (c *Client) SetShopOpen(ctx context.Context, isOpen bool) error {
	body := map[string]bool{"isOpen": isOpen}
	req, err := c.newRequest(ctx, http.MethodPatch, "/api/shop/status", body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Login exchanges admin credentials for a bearer token. The token is
// not stored on the client; callers decide that.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListOrders fetches all orders, newest first (bearer-protected).
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/orders", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// Analytics fetches the dashboard summary (bearer-protected).
func (c *Client) Analytics(ctx context.Context) (*Analytics, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/orders/analytics", nil)
	if err != nil {
		return nil, err
	}

	var resp Analytics
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateOrderStatus transitions an order (bearer-protected).
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	body := map[string]string{"status": status}
	req, err := c.newRequest(ctx, http.MethodPatch, "/api/orders/"+orderID+"/status", body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// --- Plumbing ---

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error())
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readErrorMessage pulls a human message out of the error envelope,
// which uses either an "error" or a "message" field.
func readErrorMessage(body io.Reader) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}
