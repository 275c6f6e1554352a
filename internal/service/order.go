package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/marhaba-kitchen/storefront/internal/enum"
	"github.com/marhaba-kitchen/storefront/internal/store"
	"github.com/shopspring/decimal"
)

const maxTrackingNumberRetries = 3

// MaxReceiptSize bounds uploaded payment proofs. The storefront enforces the
// same limit before the network call; this is the server-side backstop.
const MaxReceiptSize = 2 << 20 // 2 MB

// Errors returned by the order service.
var (
	ErrMissingCustomerName  = errors.New("customerName is required")
	ErrMissingEmail         = errors.New("email is required")
	ErrMissingPhoneNumber   = errors.New("phoneNumber is required")
	ErrInvalidPaymentMethod = errors.New("invalid paymentMethod")
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrNegativePrice        = errors.New("price must be >= 0")
	ErrReceiptRequired      = errors.New("receipt is required for duitnow payment")
	ErrReceiptTooLarge      = errors.New("receipt must not exceed 2MB")
)

// IsValidationError reports whether err should surface as a 400 to the client.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingCustomerName) ||
		errors.Is(err, ErrMissingEmail) ||
		errors.Is(err, ErrMissingPhoneNumber) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrEmptyItems) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrNegativePrice) ||
		errors.Is(err, ErrReceiptRequired) ||
		errors.Is(err, ErrReceiptTooLarge)
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *store.Queries (over a pool or a tx).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	CreateOrderItem(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db store.DBTX) OrderStore

// CreateOrderRequest is the input for creating an order. Item identity is
// already dropped: the snapshot carries only name/price/quantity.
type CreateOrderRequest struct {
	CustomerName  string
	Email         string
	PhoneNumber   string
	ExtraRequests string
	PaymentMethod string
	Items         []CreateOrderItemRequest
	Receipt       *Receipt
}

type CreateOrderItemRequest struct {
	Name     string
	NameAr   string
	Price    decimal.Decimal
	Quantity int32
}

// Receipt is an uploaded payment proof.
type Receipt struct {
	Filename string
	Data     []byte
}

// CreateOrderResult is the created order with its item snapshot.
type CreateOrderResult struct {
	Order store.Order
	Items []store.OrderItem
}

// OrderService handles order creation.
type OrderService struct {
	pool      TxBeginner
	newStore  NewOrderStore
	uploadDir string
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore, uploadDir string) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, uploadDir: uploadDir}
}

// CreateOrder validates, recomputes the total from decimal line math, and
// creates the order atomically. Retries up to maxTrackingNumberRetries times
// on tracking_number unique constraint violations (two orders drawing the
// same random code).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.CustomerName == "" {
		return nil, ErrMissingCustomerName
	}
	if req.Email == "" {
		return nil, ErrMissingEmail
	}
	if req.PhoneNumber == "" {
		return nil, ErrMissingPhoneNumber
	}
	if !enum.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrNegativePrice)
		}
	}

	if req.PaymentMethod == enum.PaymentMethodDuitNow {
		if req.Receipt == nil || len(req.Receipt.Data) == 0 {
			return nil, ErrReceiptRequired
		}
	}
	if req.Receipt != nil && len(req.Receipt.Data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	receiptPath := pgtype.Text{}
	if req.Receipt != nil {
		path, err := s.saveReceipt(req.Receipt)
		if err != nil {
			return nil, fmt.Errorf("save receipt: %w", err)
		}
		receiptPath = pgtype.Text{String: path, Valid: true}
	}

	// The item snapshot is server-priced arithmetic over the submitted
	// lines; a client-sent total is never trusted.
	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}

	var lastErr error
	for attempt := 0; attempt < maxTrackingNumberRetries; attempt++ {
		trackingNumber, err := generateTrackingNumber()
		if err != nil {
			return nil, fmt.Errorf("generate tracking number: %w", err)
		}

		result, err := s.createOrderTx(ctx, req, trackingNumber, receiptPath, total)
		if err == nil {
			return result, nil
		}
		if isTrackingNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isTrackingNumberConflict checks if the error is a unique constraint
// violation on the tracking number (pgconn error code 23505).
func isTrackingNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_tracking_number_key"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, trackingNumber string, receiptPath pgtype.Text, total decimal.Decimal) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	extraRequests := pgtype.Text{}
	if req.ExtraRequests != "" {
		extraRequests = pgtype.Text{String: req.ExtraRequests, Valid: true}
	}

	order, err := st.CreateOrder(ctx, store.CreateOrderParams{
		ID:             uuid.New(),
		TrackingNumber: trackingNumber,
		CustomerName:   req.CustomerName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		ExtraRequests:  extraRequests,
		PaymentMethod:  req.PaymentMethod,
		ReceiptPath:    receiptPath,
		TotalAmount:    decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]store.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		created, err := st.CreateOrderItem(ctx, store.CreateOrderItemParams{
			ID:       uuid.New(),
			OrderID:  order.ID,
			Name:     item.Name,
			NameAr:   item.NameAr,
			Price:    decimalToNumeric(item.Price),
			Quantity: item.Quantity,
			Position: int32(i),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

func (s *OrderService) saveReceipt(r *Receipt) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(r.Filename)
	path := filepath.Join(s.uploadDir, uuid.NewString()+ext)
	if err := os.WriteFile(path, r.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// trackingAlphabet omits 0/O/1/I/L so codes survive being read over the phone.
const trackingAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generateTrackingNumber() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return string(buf), nil
}

// --- Helpers ---

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
