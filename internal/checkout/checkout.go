// Package checkout validates the customer's order draft and submits it.
// All validation happens before any network call; the cart is cleared
// only after the backend confirms the order.
package checkout

import (
	"context"
	"errors"

	"github.com/marhaba-kitchen/storefront/internal/cart"
	"github.com/marhaba-kitchen/storefront/internal/client"
	"github.com/marhaba-kitchen/storefront/internal/enum"
)

// MaxReceiptSize is the upload cap for payment proofs.
const MaxReceiptSize = 2 << 20 // 2MB

var (
	ErrMissingName          = errors.New("name is required")
	ErrMissingEmail         = errors.New("email is required")
	ErrMissingPhone         = errors.New("phone number is required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrReceiptRequired      = errors.New("payment receipt is required for DuitNow")
	ErrReceiptTooLarge      = errors.New("receipt exceeds the 2MB limit")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrSubmitFailed         = errors.New("order submission failed")
)

// Draft is the checkout form state.
type Draft struct {
	Name          string
	Email         string
	Phone         string
	ExtraRequests string
	PaymentMethod string
	Receipt       *client.Attachment
}

// OrderPlacer is the slice of the API client checkout needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req client.CreateOrderRequest) (string, error)
}

// Submitter drives the checkout flow against the cart and the API.
type Submitter struct {
	cart *cart.Store
	api  OrderPlacer
}

func NewSubmitter(cart *cart.Store, api OrderPlacer) *Submitter {
	return &Submitter{cart: cart, api: api}
}

// Validate checks the draft against the current cart. It never touches
// the network.
func (s *Submitter) Validate(draft Draft) error {
	if draft.Name == "" {
		return ErrMissingName
	}
	if draft.Email == "" {
		return ErrMissingEmail
	}
	if draft.Phone == "" {
		return ErrMissingPhone
	}
	if !enum.IsValidPaymentMethod(draft.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	if draft.PaymentMethod == enum.PaymentMethodDuitNow {
		if draft.Receipt == nil || len(draft.Receipt.Data) == 0 {
			return ErrReceiptRequired
		}
		if len(draft.Receipt.Data) > MaxReceiptSize {
			return ErrReceiptTooLarge
		}
	}
	if s.cart.Count() == 0 {
		return ErrEmptyCart
	}
	return nil
}

// Submit validates the draft, sends the order and returns its tracking
// number. The cart is cleared on success only, so a failed submission
// leaves it intact for retry. Backend-supplied error messages are
// surfaced; anything without one collapses to ErrSubmitFailed.
func (s *Submitter) Submit(ctx context.Context, draft Draft) (string, error) {
	if err := s.Validate(draft); err != nil {
		return "", err
	}

	lines := s.cart.Lines()
	items := make([]client.CreateOrderItemRequest, len(lines))
	for i, l := range lines {
		items[i] = client.CreateOrderItemRequest{
			Name:     l.Name,
			NameAr:   l.NameAr,
			Price:    l.Price,
			Quantity: l.Quantity,
		}
	}

	trackingNumber, err := s.api.CreateOrder(ctx, client.CreateOrderRequest{
		CustomerName:  draft.Name,
		Email:         draft.Email,
		PhoneNumber:   draft.Phone,
		ExtraRequests: draft.ExtraRequests,
		PaymentMethod: draft.PaymentMethod,
		Items:         items,
		Receipt:       draft.Receipt,
	})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", errors.New(apiErr.Message)
		}
		return "", ErrSubmitFailed
	}

	s.cart.Clear()
	return trackingNumber, nil
}
