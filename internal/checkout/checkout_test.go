package checkout

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marhaba-kitchen/storefront/internal/cart"
	"github.com/marhaba-kitchen/storefront/internal/client"
	"github.com/marhaba-kitchen/storefront/internal/storage"
)

// countingPlacer records every CreateOrder call.
type countingPlacer struct {
	calls          int
	lastReq        client.CreateOrderRequest
	trackingNumber string
	err            error
}

func (p *countingPlacer) CreateOrder(_ context.Context, req client.CreateOrderRequest) (string, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return "", p.err
	}
	return p.trackingNumber, nil
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	c := cart.NewStore(storage.NewFileStore(t.TempDir()))
	c.Add(cart.Item{ID: "1", Name: "Chicken Shawarma", Price: decimal.NewFromInt(10)}, 2)
	c.Add(cart.Item{ID: "2", Name: "Hummus", Price: decimal.NewFromInt(5)}, 1)
	return c
}

func validDraft() Draft {
	return Draft{
		Name:          "Aisha",
		Email:         "aisha@example.com",
		Phone:         "0123456789",
		PaymentMethod: "payLater",
	}
}

func TestValidationRejectsBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
	}{
		{"missing name", func(d *Draft) { d.Name = "" }, ErrMissingName},
		{"missing email", func(d *Draft) { d.Email = "" }, ErrMissingEmail},
		{"missing phone", func(d *Draft) { d.Phone = "" }, ErrMissingPhone},
		{"bad payment method", func(d *Draft) { d.PaymentMethod = "cash" }, ErrInvalidPaymentMethod},
		{"duitnow without receipt", func(d *Draft) { d.PaymentMethod = "duitnow" }, ErrReceiptRequired},
		{
			"duitnow oversized receipt",
			func(d *Draft) {
				d.PaymentMethod = "duitnow"
				d.Receipt = &client.Attachment{Filename: "big.png", Data: bytes.Repeat([]byte{0xff}, MaxReceiptSize+1)}
			},
			ErrReceiptTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &countingPlacer{trackingNumber: "ABCD2345"}
			sub := NewSubmitter(filledCart(t), api)

			draft := validDraft()
			tt.mutate(&draft)

			_, err := sub.Submit(context.Background(), draft)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if api.calls != 0 {
				t.Errorf("CreateOrder called %d times, want 0", api.calls)
			}
		})
	}
}

func TestEmptyCartRejected(t *testing.T) {
	api := &countingPlacer{}
	c := cart.NewStore(storage.NewFileStore(t.TempDir()))
	sub := NewSubmitter(c, api)

	_, err := sub.Submit(context.Background(), validDraft())
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("got %v, want ErrEmptyCart", err)
	}
	if api.calls != 0 {
		t.Errorf("CreateOrder called %d times, want 0", api.calls)
	}
}

func TestSubmitClearsCartOnSuccess(t *testing.T) {
	api := &countingPlacer{trackingNumber: "ABCD2345"}
	c := filledCart(t)
	sub := NewSubmitter(c, api)

	tn, err := sub.Submit(context.Background(), validDraft())
	if err != nil {
		t.Fatal(err)
	}
	if tn != "ABCD2345" {
		t.Errorf("tracking number = %q", tn)
	}
	if c.Count() != 0 {
		t.Error("cart should be cleared after a confirmed order")
	}
	if len(api.lastReq.Items) != 2 {
		t.Errorf("submitted %d items, want 2", len(api.lastReq.Items))
	}
}

func TestSubmitKeepsCartOnFailure(t *testing.T) {
	api := &countingPlacer{err: &client.APIError{StatusCode: 500, Message: ""}}
	c := filledCart(t)
	before := c.Lines()
	sub := NewSubmitter(c, api)

	_, err := sub.Submit(context.Background(), validDraft())
	if !errors.Is(err, ErrSubmitFailed) {
		t.Errorf("got %v, want ErrSubmitFailed", err)
	}
	if !reflect.DeepEqual(c.Lines(), before) {
		t.Errorf("cart changed after failed submit:\n before %+v\n after  %+v", before, c.Lines())
	}
}

func TestSubmitSurfacesBackendMessage(t *testing.T) {
	api := &countingPlacer{err: &client.APIError{StatusCode: 400, Message: "shop is closed"}}
	sub := NewSubmitter(filledCart(t), api)

	_, err := sub.Submit(context.Background(), validDraft())
	if err == nil || err.Error() != "shop is closed" {
		t.Errorf("got %v, want backend message", err)
	}
}

func TestDuitnowWithReceiptSubmits(t *testing.T) {
	api := &countingPlacer{trackingNumber: "WXYZ7890"}
	sub := NewSubmitter(filledCart(t), api)

	draft := validDraft()
	draft.PaymentMethod = "duitnow"
	draft.Receipt = &client.Attachment{Filename: "proof.png", Data: []byte("png")}

	if _, err := sub.Submit(context.Background(), draft); err != nil {
		t.Fatal(err)
	}
	if api.lastReq.Receipt == nil {
		t.Error("receipt should be forwarded to the API")
	}
}
