// Package admin holds the dashboard model: the live order list, the
// new-order highlight, stats, and the session token.
package admin

import (
	"context"
	"sync"
	"time"

	"github.com/marhaba-kitchen/storefront/internal/client"
	"github.com/marhaba-kitchen/storefront/internal/enum"
	"github.com/marhaba-kitchen/storefront/internal/storage"
)

// highlightDuration is how long a freshly pushed order stays marked.
const highlightDuration = 5 * time.Second

// API is the slice of the API client the dashboard needs.
type API interface {
	ListOrders(ctx context.Context) ([]client.Order, error)
	Analytics(ctx context.Context) (*client.Analytics, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// EventSource is the live order event stream. Satisfied by
// *client.OrderStream.
type EventSource interface {
	Subscribe(eventType string, onOrder func(client.Order)) (client.StreamSubscription, error)
}

// Dashboard is the admin view model.
type Dashboard struct {
	api API
	now func() time.Time

	mu             sync.Mutex
	orders         []client.Order
	stats          client.Analytics
	highlightID    string
	highlightUntil time.Time
}

func NewDashboard(api API) *Dashboard {
	return &Dashboard{api: api, now: time.Now}
}

// Refresh re-fetches the order list and stats.
func (d *Dashboard) Refresh(ctx context.Context) error {
	orders, err := d.api.ListOrders(ctx)
	if err != nil {
		return err
	}
	stats, err := d.api.Analytics(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.orders = orders
	d.stats = *stats
	d.mu.Unlock()
	return nil
}

// Orders returns a copy of the list, newest first.
func (d *Dashboard) Orders() []client.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]client.Order, len(d.orders))
	copy(out, d.orders)
	return out
}

// Stats returns the last fetched analytics.
func (d *Dashboard) Stats() client.Analytics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Listen subscribes the dashboard to new_order pushes. The returned
// handle stays open until the dashboard view goes away.
func (d *Dashboard) Listen(src EventSource) (client.StreamSubscription, error) {
	return src.Subscribe(enum.EventNewOrder, d.HandleNewOrder)
}

// HandleNewOrder folds a pushed order into the list. The order is
// prepended unless already present, and highlighted either way.
func (d *Dashboard) HandleNewOrder(o client.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()

	known := false
	for _, existing := range d.orders {
		if existing.ID == o.ID {
			known = true
			break
		}
	}
	if !known {
		d.orders = append([]client.Order{o}, d.orders...)
	}
	d.highlightID = o.ID
	d.highlightUntil = d.now().Add(highlightDuration)
}

// IsHighlighted reports whether the order still carries the new-order
// mark. The mark clears itself by expiry; no timer needed.
func (d *Dashboard) IsHighlighted(orderID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.highlightID == orderID && d.now().Before(d.highlightUntil)
}

// NextStatus returns the single transition the dashboard may offer for
// an order in the given status, or false when the order is terminal.
func NextStatus(current string) (string, bool) {
	switch current {
	case enum.OrderStatusPending:
		return enum.OrderStatusReady, true
	case enum.OrderStatusReady:
		return enum.OrderStatusDelivered, true
	default:
		return "", false
	}
}

// AdvanceOrder moves the order to its next status and refreshes so the
// list and stats reflect the backend's view.
func (d *Dashboard) AdvanceOrder(ctx context.Context, orderID string) error {
	d.mu.Lock()
	var current string
	for _, o := range d.orders {
		if o.ID == orderID {
			current = o.OrderStatus
			break
		}
	}
	d.mu.Unlock()

	next, ok := NextStatus(current)
	if !ok {
		return nil
	}
	if err := d.api.UpdateOrderStatus(ctx, orderID, next); err != nil {
		return err
	}
	return d.Refresh(ctx)
}

// Session persists the admin bearer token across restarts.
type Session struct {
	st storage.Store
}

func NewSession(st storage.Store) *Session {
	return &Session{st: st}
}

// Token returns the saved token, if any.
func (s *Session) Token() (string, bool) {
	var token string
	if !s.st.Get(storage.KeyAdminToken, &token) || token == "" {
		return "", false
	}
	return token, true
}

// SetToken saves the token after a successful login.
func (s *Session) SetToken(token string) {
	s.st.Set(storage.KeyAdminToken, token)
}

// Clear drops the token, logging the admin out.
func (s *Session) Clear() {
	s.st.Delete(storage.KeyAdminToken)
}
