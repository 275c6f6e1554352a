// Package track implements the customer order-tracking flow: a lookup
// state machine plus a live subscription that keeps the found order
// current as the kitchen advances it.
package track

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/marhaba-kitchen/storefront/internal/client"
	"github.com/marhaba-kitchen/storefront/internal/enum"
)

// State is the tracking view's lookup state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateFound
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateFound:
		return "found"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// OrderFetcher is the slice of the API client the machine needs.
type OrderFetcher interface {
	TrackOrder(ctx context.Context, trackingNumber string) (*client.Order, error)
}

// Subscription is a live event stream handle.
type Subscription interface {
	Close() error
}

// Subscriber opens a stream of order status updates. The handler is
// called for every update event on the stream; the machine filters by
// tracking number itself.
type Subscriber interface {
	Subscribe(onUpdate func(client.Order)) (Subscription, error)
}

// Chime plays the status-change cue. Optional.
type Chime interface {
	Play()
}

// Machine drives lookups and folds in live updates for the order on
// screen.
type Machine struct {
	fetcher    OrderFetcher
	subscriber Subscriber
	chime      Chime

	mu    sync.Mutex
	state State
	order *client.Order
	sub   Subscription
	gen   int
}

func NewMachine(fetcher OrderFetcher, subscriber Subscriber, chime Chime) *Machine {
	return &Machine{fetcher: fetcher, subscriber: subscriber, chime: chime, state: StateIdle}
}

// Lookup resolves a tracking number. It tears down any previous
// subscription, fetches, and on a hit opens a fresh subscription for
// live updates. A lookup superseded by a newer one discards its result.
func (m *Machine) Lookup(ctx context.Context, trackingNumber string) State {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.teardownLocked()
	m.state = StateLoading
	m.order = nil
	m.mu.Unlock()

	order, err := m.fetcher.TrackOrder(ctx, trackingNumber)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// A newer lookup took over while we were in flight.
		return m.state
	}

	if err != nil {
		m.state = StateNotFound
		return m.state
	}

	m.state = StateFound
	m.order = order

	if m.subscriber != nil {
		sub, err := m.subscriber.Subscribe(m.handleUpdate)
		if err != nil {
			logrus.Warnf("order updates unavailable: %v", err)
		} else {
			m.sub = sub
		}
	}
	return m.state
}

// handleUpdate folds a pushed order into the view. Events for other
// orders are dropped by tracking number; a genuine status change
// triggers the chime once.
func (m *Machine) handleUpdate(o client.Order) {
	m.mu.Lock()
	if m.state != StateFound || m.order == nil || o.TrackingNumber != m.order.TrackingNumber {
		m.mu.Unlock()
		return
	}
	changed := o.OrderStatus != m.order.OrderStatus
	m.order = &o
	m.mu.Unlock()

	if changed && m.chime != nil {
		m.chime.Play()
	}
}

// State returns the current lookup state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Order returns a copy of the order on screen, nil unless found.
func (m *Machine) Order() *client.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.order == nil {
		return nil
	}
	o := *m.order
	return &o
}

// Close tears down the live subscription and resets to idle. Called
// when the tracking view goes away.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.teardownLocked()
	m.state = StateIdle
	m.order = nil
}

func (m *Machine) teardownLocked() {
	if m.sub != nil {
		_ = m.sub.Close()
		m.sub = nil
	}
}

// StepComplete reports whether the progress step for the given status
// should render as done. Progress is monotonic: a delivered order shows
// every step complete. Unknown statuses complete nothing.
func StepComplete(current, step string) bool {
	cur := enum.OrderStatusRank(current)
	st := enum.OrderStatusRank(step)
	if cur < 0 || st < 0 {
		return false
	}
	return cur >= st
}
