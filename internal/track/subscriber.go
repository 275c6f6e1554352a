package track

import (
	"github.com/marhaba-kitchen/storefront/internal/client"
	"github.com/marhaba-kitchen/storefront/internal/enum"
)

// WSSubscriber adapts the live order event stream to the machine's
// subscription interface, keeping only status updates.
type WSSubscriber struct {
	stream *client.OrderStream
}

func NewWSSubscriber(baseURL string) *WSSubscriber {
	return &WSSubscriber{stream: client.NewOrderStream(baseURL)}
}

// Subscribe opens a connection delivering order_status_updated payloads
// to the handler until the subscription is closed.
func (s *WSSubscriber) Subscribe(onUpdate func(client.Order)) (Subscription, error) {
	sub, err := s.stream.Subscribe(enum.EventOrderStatusUpdated, onUpdate)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
