package client

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/marhaba-kitchen/storefront/internal/ws"
)

// OrderStream dials the order event websocket. The server pushes every
// event to every listener; each subscription keeps only the event type
// it asked for.
type OrderStream struct {
	url string
}

// NewOrderStream derives the stream endpoint from the API origin.
func NewOrderStream(baseURL string) *OrderStream {
	u := strings.Replace(baseURL, "http", "ws", 1)
	return &OrderStream{url: u + "/ws/orders"}
}

// StreamSubscription is a live connection handle.
type StreamSubscription interface {
	Close() error
}

// Subscribe opens a connection and delivers the order payload of every
// event of the given type to the handler until the subscription is
// closed.
func (s *OrderStream) Subscribe(eventType string, onOrder func(Order)) (StreamSubscription, error) {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return nil, err
	}

	sub := &streamSubscription{conn: conn}
	go sub.readLoop(eventType, onOrder)
	return sub, nil
}

type streamSubscription struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

func (s *streamSubscription) readLoop(eventType string, onOrder func(Order)) {
	for {
		var event ws.Event
		if err := s.conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("order stream closed: %v", err)
			}
			return
		}
		if event.Type != eventType {
			continue
		}

		var order Order
		if err := json.Unmarshal(event.Payload, &order); err != nil {
			logrus.Warnf("bad order event payload: %v", err)
			continue
		}
		onOrder(order)
	}
}

func (s *streamSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}
