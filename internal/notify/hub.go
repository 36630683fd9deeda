// internal/notify/hub.go
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 16
)

// PaymentEvent is pushed to salon dashboards when money moves on an order.
type PaymentEvent struct {
	Type          string          `json:"type"`
	OrderID       int64           `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        string          `json:"status"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher is what the order service needs from the hub.
type Publisher interface {
	PublishPayment(salonID int64, event PaymentEvent)
}

// client owns its websocket connection. All writes go through the send
// channel and a single writer pump, since the connection allows only one
// concurrent writer.
type client struct {
	conn    *websocket.Conn
	send    chan PaymentEvent
	salonID int64
}

// Hub fans payment events out to the websocket connections of a salon.
// Publishing never blocks: a client whose send buffer is full is dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
	logger  *zap.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		logger:  logger,
	}
}

// Subscribe upgrades the request and registers the connection under a salon.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, salonID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn:    conn,
		send:    make(chan PaymentEvent, sendBuffer),
		salonID: salonID,
	}

	h.mu.Lock()
	if h.clients[salonID] == nil {
		h.clients[salonID] = make(map[*client]struct{})
	}
	h.clients[salonID][c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("dashboard subscribed to payment events", zap.Int64("salon_id", salonID))

	go h.writePump(c)
	go h.readPump(c)

	return nil
}

// PublishPayment hands the event to each subscribed client's writer pump.
// Safe to call from any number of request goroutines at once.
func (h *Hub) PublishPayment(salonID int64, event PaymentEvent) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[salonID]))
	for c := range h.clients[salonID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- event:
		default:
			h.logger.Warn("dropping slow payment-events connection",
				zap.Int64("salon_id", salonID),
			)
			h.drop(c)
		}
	}
}

// writePump is the sole writer on the connection. It drains the send channel
// and keeps the peer alive with pings.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(c)
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				h.logger.Warn("payment-events write failed",
					zap.Int64("salon_id", c.salonID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump exists only to notice the peer closing; dashboards never send
// payloads.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.salonID]; ok {
		if _, registered := set[c]; registered {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.salonID)
			}
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}
