package websocket

import (
	"encoding/json"
	"sync"

	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

// Client is one websocket subscriber following a single order's tracking.
type Client struct {
	Hub     *Hub
	Conn    *Conn
	OrderID string
	Send    chan []byte
}

// NewClient creates a subscriber with a buffered outbound queue.
func NewClient(hub *Hub, conn *Conn, orderID string) *Client {
	return &Client{
		Hub:     hub,
		Conn:    conn,
		OrderID: orderID,
		Send:    make(chan []byte, 64),
	}
}

// BroadcastMessage is a payload addressed to every subscriber of an order.
type BroadcastMessage struct {
	OrderID string
	Message []byte
}

// Hub fans tracking updates out to subscribers grouped by order id.
type Hub struct {
	// order id -> subscribers
	orders map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	metrics *metrics.StoreMetrics
	mu      sync.RWMutex
}

func NewHub(m *metrics.StoreMetrics) *Hub {
	return &Hub{
		orders:     make(map[string]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		done:       make(chan struct{}),
		metrics:    m,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.orders[client.OrderID]; !ok {
				h.orders[client.OrderID] = make(map[*Client]bool)
			}
			h.orders[client.OrderID][client] = true
			count := len(h.orders[client.OrderID])
			h.mu.Unlock()

			h.metrics.TrackingClientConnected()
			logger.Info("Tracking client registered", map[string]interface{}{
				"order_id":    client.OrderID,
				"subscribers": count,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var stalled []*Client
			for client := range h.orders[message.OrderID] {
				select {
				case client.Send <- message.Message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stalled {
				logger.Warn("Tracking client send buffer full, disconnecting", map[string]interface{}{
					"order_id": client.OrderID,
				})
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	subscribers, ok := h.orders[client.OrderID]
	if !ok || !subscribers[client] {
		h.mu.Unlock()
		return
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.orders, client.OrderID)
	}
	close(client.Send)
	h.mu.Unlock()

	h.metrics.TrackingClientDisconnected()
	logger.Info("Tracking client unregistered", map[string]interface{}{
		"order_id": client.OrderID,
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for orderID, subscribers := range h.orders {
		for client := range subscribers {
			close(client.Send)
			h.metrics.TrackingClientDisconnected()
		}
		delete(h.orders, orderID)
	}
}

// Stop ends Run and closes every subscriber's queue.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues payload for the subscribers of orderID. Updates are dropped
// when the broadcast queue is full; tracking history stays authoritative.
func (h *Hub) Publish(orderID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal tracking message", err, map[string]interface{}{
			"order_id": orderID,
		})
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{OrderID: orderID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, tracking message dropped", map[string]interface{}{
			"order_id": orderID,
		})
	}
	return nil
}

// Register queues client for subscription. After Stop the client's queue is
// closed instead so its WritePump exits.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		close(client.Send)
		return
	default:
	}

	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister queues client for removal. It returns without blocking once the
// hub is stopped, since closeAll has already released every subscriber.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers returns how many clients follow orderID.
func (h *Hub) Subscribers(orderID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orders[orderID])
}
