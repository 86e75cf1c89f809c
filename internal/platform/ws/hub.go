// Package ws pushes reminder events to connected clients over WebSockets.
// It implements a hub-and-spoke pattern where a client subscribes to one or
// more patient topics and receives the prompt/alert/advice events the alarm
// engine emits for those patients.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Event types emitted by the reminder engine.
const (
	EventAlert      = "reminder.alert"       // play the alert sound
	EventAlertDone  = "reminder.alert_done"  // stop the alert sound
	EventPrompt     = "reminder.prompt"      // show (or re-show) the intake prompt
	EventPromptDone = "reminder.prompt_done" // hide the intake prompt
	EventAdvice     = "reminder.advice"      // show the advisory banner
	EventAdviceDone = "reminder.advice_done" // clear the advisory banner
)

// Event is a reminder notification sent to subscribed clients.
type Event struct {
	Type      string    `json:"type"`
	PatientID string    `json:"patientId"`
	Medicine  string    `json:"medicine,omitempty"`
	Ordinal   int       `json:"ordinal,omitempty"` // prompt ordinal (1 = first showing)
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage represents an inbound message from a WebSocket client.
type ClientMessage struct {
	Action   string   `json:"action"`
	Patients []string `json:"patients"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single WebSocket connection.
type Client struct {
	ID       string
	Patients []string
	Send     chan []byte
	hub      *Hub
	conn     Conn
}

// Hub tracks clients and their patient subscriptions. All operations are
// thread-safe via sync.RWMutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // patient id -> set of clients
	all     map[*Client]struct{}
}

// NewHub creates a Hub ready to manage WebSocket clients.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
	}
}

// Register adds a client to the hub and subscribes it to its initial patients.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}

	for _, pid := range client.Patients {
		if h.clients[pid] == nil {
			h.clients[pid] = make(map[*Client]struct{})
		}
		h.clients[pid][client] = struct{}{}
	}
}

// Unregister removes a client from the hub, all patient subscriptions, and
// closes the client's Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, pid := range client.Patients {
		if subscribers, ok := h.clients[pid]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, pid)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Subscribe dynamically adds patient subscriptions to a registered client.
func (h *Hub) Subscribe(client *Client, patients []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, pid := range patients {
		if h.clients[pid] == nil {
			h.clients[pid] = make(map[*Client]struct{})
		}
		h.clients[pid][client] = struct{}{}
	}
	client.Patients = append(client.Patients, patients...)
}

// Unsubscribe removes patient subscriptions from a registered client.
func (h *Hub) Unsubscribe(client *Client, patients []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removeSet := make(map[string]struct{}, len(patients))
	for _, pid := range patients {
		removeSet[pid] = struct{}{}
	}

	for _, pid := range patients {
		if subscribers, ok := h.clients[pid]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, pid)
			}
		}
	}

	remaining := make([]string, 0, len(client.Patients))
	for _, pid := range client.Patients {
		if _, rm := removeSet[pid]; !rm {
			remaining = append(remaining, pid)
		}
	}
	client.Patients = remaining
}

// ProcessMessage handles an inbound ClientMessage, dispatching to Subscribe
// or Unsubscribe as appropriate.
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(client, msg.Patients)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Patients)
	}
}

// Broadcast sends an event to all clients subscribed to the event's patient.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers, ok := h.clients[event.PatientID]
	if !ok {
		return
	}

	for client := range subscribers {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking the alarm engine.
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// PatientCount returns the number of clients subscribed to a patient.
func (h *Hub) PatientCount(patientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[patientID])
}

// ---------------------------------------------------------------------------
// Handler: Echo HTTP handler for WebSocket connections
// ---------------------------------------------------------------------------

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler handles HTTP-to-WebSocket upgrades and message routing.
type Handler struct {
	hub *Hub
}

// NewHandler creates a handler bound to the given Hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (wsh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", wsh.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, registers the
// client with the hub, and starts read/write pumps. An initial patient
// subscription may be supplied with the ?patient= query parameter.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	var patients []string
	if pid := c.QueryParam("patient"); pid != "" {
		patients = []string{pid}
	}

	client := &Client{
		ID:       uuid.New().String(),
		Patients: patients,
		Send:     make(chan []byte, 256),
		hub:      wsh.hub,
		conn:     &gorillaConnAdapter{conn},
	}

	wsh.hub.Register(client)

	go wsh.writePump(client, conn)
	go wsh.readPump(client, conn)

	return nil
}

func (wsh *Handler) readPump(client *Client, conn *gorillawebsocket.Conn) {
	defer func() {
		wsh.hub.Unregister(client)
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue // Ignore malformed messages.
		}

		wsh.hub.ProcessMessage(client, msg)
	}
}

func (wsh *Handler) writePump(client *Client, conn *gorillawebsocket.Conn) {
	defer conn.Close()

	for message := range client.Send {
		if err := conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
