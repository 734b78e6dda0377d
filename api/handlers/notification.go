package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/lifecycle"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// Notification event names
const (
	EventCaseChanged = "case_changed"
	EventCaseExpiry  = "case_expiry"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

type notification struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type subscriber struct {
	principal models.Principal
	conn      *websocket.Conn
	send      chan notification
	done      chan struct{}
	once      sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// NotificationHub fans lifecycle events out to the connected websocket
// clients that may view the affected case
type NotificationHub struct {
	engine  *permissions.Engine
	clients map[*subscriber]bool
	mutex   sync.Mutex
}

// NewNotificationHub returns an empty hub
func NewNotificationHub(engine *permissions.Engine) *NotificationHub {
	return &NotificationHub{
		engine:  engine,
		clients: make(map[*subscriber]bool),
	}
}

// Notify implements lifecycle.Notifier. It never blocks: a client whose
// buffer is full is disconnected.
func (h *NotificationHub) Notify(e lifecycle.Event) {
	h.publish(e.CaseType, notification{Event: EventCaseChanged, Data: e})
}

// ReportExpiring sends the result of an expiry scan to every client that
// may view the listed cases
func (h *NotificationHub) ReportExpiring(cases []models.CaseView) {
	for _, c := range cases {
		h.publish(c.CaseType, notification{Event: EventCaseExpiry, Data: expiryNotice{
			CaseID:        c.ID,
			CaseType:      c.CaseType,
			DefendantName: c.DefendantName,
			Expiry:        c.Expiry,
		}})
	}
}

type expiryNotice struct {
	CaseID        string                   `json:"caseId"`
	CaseType      models.CaseType          `json:"caseType"`
	DefendantName string                   `json:"defendantName"`
	Expiry        *models.ExpiryAnnotation `json:"expiry"`
}

// Connected returns the number of connected clients
func (h *NotificationHub) Connected() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *NotificationHub) publish(caseType models.CaseType, n notification) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for s := range h.clients {
		if !h.engine.Permits(s.principal, caseType.Module(), permissions.ActionView) {
			continue
		}
		select {
		case s.send <- n:
		default:
			zap.S().Warnw("notification buffer full, dropping client", "actor", s.principal.ActorID)
			delete(h.clients, s)
			s.close()
		}
	}
}

func (h *NotificationHub) register(s *subscriber) {
	h.mutex.Lock()
	h.clients[s] = true
	h.mutex.Unlock()
	zap.S().Debugw("client connected to /ws/notifications", "actor", s.principal.ActorID)
}

func (h *NotificationHub) unregister(s *subscriber) {
	h.mutex.Lock()
	delete(h.clients, s)
	h.mutex.Unlock()
	s.close()
	zap.S().Debugw("client disconnected from /ws/notifications", "actor", s.principal.ActorID)
}

// HandleNotificationsWebSocket WebSocket handler for notifications
func (h *NotificationHub) HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("WebSocket upgrade error", "error", err)
		return
	}

	s := &subscriber{
		principal: p,
		conn:      conn,
		send:      make(chan notification, sendBuffer),
		done:      make(chan struct{}),
	}
	h.register(s)
	go h.writeLoop(s)

	// Keep connection alive until the client goes away
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.unregister(s)
}

func (h *NotificationHub) writeLoop(s *subscriber) {
	defer s.conn.Close()
	for {
		select {
		case n := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(n); err != nil {
				zap.S().Warnw("Error sending notification", "actor", s.principal.ActorID, "error", err)
				h.unregister(s)
				return
			}
		case <-s.done:
			return
		}
	}
}
