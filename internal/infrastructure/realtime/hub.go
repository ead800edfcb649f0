package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/domain/port"
	"plastic-detect/internal/logger"
)

const (
	broadcastBuffer = 64
	writeWait       = 10 * time.Second

	// DefaultPingPeriod должен быть меньше времени ожидания pong у читателя
	DefaultPingPeriod = 54 * time.Second
)

type subscription struct {
	sessionID string
	conn      *websocket.Conn
	snapshot  func() entity.Snapshot
}

// Hub рассылает снимки состояния в websocket-соединения сессии.
// Писать в соединения может только цикл Run.
type Hub struct {
	clients     map[string]map[*websocket.Conn]bool
	lastVersion map[string]uint64
	broadcast   chan entity.Snapshot
	register    chan subscription
	unregister  chan subscription
	done        chan struct{}
	mutex       sync.RWMutex
	pingPeriod  time.Duration
	logger      *logger.Logger
}

// NewHub создаёт хаб; до вызова Run снимки накапливаются в буфере.
// Пока Run работает, каждые pingPeriod всем соединениям уходит ping.
// pingPeriod <= 0 означает DefaultPingPeriod.
func NewHub(logger *logger.Logger, pingPeriod time.Duration) *Hub {
	if pingPeriod <= 0 {
		pingPeriod = DefaultPingPeriod
	}
	return &Hub{
		clients:     make(map[string]map[*websocket.Conn]bool),
		lastVersion: make(map[string]uint64),
		broadcast:   make(chan entity.Snapshot, broadcastBuffer),
		register:    make(chan subscription),
		unregister:  make(chan subscription),
		done:        make(chan struct{}),
		pingPeriod:  pingPeriod,
		logger:      logger,
	}
}

// Run обрабатывает подписки и рассылку до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case sub := <-h.register:
			h.mutex.Lock()
			conns, ok := h.clients[sub.sessionID]
			if !ok {
				conns = make(map[*websocket.Conn]bool)
				h.clients[sub.sessionID] = conns
			}
			conns[sub.conn] = true
			h.mutex.Unlock()
			h.logger.Info("Viewer connected to session %s. Total: %d", sub.sessionID, h.ClientCount())

			// Снимок берётся после подписки: всё, что опубликовано раньше, он уже учитывает
			initial := sub.snapshot()
			h.advance(sub.sessionID, initial.Version)
			h.send(sub.sessionID, sub.conn, initial)

		case sub := <-h.unregister:
			h.drop(sub.sessionID, sub.conn)
			h.logger.Info("Viewer disconnected from session %s. Total: %d", sub.sessionID, h.ClientCount())

		case snap := <-h.broadcast:
			conns := h.connections(snap.SessionID)
			if len(conns) == 0 {
				continue
			}
			// Снимки одной сессии могут прийти не по порядку: старые отбрасываем
			if !h.advance(snap.SessionID, snap.Version) {
				continue
			}

			for _, conn := range conns {
				h.send(snap.SessionID, conn, snap)
			}

		case <-ticker.C:
			h.ping()
		}
	}
}

// Publish ставит снимок в очередь рассылки. При переполненной очереди снимок
// теряется: клиент всё равно может запросить /api/state.
func (h *Hub) Publish(snap entity.Snapshot) {
	select {
	case h.broadcast <- snap:
	default:
		h.logger.Warning("Broadcast queue is full, dropping snapshot v%d of session %s", snap.Version, snap.SessionID)
	}
}

// Register подписывает соединение на снимки сессии и отправляет ему начальный снимок,
// полученный из snapshot уже после подписки
func (h *Hub) Register(ctx context.Context, sessionID string, conn *websocket.Conn, snapshot func() entity.Snapshot) {
	select {
	case h.register <- subscription{sessionID: sessionID, conn: conn, snapshot: snapshot}:
	case <-h.done:
		conn.Close()
	case <-ctx.Done():
	}
}

// Unregister отписывает соединение
func (h *Hub) Unregister(ctx context.Context, sessionID string, conn *websocket.Conn) {
	select {
	case h.unregister <- subscription{sessionID: sessionID, conn: conn}:
	case <-h.done:
	case <-ctx.Done():
	}
}

// TrackedSessions возвращает количество сессий, для которых хаб помнит версию
func (h *Hub) TrackedSessions() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.lastVersion)
}

// ClientCount возвращает количество подключённых соединений
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// advance запоминает версию сессии; false, если уже видели такую же или новее
func (h *Hub) advance(sessionID string, version uint64) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if last, seen := h.lastVersion[sessionID]; seen && version <= last {
		return false
	}
	h.lastVersion[sessionID] = version
	return true
}

func (h *Hub) connections(sessionID string) []*websocket.Conn {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	conns := make([]*websocket.Conn, 0, len(h.clients[sessionID]))
	for conn := range h.clients[sessionID] {
		conns = append(conns, conn)
	}
	return conns
}

// ping держит открытыми соединения, по которым давно ничего не отправлялось
func (h *Hub) ping() {
	type target struct {
		sessionID string
		conn      *websocket.Conn
	}

	h.mutex.RLock()
	targets := make([]target, 0, len(h.clients))
	for sessionID, conns := range h.clients {
		for conn := range conns {
			targets = append(targets, target{sessionID: sessionID, conn: conn})
		}
	}
	h.mutex.RUnlock()

	deadline := time.Now().Add(writeWait)
	for _, t := range targets {
		if err := t.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			h.logger.Warning("Ping to session %s failed: %v", t.sessionID, err)
			h.drop(t.sessionID, t.conn)
		}
	}
}

func (h *Hub) send(sessionID string, conn *websocket.Conn, snap entity.Snapshot) {
	message, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("Error encoding snapshot: %v", err)
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
		h.logger.Error("Error sending snapshot: %v", err)
		h.drop(sessionID, conn)
	}
}

func (h *Hub) drop(sessionID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, ok := h.clients[sessionID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		conn.Close()
	}
	if len(conns) == 0 {
		delete(h.clients, sessionID)
		delete(h.lastVersion, sessionID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for sessionID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, sessionID)
		delete(h.lastVersion, sessionID)
	}
}

// Проверка реализации интерфейса
var _ port.SnapshotPublisher = (*Hub)(nil)
