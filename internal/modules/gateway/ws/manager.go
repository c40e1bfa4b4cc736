package ws

import (
	"sync"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/config"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/websocket"
)

type CloseReason string

const (
	ReasonWriteError    CloseReason = "write_error"
	ReasonPingError     CloseReason = "ping_error"
	ReasonReadError     CloseReason = "read_error"
	ReasonHandshakeFail CloseReason = "handshake_failed"
	ReasonShutdown      CloseReason = "server_shutdown"
	ReasonBufferFull    CloseReason = "buffer_full"
)

var (
	connNode     *snowflake.Node
	connNodeOnce sync.Once
)

func initConnNode() {
	node, err := snowflake.NewNode(2)
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("failed to create snowflake node for ws connections")
	}
	connNode = node
}

// Connection represents one WebSocket socket. A user may hold several
// at once, one per tab or device.
type Connection struct {
	ID       string
	Identity *service.Identity
	Conn     *websocket.Conn
	Send     chan []byte

	manager   *Manager
	rooms     map[string]struct{} // guarded by manager.mu
	closeOnce sync.Once
}

// UserID returns the authenticated user behind this socket
func (c *Connection) UserID() int64 {
	return c.Identity.UserID
}

// Manager tracks every live connection, the per-user presence sets,
// and the room membership used for fanout.
type Manager struct {
	byID   map[string]*Connection
	byUser map[int64]map[string]*Connection
	rooms  map[string]map[string]*Connection
	mu     sync.RWMutex

	cfg config.WebSocketConfig
}

// NewManager creates an empty connection manager
func NewManager(cfg config.WebSocketConfig) *Manager {
	connNodeOnce.Do(initConnNode)
	return &Manager{
		byID:   make(map[string]*Connection),
		byUser: make(map[int64]map[string]*Connection),
		rooms:  make(map[string]map[string]*Connection),
		cfg:    cfg,
	}
}

// Register adds a connection for an authenticated user. The returned
// flag reports whether this is the user's first live socket; the
// check-and-set happens in one critical section so two sockets racing
// for the same user can never both observe first == true.
func (m *Manager) Register(wsConn *websocket.Conn, identity *service.Identity) (*Connection, bool) {
	c := &Connection{
		ID:       connNode.Generate().String(),
		Identity: identity,
		Conn:     wsConn,
		Send:     make(chan []byte, m.cfg.SendBufferSize),
		manager:  m,
		rooms:    make(map[string]struct{}),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[c.ID] = c
	set, ok := m.byUser[identity.UserID]
	if !ok {
		set = make(map[string]*Connection)
		m.byUser[identity.UserID] = set
	}
	set[c.ID] = c

	return c, len(set) == 1
}

// Unregister removes a connection from the registry and every room it
// joined. It reports whether the user has no sockets left, along with
// the rooms the socket was in, so the caller can announce the user
// going offline. Safe to call more than once; repeats are no-ops.
func (m *Manager) Unregister(c *Connection) (last bool, rooms []string) {
	m.mu.Lock()
	if _, ok := m.byID[c.ID]; !ok {
		m.mu.Unlock()
		return false, nil
	}
	delete(m.byID, c.ID)

	for room := range c.rooms {
		rooms = append(rooms, room)
		if members, ok := m.rooms[room]; ok {
			delete(members, c.ID)
			if len(members) == 0 {
				delete(m.rooms, room)
			}
		}
	}
	c.rooms = make(map[string]struct{})

	if set, ok := m.byUser[c.UserID()]; ok {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(m.byUser, c.UserID())
			last = true
		}
	}
	m.mu.Unlock()

	c.CloseWithReason(ReasonShutdown, nil)
	return last, rooms
}

// JoinRoom subscribes a connection to a room's broadcasts
func (m *Manager) JoinRoom(c *Connection, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[c.ID]; !ok {
		return
	}
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[string]*Connection)
		m.rooms[room] = members
	}
	members[c.ID] = c
	c.rooms[room] = struct{}{}
}

// InRoom reports whether a connection has joined a room
func (m *Manager) InRoom(c *Connection, room string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := c.rooms[room]
	return ok
}

// BroadcastRoom sends a frame to every connection in a room except the
// one identified by exceptID. Pass an empty exceptID to reach everyone.
func (m *Manager) BroadcastRoom(room string, message []byte, exceptID string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, c := range m.rooms[room] {
		if id == exceptID {
			continue
		}
		m.deliver(c, message)
	}
}

// SendTo sends a frame to a single connection
func (m *Manager) SendTo(c *Connection, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.deliver(c, message)
}

// SendToUser sends a frame to every live socket of one user
func (m *Manager) SendToUser(userID int64, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.byUser[userID] {
		m.deliver(c, message)
	}
}

// deliver pushes into the connection's send buffer without blocking.
// A full buffer means the client stopped reading; the socket is closed
// so a stalled peer cannot back up fanout for the whole room.
func (m *Manager) deliver(c *Connection, message []byte) {
	select {
	case c.Send <- message:
	default:
		c.CloseWithReason(ReasonBufferFull, nil)
	}
}

// IsOnline reports whether a user has at least one live socket
func (m *Manager) IsOnline(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.byUser[userID]) > 0
}

// ConnectionCount returns the number of live sockets
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.byID)
}

// Shutdown closes every connection
func (m *Manager) Shutdown() {
	m.mu.Lock()
	conns := make([]*Connection, 0, len(m.byID))
	for _, c := range m.byID {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	for _, c := range conns {
		c.CloseWithReason(ReasonShutdown, nil)
	}
}

// CloseWithReason closes the underlying socket exactly once
func (c *Connection) CloseWithReason(r CloseReason, err error) {
	c.closeOnce.Do(func() {
		evt := logger.WarnGlobal().
			Int64("user_id", c.UserID()).
			Str("conn_id", c.ID).
			Str("reason", string(r))
		if err != nil {
			evt = evt.Err(err)
		}
		evt.Msg("ws connection closed")
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// WritePump pumps frames from the send buffer to the socket and keeps
// the connection alive with periodic pings. One goroutine per socket.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(c.manager.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.manager.cfg.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.CloseWithReason(ReasonWriteError, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.manager.cfg.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.CloseWithReason(ReasonPingError, err)
				return
			}
		}
	}
}

// ReadPump reads frames from the socket and hands them to the gateway.
// It blocks until the peer disconnects or errors, then runs onClose so
// the caller can tear down presence and room state.
func (c *Connection) ReadPump(handleFrame func(*Connection, []byte), onClose func(*Connection)) {
	var readErr error
	defer func() {
		c.CloseWithReason(ReasonReadError, readErr)
		onClose(c)
	}()

	c.Conn.SetReadLimit(c.manager.cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.manager.cfg.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.manager.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				readErr = err
			}
			break
		}

		handleFrame(c, message)
	}
}
