package search

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"studiofinder/internal/discovery"
	"studiofinder/internal/pkg/response"
	"studiofinder/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

const (
	EventSnapshot = "snapshot"
	EventPong     = "pong"
	EventClosed   = "closed"
	EventError    = "error"
)

// StreamEvent is one server-to-client websocket message.
type StreamEvent struct {
	Type     string              `json:"type"`
	Snapshot *discovery.Snapshot `json:"snapshot,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// Stream pushes engine snapshots to websocket clients.
type Stream struct {
	store    *session.Store
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewStream(store *session.Store, log *slog.Logger) *Stream {
	return &Stream{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The session token already gates the handshake.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// client holds at most one pending snapshot. A newer snapshot replaces an
// unsent one and an older revision never replaces a newer one, so a slow
// reader only ever skips to the latest state. Control frames queue
// separately and go out before the snapshot.
type client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	frames [][]byte
	snap   []byte
	latest uint64
	notify chan struct{}
}

func (c *client) offerSnapshot(snap discovery.Snapshot) {
	c.mu.Lock()
	if snap.Revision < c.latest {
		c.mu.Unlock()
		return
	}
	c.latest = snap.Revision
	c.snap = encodeEvent(StreamEvent{Type: EventSnapshot, Snapshot: &snap})
	c.mu.Unlock()
	c.wake()
}

func (c *client) offer(frame []byte) {
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
	c.wake()
}

func (c *client) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *client) take() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.frames
	c.frames = nil
	if c.snap != nil {
		out = append(out, c.snap)
		c.snap = nil
	}
	return out
}

// Serve handles GET /api/v1/search/sessions/:id/stream
func (s *Stream) Serve(c *gin.Context) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "Session not found")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "session_id", sess.ID, "error", err)
		return
	}

	cl := &client{conn: conn, notify: make(chan struct{}, 1)}
	s.register(cl)
	detach := sess.Attach()
	initial, unsubscribe := sess.Engine.SubscribeWithSnapshot(cl.offerSnapshot)
	cl.offerSnapshot(initial)

	s.log.Debug("stream connected", "session_id", sess.ID)
	defer func() {
		unsubscribe()
		detach()
		s.unregister(cl)
		s.store.Touch(sess.ID)
		conn.Close()
		s.log.Debug("stream disconnected", "session_id", sess.ID)
	}()

	done := make(chan struct{})
	go s.writePump(cl, sess.Engine.Done(), done)
	s.readPump(cl, sess)
	close(done)
}

// Connections returns the number of open streams.
func (s *Stream) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close drops every open stream.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cl := range s.clients {
		_ = cl.conn.Close()
		delete(s.clients, cl)
	}
}

func (s *Stream) register(cl *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[cl] = struct{}{}
}

func (s *Stream) unregister(cl *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, cl)
}

func (s *Stream) readPump(cl *client, sess *session.Session) {
	cl.conn.SetReadLimit(maxMsgSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("stream read error", "session_id", sess.ID, "error", err)
			}
			return
		}
		s.store.Touch(sess.ID)

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			cl.offer(encodeEvent(StreamEvent{Type: EventError, Message: "invalid message"}))
			continue
		}

		switch msg.Type {
		case "ping":
			cl.offer(encodeEvent(StreamEvent{Type: EventPong}))
		case "snapshot":
			cl.offerSnapshot(sess.Engine.Snapshot())
		default:
			cl.offer(encodeEvent(StreamEvent{Type: EventError, Message: "unknown message type: " + msg.Type}))
		}
	}
}

func (s *Stream) writePump(cl *client, sessionDone <-chan struct{}, readerDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case <-cl.notify:
			for _, frame := range cl.take() {
				_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := cl.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sessionDone:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = cl.conn.WriteMessage(websocket.TextMessage, encodeEvent(StreamEvent{Type: EventClosed, Message: "session closed"}))
			_ = cl.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
			return
		case <-readerDone:
			return
		}
	}
}

func encodeEvent(ev StreamEvent) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		data, _ = json.Marshal(StreamEvent{Type: EventError, Message: "encode failed"})
	}
	return data
}
