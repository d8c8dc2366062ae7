package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
)

// writeWait bounds a single frame write; a client that stops reading its
// socket gets disconnected instead of stalling the writer. Variable so
// tests can shorten it.
var writeWait = 5 * time.Second

const sendQueueSize = 32

// Stream fans projection snapshots out to every connected UI client.
// Every client owns a single writer goroutine fed by a bounded queue, so
// concurrent Broadcast calls never write the same connection and a
// stalled client cannot hold the others up. The control API binds to
// loopback, so connections are not authenticated beyond the upgrade
// itself.
type Stream struct {
	sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// client pairs a connection with its outbound queue. The queue is closed
// exactly once, by removeClient, under the stream's write lock.
type client struct {
	conn *websocket.Conn
	send chan models.WSMessage
}

// writePump is the only goroutine allowed to write the connection. It
// runs until the queue closes or a write fails.
func (c *client) writePump() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			logger.Warn("Stream write failed",
				logger.String("remote", c.conn.RemoteAddr().String()),
				logger.Err(err))
			c.conn.Close()
			return
		}
	}
}

// NewStream creates an empty projection stream
func NewStream() *Stream {
	return &Stream{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the request and blocks until the client disconnects.
// Incoming frames are drained and discarded; the stream is push-only.
func (s *Stream) Handle(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	cl := &client{conn: conn, send: make(chan models.WSMessage, sendQueueSize)}
	s.addClient(cl)
	defer s.removeClient(cl)
	go cl.writePump()

	logger.Info("Stream client connected",
		logger.String("remote", conn.RemoteAddr().String()))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Stream read failed", logger.Err(err))
			}
			return nil
		}
	}
}

// Broadcast enqueues one event for every connected client. A client
// whose queue is full has stopped reading; its connection is closed and
// the read loop unregisters it.
func (s *Stream) Broadcast(event string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to marshal stream payload",
			logger.String("event", event),
			logger.Err(err))
		return
	}
	msg := models.WSMessage{Event: event, Data: raw}

	s.RLock()
	defer s.RUnlock()
	for cl := range s.clients {
		select {
		case cl.send <- msg:
		default:
			logger.Warn("Dropping stalled stream client",
				logger.String("remote", cl.conn.RemoteAddr().String()))
			cl.conn.Close()
		}
	}
}

// ClientCount reports how many clients are attached
func (s *Stream) ClientCount() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.clients)
}

func (s *Stream) addClient(cl *client) {
	s.Lock()
	defer s.Unlock()
	s.clients[cl] = struct{}{}
}

// removeClient drops the client and closes its queue. Broadcast only
// sends while holding the read lock, so no send can race the close.
func (s *Stream) removeClient(cl *client) {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.clients[cl]; !ok {
		return
	}
	delete(s.clients, cl)
	close(cl.send)
}
