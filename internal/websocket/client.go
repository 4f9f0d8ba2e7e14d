package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 10 * time.Second

	// a subscriber that answers no ping within idleTimeout is dropped
	idleTimeout  = 60 * time.Second
	pingInterval = (idleTimeout * 9) / 10

	// subscribers never send data, so anything beyond a control frame is refused
	inboundLimit = 512

	// events queued per subscriber before it counts as stalled
	sendBufferSize = 256

	closeReasonGroupClosed = "group closed"
)

// Client is one browser watching a single group's event stream.
// Events flow one way, from the hub to the browser.
type Client struct {
	id        string
	groupID   uuid.UUID
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection subscribed to groupID
func NewClient(conn *websocket.Conn, groupID uuid.UUID, hub *Hub) *Client {
	return &Client{
		id:      uuid.New().String(),
		groupID: groupID,
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, sendBufferSize),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) GroupID() uuid.UUID {
	return c.groupID
}

// Send queues an encoded event. It never blocks: a subscriber whose
// queue is full gets ErrClientClosed and the hub drops it.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close stops delivery and drops the connection. Repeated calls are no-ops.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) logEvent(e *zerolog.Event) *zerolog.Event {
	return e.Str("client_id", c.id).Str("group_id", c.groupID.String())
}

// AwaitDisconnect blocks until the browser goes away or stops answering
// pings, then unsubscribes the client. Inbound payloads are discarded.
func (c *Client) AwaitDisconnect() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(inboundLimit)
	c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logEvent(log.Warn()).Err(err).Msg("Subscriber disconnected unexpectedly")
			}
			return
		}
	}
}

// Deliver writes queued events to the browser and keeps the connection
// alive with pings. When the queue is closed it sends a close frame
// telling the browser the group is gone.
func (c *Client) Deliver() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, closeReasonGroupClosed))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				c.logEvent(log.Warn()).Err(err).Msg("Event delivery failed")
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
