package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vidstream-live-public/pkg/logger"
)

// sendBufferSize bounds the per-connection outbound queue; events beyond it
// are dropped rather than stalling a broadcast.
const sendBufferSize = 256

// Client binds one WebSocket connection to a hub. Each inbound frame runs as
// its own goroutine, so a slow persistence call stalls only that call.
type Client struct {
	ws     *websocket.Conn
	send   chan Event
	done   chan struct{}
	hub    *Hub
	caller *Caller
	log    logger.Logger

	closeOnce sync.Once
}

// NewClient registers the connection with the hub, firing its connect hook.
// userID is 0 for anonymous callers.
func NewClient(hub *Hub, ws *websocket.Conn, userID int64, logg logger.Logger) *Client {
	c := &Client{
		ws:   ws,
		send: make(chan Event, sendBufferSize),
		done: make(chan struct{}),
		hub:  hub,
		log:  logg.WithModule("client"),
	}
	c.caller = hub.Connect(uuid.NewString(), userID, c)
	return c
}

// Run pumps frames until the connection drops, then cleans up hub state.
// Blocks; callers run it per connection.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) enqueue(ev Event) bool {
	select {
	case <-c.done:
		return false
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer c.close()

	for {
		var f frame
		if err := c.ws.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Errorf("read conn=%s: %v", c.caller.ConnID, err)
			}
			return
		}

		go c.hub.Dispatch(context.Background(), c.caller, f.Method, f.Payload)
	}
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			if err := c.ws.WriteJSON(ev); err != nil {
				c.log.Errorf("write conn=%s: %v", c.caller.ConnID, err)
				c.close()
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.hub.Disconnect(c.caller)
		close(c.done)
		c.ws.Close()
	})
}
