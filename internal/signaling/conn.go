package signaling

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	sendQueue    = 64
)

// conn owns the write side of one websocket. Messages are queued and
// written by a single goroutine, so Send never blocks on the network.
type conn struct {
	ws     *websocket.Conn
	send   chan Message
	closed chan struct{}
	once   sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	c := &conn{
		ws:     ws,
		send:   make(chan Message, sendQueue),
		closed: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Send queues msg. A peer whose queue is full is too slow to keep and is
// disconnected.
func (c *conn) Send(msg Message) bool {
	select {
	case <-c.closed:
		return false
	case c.send <- msg:
		return true
	default:
		c.Close()
		return false
	}
}

func (c *conn) Close() {
	c.once.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
}

// Done is closed once the connection is closed.
func (c *conn) Done() <-chan struct{} { return c.closed }

func (c *conn) writeLoop() {
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.Close()
				return
			}
		}
	}
}

// flushAndClose writes msg synchronously and closes. Used for the final
// error sent to a client that was never registered.
func flushAndClose(ws *websocket.Conn, msg Message) {
	ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	ws.WriteJSON(msg)
	ws.Close()
}
