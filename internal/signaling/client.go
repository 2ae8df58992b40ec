// Package signaling is the rendezvous used by the WebRTC transport: a
// websocket relay that forwards SDP offers and answers between a host and
// a controller identified by ID.
package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// PingInterval is how often clients send a keepalive.
const PingInterval = 25 * time.Second

// ErrNotConnected is returned when sending before Connect or after the
// connection is gone.
var ErrNotConnected = errors.New("signaling: not connected")

// Handler receives relayed messages. Callbacks run on the client's read
// goroutine and must not block. Nil callbacks are skipped.
type Handler struct {
	OnRegistered       func()
	OnOffer            func(from string, payload json.RawMessage)
	OnAnswer           func(from string, payload json.RawMessage)
	OnHostsUpdated     func(hosts []HostInfo)
	OnHostDisconnected func(hostID string)
	OnError            func(text string)
}

// Client is one registration with the relay.
type Client struct {
	url        string
	id         string
	clientType string
	handler    Handler
	logger     *slog.Logger

	conn  *conn
	ready chan struct{}
}

// NewClient creates a client that registers as id with the given role.
func NewClient(url, id, clientType string, handler Handler, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		id:         id,
		clientType: clientType,
		handler:    handler,
		logger:     logger.With("signaling", url, "id", id),
		ready:      make(chan struct{}),
	}
}

// ID returns the ID the client registers under.
func (c *Client) ID() string { return c.id }

// Connect dials the relay, sends the registration, and starts the read
// and keepalive loops. Registration is confirmed asynchronously through
// Handler.OnRegistered.
func (c *Client) Connect(ctx context.Context) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("signaling dial %s: %w", c.url, err)
	}
	c.conn = newConn(ws)
	close(c.ready)
	c.conn.Send(Message{Type: TypeRegister, ID: c.id, ClientType: c.clientType})

	go c.readLoop(ws)
	go c.pingLoop()
	return nil
}

// Done is closed once the connection is gone. It never closes before
// Connect succeeds.
func (c *Client) Done() <-chan struct{} {
	select {
	case <-c.ready:
		return c.conn.Done()
	default:
		return nil
	}
}

// Close disconnects from the relay.
func (c *Client) Close() {
	select {
	case <-c.ready:
		c.conn.Close()
	default:
	}
}

// SendOffer relays an SDP offer to target.
func (c *Client) SendOffer(target string, payload json.RawMessage) error {
	return c.send(Message{Type: TypeOffer, Target: target, Payload: payload})
}

// SendAnswer relays an SDP answer to target.
func (c *Client) SendAnswer(target string, payload json.RawMessage) error {
	return c.send(Message{Type: TypeAnswer, Target: target, Payload: payload})
}

// RequestHostList asks the relay for the registered hosts; the reply
// arrives through Handler.OnHostsUpdated.
func (c *Client) RequestHostList() error {
	return c.send(Message{Type: TypeListHosts})
}

func (c *Client) send(msg Message) error {
	select {
	case <-c.ready:
	default:
		return ErrNotConnected
	}
	if !c.conn.Send(msg) {
		return ErrNotConnected
	}
	return nil
}

func (c *Client) readLoop(ws *websocket.Conn) {
	defer c.conn.Close()
	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			select {
			case <-c.conn.Done():
			default:
				c.logger.Warn("signaling connection lost", "error", err)
			}
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	h := c.handler
	switch msg.Type {
	case TypeRegistered:
		c.logger.Debug("registered with signaling relay")
		if h.OnRegistered != nil {
			h.OnRegistered()
		}
	case TypeOffer:
		if h.OnOffer != nil {
			h.OnOffer(msg.From, msg.Payload)
		}
	case TypeAnswer:
		if h.OnAnswer != nil {
			h.OnAnswer(msg.From, msg.Payload)
		}
	case TypeHosts, TypeHostsUpdated:
		if h.OnHostsUpdated != nil {
			h.OnHostsUpdated(msg.List)
		}
	case TypeHostDisconnected:
		if h.OnHostDisconnected != nil {
			h.OnHostDisconnected(msg.HostID)
		}
	case TypeError:
		c.logger.Warn("signaling relay error", "message", msg.Text)
		if h.OnError != nil {
			h.OnError(msg.Text)
		}
	case TypePong:
	default:
		c.logger.Debug("ignoring signaling message", "type", msg.Type)
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.conn.Done():
			return
		case <-ticker.C:
			c.conn.Send(Message{Type: TypePing, Timestamp: time.Now().UnixMilli()})
		}
	}
}
