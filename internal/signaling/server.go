package signaling

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// readTimeout drops clients that stop pinging.
const readTimeout = 2 * PingInterval

// Server relays signaling messages between registered clients. The first
// message on every connection must be a register carrying an ID no other
// live client holds.
type Server struct {
	Upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]*peer
}

type peer struct {
	*conn
	id         string
	clientType string
}

// NewServer returns an empty relay.
func NewServer(logger *slog.Logger) *Server {
	return &Server{
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[string]*peer),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("signaling upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	ws.SetReadDeadline(time.Now().Add(readTimeout))
	var first Message
	if err := ws.ReadJSON(&first); err != nil {
		s.logger.Warn("signaling client went away before registering", "remote", r.RemoteAddr, "error", err)
		ws.Close()
		return
	}
	if first.Type != TypeRegister || first.ID == "" {
		flushAndClose(ws, errorMessage("first message must be register with an id"))
		return
	}
	if first.ClientType != ClientTypeHost && first.ClientType != ClientTypeController {
		flushAndClose(ws, errorMessage(fmt.Sprintf("unknown client type %q", first.ClientType)))
		return
	}
	if !s.claim(first.ID) {
		flushAndClose(ws, errorMessage(fmt.Sprintf("id %s already registered", first.ID)))
		return
	}

	p := &peer{conn: newConn(ws), id: first.ID, clientType: first.ClientType}
	s.mu.Lock()
	s.clients[p.id] = p
	s.mu.Unlock()
	defer s.unregister(p)

	logger := s.logger.With("id", p.id, "type", p.clientType, "remote", r.RemoteAddr)
	logger.Info("signaling client registered")
	p.Send(Message{Type: TypeRegistered, ID: p.id, Timestamp: time.Now().UnixMilli()})
	if p.clientType == ClientTypeHost {
		s.broadcastHosts()
	}

	for {
		ws.SetReadDeadline(time.Now().Add(readTimeout))
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			logger.Info("signaling client disconnected", "error", err)
			return
		}
		switch msg.Type {
		case TypeOffer, TypeAnswer:
			s.relay(p, msg, logger)
		case TypeListHosts:
			p.Send(Message{Type: TypeHosts, List: s.hosts()})
		case TypePing:
			p.Send(Message{Type: TypePong, Timestamp: msg.Timestamp})
		default:
			p.Send(errorMessage(fmt.Sprintf("unsupported message type %q", msg.Type)))
		}
	}
}

func (s *Server) relay(from *peer, msg Message, logger *slog.Logger) {
	s.mu.Lock()
	target := s.clients[msg.Target]
	s.mu.Unlock()
	if target == nil {
		from.Send(errorMessage("unknown target " + msg.Target))
		return
	}
	logger.Debug("relaying", "message", msg.Type, "target", msg.Target)
	target.Send(Message{Type: msg.Type, From: from.id, Payload: msg.Payload})
}

// claim reserves id. The slot holds nil until the peer is stored.
func (s *Server) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.clients[id]; taken {
		return false
	}
	s.clients[id] = nil
	return true
}

func (s *Server) unregister(p *peer) {
	p.Close()
	s.mu.Lock()
	if s.clients[p.id] == p {
		delete(s.clients, p.id)
	}
	s.mu.Unlock()
	if p.clientType != ClientTypeHost {
		return
	}
	for _, c := range s.controllers() {
		c.Send(Message{Type: TypeHostDisconnected, HostID: p.id})
	}
	s.broadcastHosts()
}

func (s *Server) hosts() []HostInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []HostInfo{}
	for id, c := range s.clients {
		if c != nil && c.clientType == ClientTypeHost {
			list = append(list, HostInfo{ID: id, Online: true})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *Server) controllers() []*peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*peer
	for _, c := range s.clients {
		if c != nil && c.clientType == ClientTypeController {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) broadcastHosts() {
	list := s.hosts()
	for _, c := range s.controllers() {
		c.Send(Message{Type: TypeHostsUpdated, List: list})
	}
}
