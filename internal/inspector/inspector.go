// Package inspector serves the instance registry over HTTP and websocket so
// a remote tool can watch and edit live effect configurations.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/schema"
)

const (
	writeWait  = 2 * time.Second
	sendBuffer = 16
)

type Config struct {
	Logger *log.Logger
}

// Server broadcasts a registry snapshot to every websocket subscriber after
// each accepted change and applies edits sent by them.
type Server struct {
	reg      *registry.Registry
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

type clientMessage struct {
	Type   string       `json:"type"`
	ID     string       `json:"id"`
	Config schema.Patch `json:"config,omitempty"`
	JSON   string       `json:"json,omitempty"`
}

type snapshotMessage struct {
	Type      string              `json:"type"`
	Instances []registry.Instance `json:"instances"`
}

type errorMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// New returns a server over reg and subscribes it to registry changes.
func New(reg *registry.Registry, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		reg:    reg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subs: make(map[*subscriber]struct{}),
	}
	reg.Subscribe(s.broadcast)
	return s
}

// Handler routes /instances, /schema/{kind} and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /instances", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.reg.Instances())
	})
	mux.HandleFunc("GET /schema/{kind}", func(w http.ResponseWriter, r *http.Request) {
		kind := schema.Kind(r.PathValue("kind"))
		if !schema.Known(kind) {
			http.Error(w, "unknown kind", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, schema.Fields(kind))
	})
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.logger.Printf("[inspector] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Subscribers returns the number of connected websocket clients.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[inspector] upgrade failed: %v", err)
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}

	data, err := s.snapshot()
	if err != nil {
		s.logger.Printf("[inspector] failed to marshal snapshot: %v", err)
		conn.Close()
		return
	}
	s.mu.Lock()
	sub.send <- data
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go s.writeLoop(sub)
	s.readLoop(sub)
}

func (s *Server) readLoop(sub *subscriber) {
	defer s.drop(sub)
	for {
		_, payload, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Printf("[inspector] discarding malformed message: %v", err)
			continue
		}
		if err := s.apply(msg); err != nil {
			s.logger.Printf("[inspector] rejected %s for %s: %v", msg.Type, msg.ID, err)
			s.reply(sub, errorMessage{Type: "error", ID: msg.ID, Error: err.Error()})
		}
	}
}

var errUnknownMessage = errors.New("unknown message type")

func (s *Server) apply(msg clientMessage) error {
	switch msg.Type {
	case "update":
		return s.reg.UpdateConfig(msg.ID, msg.Config)
	case "import":
		return s.reg.Import(msg.ID, []byte(msg.JSON))
	}
	return errUnknownMessage
}

func (s *Server) writeLoop(sub *subscriber) {
	defer sub.conn.Close()
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Printf("[inspector] write failed: %v", err)
			s.drop(sub)
			return
		}
	}
	sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) drop(sub *subscriber) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
	sub.close()
}

func (s *Server) reply(sub *subscriber, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.enqueue(sub, data)
}

// enqueue never blocks the caller; a subscriber that cannot keep up is
// disconnected.
func (s *Server) enqueue(sub *subscriber, data []byte) {
	s.mu.Lock()
	_, live := s.subs[sub]
	if live {
		select {
		case sub.send <- data:
		default:
			delete(s.subs, sub)
			live = false
			sub.close()
		}
	}
	s.mu.Unlock()
	if !live {
		sub.conn.Close()
	}
}

// broadcast runs on whichever goroutine mutated the registry, usually the
// frame loop, so it only queues.
func (s *Server) broadcast() {
	data, err := s.snapshot()
	if err != nil {
		s.logger.Printf("[inspector] failed to marshal snapshot: %v", err)
		return
	}
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		s.enqueue(sub, data)
	}
}

func (s *Server) snapshot() ([]byte, error) {
	return json.Marshal(snapshotMessage{Type: "snapshot", Instances: s.reg.Instances()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[inspector] failed to write response: %v", err)
	}
}
