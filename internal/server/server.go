package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lotas/tabputz/internal/applog"
	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/types"
	"nhooyr.io/websocket"
)

// DefaultRequestTimeout bounds how long a query or close waits for the
// extension to answer.
const DefaultRequestTimeout = 30 * time.Second

// IncomingMsg is a message from the extension: either a lifecycle event
// (Type set) or the answer to a request (ID set).
type IncomingMsg struct {
	Type         string          `json:"type,omitempty"`
	Tab          json.RawMessage `json:"tab,omitempty"`
	Tabs         json.RawMessage `json:"tabs,omitempty"`
	TabID        int             `json:"tabId,omitempty"`
	RemovedTabID int             `json:"removedTabId,omitempty"`
	Area         string          `json:"area,omitempty"`
	// Command response fields
	ID    string `json:"id,omitempty"`
	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// OutgoingMsg is a command to the extension.
type OutgoingMsg struct {
	ID            string `json:"id"`
	Action        string `json:"action"`
	TabIDs        []int  `json:"tabIds,omitempty"`
	CurrentWindow bool   `json:"currentWindow,omitempty"`
	Text          string `json:"text,omitempty"`
	Title         string `json:"title,omitempty"`
	Icon          string `json:"icon,omitempty"`
}

// Status is served on GET /status.
type Status struct {
	Connected bool   `json:"connected"`
	Badge     string `json:"badge"`
	Title     string `json:"title"`
	Icon      string `json:"icon"`
}

// Server manages the WebSocket connection to the extension. It is the tab
// service, the toolbar and the event source of the extension backend.
type Server struct {
	port    int
	timeout time.Duration
	msgs    chan IncomingMsg

	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
	pending map[string]chan IncomingMsg
	last    types.Presentation
}

// New creates a new Server. Port 0 means the caller manages the listener.
func New(port int) *Server {
	return &Server{
		port:    port,
		timeout: DefaultRequestTimeout,
		msgs:    make(chan IncomingMsg, 256),
		pending: make(map[string]chan IncomingMsg),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// SetRequestTimeout changes how long requests wait for an answer.
func (s *Server) SetRequestTimeout(d time.Duration) {
	s.timeout = d
}

// Messages returns the channel of incoming events from the extension.
func (s *Server) Messages() <-chan IncomingMsg {
	return s.msgs
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Send sends a command to the connected extension. Without a connection the
// command is dropped.
func (s *Server) Send(msg OutgoingMsg) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	applog.Debug("ws.send", "action", msg.Action, "id", msg.ID)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Request sends msg with a fresh id and waits for the matching answer.
func (s *Server) Request(ctx context.Context, msg OutgoingMsg) (IncomingMsg, error) {
	msg.ID = uuid.NewString()
	ch := make(chan IncomingMsg, 1)

	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return IncomingMsg{}, host.ErrNotConnected
	}
	s.pending[msg.ID] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, msg.ID)
		s.mu.Unlock()
	}()

	if err := s.Send(msg); err != nil {
		return IncomingMsg{}, fmt.Errorf("send %s: %w", msg.Action, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case resp := <-ch:
		if resp.OK != nil && !*resp.OK {
			return resp, fmt.Errorf("%s: %s", msg.Action, resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		return IncomingMsg{}, fmt.Errorf("waiting for %s response: %w", msg.Action, ctx.Err())
	}
}

// Query asks the extension for its tabs.
func (s *Server) Query(ctx context.Context, currentWindowOnly bool) ([]types.Tab, error) {
	resp, err := s.Request(ctx, OutgoingMsg{Action: "query", CurrentWindow: currentWindowOnly})
	if err != nil {
		return nil, err
	}
	return ParseTabs(resp.Tabs)
}

// Close asks the extension to close the given tabs in one batch.
func (s *Server) Close(ctx context.Context, ids []int) error {
	_, err := s.Request(ctx, OutgoingMsg{Action: "close", TabIDs: ids})
	if err != nil {
		return fmt.Errorf("%w: %v", host.ErrCloseFailed, err)
	}
	return nil
}

func (s *Server) SetBadgeText(_ context.Context, text string) error {
	s.mu.Lock()
	s.last.BadgeText = text
	s.mu.Unlock()
	return s.Send(OutgoingMsg{ID: uuid.NewString(), Action: "badge", Text: text})
}

func (s *Server) SetTitle(_ context.Context, title string) error {
	s.mu.Lock()
	s.last.Tooltip = title
	s.mu.Unlock()
	return s.Send(OutgoingMsg{ID: uuid.NewString(), Action: "title", Title: title})
}

func (s *Server) SetIcon(_ context.Context, icon types.IconVariant) error {
	s.mu.Lock()
	s.last.Icon = icon
	s.mu.Unlock()
	return s.Send(OutgoingMsg{ID: uuid.NewString(), Action: "icon", Icon: icon.String()})
}

// Status reports the connection and the last toolbar state sent.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Connected: s.conn != nil,
		Badge:     s.last.BadgeText,
		Title:     s.last.Tooltip,
		Icon:      s.last.Icon.String(),
	}
}

func (s *Server) enqueue(msg IncomingMsg) {
	select {
	case s.msgs <- msg:
	default:
		applog.Info("ws.drop", "type", msg.Type)
	}
}

// deliver hands a response to the request waiting for it.
func (s *Server) deliver(msg IncomingMsg) bool {
	s.mu.Lock()
	ch, ok := s.pending[msg.ID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- msg:
	default:
	}
	return true
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("ws.accept", err)
			return
		}

		conn.SetReadLimit(16 << 20) // 16 MB, large windows produce big query answers

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)
		s.enqueue(IncomingMsg{Type: "connected"})

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			if msg.Type == "" && msg.ID != "" {
				if !s.deliver(msg) {
					applog.Info("ws.unmatched", "id", msg.ID)
				}
				continue
			}
			applog.Debug("ws.recv", "type", msg.Type)
			s.enqueue(msg)
		}
	})
}

// Router serves the WebSocket endpoint and the local control endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.Handler().ServeHTTP)
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.Status())
	})
	r.Post("/action", func(w http.ResponseWriter, r *http.Request) {
		s.enqueue(IncomingMsg{Type: "action.clicked"})
		w.WriteHeader(http.StatusAccepted)
	})
	return r
}

// ListenAndServe starts the server on the configured loopback port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("server.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Run serves the extension and emits its lifecycle events until ctx is done.
func (s *Server) Run(ctx context.Context, emit func(types.Event)) error {
	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe(ctx) }()
	return s.dispatch(ctx, emit, errc)
}

// dispatch translates queued messages until ctx is done or errc yields.
func (s *Server) dispatch(ctx context.Context, emit func(types.Event), errc <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case msg := <-s.msgs:
			ev, err := Translate(msg)
			if err != nil {
				applog.Error("ws.translate", err, "type", msg.Type)
				continue
			}
			if ev != nil {
				emit(ev)
			}
		}
	}
}
