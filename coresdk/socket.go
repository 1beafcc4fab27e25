package coresdk

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Socket wire event types.
const (
	socketTypeMessageNew      = "message.new"
	socketTypeEngagementState = "engagement.state"
	socketTypeMediaUpgrade    = "media.upgrade_offer"
	socketTypeScreenShare     = "screen_share.offer"
	socketTypeQueueUpdate     = "queue.update"
)

// envelope is the canonical socket wire wrapper.
type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	TS      time.Time       `json:"ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SocketObserver maintains the live event stream connection and decodes
// wire envelopes into SocketHandler callbacks. Callbacks are hopped onto
// the session dispatch goroutine; the read loop itself runs on its own
// goroutine and touches no model state.
type SocketObserver struct {
	url      string
	token    string
	clientID string
	handler  SocketHandler
	dispatch DispatchFunc

	mu      sync.Mutex
	conn    *websocket.Conn
	stopped chan struct{}
}

// NewSocketObserver prepares an observer; no connection is opened until
// Start.
func NewSocketObserver(url, token string, handler SocketHandler, dispatch DispatchFunc) *SocketObserver {
	return &SocketObserver{
		url:      url,
		token:    token,
		clientID: uuid.New().String(),
		handler:  handler,
		dispatch: dispatch,
	}
}

// Start opens the connection and begins the read loop. Calling Start on
// an already observing socket is a no-op.
func (s *SocketObserver) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return
	}

	header := map[string][]string{
		"Authorization": {"Bearer " + s.token},
		"X-Client-ID":   {s.clientID},
	}
	conn, _, err := websocket.DefaultDialer.Dial(s.url, header)
	if err != nil {
		slog.Error("socket: dial failed", "url", s.url, "error", err)
		return
	}

	s.conn = conn
	s.stopped = make(chan struct{})
	go s.readLoop(conn, s.stopped)
	slog.Info("socket: observation started", "client_id", s.clientID)
}

// Stop closes the connection and ends the read loop.
func (s *SocketObserver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	close(s.stopped)
	_ = s.conn.Close()
	s.conn = nil
	slog.Info("socket: observation stopped", "client_id", s.clientID)
}

func (s *SocketObserver) readLoop(conn *websocket.Conn, stopped chan struct{}) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			select {
			case <-stopped:
			default:
				slog.Warn("socket: read failed, stream closed", "error", err)
			}
			return
		}
		s.route(env)
	}
}

// route decodes one envelope and forwards it through the handler.
// Unknown types are skipped so the stream can evolve ahead of clients.
func (s *SocketObserver) route(env envelope) {
	switch env.Type {
	case socketTypeMessageNew:
		var msg ChatMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			slog.Warn("socket: malformed message payload", "error", err)
			return
		}
		if s.handler.OnMessage != nil {
			s.dispatch(func() { s.handler.OnMessage(msg) })
		}
	case socketTypeEngagementState:
		var st EngagementStateEvent
		if err := json.Unmarshal(env.Payload, &st); err != nil {
			slog.Warn("socket: malformed engagement state payload", "error", err)
			return
		}
		if s.handler.OnEngagementState != nil {
			s.dispatch(func() { s.handler.OnEngagementState(st) })
		}
	case socketTypeMediaUpgrade:
		var offer MediaOffer
		if err := json.Unmarshal(env.Payload, &offer); err != nil {
			slog.Warn("socket: malformed media offer payload", "error", err)
			return
		}
		if s.handler.OnMediaUpgrade != nil {
			s.dispatch(func() { s.handler.OnMediaUpgrade(offer) })
		}
	case socketTypeScreenShare:
		if s.handler.OnScreenShare != nil {
			s.dispatch(func() { s.handler.OnScreenShare() })
		}
	case socketTypeQueueUpdate:
		var q Queue
		if err := json.Unmarshal(env.Payload, &q); err != nil {
			slog.Warn("socket: malformed queue payload", "error", err)
			return
		}
		if s.handler.OnQueueUpdate != nil {
			s.dispatch(func() { s.handler.OnQueueUpdate(q) })
		}
	default:
		slog.Debug("socket: skipping unknown event type", "type", env.Type)
	}
}
