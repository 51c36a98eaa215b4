// internal/realtime/gateway.go
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// command is one outbound frame to the multiplayer gateway.
type command struct {
	Op        string `json:"op"` // "message", "invite", "referee_add", "referee_remove"
	SessionID string `json:"session_id"`
	Handle    string `json:"handle,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Gateway speaks the multiplayer protocol over a single WebSocket to the
// session gateway. Commands are serialized onto the socket; lifecycle events
// stream out of Events until Close.
//
// A dropped connection is redialed with backoff. Before redialing, an
// EventReset is emitted so consumers discard state the dead stream fed them;
// the gateway replays current session state once the subscription is back.
type Gateway struct {
	url    string
	logger *logrus.Logger

	writeMu sync.Mutex

	mu   sync.RWMutex
	conn *websocket.Conn

	events chan Event

	closed    chan struct{}
	closeOnce sync.Once
}

// DialGateway connects to the gateway and starts the read pump. The initial
// dial fails fast; reconnects after that are handled internally.
func DialGateway(ctx context.Context, url string, logger *logrus.Logger) (*Gateway, error) {
	g := &Gateway{
		url:    url,
		logger: logger,
		events: make(chan Event, 64),
		closed: make(chan struct{}),
	}

	conn, err := g.dial(ctx)
	if err != nil {
		return nil, err
	}
	g.conn = conn
	go g.run()

	logger.Infof("Connected to session gateway at %s", url)
	return g, nil
}

func (g *Gateway) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, g.url, &websocket.DialOptions{
		Subprotocols: []string{"arbiter"},
	})
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}
	return conn, nil
}

// run drives the read pump across reconnects. The events channel only closes
// on Close, never on a connection drop.
func (g *Gateway) run() {
	defer close(g.events)

	for {
		err := g.readPump()

		select {
		case <-g.closed:
			g.logger.Info("gateway connection closed")
			return
		default:
		}

		g.logger.Warnf("gateway connection lost: %v", err)
		g.emit(Event{Type: EventReset})

		if !g.redial() {
			return
		}
	}
}

// readPump decodes event frames until the current connection dies.
func (g *Gateway) readPump() error {
	ctx := context.Background()
	for {
		g.mu.RLock()
		conn := g.conn
		g.mu.RUnlock()

		typ, msg, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			g.logger.Warnf("bad gateway frame: %v", err)
			continue
		}
		g.emit(ev)
	}
}

func (g *Gateway) emit(ev Event) {
	select {
	case g.events <- ev:
	default:
		// Slow consumer; dropping a stale presence event is preferable to
		// blocking the read pump.
		g.logger.WithField("type", ev.Type).Warn("event buffer full, dropping event")
	}
}

// redial reconnects with backoff, returning false once the gateway closes.
func (g *Gateway) redial() bool {
	delay := time.Second
	for {
		select {
		case <-g.closed:
			return false
		case <-time.After(delay):
		}

		conn, err := g.dial(context.Background())
		if err != nil {
			g.logger.Warnf("gateway reconnect failed: %v", err)
			delay = min(delay*2, 30*time.Second)
			continue
		}

		g.mu.Lock()
		g.conn = conn
		g.mu.Unlock()
		g.logger.Info("reconnected to session gateway")
		return true
	}
}

// Events implements SessionClient.
func (g *Gateway) Events() <-chan Event {
	return g.events
}

// GetChannel implements SessionClient. The gateway multiplexes all sessions
// over one socket, so this never fails locally; an unknown session surfaces
// as a command error from the gateway side.
func (g *Gateway) GetChannel(ctx context.Context, sessionID string) (Channel, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("empty session id")
	}
	return &gatewayChannel{g: g, sessionID: sessionID}, nil
}

// send writes one command frame, serialized under the write lock. While the
// gateway is between connections the write fails against the dead socket and
// the caller sees the error.
func (g *Gateway) send(ctx context.Context, cmd command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g.mu.RLock()
	conn := g.conn
	g.mu.RUnlock()

	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write %s command: %w", cmd.Op, err)
	}
	return nil
}

// Close tears the gateway connection down for good; no reconnect follows.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() { close(g.closed) })

	g.mu.RLock()
	conn := g.conn
	g.mu.RUnlock()
	return conn.Close(websocket.StatusNormalClosure, "shutting down")
}

// gatewayChannel addresses one session over the shared gateway socket.
type gatewayChannel struct {
	g         *Gateway
	sessionID string
}

func (c *gatewayChannel) SendMessage(ctx context.Context, text string) error {
	return c.g.send(ctx, command{Op: "message", SessionID: c.sessionID, Text: text})
}

func (c *gatewayChannel) InvitePlayer(ctx context.Context, handle string) error {
	return c.g.send(ctx, command{Op: "invite", SessionID: c.sessionID, Handle: handle})
}

func (c *gatewayChannel) GrantReferee(ctx context.Context, handle string) error {
	return c.g.send(ctx, command{Op: "referee_add", SessionID: c.sessionID, Handle: handle})
}

func (c *gatewayChannel) RevokeReferee(ctx context.Context, handle string) error {
	return c.g.send(ctx, command{Op: "referee_remove", SessionID: c.sessionID, Handle: handle})
}
