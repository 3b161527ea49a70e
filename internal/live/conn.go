package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of the managed connection slot.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// frame is the wire format of the push channel: the client sends
// subscribe/unsubscribe frames, the server sends message frames whose
// body is the entity payload.
type frame struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic,omitempty"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// DialFunc opens a websocket connection. Swapped out in tests.
type DialFunc func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error)

func defaultDial(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return ws, err
}

// Options configures a Manager.
type Options struct {
	// URL is the websocket endpoint.
	URL string
	// Token authenticates the connection (bearer header). When empty the
	// manager never opens a connection: push updates are an optional
	// enhancement, not a required capability.
	Token string
	// ReconnectDelay is the fixed backoff between reconnect attempts.
	ReconnectDelay time.Duration
	// Dial overrides the websocket dialer.
	Dial DialFunc
	// Logger defaults to the global logger with a component field.
	Logger *zerolog.Logger
}

// Manager owns one push-subscription connection scoped to the currently
// viewed room or auction. Switching the topic tears the previous
// connection down before dialing the new one; at no point are two
// connections live for the same slot. Inbound frames for the active topic
// are normalized and delivered on Events; frames for any other topic, and
// malformed frames, are dropped silently.
type Manager struct {
	url    string
	token  string
	delay  time.Duration
	dial   DialFunc
	logger zerolog.Logger

	events chan Event

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a Manager. No connection is opened until Subscribe.
func NewManager(opts Options) *Manager {
	logger := log.With().Str("component", "live").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	dial := opts.Dial
	if dial == nil {
		dial = defaultDial
	}
	delay := opts.ReconnectDelay
	if delay == 0 {
		delay = 5 * time.Second
	}

	return &Manager{
		url:    opts.URL,
		token:  opts.Token,
		delay:  delay,
		dial:   dial,
		logger: logger,
		events: make(chan Event, 16),
		state:  StateIdle,
	}
}

// Events is the stream of normalized push events for the active topic.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current slot state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe switches the slot to the given topic. Any previous
// connection is torn down first and its goroutine is waited out, so no
// event from the old topic can be delivered after Subscribe returns.
// With no credential token this is a silent no-op.
func (m *Manager) Subscribe(topic string) {
	m.teardown()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return
	}
	if m.token == "" || topic == "" {
		m.state = StateIdle
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.state = StateConnecting

	go m.run(ctx, topic, done)
}

// Close tears down the slot permanently and closes the event stream.
// Safe to call more than once. Teardown waits for the read goroutine,
// the only writer, so closing the channel here cannot race a send.
func (m *Manager) Close() {
	m.teardown()

	m.mu.Lock()
	alreadyClosed := m.state == StateClosed
	m.state = StateClosed
	m.mu.Unlock()

	if !alreadyClosed {
		close(m.events)
	}
}

// teardown cancels the active connection, if any, and waits for its
// goroutine to exit.
func (m *Manager) teardown() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// setState transitions the slot state unless it was closed meanwhile.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state != StateClosed {
		m.state = s
	}
	m.mu.Unlock()
}

// run is the connect/read/reconnect loop for one subscription. It exits
// only when ctx is cancelled.
func (m *Manager) run(ctx context.Context, topic string, done chan struct{}) {
	defer close(done)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+m.token)

	for {
		if ctx.Err() != nil {
			return
		}
		m.setState(StateConnecting)

		ws, err := m.dial(ctx, m.url, header)
		if err != nil {
			m.logger.Debug().Err(err).Str("topic", topic).Msg("dial failed, will retry")
			if !m.sleep(ctx) {
				return
			}
			continue
		}

		if err := ws.WriteJSON(frame{Type: "subscribe", Topic: topic}); err != nil {
			m.logger.Debug().Err(err).Str("topic", topic).Msg("subscribe failed, will retry")
			ws.Close()
			if !m.sleep(ctx) {
				return
			}
			continue
		}
		m.setState(StateConnected)
		m.logger.Debug().Str("topic", topic).Msg("subscribed")

		// close the socket when ctx is cancelled to unblock the reader
		closer := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				ws.Close()
			case <-closer:
			}
		}()

		m.readLoop(ctx, ws, topic)
		close(closer)
		ws.Close()

		if ctx.Err() != nil {
			return
		}
		if !m.sleep(ctx) {
			return
		}
	}
}

// readLoop reads frames until the connection fails. Malformed frames and
// frames for other topics are dropped without surfacing anything.
func (m *Manager) readLoop(ctx context.Context, ws *websocket.Conn, topic string) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Debug().Err(err).Str("topic", topic).Msg("read failed, reconnecting")
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		if f.Type != "message" || f.Topic != topic {
			continue
		}

		ev, ok := Normalize(topic, f.Body)
		if !ok {
			continue
		}

		select {
		case m.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// sleep waits the fixed reconnect delay. Returns false when ctx was
// cancelled during the wait.
func (m *Manager) sleep(ctx context.Context) bool {
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
