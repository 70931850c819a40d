package logstream

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
)

// Channel is a push channel shared by every stream.
type Channel interface {
	// Subscribe registers handler for every incoming event. The returned function removes it.
	Subscribe(handler func(Event)) (cancel func())
	// Emit sends an event to the server.
	Emit(ev Event) error
}

var ErrNotConnected = errors.New("channel not connected")

type handlers struct {
	mu   sync.RWMutex
	next int
	set  map[int]func(Event)
}

func (h *handlers) add(handler func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.set == nil {
		h.set = make(map[int]func(Event))
	}

	id := h.next
	h.next++
	h.set[id] = handler

	var once sync.Once

	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.set, id)
		})
	}
}

func (h *handlers) deliver(ev Event) {
	h.mu.RLock()
	res := make([]func(Event), 0, len(h.set))
	for id := 0; id < h.next; id++ {
		if handler, ok := h.set[id]; ok {
			res = append(res, handler)
		}
	}
	h.mu.RUnlock()

	for _, handler := range res {
		handler(ev)
	}
}

// SocketChannel is a Channel over a socket.io namespace.
type SocketChannel struct {
	cfg      Config
	logger   *slog.Logger
	io       *socket.Socket
	handlers handlers
}

// DialSocket connects to the namespace of cfg and waits for the connection, at most cfg.ConnectTimeout.
func DialSocket(ctx context.Context, cfg Config) (*SocketChannel, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse stream URL")
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}

	if cfg.InsecureSkipVerify {
		logger.Warn("skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in for local clusters
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	c := &SocketChannel{
		cfg:    cfg,
		logger: logger,
		io:     manager.Socket(cfg.Namespace, opts),
	}

	connected := make(chan error, 1)
	signal := func(err error) {
		select {
		case connected <- err:
		default:
		}
	}

	c.io.On(types.EventName("connect"), func(...any) {
		logger.Info("stream connected", "sid", c.io.Id())
		signal(nil)
	})
	c.io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection refused")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}

		logger.Warn("stream connection failed", "error", err)
		signal(err)
	})
	c.io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Debug("stream disconnected", "reason", reason)
	})
	c.io.On(types.EventName(cfg.Event), c.receive)

	c.io.Connect()

	waitCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	select {
	case <-waitCtx.Done():
		c.io.Disconnect()

		return nil, errors.Wrap(waitCtx.Err(), "timed out while waiting for the stream connection")
	case err := <-connected:
		if err != nil {
			c.io.Disconnect()

			return nil, errors.Wrap(err, "unable to connect to the stream")
		}
	}

	return c, nil
}

func (c *SocketChannel) receive(data ...any) {
	if len(data) == 0 {
		return
	}

	ev, err := decodeEvent(data[0])
	if err != nil {
		c.logger.Debug("dropping malformed stream event", "error", err)

		return
	}

	c.handlers.deliver(ev)
}

// decodeEvent accepts the payload either as a JSON string or as the object decoded by the socket.io parser.
func decodeEvent(payload any) (Event, error) {
	var ev Event

	switch raw := payload.(type) {
	case string:
		if err := sonic.UnmarshalString(raw, &ev); err != nil {
			return ev, errors.Wrap(err, "unable to decode event")
		}
	case []byte:
		if err := sonic.Unmarshal(raw, &ev); err != nil {
			return ev, errors.Wrap(err, "unable to decode event")
		}
	default:
		buf, err := sonic.Marshal(raw)
		if err != nil {
			return ev, errors.Wrap(err, "unable to encode event payload")
		}

		if err := sonic.Unmarshal(buf, &ev); err != nil {
			return ev, errors.Wrap(err, "unable to decode event")
		}
	}

	if ev.Action == "" {
		return ev, errors.New("event without action")
	}

	return ev, nil
}

func (c *SocketChannel) Subscribe(handler func(Event)) func() {
	return c.handlers.add(handler)
}

func (c *SocketChannel) Emit(ev Event) error {
	if !c.io.Connected() {
		return ErrNotConnected
	}

	return errors.Wrap(c.io.Emit(c.cfg.Event, ev), "unable to emit event")
}

// Close disconnects the socket.
func (c *SocketChannel) Close() error {
	c.io.Disconnect()

	return nil
}

var _ Channel = (*SocketChannel)(nil)
