// Package natsrpc serves the engine's message protocol over NATS
// request/reply. Deployments embedding the scanner in a service mesh use
// this instead of the local WebSocket endpoint; each request message
// receives exactly one reply on its reply subject, at most once.
package natsrpc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/gateway"
)

const (
	connectTimeout = 5 * time.Second
	reconnectWait  = 2 * time.Second
	maxReconnects  = -1 // retry forever; the engine outlives broker restarts
)

// Responder is the NATS request/reply transport
type Responder struct {
	url        string
	subject    string
	dispatcher *gateway.Dispatcher
	logger     *slog.Logger

	conn *nats.Conn
	sub  *nats.Subscription

	// Lifecycle management
	shutdown    chan struct{}
	done        chan struct{}
	running     bool
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          sync.WaitGroup
}

// NewResponder creates a NATS transport serving subject from url
func NewResponder(url, subject string, dispatcher *gateway.Dispatcher, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		url:        url,
		subject:    subject,
		dispatcher: dispatcher,
		logger:     logger,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Initialize prepares the responder (no-op)
func (r *Responder) Initialize() error {
	return nil
}

// Start connects to the broker and subscribes to the request subject
func (r *Responder) Start(ctx context.Context) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if r.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "NATSResponder", "Start", "check running state")
	}

	conn, err := nats.Connect(r.url,
		nats.Name("uploadguard-engine"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			r.logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			r.logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return errors.WrapTransient(err, "NATSResponder", "Start", fmt.Sprintf("connect to %s", r.url))
	}

	sub, err := conn.Subscribe(r.subject, func(msg *nats.Msg) {
		r.handleRequest(ctx, msg)
	})
	if err != nil {
		conn.Close()
		return errors.WrapTransient(err, "NATSResponder", "Start", fmt.Sprintf("subscribe %s", r.subject))
	}

	r.conn = conn
	r.sub = sub

	r.mu.Lock()
	r.running = true
	r.mu.Unlock()

	r.logger.Info("nats transport serving", "url", r.url, "subject", r.subject)
	return nil
}

// Stop drains the subscription and closes the connection
func (r *Responder) Stop(timeout time.Duration) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if !r.running {
		return nil
	}

	close(r.shutdown)

	if r.sub != nil {
		if err := r.sub.Drain(); err != nil {
			r.logger.Warn("nats subscription drain failed", "error", err)
		}
	}

	waitCh := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(timeout):
		r.conn.Close()
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"NATSResponder", "Stop", "graceful shutdown")
	}

	r.conn.Close()

	r.mu.Lock()
	r.running = false
	close(r.done)
	r.mu.Unlock()
	return nil
}

// handleRequest dispatches one request message. Fire-and-forget messages
// (no reply subject) are processed but their responses are dropped.
func (r *Responder) handleRequest(ctx context.Context, msg *nats.Msg) {
	r.wg.Add(1)
	defer r.wg.Done()

	select {
	case <-r.shutdown:
		return
	default:
	}

	reply, err := r.dispatcher.Dispatch(ctx, msg.Data)
	if err != nil {
		r.logger.Warn("request rejected", "subject", msg.Subject, "error", err)
		reply = gateway.ErrorFrame(err)
	}

	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(reply); err != nil {
		r.logger.Debug("nats reply failed", "subject", msg.Subject, "error", err)
	}
}
