package cleverdog

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"cleverdog/pkg/envelope"
)

const (
	defaultQueueSize          = 4096
	defaultReconnectPause     = 1 * time.Second
	defaultMaxConnectAttempts = 16
)

// ErrRelayClosed is returned by OnPayload after the relay has shut
// down, either through Close or because the connection attempt cap was
// exhausted.
type ErrRelayClosed struct{}

// Error implements the error interface.
func (e ErrRelayClosed) Error() string {
	return "relay is closed"
}

// RelayStats are delivery statistics of a relay.
type RelayStats struct {
	// payloads accepted onto the queue.
	Enqueued uint64
	// payloads dropped because the queue was full.
	Dropped uint64
	// frames written to the collector.
	Written uint64
}

// Relay forwards media payloads to a remote collector over a
// persistent TCP connection.
//
// OnPayload frames each payload and enqueues it without ever blocking:
// when the queue is full the payload is dropped. A dedicated writer
// owns the connection, drains the queue in order and reconnects after
// failures. Frames dequeued but unwritten when a connection fails are
// lost; ordering across reconnects is preserved.
type Relay struct {
	// Address is the host:port of the collector.
	Address string

	// TLSConfig, when non-nil, wraps every connection in TLS.
	TLSConfig *tls.Config

	// QueueSize is the capacity of the delivery queue.
	// It defaults to 4096.
	QueueSize int

	// ReconnectPause is the pause after a failed connection attempt
	// or a lost connection.
	// It defaults to 1 second.
	ReconnectPause time.Duration

	// MaxConnectAttempts is the number of consecutive failed
	// connection attempts after which the relay gives up. A negative
	// value retries forever.
	// It defaults to 16.
	MaxConnectAttempts int

	// DialContext is used to open connections; it can be overridden
	// in tests. It defaults to a net.Dialer.
	DialContext func(ctx context.Context, network, address string) (net.Conn, error)

	// Log is the logger used by the relay.
	// It defaults to a no-op logger.
	Log *zap.Logger

	ctx       context.Context
	ctxCancel context.CancelFunc
	queue     chan []byte
	done      chan struct{}

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	written  atomic.Uint64
}

// Initialize validates the configuration and starts the connection
// writer.
func (r *Relay) Initialize() error {
	if r.Address == "" {
		return fmt.Errorf("address not provided")
	}
	if r.QueueSize == 0 {
		r.QueueSize = defaultQueueSize
	}
	if r.ReconnectPause == 0 {
		r.ReconnectPause = defaultReconnectPause
	}
	if r.MaxConnectAttempts == 0 {
		r.MaxConnectAttempts = defaultMaxConnectAttempts
	}
	if r.DialContext == nil {
		r.DialContext = (&net.Dialer{}).DialContext
	}
	if r.Log == nil {
		r.Log = zap.NewNop()
	}

	r.ctx, r.ctxCancel = context.WithCancel(context.Background())
	r.queue = make(chan []byte, r.QueueSize)
	r.done = make(chan struct{})

	go r.runWriter()

	return nil
}

// Close stops the writer and waits for it to exit. Queued frames not
// yet written are discarded.
func (r *Relay) Close() {
	r.ctxCancel()
	<-r.done
}

// Stats returns delivery statistics.
func (r *Relay) Stats() RelayStats {
	return RelayStats{
		Enqueued: r.enqueued.Load(),
		Dropped:  r.dropped.Load(),
		Written:  r.written.Load(),
	}
}

// OnPayload frames payload and enqueues it for delivery. It never
// blocks: when the queue is full, the payload is dropped and the drop
// is reported as a warning. It returns ErrRelayClosed once the relay
// has shut down.
func (r *Relay) OnPayload(payload []byte) error {
	select {
	case <-r.done:
		return ErrRelayClosed{}
	default:
	}

	msg, err := envelope.Marshal(payload)
	if err != nil {
		r.Log.Error("failed to encode payload", zap.Error(err))
		return nil
	}

	select {
	case r.queue <- msg:
		r.enqueued.Add(1)
	default:
		r.dropped.Add(1)
		r.Log.Warn("payload dropped due to backpressure")
	}

	return nil
}

func (r *Relay) runWriter() {
	defer close(r.done)

	attempts := 0

	for {
		conn, err := r.connect()
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}

			attempts++
			r.Log.Warn("failed to connect",
				zap.String("address", r.Address),
				zap.Int("attempt", attempts),
				zap.Error(err))

			if r.MaxConnectAttempts > 0 && attempts >= r.MaxConnectAttempts {
				r.Log.Error("connection attempts exhausted, giving up",
					zap.String("address", r.Address))
				return
			}

			if !r.pause() {
				return
			}
			continue
		}

		attempts = 0
		r.Log.Info("connected", zap.String("address", r.Address))

		err = r.drain(conn)
		conn.Close()
		if err == nil {
			return
		}

		r.Log.Warn("connection lost", zap.Error(err))

		if !r.pause() {
			return
		}
	}
}

func (r *Relay) connect() (net.Conn, error) {
	conn, err := r.DialContext(r.ctx, "tcp", r.Address)
	if err != nil {
		return nil, err
	}

	if r.TLSConfig != nil {
		tconn := tls.Client(conn, r.TLSConfig)
		err = tconn.HandshakeContext(r.ctx)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return tconn, nil
	}

	return conn, nil
}

// drain writes queued frames to conn until the connection fails or
// the relay is closed. A nil return means the relay is closed.
func (r *Relay) drain(conn net.Conn) error {
	for {
		select {
		case <-r.ctx.Done():
			return nil

		case msg := <-r.queue:
			_, err := conn.Write(msg)
			if err != nil {
				return err
			}
			r.written.Add(1)
		}
	}
}

// pause waits the reconnection pause. It returns false when the relay
// is closed in the meantime.
func (r *Relay) pause() bool {
	t := time.NewTimer(r.ReconnectPause)
	defer t.Stop()

	select {
	case <-r.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
