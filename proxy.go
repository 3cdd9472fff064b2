package cleverdog

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"cleverdog/pkg/envelope"
)

const (
	defaultForwardAddress  = "127.0.0.1:8088"
	defaultProxyBufferSize = 8192
)

// ErrBufferFull is returned when a connection fills the reassembly
// buffer without yielding a decodable frame. The buffer never grows,
// so this is fatal for the connection.
type ErrBufferFull struct{}

// Error implements the error interface.
func (e ErrBufferFull) Error() string {
	return "reassembly buffer full without a decodable frame"
}

// Proxy terminates relay connections and re-emits each decoded payload
// as a UDP datagram toward a fixed downstream address.
//
// Connections are handled independently: a protocol violation on one
// closes that connection only.
type Proxy struct {
	// ListenAddress is the address the TCP listener is bound to.
	ListenAddress string

	// ForwardAddress is the UDP address payloads are re-sent to.
	// It defaults to 127.0.0.1:8088.
	ForwardAddress string

	// BufferSize is the per-connection reassembly buffer size. A
	// frame larger than this cannot be decoded.
	// It defaults to 8192.
	BufferSize int

	// Log is the logger used by the proxy.
	// It defaults to a no-op logger.
	Log *zap.Logger

	ln          net.Listener
	pc          *net.UDPConn
	forwardAddr *net.UDPAddr

	wg     sync.WaitGroup
	mutex  sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

// Initialize binds the listener and the forward socket and starts
// accepting connections.
func (p *Proxy) Initialize() error {
	if p.ListenAddress == "" {
		return fmt.Errorf("listen address not provided")
	}
	if p.ForwardAddress == "" {
		p.ForwardAddress = defaultForwardAddress
	}
	if p.BufferSize == 0 {
		p.BufferSize = defaultProxyBufferSize
	}
	if p.Log == nil {
		p.Log = zap.NewNop()
	}

	forwardAddr, err := net.ResolveUDPAddr("udp", p.ForwardAddress)
	if err != nil {
		return err
	}

	pc, err := net.ListenUDP("udp", nil)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", p.ListenAddress)
	if err != nil {
		pc.Close()
		return err
	}

	p.forwardAddr = forwardAddr
	p.pc = pc
	p.ln = ln
	p.conns = make(map[net.Conn]struct{})

	p.wg.Add(1)
	go p.runListener()

	return nil
}

// Addr returns the address the listener is bound to.
func (p *Proxy) Addr() net.Addr {
	return p.ln.Addr()
}

// Wait blocks until the listener stops.
func (p *Proxy) Wait() {
	p.wg.Wait()
}

// Close stops the listener, closes every active connection and waits
// for all handlers to exit.
func (p *Proxy) Close() {
	p.mutex.Lock()
	p.closed = true
	for conn := range p.conns {
		conn.Close()
	}
	p.mutex.Unlock()

	p.ln.Close()
	p.wg.Wait()
	p.pc.Close()
}

func (p *Proxy) runListener() {
	defer p.wg.Done()

	for {
		conn, err := p.ln.Accept()
		if err != nil {
			return
		}

		p.mutex.Lock()
		if p.closed {
			p.mutex.Unlock()
			conn.Close()
			return
		}
		p.conns[conn] = struct{}{}
		p.mutex.Unlock()

		p.wg.Add(1)
		go p.runConn(conn)
	}
}

func (p *Proxy) runConn(conn net.Conn) {
	defer p.wg.Done()

	p.Log.Info("connection accepted",
		zap.Stringer("remote", conn.RemoteAddr()))

	err := p.handleConn(conn)
	conn.Close()

	p.mutex.Lock()
	delete(p.conns, conn)
	p.mutex.Unlock()

	if err != nil {
		p.Log.Warn("connection terminated",
			zap.Stringer("remote", conn.RemoteAddr()),
			zap.Error(err))
		return
	}

	p.Log.Info("connection closed by peer",
		zap.Stringer("remote", conn.RemoteAddr()))
}

// handleConn reads the byte stream, reassembles frames across
// arbitrary read boundaries and re-emits each payload downstream. A
// nil return means the peer closed the connection.
func (p *Proxy) handleConn(conn net.Conn) error {
	buf := make([]byte, p.BufferSize)
	wr := 0

	for {
		n, err := conn.Read(buf[wr:])

		if n > 0 {
			wr += n

			rd := 0
			for {
				payload, consumed, err2 := envelope.Decode(buf[rd:wr])
				if err2 != nil {
					// a truncated frame is the normal case when a
					// read lands mid-frame; wait for more bytes.
					var et envelope.ErrTruncated
					if errors.As(err2, &et) {
						break
					}
					return err2
				}

				_, err2 = p.pc.WriteToUDP(payload, p.forwardAddr)
				if err2 != nil {
					p.Log.Error("failed to forward payload", zap.Error(err2))
				}

				rd += consumed
			}

			// move the unconsumed remainder down to offset 0.
			// copy is overlap-safe.
			if rd != 0 {
				copy(buf, buf[rd:wr])
				wr -= rd
			}

			if wr == len(buf) {
				return ErrBufferFull{}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
