package cleverdog

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"cleverdog/pkg/control"
)

const (
	defaultBroadcastAddress = "255.255.255.255:10008"
	defaultReadTimeout      = 1 * time.Second

	// maximum size of a datagram exchanged with the camera.
	maxDatagramSize = 4096
)

// ErrWrongDevice is returned when a scan reply does not carry the
// protocol magic, meaning that another device answered the scan.
type ErrWrongDevice struct {
	Addr net.Addr
	Err  error
}

// Error implements the error interface.
func (e ErrWrongDevice) Error() string {
	return fmt.Sprintf("wrong device at %v: %v", e.Addr, e.Err)
}

// Unwrap returns the wrapped error.
func (e ErrWrongDevice) Unwrap() error {
	return e.Err
}

// Discoverer locates a camera on the local network by broadcasting a
// scan command and waiting for a reply.
type Discoverer struct {
	// BroadcastAddress is the address the scan command is sent to.
	// The default endpoint is tied to the stock firmware; override it
	// for cameras configured on a different port.
	// It defaults to 255.255.255.255:10008.
	BroadcastAddress string

	// ReadTimeout is the amount of time to wait for a valid reply.
	// It defaults to 1 second.
	ReadTimeout time.Duration

	// Log is the logger used by the discoverer.
	// It defaults to a no-op logger.
	Log *zap.Logger
}

func (d *Discoverer) setDefaults() {
	if d.BroadcastAddress == "" {
		d.BroadcastAddress = defaultBroadcastAddress
	}
	if d.ReadTimeout == 0 {
		d.ReadTimeout = defaultReadTimeout
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
}

// Discover broadcasts a single scan command and waits for the first
// reply that decodes into a camera identity. Unrelated traffic is
// skipped; a reply without the protocol magic aborts with
// ErrWrongDevice. There are no internal retries: callers control the
// retry policy.
func (d *Discoverer) Discover() (*CameraHandle, error) {
	d.setDefaults()

	raddr, err := net.ResolveUDPAddr("udp4", d.BroadcastAddress)
	if err != nil {
		return nil, err
	}

	pc, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, err
	}
	defer pc.Close()

	cmd := control.EncodeCommand(control.OpcodeScan, nil, control.ZeroArgument)

	_, err = pc.WriteToUDP(cmd, raddr)
	if err != nil {
		return nil, err
	}

	err = pc.SetReadDeadline(time.Now().Add(d.ReadTimeout))
	if err != nil {
		return nil, err
	}

	buf := make([]byte, maxDatagramSize)

	for {
		n, addr, err := pc.ReadFromUDP(buf)
		if err != nil {
			return nil, err
		}

		reply, err := control.DecodeScanReply(buf[:n])
		if err != nil {
			var em control.ErrMalformedReply
			if errors.As(err, &em) {
				return nil, ErrWrongDevice{Addr: addr, Err: err}
			}

			d.Log.Debug("skipping datagram",
				zap.Stringer("address", addr),
				zap.Error(err))
			continue
		}

		return &CameraHandle{
			Addr:    addr,
			CID:     reply.CID,
			MAC:     reply.MAC,
			Version: reply.Version,
		}, nil
	}
}
