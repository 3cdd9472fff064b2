package cleverdog

import (
	"fmt"
	"net"
	"time"

	"github.com/pion/rtp"
	"go.uber.org/zap"

	"cleverdog/pkg/control"
)

const (
	defaultKeepAlivePeriod = 1 * time.Second
	defaultVideoSSRC       = 16

	// media datagrams shorter than this cannot contain the vendor
	// prefix plus the RTP header.
	minMediaDatagramSize = 16

	// value of the frame-type byte (index 2 of the vendor prefix)
	// that marks video frames.
	videoFrameType = 1
)

// Session is a single streaming attempt against a located camera.
//
// It sends the start command, then receives media datagrams, filters
// them and forwards accepted payloads to OnPayload, emitting periodic
// keep-alive reports toward the camera. A session performs exactly one
// attempt; callers re-create it to retry after a failure.
type Session struct {
	// Handle is the camera to stream from.
	Handle *CameraHandle

	// OnPayload is called with each accepted media payload (the
	// RTP-framed bytes, vendor prefix stripped). The payload is only
	// valid until the callback returns. Returning an error terminates
	// the session.
	OnPayload func(payload []byte) error

	// SSRC of the camera video track. Packets with another SSRC are
	// discarded. The stock firmware uses a single fixed value; this
	// is a configuration default, not a protocol constant.
	// It defaults to 16.
	SSRC uint32

	// KeepAlivePeriod is the pacing of keep-alive reports.
	// It defaults to 1 second.
	KeepAlivePeriod time.Duration

	// TimeNow returns the current time; it can be overridden in tests.
	// It defaults to time.Now.
	TimeNow func() time.Time

	// Log is the logger used by the session.
	// It defaults to a no-op logger.
	Log *zap.Logger

	pc *net.UDPConn
}

// Initialize binds the receive socket and sends the start command.
func (s *Session) Initialize() error {
	if s.Handle == nil || s.Handle.Addr == nil {
		return fmt.Errorf("camera handle not provided")
	}
	if s.OnPayload == nil {
		return fmt.Errorf("payload callback not provided")
	}
	if s.SSRC == 0 {
		s.SSRC = defaultVideoSSRC
	}
	if s.KeepAlivePeriod == 0 {
		s.KeepAlivePeriod = defaultKeepAlivePeriod
	}
	if s.TimeNow == nil {
		s.TimeNow = time.Now
	}
	if s.Log == nil {
		s.Log = zap.NewNop()
	}

	pc, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return err
	}

	port := pc.LocalAddr().(*net.UDPAddr).Port

	// the argument embeds the local port twice, as a
	// "listen:report" pair.
	args := make([]byte, 0, len(control.ZeroArgument)+16)
	args = append(args, control.ZeroArgument...)
	args = append(args, fmt.Sprintf("%d:%d\x00", port, port)...)

	cmd := control.EncodeCommand(control.OpcodeStartRTP, s.Handle.CID[:], args)

	_, err = pc.WriteToUDP(cmd, s.Handle.Addr)
	if err != nil {
		pc.Close()
		return err
	}

	s.pc = pc
	return nil
}

// Run executes the receive loop. It returns when the socket fails,
// when the payload callback returns an error, or after Close.
func (s *Session) Run() error {
	buf := make([]byte, maxDatagramSize)
	lastReport := s.TimeNow()

	for {
		n, addr, err := s.pc.ReadFromUDP(buf)
		if err != nil {
			return err
		}

		// keep-alives are paced by wall-clock time regardless of
		// what the datagram contains.
		now := s.TimeNow()
		if now.Sub(lastReport) >= s.KeepAlivePeriod {
			lastReport = now
			s.sendKeepAlive(now, addr)
		}

		if n < minMediaDatagramSize {
			continue
		}

		var h rtp.Header
		_, err = h.Unmarshal(buf[4:n])
		if err != nil {
			continue
		}

		if h.Version != 2 {
			continue
		}

		// skip non-video frames.
		if buf[2] != videoFrameType {
			continue
		}

		if h.SSRC != s.SSRC {
			continue
		}

		s.Log.Debug("video packet",
			zap.Uint16("sequenceNumber", h.SequenceNumber),
			zap.Uint32("timestamp", h.Timestamp))

		err = s.OnPayload(buf[4:n])
		if err != nil {
			return err
		}
	}
}

func (s *Session) sendKeepAlive(now time.Time, addr *net.UDPAddr) {
	report, err := encodeSenderReport(now)
	if err != nil {
		s.Log.Warn("failed to encode keep-alive report", zap.Error(err))
		return
	}

	_, err = s.pc.WriteToUDP(report, addr)
	if err != nil {
		s.Log.Warn("failed to send keep-alive report", zap.Error(err))
	}
}

// Close unblocks Run. It is safe to call it from another goroutine.
func (s *Session) Close() {
	s.pc.Close()
}
