// Package envelope contains the binary framing used on the relay wire.
//
// Each frame is a self-describing MessagePack binary value. The length
// prefix width (bin 8, bin 16 or bin 32) is chosen by the encoder based
// on the payload size; decoders handle all three.
package envelope

import (
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MessagePack type markers of the binary family.
const (
	markerBin8  = 0xc4
	markerBin16 = 0xc5
	markerBin32 = 0xc6
)

// ErrTruncated is returned by Decode when the buffer does not contain
// a complete frame yet. It signals that more bytes are needed, not a
// protocol violation.
type ErrTruncated struct{}

// Error implements the error interface.
func (e ErrTruncated) Error() string {
	return "truncated frame"
}

// ErrUnexpectedType is returned by Decode when the frame is not a
// binary value. It is a protocol violation.
type ErrUnexpectedType struct {
	Marker byte
}

// Error implements the error interface.
func (e ErrUnexpectedType) Error() string {
	return fmt.Sprintf("unexpected frame type 0x%02x", e.Marker)
}

// Marshal encodes payload into a frame.
func Marshal(payload []byte) ([]byte, error) {
	if payload == nil {
		payload = []byte{}
	}
	return msgpack.Marshal(payload)
}

// Decode decodes a single frame from the beginning of buf.
// It returns the frame payload and the number of bytes consumed.
// When buf holds a partial frame, it consumes nothing and returns
// ErrTruncated.
func Decode(buf []byte) ([]byte, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrTruncated{}
	}

	var headerSize int
	var payloadSize int

	switch buf[0] {
	case markerBin8:
		headerSize = 2
		if len(buf) < headerSize {
			return nil, 0, ErrTruncated{}
		}
		payloadSize = int(buf[1])

	case markerBin16:
		headerSize = 3
		if len(buf) < headerSize {
			return nil, 0, ErrTruncated{}
		}
		payloadSize = int(binary.BigEndian.Uint16(buf[1:3]))

	case markerBin32:
		headerSize = 5
		if len(buf) < headerSize {
			return nil, 0, ErrTruncated{}
		}
		payloadSize = int(binary.BigEndian.Uint32(buf[1:5]))

	default:
		return nil, 0, ErrUnexpectedType{Marker: buf[0]}
	}

	frameSize := headerSize + payloadSize
	if len(buf) < frameSize {
		return nil, 0, ErrTruncated{}
	}

	var payload []byte
	err := msgpack.Unmarshal(buf[:frameSize], &payload)
	if err != nil {
		return nil, 0, err
	}

	return payload, frameSize, nil
}
