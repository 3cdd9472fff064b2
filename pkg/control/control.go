// Package control contains the encoder and decoder of the camera control protocol.
package control

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"cleverdog/pkg/firmware"
	"cleverdog/pkg/mac"
)

// Magic is the constant that opens every control packet.
// Big-endian integer representation of the [0x4d, 0x4a] byte pair.
const Magic uint16 = 0x4d4a

// CIDSize is the size of the camera identifier field of a control packet.
const CIDSize = 16

// a cid longer than this is truncated; a shorter one is padded with
// ASCII '0' up to this length, followed by a NUL terminator.
const cidPayloadSize = CIDSize - 1

// Opcode is the operation code of a control packet.
type Opcode uint16

// supported opcodes.
const (
	OpcodeScan      Opcode = 0x1004
	OpcodeScanReply Opcode = 0x100e
	OpcodeStartRTP  Opcode = 0x1007
)

// String implements fmt.Stringer.
func (op Opcode) String() string {
	switch op {
	case OpcodeScan:
		return "scan"
	case OpcodeScanReply:
		return "scan reply"
	case OpcodeStartRTP:
		return "start RTP"
	}
	return fmt.Sprintf("0x%04x", uint16(op))
}

// ZeroArgument is the fixed zero-string argument that opens the
// argument section of scan and start-RTP commands.
var ZeroArgument = bytes.Repeat([]byte{'0'}, 40)

// EncodeCommand encodes a control command.
// The cid is truncated at 15 bytes, right-padded with ASCII '0' and
// NUL-terminated, so that the cid field is always exactly 16 bytes.
func EncodeCommand(op Opcode, cid []byte, args []byte) []byte {
	if len(cid) > cidPayloadSize {
		cid = cid[:cidPayloadSize]
	}

	buf := make([]byte, 0, 4+CIDSize+len(args))
	buf = binary.BigEndian.AppendUint16(buf, Magic)
	buf = binary.BigEndian.AppendUint16(buf, uint16(op))
	buf = append(buf, cid...)
	for i := len(cid); i < cidPayloadSize; i++ {
		buf = append(buf, '0')
	}
	buf = append(buf, 0)
	buf = append(buf, args...)
	return buf
}

// ErrMalformedReply is returned when a reply does not open with the
// protocol magic.
type ErrMalformedReply struct {
	Magic uint16
}

// Error implements the error interface.
func (e ErrMalformedReply) Error() string {
	return fmt.Sprintf("invalid magic header 0x%04x", e.Magic)
}

// ErrUnexpectedOpcode is returned when a packet carries an opcode
// other than the expected one.
type ErrUnexpectedOpcode struct {
	Opcode Opcode
}

// Error implements the error interface.
func (e ErrUnexpectedOpcode) Error() string {
	return fmt.Sprintf("unexpected opcode %v", e.Opcode)
}

// ErrTruncatedReply is returned when a reply is shorter than its
// fixed-layout fields require.
type ErrTruncatedReply struct{}

// Error implements the error interface.
func (e ErrTruncatedReply) Error() string {
	return "truncated reply"
}

// ErrInvalidField is returned when an identity field of a scan reply
// cannot be parsed.
type ErrInvalidField struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e ErrInvalidField) Error() string {
	return fmt.Sprintf("invalid %s field: %v", e.Name, e.Err)
}

// Unwrap returns the wrapped error.
func (e ErrInvalidField) Unwrap() error {
	return e.Err
}

// ScanReply is the decoded identity payload of a discovery reply.
type ScanReply struct {
	CID     [CIDSize]byte
	MAC     mac.Addr
	Version firmware.Version
}

// DecodeScanReply decodes a scan reply.
func DecodeScanReply(buf []byte) (*ScanReply, error) {
	if len(buf) < 4 {
		return nil, ErrTruncatedReply{}
	}

	magic := binary.BigEndian.Uint16(buf[0:2])
	if magic != Magic {
		return nil, ErrMalformedReply{Magic: magic}
	}

	op := Opcode(binary.BigEndian.Uint16(buf[2:4]))
	if op != OpcodeScanReply {
		return nil, ErrUnexpectedOpcode{Opcode: op}
	}

	if len(buf) < 4+CIDSize {
		return nil, ErrTruncatedReply{}
	}

	var sr ScanReply
	copy(sr.CID[:], buf[4:4+CIDSize])

	macField, rest, ok := bytes.Cut(buf[4+CIDSize:], []byte{0})
	if !ok {
		return nil, ErrTruncatedReply{}
	}

	versionField, _, ok := bytes.Cut(rest, []byte{0})
	if !ok {
		return nil, ErrTruncatedReply{}
	}

	if !utf8.Valid(macField) {
		return nil, ErrInvalidField{Name: "mac", Err: fmt.Errorf("invalid UTF-8")}
	}

	var err error
	sr.MAC, err = mac.Parse(string(macField))
	if err != nil {
		return nil, ErrInvalidField{Name: "mac", Err: err}
	}

	if !utf8.Valid(versionField) {
		return nil, ErrInvalidField{Name: "version", Err: fmt.Errorf("invalid UTF-8")}
	}

	sr.Version, err = firmware.Parse(string(versionField))
	if err != nil {
		return nil, ErrInvalidField{Name: "version", Err: err}
	}

	return &sr, nil
}
