// Package cleverdog implements the network protocol of CleverDog consumer
// IP cameras: discovery over UDP broadcast, RTP-like video streaming with
// keep-alive generation, relaying of the stream to a remote collector over
// TCP/TLS, and a proxy that turns the relayed stream back into UDP datagrams.
package cleverdog

import (
	"net"
	"strings"

	"cleverdog/pkg/control"
	"cleverdog/pkg/firmware"
	"cleverdog/pkg/mac"
)

// CameraHandle describes a camera located on the local network.
type CameraHandle struct {
	// Addr is the UDP endpoint the camera answered from.
	Addr *net.UDPAddr

	// CID is the camera-assigned identifier, echoed in every
	// subsequent command. Opaque to this library.
	CID [control.CIDSize]byte

	// MAC is the hardware address reported by the camera.
	MAC mac.Addr

	// Version is the firmware version reported by the camera.
	Version firmware.Version
}

// CIDString returns the identifier as a printable string, without
// trailing NUL padding.
func (h *CameraHandle) CIDString() string {
	return strings.TrimRight(string(h.CID[:]), "\x00")
}
