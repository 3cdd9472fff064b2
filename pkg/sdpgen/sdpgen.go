// Package sdpgen generates SDP documents describing the re-emitted video stream,
// so that media pipelines (e.g. ffmpeg) can consume it.
package sdpgen

import (
	"net"

	"github.com/pion/sdp/v3"
)

// Generate returns an SDP document describing an H264 RTP stream
// received on addr.
func Generate(addr *net.UDPAddr) ([]byte, error) {
	address := "127.0.0.1"
	if addr.IP != nil && !addr.IP.IsUnspecified() {
		address = addr.IP.String()
	}

	desc := &sdp.SessionDescription{
		Origin: sdp.Origin{
			Username:       "-",
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: address,
		},
		SessionName: "camera",
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &sdp.Address{Address: address},
		},
		TimeDescriptions: []sdp.TimeDescription{
			{Timing: sdp.Timing{StartTime: 0, StopTime: 0}},
		},
		MediaDescriptions: []*sdp.MediaDescription{
			{
				MediaName: sdp.MediaName{
					Media:   "video",
					Port:    sdp.RangedPort{Value: addr.Port},
					Protos:  []string{"RTP", "AVP"},
					Formats: []string{"96"},
				},
				Attributes: []sdp.Attribute{
					{Key: "rtpmap", Value: "96 H264/90000"},
				},
			},
		},
	}

	return desc.Marshal()
}
