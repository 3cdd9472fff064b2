package cleverdog

import (
	"time"

	"github.com/pion/rtcp"

	"cleverdog/pkg/ntp"
)

// prepended by the firmware to every report and media datagram.
var vendorPrefix = []byte{0x00, 0x00, 0x01, 0x00}

// SSRC the firmware expects in keep-alive reports.
const reportSSRC = 2

// encodeSenderReport builds the keep-alive datagram: the vendor prefix
// followed by an RTCP sender report carrying only the current NTP
// timestamp. The firmware may stop streaming if these reports cease or
// are malformed.
func encodeSenderReport(now time.Time) ([]byte, error) {
	sr := rtcp.SenderReport{
		SSRC:    reportSSRC,
		NTPTime: ntp.Encode(now),
	}

	body, err := sr.Marshal()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(vendorPrefix)+len(body))
	buf = append(buf, vendorPrefix...)
	buf = append(buf, body...)
	return buf, nil
}
