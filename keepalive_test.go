package cleverdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeSenderReport(t *testing.T) {
	byts, err := encodeSenderReport(time.Unix(1000000000, 500000000))
	require.NoError(t, err)

	require.Equal(t, []byte{
		// vendor prefix
		0x00, 0x00, 0x01, 0x00,
		// RTP version 2, packet type 200 (sender report), length 6
		0x80, 0xc8, 0x00, 0x06,
		// SSRC
		0x00, 0x00, 0x00, 0x02,
		// NTP timestamp
		0xbf, 0x45, 0x48, 0x80, 0x80, 0x00, 0x00, 0x00,
		// RTP timestamp, packet count, octet count
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}, byts)
}

func TestEncodeSenderReportSize(t *testing.T) {
	byts, err := encodeSenderReport(time.Now())
	require.NoError(t, err)
	require.Equal(t, 32, len(byts))
}
