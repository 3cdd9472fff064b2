package sdpgen

import (
	"net"
	"testing"

	"github.com/pion/sdp/v3"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	byts, err := Generate(&net.UDPAddr{
		IP:   net.ParseIP("127.0.0.1"),
		Port: 8088,
	})
	require.NoError(t, err)

	var desc sdp.SessionDescription
	err = desc.Unmarshal(byts)
	require.NoError(t, err)

	require.Equal(t, "camera", string(desc.SessionName))
	require.Len(t, desc.MediaDescriptions, 1)

	md := desc.MediaDescriptions[0]
	require.Equal(t, "video", md.MediaName.Media)
	require.Equal(t, 8088, md.MediaName.Port.Value)
	require.Equal(t, []string{"96"}, md.MediaName.Formats)

	value, ok := md.Attribute("rtpmap")
	require.True(t, ok)
	require.Equal(t, "96 H264/90000", value)
}
