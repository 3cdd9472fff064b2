package envelope

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	for _, ca := range []struct {
		name       string
		size       int
		marker     byte
		headerSize int
	}{
		{
			"bin 8",
			10,
			0xc4,
			2,
		},
		{
			"bin 8 max",
			255,
			0xc4,
			2,
		},
		{
			"bin 16",
			300,
			0xc5,
			3,
		},
		{
			"bin 32",
			70000,
			0xc6,
			5,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0xab}, ca.size)
			enc, err := Marshal(payload)
			require.NoError(t, err)
			require.Equal(t, ca.marker, enc[0])
			require.Equal(t, ca.headerSize+ca.size, len(enc))

			dec, n, err := Decode(enc)
			require.NoError(t, err)
			require.Equal(t, len(enc), n)
			require.Equal(t, payload, dec)
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	enc, err := Marshal([]byte("some payload"))
	require.NoError(t, err)

	for i := 0; i < len(enc); i++ {
		_, n, err := Decode(enc[:i])
		require.IsType(t, ErrTruncated{}, err)
		require.Equal(t, 0, n)
	}
}

func TestDecodeUnexpectedType(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  []byte
	}{
		{
			"array",
			[]byte{0x93, 0x01, 0x02, 0x03},
		},
		{
			"string",
			[]byte{0xa3, 'a', 'b', 'c'},
		},
		{
			"nil",
			[]byte{0xc0},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			_, _, err := Decode(ca.enc)
			require.IsType(t, ErrUnexpectedType{}, err)
		})
	}
}

func TestDecodeSequence(t *testing.T) {
	payloads := [][]byte{
		[]byte("first"),
		bytes.Repeat([]byte{0x42}, 1000),
		[]byte("third"),
	}

	var stream []byte
	for _, p := range payloads {
		enc, err := Marshal(p)
		require.NoError(t, err)
		stream = append(stream, enc...)
	}

	var decoded [][]byte
	for len(stream) > 0 {
		p, n, err := Decode(stream)
		require.NoError(t, err)
		decoded = append(decoded, p)
		stream = stream[n:]
	}

	require.Equal(t, payloads, decoded)
}

// feeds a frame stream in arbitrary chunk sizes through a fixed
// reassembly buffer and checks that no payload is lost or duplicated.
func TestDecodeChunked(t *testing.T) {
	payloads := [][]byte{
		[]byte("alpha"),
		bytes.Repeat([]byte{0x11}, 300),
		[]byte("beta"),
		bytes.Repeat([]byte{0x22}, 77),
		[]byte("gamma"),
	}

	var stream []byte
	for _, p := range payloads {
		enc, err := Marshal(p)
		require.NoError(t, err)
		stream = append(stream, enc...)
	}

	for _, chunkSize := range []int{1, 2, 3, 7, 64, len(stream)} {
		var decoded [][]byte

		buf := make([]byte, 1024)
		wr := 0

		for off := 0; off < len(stream); off += chunkSize {
			end := off + chunkSize
			if end > len(stream) {
				end = len(stream)
			}
			wr += copy(buf[wr:], stream[off:end])

			rd := 0
			for {
				p, n, err := Decode(buf[rd:wr])
				if err != nil {
					require.IsType(t, ErrTruncated{}, err)
					break
				}
				decoded = append(decoded, p)
				rd += n
			}

			if rd != 0 {
				copy(buf, buf[rd:wr])
				wr -= rd
			}
		}

		require.Equal(t, payloads, decoded, "chunk size %d", chunkSize)
	}
}
