package ntp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var cases = []struct {
	name string
	dec  time.Time
	enc  uint64
}{
	{
		"epoch",
		time.Unix(0, 0),
		9487534653230284800,
	},
	{
		"half second",
		time.Unix(1000000000, 500000000),
		13782501951377768448,
	},
	{
		"quarter second",
		time.Unix(1600000000, 250000000),
		16359482327904026624,
	},
}

func TestEncode(t *testing.T) {
	for _, ca := range cases {
		t.Run(ca.name, func(t *testing.T) {
			v := Encode(ca.dec)
			require.Equal(t, ca.enc, v)
		})
	}
}

func TestDecode(t *testing.T) {
	for _, ca := range cases {
		t.Run(ca.name, func(t *testing.T) {
			v := Decode(ca.enc)
			require.True(t, ca.dec.Equal(v))
		})
	}
}
