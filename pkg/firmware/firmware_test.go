package firmware

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  string
		dec  Version
	}{
		{
			"full",
			"1.2.3.4",
			Version{1, 2, 3, 4},
		},
		{
			"missing trailing components",
			"1.2",
			Version{1, 2, 0, 0},
		},
		{
			"single component",
			"7",
			Version{7, 0, 0, 0},
		},
		{
			"extra components ignored",
			"1.2.3.4.5.6",
			Version{1, 2, 3, 4},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			v, err := Parse(ca.enc)
			require.NoError(t, err)
			require.Equal(t, ca.dec, v)
		})
	}
}

func TestParseError(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  string
	}{
		{
			"empty",
			"",
		},
		{
			"non numeric",
			"1.2.x.4",
		},
		{
			"out of range",
			"1.2.3.100000",
		},
		{
			"negative",
			"-1.2.3.4",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			_, err := Parse(ca.enc)
			require.Error(t, err)
			require.IsType(t, ErrInvalidComponent{}, err)
		})
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "1.2.3.4", Version{1, 2, 3, 4}.String())
	require.Equal(t, "1.2.0.0", Version{1, 2, 0, 0}.String())
}
