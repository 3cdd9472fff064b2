// Package mac contains the MAC address type reported by cameras.
package mac

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLength is returned when a MAC address string does not
// contain exactly 6 octets.
type ErrInvalidLength struct{}

// Error implements the error interface.
func (e ErrInvalidLength) Error() string {
	return "invalid length"
}

// ErrInvalidDigit is returned when an octet of a MAC address string
// is not a valid hexadecimal number.
type ErrInvalidDigit struct {
	Err error
}

// Error implements the error interface.
func (e ErrInvalidDigit) Error() string {
	return fmt.Sprintf("invalid digit: %v", e.Err)
}

// Unwrap returns the wrapped error.
func (e ErrInvalidDigit) Unwrap() error {
	return e.Err
}

// Addr is a MAC address.
type Addr [6]byte

// Parse parses a string of 6 colon-separated hexadecimal octets into
// a MAC address.
func Parse(s string) (Addr, error) {
	var a Addr

	octets := strings.Split(s, ":")
	if len(octets) != 6 {
		return a, ErrInvalidLength{}
	}

	for i, octet := range octets {
		v, err := strconv.ParseUint(octet, 16, 8)
		if err != nil {
			return a, ErrInvalidDigit{Err: err}
		}
		a[i] = byte(v)
	}

	return a, nil
}

// String implements fmt.Stringer. Octets are formatted in lower-case
// hexadecimal.
func (a Addr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		a[0], a[1], a[2], a[3], a[4], a[5])
}

// Upper returns the address formatted in upper-case hexadecimal.
func (a Addr) Upper() string {
	return strings.ToUpper(a.String())
}
