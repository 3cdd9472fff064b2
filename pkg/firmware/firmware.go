// Package firmware contains the camera firmware version type.
package firmware

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidComponent is returned when a component of a version string
// is not a valid decimal number.
type ErrInvalidComponent struct {
	Err error
}

// Error implements the error interface.
func (e ErrInvalidComponent) Error() string {
	return fmt.Sprintf("invalid component: %v", e.Err)
}

// Unwrap returns the wrapped error.
func (e ErrInvalidComponent) Unwrap() error {
	return e.Err
}

// Version is a camera firmware version.
type Version [4]uint16

// Parse parses a dot-separated decimal string into a firmware version.
// Missing trailing components default to zero; components beyond the
// fourth are ignored.
func Parse(s string) (Version, error) {
	var v Version

	for i, component := range strings.Split(s, ".") {
		if i == 4 {
			break
		}

		n, err := strconv.ParseUint(component, 10, 16)
		if err != nil {
			return v, ErrInvalidComponent{Err: err}
		}
		v[i] = uint16(n)
	}

	return v, nil
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}
