// Package ntp contains functions to encode and decode timestamps to/from NTP format.
package ntp

import (
	"time"
)

// seconds between 1900-01-01 and the Unix epoch.
const epochOffset = 2208988800

// Encode encodes a timestamp in NTP format.
// Specification: RFC3550, section 4
func Encode(t time.Time) uint64 {
	nanos := uint64(t.UnixNano()) + epochOffset*1000000000
	secs := nanos / 1000000000
	frac := ((nanos % 1000000000) << 32) / 1000000000
	return secs<<32 | frac
}

// Decode decodes a timestamp from NTP format.
// Specification: RFC3550, section 4
func Decode(v uint64) time.Time {
	secs := int64(v>>32) - epochOffset
	nanos := int64(((v & 0xFFFFFFFF) * 1000000000) >> 32)
	return time.Unix(secs, nanos)
}
