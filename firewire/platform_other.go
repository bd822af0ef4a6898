//go:build !linux && !darwin

package firewire

import (
	"errors"

	"github.com/ardnew/forensic1394/firewire/hal"
)

// defaultHAL fails: no FireWire backend exists for this platform.
// NewWithHAL remains available for custom backends.
func defaultHAL() (hal.BusHAL, error) {
	return nil, errors.New("no FireWire backend for this platform")
}
