//go:build linux

package firewire

import (
	"github.com/ardnew/forensic1394/firewire/hal"
	fwlinux "github.com/ardnew/forensic1394/firewire/hal/linux"
)

// defaultHAL returns the firewire-cdev backend.
func defaultHAL() (hal.BusHAL, error) {
	return fwlinux.New(), nil
}
