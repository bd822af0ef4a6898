//go:build darwin

package firewire

import (
	"github.com/ardnew/forensic1394/firewire/hal"
	fwdarwin "github.com/ardnew/forensic1394/firewire/hal/darwin"
)

// defaultHAL returns the IOKit backend.
func defaultHAL() (hal.BusHAL, error) {
	return fwdarwin.New(), nil
}
