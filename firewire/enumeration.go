package firewire

import (
	"github.com/ardnew/forensic1394/pkg"
)

// Devices enumerates the foreign nodes currently attached to the bus.
//
// Any device list from a previous enumeration is destroyed first: each
// old device is closed if open and reported to the callback registered
// at that earlier enumeration, before any new device is returned. Every
// previously returned *Device is invalid afterwards; callers re-acquire
// a device across enumerations by matching its GUID.
//
// onDestroy, if non-nil, is stored on the bus and fires once per device
// the next time the list is invalidated (by re-enumeration or Close).
//
// Individual nodes the process may not access are skipped silently; only
// when no device at all was usable does the permission tally surface as
// pkg.ErrNoPerm. The returned slice is owned by the bus and remains
// valid until the next enumeration or Close.
func (b *Bus) Devices(onDestroy DeviceCallback) ([]*Device, error) {
	if b.closed {
		return nil, pkg.ErrClosed
	}

	b.destroyAllDevices()
	b.onDestroy = onDestroy

	res, err := b.hal.Discover()
	if err != nil {
		return nil, err
	}

	for _, n := range res.Nodes {
		b.devices = append(b.devices, newDevice(b, n))
	}

	pkg.LogDebug(pkg.ComponentBus, "enumeration complete",
		"devices", len(b.devices),
		"denied", res.Denied)

	if len(b.devices) == 0 && res.Denied > 0 {
		return nil, pkg.ErrNoPerm
	}
	return b.devices, nil
}
