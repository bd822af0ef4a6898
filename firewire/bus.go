package firewire

import (
	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/forensic1394/csr"
	"github.com/ardnew/forensic1394/firewire/hal"
	"github.com/ardnew/forensic1394/pkg"
)

// Bus is one logical handle to the host's FireWire subsystem. It owns
// the devices produced by enumeration and the platform state behind
// them, including any SBP-2 publication.
//
// A Bus is not safe for concurrent use. Callers wanting parallelism use
// one Bus per thread or serialize externally.
type Bus struct {
	hal hal.BusHAL

	// Owned device list in discovery order. Replaced wholesale by each
	// enumeration.
	devices []*Device

	// Destruction callback registered at the most recent enumeration;
	// fires once per device when the list is next invalidated.
	onDestroy DeviceCallback

	sbp2Enabled bool
	userData    any
	closed      bool
}

// DeviceCallback is invoked for each device of an invalidated list,
// with the owning bus as its first argument.
type DeviceCallback func(*Bus, *Device)

// New allocates a bus backed by the platform's default HAL. SBP-2 is
// disabled and no devices are attached until the first enumeration.
func New() (*Bus, error) {
	h, err := defaultHAL()
	if err != nil {
		return nil, err
	}
	return NewWithHAL(h), nil
}

// NewWithHAL allocates a bus over an explicit HAL. Tests and bindings
// with custom backends use this entry point.
func NewWithHAL(h hal.BusHAL) *Bus {
	return &Bus{hal: h}
}

// Close destroys the bus: every device is closed if open, reported to
// the destruction callback, and released, then platform state is torn
// down, revoking any SBP-2 publication. All device handles previously
// returned by Devices are invalid afterwards.
//
// Close is idempotent; errors from the cascade are aggregated.
func (b *Bus) Close() error {
	if b.closed {
		return nil
	}

	var merr *multierror.Error
	merr = multierror.Append(merr, b.destroyAllDevices())
	merr = multierror.Append(merr, b.hal.Close())
	b.closed = true

	pkg.LogDebug(pkg.ComponentBus, "bus closed")
	return merr.ErrorOrNil()
}

// EnableSBP2 publishes the canonical SBP-2 unit directory in the local
// node's CSR, which persuades some target operating systems (notably
// Windows) to honor DMA requests from this host.
//
// Enabling triggers a bus reset; callers should enable early and wait
// SBP2SettleDelay before enumerating. The publication affects every
// FireWire port on the host and is revoked when the bus is closed.
//
// The call is idempotent once it has succeeded: subsequent calls return
// alreadyEnabled == true without touching the platform.
func (b *Bus) EnableSBP2() (alreadyEnabled bool, err error) {
	if b.closed {
		return false, pkg.ErrClosed
	}
	if b.sbp2Enabled {
		return true, nil
	}

	if err := b.hal.EnableSBP2(csr.SBP2UnitDirectory()); err != nil {
		return false, err
	}
	b.sbp2Enabled = true

	pkg.LogInfo(pkg.ComponentBus, "SBP-2 unit directory published")
	return false, nil
}

// SBP2Enabled reports whether the SBP-2 unit directory is published.
func (b *Bus) SBP2Enabled() bool {
	return b.sbp2Enabled
}

// SetUserData attaches an arbitrary caller value to the bus. The library
// imposes no semantics on it.
func (b *Bus) SetUserData(v any) {
	b.userData = v
}

// UserData returns the value set by SetUserData, or nil.
func (b *Bus) UserData() any {
	return b.userData
}

// destroyAllDevices invalidates the current device list: each device is
// closed if open, passed to the registered destruction callback, and its
// platform state released. Errors are aggregated, not fatal.
func (b *Bus) destroyAllDevices() error {
	var merr *multierror.Error

	for _, d := range b.devices {
		if d.open {
			merr = multierror.Append(merr, d.Close())
		}
		if b.onDestroy != nil {
			b.onDestroy(b, d)
		}
		d.node.Destroy()
		d.valid = false
	}

	b.devices = nil
	b.onDestroy = nil
	return merr.ErrorOrNil()
}
