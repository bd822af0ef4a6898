package firewire

import (
	"fmt"

	"github.com/ardnew/forensic1394/csr"
	"github.com/ardnew/forensic1394/firewire/hal"
	"github.com/ardnew/forensic1394/pkg"
)

// Device is one remote (foreign) node on a bus at a particular bus-reset
// generation. Devices are created only by enumeration and destroyed only
// by the next enumeration or by closing the owning bus.
//
// A Device is not safe for concurrent use.
type Device struct {
	bus  *Bus
	node hal.Node
	conn hal.DeviceConn

	productName string
	productID   int
	vendorName  string
	vendorID    int

	guid       int64
	nodeID     uint16
	generation uint32
	maxRequest int

	rom [csr.ROMQuadlets]uint32

	userData any
	open     bool
	valid    bool
}

// newDevice builds a Device from a discovered node, deriving identity
// from its CSR and overlaying any platform-supplied supplements.
func newDevice(b *Bus, n hal.Node) *Device {
	info := n.Info()
	parsed := csr.Parse(&info.ROM)

	d := &Device{
		bus:         b,
		node:        n,
		productName: parsed.ProductName,
		productID:   parsed.ProductID,
		vendorName:  parsed.VendorName,
		vendorID:    parsed.VendorID,
		guid:        parsed.GUID,
		nodeID:      info.NodeID,
		generation:  info.Generation,
		maxRequest:  parsed.MaxRequest,
		rom:         info.ROM,
		valid:       true,
	}

	if info.ProductName != "" {
		d.productName = truncateName(info.ProductName)
	}
	if info.ProductID != 0 {
		d.productID = info.ProductID
	}
	if info.VendorName != "" {
		d.vendorName = truncateName(info.VendorName)
	}
	if info.VendorID != 0 {
		d.vendorID = info.VendorID
	}

	pkg.LogDebug(pkg.ComponentDevice, "device discovered",
		"guid", fmt.Sprintf("%016x", d.guid),
		"node", d.nodeID,
		"generation", d.generation,
		"maxreq", d.maxRequest)
	return d
}

// truncateName bounds a supplemental name to the CSR name limit.
func truncateName(s string) string {
	if len(s) > csr.NameSize-1 {
		return s[:csr.NameSize-1]
	}
	return s
}

// Open prepares the device for read/write requests. Opening an already
// open device succeeds without effect. Open fails only if a previously
// enumerable node has since become unreadable, or after the device
// handle was invalidated by re-enumeration or bus closure.
func (d *Device) Open() error {
	if !d.valid {
		return pkg.ErrClosed
	}
	if d.open {
		return nil
	}

	conn, err := d.node.Open()
	if err != nil {
		return err
	}
	d.conn = conn
	d.open = true

	pkg.LogDebug(pkg.ComponentDevice, "device opened",
		"guid", fmt.Sprintf("%016x", d.guid))
	return nil
}

// Close releases the open connection. Closing a device that is not open
// is a no-op.
func (d *Device) Close() error {
	if !d.open {
		return nil
	}

	err := d.conn.Close()
	d.conn = nil
	d.open = false

	pkg.LogDebug(pkg.ComponentDevice, "device closed",
		"guid", fmt.Sprintf("%016x", d.guid))
	return err
}

// IsOpen reports whether the device is open.
func (d *Device) IsOpen() bool {
	return d.open
}

// Bus returns the bus that owns this device. The reference is valid for
// the device's whole life.
func (d *Device) Bus() *Bus {
	return d.bus
}

// CSR returns a copy of the device's 256-quadlet configuration ROM
// snapshot, held in host endianness.
func (d *Device) CSR() [csr.ROMQuadlets]uint32 {
	return d.rom
}

// GUID returns the device's 64-bit EUI-64. GUIDs are stable across bus
// resets and are the key for re-acquiring a device after re-enumeration.
func (d *Device) GUID() int64 {
	return d.guid
}

// NodeID returns the device's node ID as of the discovery generation.
// Node IDs are not stable across bus resets.
func (d *Device) NodeID() uint16 {
	return d.nodeID
}

// Generation returns the bus-reset generation the device was discovered
// in. It never changes for the life of the handle; once the bus resets,
// every transaction fails with pkg.ErrBusReset.
func (d *Device) Generation() uint32 {
	return d.generation
}

// MaxRequest returns the maximum asynchronous request size in bytes the
// device advertises, or the safe default of 512.
func (d *Device) MaxRequest() int {
	return d.maxRequest
}

// ProductName returns the device's model name, possibly empty.
func (d *Device) ProductName() string {
	return d.productName
}

// ProductID returns the device's 24-bit model ID, or zero.
func (d *Device) ProductID() int {
	return d.productID
}

// VendorName returns the device's vendor name, possibly empty.
func (d *Device) VendorName() string {
	return d.vendorName
}

// VendorID returns the device's 24-bit vendor ID, or zero.
func (d *Device) VendorID() int {
	return d.vendorID
}

// SetUserData attaches an arbitrary caller value to the device.
func (d *Device) SetUserData(v any) {
	d.userData = v
}

// UserData returns the value set by SetUserData, or nil.
func (d *Device) UserData() any {
	return d.userData
}

// String returns a loggable description of the device identity.
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (GUID %016x, node %#04x)",
		d.vendorName, d.productName, d.guid, d.nodeID)
}
