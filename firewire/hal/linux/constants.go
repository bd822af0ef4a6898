//go:build linux

package linux

// =============================================================================
// System Paths
// =============================================================================

// DevGlob matches the character devices the firewire-cdev driver creates
// for every node on every card.
const DevGlob = "/dev/fw*"

// SysfsPath is the base path for FireWire devices in sysfs. Identity
// properties (model, model_name, vendor, vendor_name, guid) live under
// it as NL-terminated strings.
const SysfsPath = "/sys/bus/firewire/devices"

// =============================================================================
// firewire-cdev ABI
// =============================================================================

// cdevVersion is the ABI version requested from the kernel in get-info
// exchanges.
const cdevVersion = 4

// ioctl request numbers of the firewire-cdev family ('#' type group,
// encoded for the struct sizes below).
const (
	iocGetInfo          = 0xc0282300 // _IOWR('#', 0x00, fw_cdev_get_info)
	iocSendRequest      = 0x40282301 // _IOW ('#', 0x01, fw_cdev_send_request)
	iocAddDescriptor    = 0xc0182306 // _IOWR('#', 0x06, fw_cdev_add_descriptor)
	iocRemoveDescriptor = 0x40042307 // _IOW ('#', 0x07, fw_cdev_remove_descriptor)
)

// Event type codes carried in the first quadlet after the closure of
// every event read from a node's file descriptor.
const (
	eventBusReset = 0x00
	eventResponse = 0x01
)

// EventBufferSize is the read buffer for kernel events; large enough for
// a response carrying a full block payload.
const EventBufferSize = 16 * 1024

// Wire response codes, including the kernel's extended codes for
// conditions that never reach the wire.
const (
	rcodeComplete    = 0x00
	rcodeConflictErr = 0x04
	rcodeDataErr     = 0x05
	rcodeTypeErr     = 0x06
	rcodeAddressErr  = 0x07
	rcodeSendError   = 0x10
	rcodeCancelled   = 0x11
	rcodeBusy        = 0x12
	rcodeGeneration  = 0x13
	rcodeNoAck       = 0x14
)

// Local CSR key under which the SBP-2 unit directory is installed:
// (CSR_DIRECTORY | CSR_UNIT) << 24.
const (
	csrDirectory = 0xc0
	csrUnit      = 0x11

	unitDirectoryKey = (csrDirectory | csrUnit) << 24
)

// PipelineDepth is the number of outstanding requests per node. Kernels
// of the 2.6.x juju era lose responses when more than one request is in
// flight on a single fd, so the pipeline is serialized.
const PipelineDepth = 1
