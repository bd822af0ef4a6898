package hal

import (
	"time"

	"github.com/ardnew/forensic1394/csr"
)

// TCode identifies the type of an asynchronous transaction on the wire.
// Values match linux/firewire-constants.h.
type TCode uint8

// Transaction codes for the supported asynchronous transactions.
const (
	TCodeWriteQuadlet TCode = 0x0 // Quadlet write request
	TCodeWriteBlock   TCode = 0x1 // Block write request
	TCodeReadQuadlet  TCode = 0x4 // Quadlet read request
	TCodeReadBlock    TCode = 0x5 // Block read request
)

// String returns a human-readable transaction code name.
func (t TCode) String() string {
	switch t {
	case TCodeWriteQuadlet:
		return "write quadlet"
	case TCodeWriteBlock:
		return "write block"
	case TCodeReadQuadlet:
		return "read quadlet"
	case TCodeReadBlock:
		return "read block"
	default:
		return "unknown"
	}
}

// IsRead reports whether the transaction moves data from the target to
// the host.
func (t TCode) IsRead() bool {
	return t == TCodeReadQuadlet || t == TCodeReadBlock
}

// QuadletSize is the payload length that selects a quadlet transaction.
const QuadletSize = 4

// SelectTCode chooses the transaction code for a transfer: a payload of
// exactly four bytes becomes a quadlet transaction, any other length a
// block transaction.
func SelectTCode(write bool, length int) TCode {
	switch {
	case write && length == QuadletSize:
		return TCodeWriteQuadlet
	case write:
		return TCodeWriteBlock
	case length == QuadletSize:
		return TCodeReadQuadlet
	default:
		return TCodeReadBlock
	}
}

// ResponseCode classifies a transaction completion as observed by a
// backend.
type ResponseCode uint8

// Completion classifications.
const (
	ResponseComplete   ResponseCode = iota // Request retired successfully
	ResponseBusy                           // Target node reported busy
	ResponseGeneration                     // Generation mismatch: bus reset
	ResponseError                          // Any other transport failure
)

// String returns a human-readable response classification.
func (c ResponseCode) String() string {
	switch c {
	case ResponseComplete:
		return "complete"
	case ResponseBusy:
		return "busy"
	case ResponseGeneration:
		return "generation mismatch"
	default:
		return "error"
	}
}

// Request describes one asynchronous transaction to submit. The closure
// is an opaque batch index echoed back in the matching Completion so
// out-of-order completions can be routed to the correct caller buffer.
type Request struct {
	Closure int    // Batch index for completion matching
	TCode   TCode  // Transaction type
	Addr    uint64 // 48-bit target address
	Length  int    // Payload length in bytes
	Data    []byte // Payload for writes; nil for reads
}

// Completion reports the outcome of one submitted Request.
type Completion struct {
	Closure int          // Batch index of the retired request
	Code    ResponseCode // Classification of the response
	Data    []byte       // Response payload for reads; nil otherwise
}

// NodeInfo carries the discovery-time state of one foreign node. The ROM
// snapshot is always exactly 256 quadlets, held in host endianness.
type NodeInfo struct {
	NodeID     uint16
	Generation uint32
	ROM        [csr.ROMQuadlets]uint32

	// Supplemental identity from platform sources (Linux sysfs, IOKit
	// registry properties); empty or zero when unavailable. The CSR
	// parse remains authoritative for anything not supplied here.
	VendorName  string
	ProductName string
	VendorID    int
	ProductID   int
}

// DiscoveryResult is the outcome of one enumeration pass. Denied counts
// the nodes skipped because of insufficient permissions; it only matters
// when Nodes is empty.
type DiscoveryResult struct {
	Nodes  []Node
	Denied int
}

// BusHAL is the per-platform capability behind a Bus.
//
// Implementations are not safe for concurrent use; the portable layer
// serializes all calls.
type BusHAL interface {
	// Discover scans the platform's FireWire subsystem and returns every
	// reachable foreign node. Nodes the process may not access are
	// skipped and tallied, not fatal.
	Discover() (DiscoveryResult, error)

	// EnableSBP2 installs the given unit directory (a pre-formed
	// descriptor block, header quadlet first) in the local node's CSR.
	// Enabling triggers a bus reset on the host.
	EnableSBP2(dir []uint32) error

	// Close releases all platform state, revoking any SBP-2 publication.
	Close() error
}

// Node is a discovered foreign node that has not necessarily been opened.
type Node interface {
	// Info returns the node's discovery-time state.
	Info() NodeInfo

	// Open prepares the node for asynchronous transactions.
	Open() (DeviceConn, error)

	// Destroy releases discovery-time platform state. It must be called
	// exactly once, after any open connection has been closed.
	Destroy()
}

// DeviceConn is an open connection to a foreign node, able to carry
// pipelined asynchronous transactions.
type DeviceConn interface {
	// Submit queues one request. At most ReadDepth (or WriteDepth)
	// requests of the respective direction may be in flight.
	Submit(req *Request) error

	// Wait blocks until one completion arrives or the timeout elapses,
	// returning pkg.ErrIOTimeout in the latter case.
	Wait(timeout time.Duration) (*Completion, error)

	// Cancel aborts any still-executing submissions. Completions for
	// cancelled requests are not delivered.
	Cancel()

	// ReadDepth returns the read pipeline depth.
	ReadDepth() int

	// WriteDepth returns the write pipeline depth.
	WriteDepth() int

	// Close tears down the connection. Idempotent.
	Close() error
}
