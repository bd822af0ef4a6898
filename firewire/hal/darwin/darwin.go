//go:build darwin

package darwin

/*
#cgo LDFLAGS: -framework CoreFoundation -framework IOKit
#include <stdlib.h>
#include "iokit.h"
*/
import "C"

import (
	"fmt"
	"math/bits"
	"time"
	"unsafe"

	"github.com/ardnew/forensic1394/firewire/hal"
	"github.com/ardnew/forensic1394/pkg"
)

// =============================================================================
// BusHAL Implementation
// =============================================================================

// BusHAL implements hal.BusHAL over IOKit's IOFireWireLib.
type BusHAL struct {
	local *C.f1394_local
}

// New creates the IOKit backend.
func New() *BusHAL {
	return &BusHAL{}
}

// Discover matches every IOFireWireDevice in the I/O registry. IOKit
// exposes no per-node permission distinction, so the denied tally is
// always zero here.
func (h *BusHAL) Discover() (hal.DiscoveryResult, error) {
	var res hal.DiscoveryResult
	var cnodes **C.f1394_node
	var count C.size_t

	if C.f1394_discover(&cnodes, &count) != 0 {
		return res, fmt.Errorf("%w: matching FireWire devices", pkg.ErrIO)
	}
	if count == 0 {
		return res, nil
	}
	defer C.free(unsafe.Pointer(cnodes))

	for _, ptr := range unsafe.Slice(cnodes, int(count)) {
		res.Nodes = append(res.Nodes, &node{ptr: ptr, info: nodeInfo(ptr)})
	}
	return res, nil
}

// nodeInfo reads a node's registry state, byte-swapping each ROM quadlet
// from the registry's big-endian storage into host order.
func nodeInfo(ptr *C.f1394_node) hal.NodeInfo {
	var ci C.f1394_node_info
	C.f1394_node_info_get(ptr, &ci)

	info := hal.NodeInfo{
		NodeID:      uint16(ci.node_id),
		Generation:  uint32(ci.generation),
		VendorName:  C.GoString(&ci.vendor_name[0]),
		ProductName: C.GoString(&ci.product_name[0]),
	}
	for i := range info.ROM {
		info.ROM[i] = bits.ReverseBytes32(uint32(ci.rom[i]))
	}
	if ci.vendor_id >= 0 {
		info.VendorID = int(ci.vendor_id)
	}
	if ci.product_id >= 0 {
		info.ProductID = int(ci.product_id)
	}
	return info
}

// EnableSBP2 publishes the unit directory on the local node. The header
// quadlet of the pre-formed block is skipped: IOKit builds its own
// headers as entries are added one by one.
func (h *BusHAL) EnableSBP2(dir []uint32) error {
	if h.local != nil {
		return nil
	}
	if len(dir) < 2 {
		return pkg.ErrIO
	}

	entries := dir[1:]
	if C.f1394_sbp2_publish(&h.local,
		(*C.uint32_t)(unsafe.Pointer(&entries[0])),
		C.size_t(len(entries))) != 0 {
		return fmt.Errorf("%w: publishing local unit directory", pkg.ErrIO)
	}

	pkg.LogDebug(pkg.ComponentHAL, "local unit directory published")
	return nil
}

// Close revokes the SBP-2 publication.
func (h *BusHAL) Close() error {
	if h.local != nil {
		C.f1394_sbp2_unpublish(h.local)
		h.local = nil
	}
	return nil
}

// =============================================================================
// Node
// =============================================================================

type node struct {
	ptr  *C.f1394_node
	info hal.NodeInfo
}

func (n *node) Info() hal.NodeInfo { return n.info }

func (n *node) Open() (hal.DeviceConn, error) {
	var cconn *C.f1394_conn
	if C.f1394_node_open(n.ptr, &cconn) != 0 {
		return nil, fmt.Errorf("%w: opening device interface", pkg.ErrIO)
	}
	return &deviceConn{ptr: cconn, bufs: make(map[int]*pinnedBuf)}, nil
}

func (n *node) Destroy() {
	C.f1394_node_destroy(n.ptr)
	n.ptr = nil
}

// =============================================================================
// DeviceConn
// =============================================================================

// Pipeline depths: four preallocated read commands, one write command.
const (
	readDepth  = 4
	writeDepth = 1
)

// pinnedBuf is a C-allocated transfer buffer. Asynchronous commands keep
// referencing their buffers after Submit returns, so Go memory cannot be
// handed to them.
type pinnedBuf struct {
	ptr  unsafe.Pointer
	len  int
	read bool
}

type deviceConn struct {
	ptr    *C.f1394_conn
	bufs   map[int]*pinnedBuf
	closed bool
}

func (c *deviceConn) Submit(req *hal.Request) error {
	buf := &pinnedBuf{
		ptr:  C.malloc(C.size_t(req.Length)),
		len:  req.Length,
		read: req.TCode.IsRead(),
	}
	if !buf.read {
		copy(unsafe.Slice((*byte)(buf.ptr), buf.len), req.Data)
	}

	write := C.int(0)
	if !buf.read {
		write = 1
	}
	if C.f1394_submit(c.ptr, write, C.uint64_t(req.Addr), buf.ptr,
		C.uint32_t(req.Length), C.uint64_t(req.Closure)) != 0 {
		C.free(buf.ptr)
		return fmt.Errorf("%w: submitting command", pkg.ErrIO)
	}
	c.bufs[req.Closure] = buf
	return nil
}

func (c *deviceConn) Wait(timeout time.Duration) (*hal.Completion, error) {
	var closure C.uint64_t
	var status C.int
	var clen C.uint32_t

	if C.f1394_wait(c.ptr, C.int(timeout.Milliseconds()), &closure,
		&status, &clen) != C.F1394_WAIT_COMPLETION {
		return nil, pkg.ErrIOTimeout
	}

	comp := &hal.Completion{
		Closure: int(closure),
		Code:    classifyStatus(status),
	}
	if buf, ok := c.bufs[comp.Closure]; ok {
		if buf.read && comp.Code == hal.ResponseComplete {
			n := int(clen)
			if n > buf.len {
				n = buf.len
			}
			comp.Data = C.GoBytes(buf.ptr, C.int(n))
		}
		C.free(buf.ptr)
		delete(c.bufs, comp.Closure)
	}
	return comp, nil
}

func (c *deviceConn) Cancel() {
	C.f1394_cancel(c.ptr)
	c.releaseBuffers()
}

func (c *deviceConn) ReadDepth() int  { return readDepth }
func (c *deviceConn) WriteDepth() int { return writeDepth }

func (c *deviceConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	C.f1394_conn_close(c.ptr)
	c.releaseBuffers()
	return nil
}

func (c *deviceConn) releaseBuffers() {
	for closure, buf := range c.bufs {
		C.free(buf.ptr)
		delete(c.bufs, closure)
	}
}

// classifyStatus maps shim completion statuses onto the portable
// classification.
func classifyStatus(status C.int) hal.ResponseCode {
	switch status {
	case C.F1394_STATUS_COMPLETE:
		return hal.ResponseComplete
	case C.F1394_STATUS_BUSY:
		return hal.ResponseBusy
	case C.F1394_STATUS_GENERATION:
		return hal.ResponseGeneration
	default:
		return hal.ResponseError
	}
}
