//go:build linux

package linux

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ardnew/forensic1394/csr"
)

// =============================================================================
// Kernel ABI Structures
// =============================================================================

// fwCdevGetInfo matches struct fw_cdev_get_info. Pointer fields are
// 64-bit integers regardless of word size.
type fwCdevGetInfo struct {
	version         uint32
	romLength       uint32
	rom             uint64
	busReset        uint64
	busResetClosure uint64
	card            uint32
	_               uint32
}

// fwCdevEventBusReset matches struct fw_cdev_event_bus_reset.
type fwCdevEventBusReset struct {
	closure     uint64
	typ         uint32
	nodeID      uint32
	localNodeID uint32
	bmNodeID    uint32
	irmNodeID   uint32
	rootNodeID  uint32
	generation  uint32
}

// fwCdevSendRequest matches struct fw_cdev_send_request.
type fwCdevSendRequest struct {
	tcode      uint32
	length     uint32
	offset     uint64
	closure    uint64
	data       uint64
	generation uint32
	_          uint32
}

// fwCdevAddDescriptor matches struct fw_cdev_add_descriptor.
type fwCdevAddDescriptor struct {
	immediate uint32
	key       uint32
	data      uint64
	length    uint32
	handle    uint32
}

// =============================================================================
// Syscall Wrappers
// =============================================================================

// ioctl performs a pointer-argument ioctl.
func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// nodeState is the outcome of a get-info exchange with one node.
type nodeState struct {
	nodeID      uint32
	localNodeID uint32
	generation  uint32
	rom         [csr.ROMQuadlets]uint32
}

// getNodeInfo issues FW_CDEV_IOC_GET_INFO, retrieving the node's
// configuration ROM and the current bus-reset state. The ROM destination
// is always the full 256 quadlets; shorter hardware ROMs leave the tail
// zeroed.
func getNodeInfo(fd int) (*nodeState, error) {
	var st nodeState
	var reset fwCdevEventBusReset

	info := fwCdevGetInfo{
		version:   cdevVersion,
		romLength: uint32(len(st.rom) * 4),
		rom:       uint64(uintptr(unsafe.Pointer(&st.rom[0]))),
		busReset:  uint64(uintptr(unsafe.Pointer(&reset))),
	}
	err := ioctl(fd, iocGetInfo, unsafe.Pointer(&info))
	runtime.KeepAlive(&st)
	runtime.KeepAlive(&reset)
	if err != nil {
		return nil, fmt.Errorf("get info: %w", err)
	}

	st.nodeID = reset.nodeID
	st.localNodeID = reset.localNodeID
	st.generation = reset.generation
	return &st, nil
}

// isLocal reports whether the node is the host's own controller rather
// than an attached (foreign) device.
func (st *nodeState) isLocal() bool {
	return st.nodeID == st.localNodeID
}

// sendRequest issues FW_CDEV_IOC_SEND_REQUEST. The payload, if any, is
// copied by the kernel before the ioctl returns.
func sendRequest(fd int, tcode uint32, addr uint64, length int, data []byte, closure uint64, generation uint32) error {
	req := fwCdevSendRequest{
		tcode:      tcode,
		length:     uint32(length),
		offset:     addr,
		closure:    closure,
		generation: generation,
	}
	if len(data) > 0 {
		req.data = uint64(uintptr(unsafe.Pointer(&data[0])))
	}
	err := ioctl(fd, iocSendRequest, unsafe.Pointer(&req))
	runtime.KeepAlive(data)
	return err
}

// addDescriptor installs a descriptor block in the local node's CSR and
// returns the kernel handle for it. The block is passed verbatim,
// leading header quadlet included; length is in quadlets.
func addDescriptor(fd int, key uint32, dir []uint32) (uint32, error) {
	desc := fwCdevAddDescriptor{
		key:    key,
		data:   uint64(uintptr(unsafe.Pointer(&dir[0]))),
		length: uint32(len(dir)),
	}
	err := ioctl(fd, iocAddDescriptor, unsafe.Pointer(&desc))
	runtime.KeepAlive(dir)
	if err != nil {
		return 0, err
	}
	return desc.handle, nil
}

// =============================================================================
// Event Decoding
// =============================================================================

// Offsets within the byte stream read from a node fd. Every event starts
// with a 64-bit closure followed by a 32-bit type.
const (
	eventTypeOffset = 8

	responseRCodeOffset  = 12
	responseLengthOffset = 16
	responseDataOffset   = 20
)

// responseEvent is a decoded fw_cdev_event_response.
type responseEvent struct {
	closure uint64
	rcode   uint32
	data    []byte
}

// eventType returns the type code of an event buffer, or -1 if the
// buffer is too short to hold one.
func eventType(buf []byte) int {
	if len(buf) < eventTypeOffset+4 {
		return -1
	}
	return int(binary.NativeEndian.Uint32(buf[eventTypeOffset:]))
}

// decodeResponseEvent decodes a response event, copying out its payload.
func decodeResponseEvent(buf []byte) (*responseEvent, error) {
	if eventType(buf) != eventResponse {
		return nil, fmt.Errorf("not a response event")
	}
	if len(buf) < responseDataOffset {
		return nil, fmt.Errorf("truncated response event: %d bytes", len(buf))
	}

	length := int(binary.NativeEndian.Uint32(buf[responseLengthOffset:]))
	if length < 0 || responseDataOffset+length > len(buf) {
		return nil, fmt.Errorf("response payload of %d bytes exceeds event", length)
	}

	ev := &responseEvent{
		closure: binary.NativeEndian.Uint64(buf),
		rcode:   binary.NativeEndian.Uint32(buf[responseRCodeOffset:]),
	}
	if length > 0 {
		ev.data = make([]byte, length)
		copy(ev.data, buf[responseDataOffset:responseDataOffset+length])
	}
	return ev, nil
}
