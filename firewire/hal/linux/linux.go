//go:build linux

package linux

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ardnew/forensic1394/firewire/hal"
	"github.com/ardnew/forensic1394/pkg"
)

// =============================================================================
// BusHAL Implementation
// =============================================================================

// BusHAL implements hal.BusHAL over the firewire-cdev (juju) driver.
type BusHAL struct {
	// Glob pattern and sysfs root; fixed defaults in production,
	// overridable in tests.
	devGlob   string
	sysfsRoot string

	// File descriptor held open to keep the SBP-2 descriptor installed;
	// -1 when not published.
	sbp2FD int
}

// New creates the firewire-cdev backend.
func New() *BusHAL {
	return &BusHAL{
		devGlob:   DevGlob,
		sysfsRoot: SysfsPath,
		sbp2FD:    -1,
	}
}

// Discover scans /dev/fw* and returns every reachable foreign node.
// Nodes that cannot be opened for permission reasons are tallied; any
// other per-node failure is skipped silently.
func (h *BusHAL) Discover() (hal.DiscoveryResult, error) {
	var res hal.DiscoveryResult

	paths, err := filepath.Glob(h.devGlob)
	if err != nil {
		return res, fmt.Errorf("globbing %s: %w", h.devGlob, err)
	}

	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err != nil {
			if isPermission(err) {
				res.Denied++
			}
			pkg.LogDebug(pkg.ComponentHAL, "skipping node",
				"path", path, "error", err)
			continue
		}

		st, err := getNodeInfo(fd)
		if err != nil {
			pkg.LogWarn(pkg.ComponentHAL, "get-info failed",
				"path", path, "error", err)
			unix.Close(fd)
			continue
		}

		// Only foreign nodes are attached devices.
		if !st.isLocal() {
			res.Nodes = append(res.Nodes, h.newNode(path, st))
		}

		// The node is reopened later if the caller opens the device.
		unix.Close(fd)
	}

	return res, nil
}

// newNode builds a node handle from discovery state, supplementing the
// identity with what the kernel exports through sysfs.
func (h *BusHAL) newNode(path string, st *nodeState) *node {
	dev := sysfsName(path)
	info := hal.NodeInfo{
		NodeID:      uint16(st.nodeID),
		Generation:  st.generation,
		ROM:         st.rom,
		ProductName: readSysfsProp(h.sysfsRoot, dev, "model_name"),
		ProductID:   readSysfsInt(h.sysfsRoot, dev, "model"),
		VendorName:  readSysfsProp(h.sysfsRoot, dev, "vendor_name"),
		VendorID:    readSysfsInt(h.sysfsRoot, dev, "vendor"),
	}
	return &node{path: path, info: info}
}

// EnableSBP2 locates the local node and installs the pre-formed unit
// directory under the composite directory/unit key. The fd stays open:
// the kernel removes the descriptor when its owner goes away.
func (h *BusHAL) EnableSBP2(dir []uint32) error {
	if h.sbp2FD != -1 {
		return nil
	}

	paths, err := filepath.Glob(h.devGlob)
	if err != nil {
		return fmt.Errorf("globbing %s: %w", h.devGlob, err)
	}

	denied := 0
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err != nil {
			if isPermission(err) {
				denied++
			}
			continue
		}

		st, err := getNodeInfo(fd)
		if err != nil || !st.isLocal() {
			unix.Close(fd)
			continue
		}

		if _, err := addDescriptor(fd, unitDirectoryKey, dir); err != nil {
			pkg.LogWarn(pkg.ComponentHAL, "add descriptor failed",
				"path", path, "error", err)
			unix.Close(fd)
			continue
		}

		pkg.LogDebug(pkg.ComponentHAL, "SBP-2 descriptor installed",
			"path", path)
		h.sbp2FD = fd
		return nil
	}

	if denied > 0 {
		return pkg.ErrNoPerm
	}
	return fmt.Errorf("%w: no local node found", pkg.ErrIO)
}

// Close releases platform state. Closing the SBP-2 fd revokes the
// published descriptor.
func (h *BusHAL) Close() error {
	if h.sbp2FD != -1 {
		unix.Close(h.sbp2FD)
		h.sbp2FD = -1
	}
	return nil
}

// isPermission reports whether the error is a permission denial.
func isPermission(err error) bool {
	return errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM)
}

// =============================================================================
// Node
// =============================================================================

// node is one discovered foreign node, identified by its /dev/fw* path.
type node struct {
	path string
	info hal.NodeInfo
}

func (n *node) Info() hal.NodeInfo { return n.info }

// Open reopens the node's character device for transactions. A node that
// enumerated but can no longer be read surfaces as an I/O error.
func (n *node) Open() (hal.DeviceConn, error) {
	fd, err := unix.Open(n.path, unix.O_RDWR|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", pkg.ErrIO, n.path, err)
	}
	return &deviceConn{fd: fd, generation: n.info.Generation}, nil
}

// Destroy releases discovery state. Nothing is held open between
// discovery and Open on this platform.
func (n *node) Destroy() {}

// =============================================================================
// DeviceConn
// =============================================================================

// deviceConn carries asynchronous transactions over an open node fd.
// The generation is the one captured at discovery; it is never
// refreshed, so a stale handle fails every transaction with a
// generation-mismatch response until the caller re-enumerates.
type deviceConn struct {
	fd         int
	generation uint32
	closed     bool
}

func (c *deviceConn) Submit(req *hal.Request) error {
	var data []byte
	if !req.TCode.IsRead() {
		data = req.Data
	}
	err := sendRequest(c.fd, uint32(req.TCode), req.Addr, req.Length, data,
		uint64(req.Closure), c.generation)
	if err != nil {
		return fmt.Errorf("%w: send request: %v", pkg.ErrIO, err)
	}
	return nil
}

// Wait polls the fd for up to the timeout, then drains one event.
// Unsolicited events (bus resets) are skipped; only a response event
// completes the wait.
func (c *deviceConn) Wait(timeout time.Duration) (*hal.Completion, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, EventBufferSize)

	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			return nil, pkg.ErrIOTimeout
		}

		fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds()))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, fmt.Errorf("%w: poll: %v", pkg.ErrIO, err)
		}
		if n == 0 {
			return nil, pkg.ErrIOTimeout
		}

		nread, err := unix.Read(c.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				continue
			}
			return nil, fmt.Errorf("%w: read event: %v", pkg.ErrIO, err)
		}

		if eventType(buf[:nread]) != eventResponse {
			// A bus reset observed here does not refresh the stored
			// generation; the caller learns of it from the response
			// classification.
			continue
		}

		ev, err := decodeResponseEvent(buf[:nread])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pkg.ErrIO, err)
		}
		return &hal.Completion{
			Closure: int(ev.closure),
			Code:    classifyRCode(ev.rcode),
			Data:    ev.data,
		}, nil
	}
}

// Cancel is a no-op: with a pipeline depth of one there is never more
// than a single outstanding request, and an abandoned request's event is
// discarded by the next Wait or by closing the fd.
func (c *deviceConn) Cancel() {}

func (c *deviceConn) ReadDepth() int  { return PipelineDepth }
func (c *deviceConn) WriteDepth() int { return PipelineDepth }

func (c *deviceConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return unix.Close(c.fd)
}

// classifyRCode maps a wire (or kernel-extended) response code onto the
// portable classification.
func classifyRCode(rcode uint32) hal.ResponseCode {
	switch rcode {
	case rcodeComplete:
		return hal.ResponseComplete
	case rcodeBusy:
		return hal.ResponseBusy
	case rcodeGeneration:
		return hal.ResponseGeneration
	default:
		return hal.ResponseError
	}
}
