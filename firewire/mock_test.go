package firewire

import (
	"time"

	"github.com/ardnew/forensic1394/csr"
	"github.com/ardnew/forensic1394/firewire/hal"
	"github.com/ardnew/forensic1394/pkg"
)

// The following stubs implement the hal interfaces in memory so the
// portable layer can be exercised without FireWire hardware.

// mockConn is a scriptable DeviceConn. Submissions are recorded; the
// respond hook produces a completion per request, nil meaning "never
// completes" (the subsequent Wait times out).
type mockConn struct {
	readDepth  int
	writeDepth int

	respond func(req *hal.Request) *hal.Completion

	submitted []hal.Request
	pending   []*hal.Completion
	submitErr error
	inflight  int
	maxSeen   int
	cancelled int
	closed    int
}

func newMockConn() *mockConn {
	return &mockConn{readDepth: 1, writeDepth: 1}
}

// completeOK retires the request successfully, echoing a deterministic
// payload derived from the address for reads.
func completeOK(req *hal.Request) *hal.Completion {
	comp := &hal.Completion{Closure: req.Closure, Code: hal.ResponseComplete}
	if req.TCode.IsRead() {
		comp.Data = payloadAt(req.Addr, req.Length)
	}
	return comp
}

// payloadAt fabricates target memory contents for an address range.
func payloadAt(addr uint64, length int) []byte {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = byte(addr) + byte(i)
	}
	return buf
}

func (c *mockConn) Submit(req *hal.Request) error {
	if c.submitErr != nil {
		return c.submitErr
	}
	c.submitted = append(c.submitted, *req)
	c.inflight++
	if c.inflight > c.maxSeen {
		c.maxSeen = c.inflight
	}

	respond := c.respond
	if respond == nil {
		respond = completeOK
	}
	if comp := respond(req); comp != nil {
		c.pending = append(c.pending, comp)
	}
	return nil
}

func (c *mockConn) Wait(timeout time.Duration) (*hal.Completion, error) {
	if len(c.pending) == 0 {
		return nil, pkg.ErrIOTimeout
	}
	// Deliver newest-first so multi-request waves complete out of order.
	comp := c.pending[len(c.pending)-1]
	c.pending = c.pending[:len(c.pending)-1]
	c.inflight--
	return comp, nil
}

func (c *mockConn) Cancel() {
	c.cancelled++
	c.pending = nil
	c.inflight = 0
}

func (c *mockConn) ReadDepth() int  { return c.readDepth }
func (c *mockConn) WriteDepth() int { return c.writeDepth }

func (c *mockConn) Close() error {
	c.closed++
	return nil
}

// mockNode is a discovered node whose Open hands out a fixed conn.
type mockNode struct {
	info      hal.NodeInfo
	conn      *mockConn
	openErr   error
	opened    int
	destroyed int
}

func (n *mockNode) Info() hal.NodeInfo { return n.info }

func (n *mockNode) Open() (hal.DeviceConn, error) {
	if n.openErr != nil {
		return nil, n.openErr
	}
	n.opened++
	if n.conn == nil {
		n.conn = newMockConn()
	}
	return n.conn, nil
}

func (n *mockNode) Destroy() { n.destroyed++ }

// mockHAL is a scriptable BusHAL.
type mockHAL struct {
	nodes       []*mockNode
	denied      int
	discoverErr error
	discovers   int

	sbp2Dir []uint32
	sbp2Err error
	sbp2s   int

	closed int
}

func (h *mockHAL) Discover() (hal.DiscoveryResult, error) {
	h.discovers++
	if h.discoverErr != nil {
		return hal.DiscoveryResult{}, h.discoverErr
	}
	res := hal.DiscoveryResult{Denied: h.denied}
	for _, n := range h.nodes {
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

func (h *mockHAL) EnableSBP2(dir []uint32) error {
	if h.sbp2Err != nil {
		return h.sbp2Err
	}
	h.sbp2s++
	h.sbp2Dir = append([]uint32(nil), dir...)
	return nil
}

func (h *mockHAL) Close() error {
	h.closed++
	return nil
}

// nodeWithGUID builds a node whose ROM advertises the given GUID and a
// 2048-byte maximum request size.
func nodeWithGUID(guid int64, nodeID uint16, generation uint32) *mockNode {
	var rom [csr.ROMQuadlets]uint32
	rom[0] = 0x04040000
	rom[1] = 0x31333934
	rom[2] = 0x0000a000
	rom[3] = uint32(guid >> 32)
	rom[4] = uint32(guid)

	return &mockNode{info: hal.NodeInfo{
		NodeID:     nodeID,
		Generation: generation,
		ROM:        rom,
	}}
}
