package firewire

import (
	"github.com/ardnew/forensic1394/firewire/hal"
	"github.com/ardnew/forensic1394/pkg"
)

// Request describes one transfer of a vectored batch: a 48-bit device
// address and a caller-owned buffer whose length is the transfer size.
// The buffer is borrowed only for the duration of the call.
type Request struct {
	Addr uint64
	Buf  []byte
}

// Read copies len(buf) bytes from the device's physical address addr
// into buf. A length of exactly four bytes is issued as a quadlet
// transaction, any other length as a block transaction.
func (d *Device) Read(addr uint64, buf []byte) error {
	return d.ReadRequests([]Request{{Addr: addr, Buf: buf}})
}

// Write copies buf to the device's physical address addr.
func (d *Device) Write(addr uint64, buf []byte) error {
	return d.WriteRequests([]Request{{Addr: addr, Buf: buf}})
}

// ReadRequests executes the requests as one pipelined batch of reads.
// Requests are submitted in order; completions may arrive out of order
// but land in the correct buffers. On any failure the whole batch
// aborts: buffers of requests that had not completed are unmodified, and
// already-transferred ranges are not retried.
func (d *Device) ReadRequests(reqs []Request) error {
	return d.transfer(reqs, false)
}

// WriteRequests executes the requests as one pipelined batch of writes.
// On abort, writes already in flight may have reached the target; the
// caller must treat the affected ranges as indeterminate.
func (d *Device) WriteRequests(reqs []Request) error {
	return d.transfer(reqs, true)
}

// transfer drives a batch through the backend pipeline. Submission is
// greedy up to the backend's pipeline depth; after each round exactly
// one completion is awaited and applied. Batches never overlap: the
// engine does not return until every request retired or the batch
// aborted.
func (d *Device) transfer(reqs []Request, write bool) error {
	if !d.valid {
		return pkg.ErrClosed
	}
	if !d.open {
		return pkg.ErrNotOpen
	}
	if len(reqs) == 0 {
		return nil
	}

	for i := range reqs {
		if len(reqs[i].Buf) > d.maxRequest {
			return pkg.ErrIOSize
		}
	}

	depth := d.conn.ReadDepth()
	if write {
		depth = d.conn.WriteDepth()
	}
	if depth < 1 {
		depth = 1
	}

	next, inflight := 0, 0
	for next < len(reqs) || inflight > 0 {
		for inflight < depth && next < len(reqs) {
			r := reqs[next]
			hreq := &hal.Request{
				Closure: next,
				TCode:   hal.SelectTCode(write, len(r.Buf)),
				Addr:    r.Addr & AddressMask,
				Length:  len(r.Buf),
			}
			if write {
				hreq.Data = r.Buf
			}
			if err := d.conn.Submit(hreq); err != nil {
				return d.abort(err)
			}
			inflight++
			next++
		}

		comp, err := d.conn.Wait(RequestTimeout)
		if err != nil {
			return d.abort(err)
		}
		inflight--

		switch comp.Code {
		case hal.ResponseComplete:
		case hal.ResponseBusy:
			return d.abort(pkg.ErrBusy)
		case hal.ResponseGeneration:
			return d.abort(pkg.ErrBusReset)
		default:
			return d.abort(pkg.ErrIO)
		}

		if !write {
			if comp.Closure < 0 || comp.Closure >= len(reqs) {
				return d.abort(pkg.ErrIO)
			}
			// A short (or long) read is fatal for the batch.
			if len(comp.Data) != len(reqs[comp.Closure].Buf) {
				return d.abort(pkg.ErrIO)
			}
			copy(reqs[comp.Closure].Buf, comp.Data)
		}
	}

	return nil
}

// abort cancels whatever is still executing in the pipeline and hands
// the batch error back to the caller.
func (d *Device) abort(err error) error {
	d.conn.Cancel()
	pkg.LogDebug(pkg.ComponentTransfer, "batch aborted", "error", err)
	return err
}
