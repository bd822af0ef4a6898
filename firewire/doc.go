// Package firewire implements host-side memory forensics over IEEE 1394.
//
// It enumerates FireWire devices physically attached to the host, reads
// and writes arbitrary physical-memory addresses on those devices by way
// of the DMA capability of the FireWire asynchronous transaction layer,
// and reports identity scraped from each device's configuration status
// ROM. Acquisition tools use it to dump the memory of a target machine
// connected over a FireWire cable.
//
// # Architecture
//
// The portable layer in this package drives a narrow platform interface
// (package hal) with two backends: firewire-cdev on Linux and IOKit on
// Mac OS X.
//
//   - Bus owns the platform handle, the device list, and any SBP-2
//     publication
//   - Device represents one foreign node at a bus-reset generation
//   - The request engine pipelines asynchronous read/write batches
//
// # Usage
//
//	bus, err := firewire.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Close()
//
//	bus.EnableSBP2()
//	time.Sleep(firewire.SBP2SettleDelay)
//
//	devs, err := bus.Devices(nil)
//	if err != nil || len(devs) == 0 {
//	    log.Fatal("no devices")
//	}
//
//	d := devs[0]
//	d.Open()
//	buf := make([]byte, 512)
//	d.Read(50*1024*1024, buf)
//
// # Bus resets
//
// A bus reset invalidates every node ID and generation on the fabric.
// Requests issued afterwards fail with pkg.ErrBusReset; recovery is the
// caller's job: re-enumerate and match devices by GUID. Re-enumeration
// itself invalidates all previously returned device handles.
//
// # Concurrency
//
// The stack is single-threaded by contract. Neither Bus nor Device may
// be shared between goroutines without external serialization.
//
// Only asynchronous block and quadlet transactions are supported;
// isochronous transfers are out of scope.
package firewire
