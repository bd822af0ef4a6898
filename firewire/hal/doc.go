// Package hal defines the Hardware Abstraction Layer interface between
// the portable FireWire forensics stack and its platform backends.
//
// The portable layer in github.com/ardnew/forensic1394/firewire drives
// three capabilities through this package:
//
//   - BusHAL: discovery, SBP-2 publication, teardown
//   - Node: per-node identity and open
//   - DeviceConn: pipelined asynchronous transaction submission
//
// Two backends exist: firewire-cdev on Linux (hal/linux) and IOKit on
// Mac OS X (hal/darwin). Tests substitute in-memory implementations.
//
// All interfaces are single-owner: no implementation is required to be
// safe for concurrent use.
package hal
