//go:build darwin

// Package darwin implements the FireWire HAL over IOKit's IOFireWireLib.
//
// Discovery matches IOFireWireDevice services in the I/O registry and
// reads each node's configuration ROM from the "FireWire Device ROM /
// Offset 0" property, byte-swapping its big-endian quadlets on ingest.
// The SBP-2 unit directory is published on the IOFireWireLocalNode as a
// local unit directory, entry by entry.
//
// Transactions run on preallocated command objects, four for reads and
// one for writes, completed by a callback dispatcher registered on the
// calling thread's run loop under a private mode. Waiting for a
// completion runs that run loop mode up to the request timeout.
//
// The COM-style interface plumbing lives in a small C shim (iokit.c);
// the Go side only moves buffers and classifications across it.
package darwin
