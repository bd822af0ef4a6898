// Package csr decodes IEEE 1212 configuration status ROMs ("CSRs") and
// builds the SBP-2 unit directory published on the host's local node.
//
// A CSR is a 256-quadlet structure describing a FireWire node's identity
// and capabilities. Parse extracts the GUID, maximum asynchronous request
// size, and vendor/model identifiers and names from a snapshot held in
// host endianness:
//
//	info := csr.Parse(&rom)
//	fmt.Printf("%s %s (GUID %016x)\n", info.VendorName, info.ProductName, info.GUID)
//
// The package also computes the IEEE 1212 CRC-16 used in block headers,
// and produces the canonical SBP-2 unit directory whose presence in the
// host's CSR persuades some target operating systems to honor DMA
// requests.
package csr
