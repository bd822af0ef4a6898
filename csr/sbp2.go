package csr

// sbp2Entries is the canonical SBP-2 unit directory advertised on the
// local node. The exact key/value sequence matters: deviating from it
// breaks DMA compatibility with Windows targets.
var sbp2Entries = [...]uint32{
	0x12<<24 | 0x00609e, // Unit spec ID
	0x13<<24 | 0x010483, // Unit software version
	0x21<<24 | 0x000001,
	0x3a<<24 | 0x000a08,
	0x3e<<24 | 0x004c10,
	0x38<<24 | 0x00609e, // Command set spec ID
	0x39<<24 | 0x0104d8, // Command set
	0x3b<<24 | 0x000000,
	0x3c<<24 | 0x0a2700,
	0x54<<24 | 0x004000, // Management agent offset
	0x3d<<24 | 0x000003,
	0x14<<24 | 0x0e0000, // Logical unit number
	0x17<<24 | 0x000021, // Model
}

// SBP2UnitDirectory returns the unit directory as a pre-formed descriptor
// block: a header quadlet carrying the entry count and CRC-16, followed
// by the canonical entries. Backends that install whole descriptors
// (Linux firewire-cdev) submit this block as-is.
func SBP2UnitDirectory() []uint32 {
	dir := make([]uint32, 0, len(sbp2Entries)+1)
	dir = append(dir, uint32(len(sbp2Entries))<<16|uint32(CRC16(sbp2Entries[:])))
	return append(dir, sbp2Entries[:]...)
}

// SBP2UnitDirectoryEntries returns only the key/value entries, without
// the header quadlet, for backends that add entries one at a time
// (IOKit local unit directories).
func SBP2UnitDirectoryEntries() []uint32 {
	entries := make([]uint32, len(sbp2Entries))
	copy(entries, sbp2Entries[:])
	return entries
}
