package csr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// romWith builds a 256-quadlet ROM image from a prefix of quadlets.
func romWith(quadlets ...uint32) *[ROMQuadlets]uint32 {
	var rom [ROMQuadlets]uint32
	copy(rom[:], quadlets)
	return &rom
}

// textLeaf encodes a minimal-ASCII descriptor leaf for the given text.
func textLeaf(text string) []uint32 {
	ndata := (len(text) + 3) / 4
	leaf := make([]uint32, 3+ndata)
	leaf[0] = uint32(2+ndata) << 16 // header: leaf length (CRC left zero)
	for i := 0; i < len(text); i++ {
		leaf[3+i/4] |= uint32(text[i]) << uint(24-8*(i%4))
	}
	return leaf
}

func TestParse_MinimalROM(t *testing.T) {
	// Bus-info block of five quadlets, a root directory holding a single
	// vendor-ID entry, and no descriptor leaves.
	rom := romWith(
		0x04040000, // bus-info length 4 (inclusive 5)
		0x31333934, // "1394"
		0x0000a000, // max request 2 << 10
		0x00112233, // GUID hi
		0x44556677, // GUID lo
		0x00010000, // root directory, one entry
		0x03000123, // vendor ID
	)

	info := Parse(rom)

	assert.Equal(t, 2048, info.MaxRequest)
	assert.Equal(t, int64(0x0011223344556677), info.GUID)
	assert.Equal(t, 0x000123, info.VendorID)
	assert.Equal(t, "", info.VendorName)
	assert.Equal(t, 0, info.ProductID)
	assert.Equal(t, "", info.ProductName)
}

func TestParse_ShortBusInfoBlock(t *testing.T) {
	// An inclusive length below five means no identity is extractable.
	// The length is read from bits 16-23 of quadlet 0: 3, inclusive 4.
	rom := romWith(
		0x04030000,
		0x31333934,
		0x0000a000,
		0x00112233,
	)

	info := Parse(rom)

	assert.Equal(t, DefaultMaxRequest, info.MaxRequest)
	assert.Equal(t, int64(0), info.GUID)
	assert.Equal(t, "", info.VendorName)
	assert.Equal(t, "", info.ProductName)
}

func TestParse_NonStandardBusKeepsDefaultMaxRequest(t *testing.T) {
	rom := romWith(
		0x04040000,
		0x46573131, // not "1394": quadlet 2 is bus-dependent
		0x0000f000,
		0x00000000,
		0x00000001,
	)

	info := Parse(rom)

	assert.Equal(t, DefaultMaxRequest, info.MaxRequest)
	assert.Equal(t, int64(1), info.GUID)
}

func TestParse_VendorAndModelWithNames(t *testing.T) {
	vendorLeaf := textLeaf("Acme")

	// Root directory: vendor ID + leaf pointer, model ID + leaf pointer.
	// The vendor leaf begins at index 10 (pointer at 7, offset 3); the
	// model leaf follows it (pointer at 9).
	quads := []uint32{
		0x04040000,
		0x31333934,
		0x00008000, // max request 2 << 8 = 512
		0xdeadbeef,
		0x00c0ffee,
		0x00040000,   // root directory, four entries
		0x0300609e,   // vendor ID
		0x81<<24 | 3, // vendor leaf pointer
		0x17000010,   // model ID
		0x81<<24 | uint32(10+len(vendorLeaf)-9), // model leaf pointer
	}
	quads = append(quads, vendorLeaf...)
	quads = append(quads, textLeaf("Blaster")...)

	info := Parse(romWith(quads...))

	assert.Equal(t, 512, info.MaxRequest)
	var wantGUID uint64 = 0xdeadbeef00c0ffee
	assert.Equal(t, int64(wantGUID), info.GUID)
	assert.Equal(t, 0x00609e, info.VendorID)
	assert.Equal(t, "Acme", info.VendorName)
	assert.Equal(t, 0x000010, info.ProductID)
	assert.Equal(t, "Blaster", info.ProductName)
}

func TestParse_TextLeafTruncation(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a' + byte(i%26)
	}
	leaf := textLeaf(string(long))

	// Directory at 5 has two entries (6, 7); the leaf pointer at index 7
	// with value 2 points to index 9.
	quads := []uint32{
		0x04040000,
		0x31333934,
		0x0000a000,
		0, 0,
		0x00020000,
		0x03000001,
		0x81<<24 | 2,
		0, // unused
	}
	quads = append(quads, leaf...)

	info := Parse(romWith(quads...))

	require.Equal(t, NameSize-1, len(info.VendorName))
	assert.Equal(t, string(long[:NameSize-1]), info.VendorName)
}

func TestParse_TextLeafInvalidSpecifier(t *testing.T) {
	quads := []uint32{
		0x04040000,
		0x31333934,
		0x0000a000,
		0, 0,
		0x00020000,
		0x03000001,
		0x81<<24 | 1, // leaf immediately follows the directory
		// Leaf with a nonzero specifier ID is not minimal ASCII.
		0x00030000,
		0x00000001,
		0x00000000,
		0x41424344,
	}

	info := Parse(romWith(quads...))

	assert.Equal(t, 0x000001, info.VendorID)
	assert.Equal(t, "", info.VendorName)
}

func TestParse_NoLeafAfterUnmatchedKey(t *testing.T) {
	// A leaf pointer that does not immediately follow the matched key is
	// ignored.
	quads := []uint32{
		0x04040000,
		0x31333934,
		0x0000a000,
		0, 0,
		0x00030000,
		0x03000001,
		0x0c008000, // unrelated entry between key and leaf pointer
		0x81<<24 | 1,
	}
	quads = append(quads, textLeaf("Ghost")...)

	info := Parse(romWith(quads...))

	assert.Equal(t, 0x000001, info.VendorID)
	assert.Equal(t, "", info.VendorName)
}

func TestParse_RootDirectoryBeyondROM(t *testing.T) {
	// A root directory whose claimed length extends past quadlet 255 is
	// treated as invalid; bus-info fields still parse.
	rom := romWith(
		0x04040000,
		0x31333934,
		0x0000a000,
		0x00112233,
		0x44556677,
		0xfb<<16, // 251 entries starting at 5 runs past the end
		0x03000123,
	)

	info := Parse(rom)

	assert.Equal(t, 2048, info.MaxRequest)
	assert.Equal(t, int64(0x0011223344556677), info.GUID)
	assert.Equal(t, 0, info.VendorID)
	assert.Equal(t, 0, info.ProductID)
}

func TestParse_LeafBeyondROM(t *testing.T) {
	quads := []uint32{
		0x04040000,
		0x31333934,
		0x0000a000,
		0, 0,
		0x00020000,
		0x03000001,
		0x81<<24 | 0x000f00, // leaf pointer far past quadlet 255
	}

	info := Parse(romWith(quads...))

	assert.Equal(t, 0x000001, info.VendorID)
	assert.Equal(t, "", info.VendorName)
}

func TestParse_PureFunction(t *testing.T) {
	rom := romWith(
		0x04040000,
		0x31333934,
		0x0000a000,
		0x00112233,
		0x44556677,
		0x00010000,
		0x03000123,
	)

	a := Parse(rom)
	b := Parse(rom)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Parse() not deterministic, diff -a +b\n%s", diff)
	}
}
