package firewire

import "time"

// AddressMask strips a device address to the 48-bit physical space
// addressable on a node. The upper 16 bits select the node and are
// supplied by the platform.
const AddressMask = 0x0000ffffffffffff

// RequestTimeout is how long the request engine waits for each
// completion before aborting the batch. A target that stops responding
// mid-acquisition must not wedge the caller.
const RequestTimeout = 150 * time.Millisecond

// SBP2SettleDelay is how long callers should wait after EnableSBP2
// before enumerating, giving the bus reset it triggers time to settle.
const SBP2SettleDelay = 2 * time.Second
