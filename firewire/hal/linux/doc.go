//go:build linux

// Package linux implements the FireWire HAL over the kernel's
// firewire-cdev ("juju") driver.
//
// Every node on every card appears as a character device matching
// /dev/fw*. Discovery opens each one, issues a get-info ioctl for its
// configuration ROM and bus-reset state, and keeps the foreign nodes;
// identity the kernel has already parsed is supplemented from
// /sys/bus/firewire/devices. Transactions are submitted with the
// send-request ioctl and completed by reading response events off the
// node's file descriptor, with poll bounding each wait.
//
// The pipeline depth is one: juju-era kernels drop responses when more
// than one request is outstanding on a single fd.
package linux
