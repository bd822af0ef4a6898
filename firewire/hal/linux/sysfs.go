//go:build linux

package linux

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// =============================================================================
// Sysfs Identity Supplements
// =============================================================================

// The kernel exposes identity it has already parsed from each node's ROM
// under /sys/bus/firewire/devices/fw<n>/. The properties are plain
// strings ending in a newline; numeric ones are formatted with a 0x
// prefix.

// sysfsName maps a device path like /dev/fw3 to its sysfs directory
// name (fw3).
func sysfsName(devPath string) string {
	return filepath.Base(devPath)
}

// readSysfsProp reads one property file for the named device, stripping
// the trailing newline. Missing properties return the empty string.
func readSysfsProp(root, dev, prop string) string {
	data, err := os.ReadFile(filepath.Join(root, dev, prop))
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}

// readSysfsInt reads one numeric property, accepting the kernel's 0x
// prefix. Missing or malformed properties return zero.
func readSysfsInt(root, dev, prop string) int {
	s := readSysfsProp(root, dev, prop)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0
	}
	return int(v)
}
