// Package pkg provides shared utilities for the forensic1394 FireWire stack.
//
// This package contains common functionality used across the portable layer
// and the platform HALs, including:
//
//   - Structured logging via github.com/sirupsen/logrus
//   - Sentinel error values for FireWire transaction failures
//   - The closed Result taxonomy used by language bindings
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps logrus with FireWire-specific context:
//
//	pkg.SetLogLevel(logrus.DebugLevel)
//	pkg.LogInfo(pkg.ComponentBus, "device enumerated", "guid", guid)
//
// # Errors
//
// Transaction failures are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrBusReset) {
//	    // Re-enumerate; all device handles are invalid.
//	}
//
// The Result type maps the same conditions onto the closed set of
// non-positive integers used by callers that multiplex a device count and
// an error condition through one value.
package pkg
