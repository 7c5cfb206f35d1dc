package atcmd

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")

	// Session lifecycle errors
	ErrNotConnected = errors.New("not connected to serial device")

	// Device bridge errors
	ErrBridgeUnavailable = errors.New("device bridge tool not available")
	ErrNoBridgeDevice    = errors.New("no device visible to the bridge")
)
