// Package atcmd provides serial sessions for AT-style command/response
// devices, plus port discovery and an optional adb-based device metadata
// query.
//
// The package is a transport, not an AT interpreter: commands are sent
// exactly as supplied (with a configurable line ending appended) and
// responses are returned as raw text.
//
// # Basic Usage
//
// Open a session with default configuration (115200 8N1, CR line ending,
// 1 second read timeout):
//
//	session, err := atcmd.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	response, err := session.Transact("ATI", 0)
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	session, err := atcmd.Open("/dev/ttyUSB0",
//	    atcmd.WithBaudRate(9600),
//	    atcmd.WithLineEnding("\r\n"),
//	    atcmd.WithReadTimeout(2*time.Second),
//	    atcmd.WithResponseTerminator("OK\r\n"),
//	)
//
// # Session Lifecycle
//
// A Session is either Connected or Disconnected. Send, Receive and Transact
// return ErrNotConnected on a disconnected session; a mid-session I/O
// failure drops the session back to Disconnected. Close is idempotent.
// There is no automatic reconnect.
//
// # Port Discovery
//
// List available serial ports and get USB device metadata:
//
//	ports, err := atcmd.ListPorts()
//	for _, portPath := range ports {
//	    info, _ := atcmd.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s (serial %s)\n", info.Path, info.Description, info.SerialNumber)
//	}
//
// An empty port list is a valid result, not an error.
//
// # Device Bridge
//
// Independently of the serial channel, a Bridge can fetch the device serial
// number and battery level through the adb command line tool:
//
//	info, err := atcmd.NewBridge().QueryDeviceInfo(ctx)
//	if errors.Is(err, atcmd.ErrBridgeUnavailable) {
//	    // adb not installed; the serial session is unaffected
//	}
//
// # Error Handling
//
// The package provides sentinel errors for robust error handling:
//
//	var (
//	    ErrDeviceNotFound    // open failed: no such device
//	    ErrDeviceInUse       // open failed: exclusively held elsewhere
//	    ErrNotConnected      // operation on a disconnected session
//	    ErrBridgeUnavailable // adb tool not found
//	    // ... and more
//	)
//
// Use errors.Is() for error type checking.
//
// # Platform Support
//
// Linux only: the transport is implemented directly on termios via
// golang.org/x/sys/unix, and USB metadata comes from sysfs.
package atcmd
