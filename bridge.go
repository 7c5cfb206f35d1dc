package atcmd

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DeviceInfo holds identifying metadata fetched over the debug bridge
type DeviceInfo struct {
	SerialNumber string
	BatteryLevel int // percent
}

// Bridge queries a connected device through the adb command line tool.
// The bridge channel is fully independent of the serial session: every
// bridge failure is soft and leaves any open session untouched.
type Bridge struct {
	path string
}

// NewBridge returns a bridge using the adb found on PATH
func NewBridge() *Bridge {
	return NewBridgeWithPath("adb")
}

// NewBridgeWithPath returns a bridge using a specific adb binary
func NewBridgeWithPath(path string) *Bridge {
	if path == "" {
		path = "adb"
	}
	return &Bridge{path: path}
}

// Available checks whether the bridge tool can be invoked at all
func (b *Bridge) Available() bool {
	_, err := exec.LookPath(b.path)
	return err == nil
}

// Battery capacity sysfs path on Android devices
const batteryCapacityPath = "/sys/class/power_supply/battery/capacity"

// QueryDeviceInfo retrieves the device serial number and battery level.
// Returns ErrBridgeUnavailable when the tool is absent and ErrNoBridgeDevice
// when no device is enumerated; both are recoverable conditions.
func (b *Bridge) QueryDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	if !b.Available() {
		return nil, ErrBridgeUnavailable
	}

	out, err := exec.CommandContext(ctx, b.path, "devices").Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBridgeUnavailable, err)
	}
	if !hasBridgeDevice(string(out)) {
		return nil, ErrNoBridgeDevice
	}

	serialOut, err := exec.CommandContext(ctx, b.path, "get-serialno").Output()
	if err != nil {
		return nil, fmt.Errorf("query serial number: %w", err)
	}
	serialNumber := strings.TrimSpace(string(serialOut))
	if serialNumber == "" || serialNumber == "unknown" {
		return nil, ErrNoBridgeDevice
	}

	batteryOut, err := exec.CommandContext(ctx, b.path, "shell", "cat", batteryCapacityPath).Output()
	if err != nil {
		return nil, fmt.Errorf("query battery level: %w", err)
	}
	raw := strings.TrimSpace(string(batteryOut))
	batteryLevel, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("parse battery level %q: %w", raw, err)
	}

	return &DeviceInfo{
		SerialNumber: serialNumber,
		BatteryLevel: batteryLevel,
	}, nil
}

// hasBridgeDevice parses `adb devices` output: a header line followed by
// one "<serial>\tdevice" line per usable device. Unauthorized or offline
// devices do not count.
func hasBridgeDevice(out string) bool {
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return false
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "device" {
			return true
		}
	}
	return false
}
