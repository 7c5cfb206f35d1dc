package atcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeFakeBridge drops an executable adb stand-in into a temp dir
func writeFakeBridge(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adb")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake bridge: %v", err)
	}
	return path
}

const fakeBridgeScript = `#!/bin/sh
case "$1" in
devices)
	printf 'List of devices attached\nG000XY1234567890\tdevice\n'
	;;
get-serialno)
	printf 'G000XY1234567890\n'
	;;
shell)
	printf '87\n'
	;;
esac
`

func TestQueryDeviceInfo(t *testing.T) {
	bridge := NewBridgeWithPath(writeFakeBridge(t, fakeBridgeScript))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := bridge.QueryDeviceInfo(ctx)
	if err != nil {
		t.Fatalf("QueryDeviceInfo failed: %v", err)
	}
	if info.SerialNumber != "G000XY1234567890" {
		t.Errorf("SerialNumber = %q, want %q", info.SerialNumber, "G000XY1234567890")
	}
	if info.BatteryLevel != 87 {
		t.Errorf("BatteryLevel = %d, want 87", info.BatteryLevel)
	}
}

func TestQueryDeviceInfoToolAbsent(t *testing.T) {
	bridge := NewBridgeWithPath("/nonexistent/adb")

	if bridge.Available() {
		t.Fatal("bridge should not be available")
	}
	_, err := bridge.QueryDeviceInfo(context.Background())
	if !errors.Is(err, ErrBridgeUnavailable) {
		t.Errorf("QueryDeviceInfo = %v, want ErrBridgeUnavailable", err)
	}
}

func TestQueryDeviceInfoNoDevice(t *testing.T) {
	script := `#!/bin/sh
case "$1" in
devices)
	printf 'List of devices attached\n'
	;;
esac
`
	bridge := NewBridgeWithPath(writeFakeBridge(t, script))

	_, err := bridge.QueryDeviceInfo(context.Background())
	if !errors.Is(err, ErrNoBridgeDevice) {
		t.Errorf("QueryDeviceInfo = %v, want ErrNoBridgeDevice", err)
	}
}

func TestQueryDeviceInfoUnauthorizedDevice(t *testing.T) {
	// Unauthorized devices are listed but not usable
	script := `#!/bin/sh
case "$1" in
devices)
	printf 'List of devices attached\nG000XY1234567890\tunauthorized\n'
	;;
esac
`
	bridge := NewBridgeWithPath(writeFakeBridge(t, script))

	_, err := bridge.QueryDeviceInfo(context.Background())
	if !errors.Is(err, ErrNoBridgeDevice) {
		t.Errorf("QueryDeviceInfo = %v, want ErrNoBridgeDevice", err)
	}
}

func TestQueryDeviceInfoBadBattery(t *testing.T) {
	script := `#!/bin/sh
case "$1" in
devices)
	printf 'List of devices attached\nG000XY1234567890\tdevice\n'
	;;
get-serialno)
	printf 'G000XY1234567890\n'
	;;
shell)
	printf 'cat: no such file\n'
	;;
esac
`
	bridge := NewBridgeWithPath(writeFakeBridge(t, script))

	_, err := bridge.QueryDeviceInfo(context.Background())
	if err == nil {
		t.Fatal("expected parse error for non-numeric battery output")
	}
}

// A bridge failure never touches the serial session
func TestBridgeFailureLeavesSessionConnected(t *testing.T) {
	s := newTestSession(t, &fakePort{})
	bridge := NewBridgeWithPath("/nonexistent/adb")

	if _, err := bridge.QueryDeviceInfo(context.Background()); err == nil {
		t.Fatal("expected bridge error")
	}
	if !s.Connected() {
		t.Error("session state changed by an independent bridge failure")
	}
}

func TestHasBridgeDevice(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want bool
	}{
		{"one device", "List of devices attached\nabc123\tdevice\n", true},
		{"header only", "List of devices attached\n", false},
		{"empty", "", false},
		{"offline", "List of devices attached\nabc123\toffline\n", false},
		{"second of two", "List of devices attached\nabc\tunauthorized\ndef\tdevice\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasBridgeDevice(tt.out); got != tt.want {
				t.Errorf("hasBridgeDevice(%q) = %v, want %v", tt.out, got, tt.want)
			}
		})
	}
}
