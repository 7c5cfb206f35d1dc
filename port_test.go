package atcmd

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestGetBaudRate(t *testing.T) {
	valid := []int{300, 600, 1200, 2400, 4800, 9600, 19200, 38400, 57600,
		115200, 230400, 460800, 921600, 1000000, 1500000, 2000000, 3000000, 4000000}
	for _, rate := range valid {
		if _, err := getBaudRate(rate); err != nil {
			t.Errorf("getBaudRate(%d) unexpected error: %v", rate, err)
		}
	}

	invalid := []int{0, -1, 7, 110, 123456}
	for _, rate := range invalid {
		if _, err := getBaudRate(rate); !errors.Is(err, ErrInvalidBaudRate) {
			t.Errorf("getBaudRate(%d) = %v, want ErrInvalidBaudRate", rate, err)
		}
	}
}

func TestClassifyOpenError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"ENOENT", unix.ENOENT, ErrDeviceNotFound},
		{"ENODEV", unix.ENODEV, ErrDeviceNotFound},
		{"ENXIO", unix.ENXIO, ErrDeviceNotFound},
		{"EACCES", unix.EACCES, ErrPermissionDenied},
		{"EPERM", unix.EPERM, ErrPermissionDenied},
		{"EBUSY", unix.EBUSY, ErrDeviceInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyOpenError("/dev/ttyUSB0", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyOpenError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	// Unrecognized errnos pass through wrapped
	got := classifyOpenError("/dev/ttyUSB0", unix.EINTR)
	if !errors.Is(got, unix.EINTR) {
		t.Errorf("classifyOpenError(EINTR) = %v, want wrapped EINTR", got)
	}
}

func TestOpenPortNotFound(t *testing.T) {
	_, err := openPort("/dev/atcmd-no-such-device", DefaultConfig())
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("openPort on missing device = %v, want ErrDeviceNotFound", err)
	}
}
