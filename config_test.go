package atcmd

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", config.BaudRate)
	}
	if config.DataBits != 8 || config.StopBits != 1 || config.Parity != ParityNone {
		t.Errorf("framing = %d%v%d, want 8N1", config.DataBits, config.Parity, config.StopBits)
	}
	if config.LineEnding != "\r" {
		t.Errorf("LineEnding = %q, want CR", config.LineEnding)
	}
	if config.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v, want 1s", config.ReadTimeout)
	}
	if config.ResponseTerminator != "" {
		t.Errorf("ResponseTerminator = %q, want empty (timeout bounded)", config.ResponseTerminator)
	}
}

func TestWithBaudRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    int
		wantErr bool
	}{
		{"9600 (valid)", 9600, false},
		{"115200 (valid)", 115200, false},
		{"921600 (valid)", 921600, false},
		{"12345 (not a standard rate)", 12345, true},
		{"0", 0, true},
		{"-9600", -9600, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := WithBaudRate(tt.rate)(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithBaudRate(%d) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
			}
			if err == nil && config.BaudRate != tt.rate {
				t.Errorf("BaudRate = %d, want %d", config.BaudRate, tt.rate)
			}
		})
	}
}

func TestWithDataBits(t *testing.T) {
	for _, bits := range []int{5, 6, 7, 8} {
		config := DefaultConfig()
		if err := WithDataBits(bits)(&config); err != nil {
			t.Errorf("WithDataBits(%d) unexpected error: %v", bits, err)
		}
	}
	for _, bits := range []int{0, 4, 9} {
		config := DefaultConfig()
		if err := WithDataBits(bits)(&config); err == nil {
			t.Errorf("WithDataBits(%d) expected error", bits)
		}
	}
}

func TestWithStopBits(t *testing.T) {
	for _, bits := range []int{1, 2} {
		config := DefaultConfig()
		if err := WithStopBits(bits)(&config); err != nil {
			t.Errorf("WithStopBits(%d) unexpected error: %v", bits, err)
		}
	}
	config := DefaultConfig()
	if err := WithStopBits(3)(&config); err == nil {
		t.Error("WithStopBits(3) expected error")
	}
}

func TestWithLineEnding(t *testing.T) {
	tests := []struct {
		name    string
		ending  string
		wantErr bool
	}{
		{"CR", "\r", false},
		{"LF", "\n", false},
		{"CRLF", "\r\n", false},
		{"empty", "", true},
		{"LFCR", "\n\r", true},
		{"arbitrary text", "END", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := WithLineEnding(tt.ending)(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithLineEnding(%q) error = %v, wantErr %v", tt.ending, err, tt.wantErr)
			}
			if err == nil && config.LineEnding != tt.ending {
				t.Errorf("LineEnding = %q, want %q", config.LineEnding, tt.ending)
			}
		})
	}
}

func TestWithReadTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		wantErr bool
	}{
		{"100ms (valid)", 100 * time.Millisecond, false},
		{"2500ms (valid)", 2500 * time.Millisecond, false},
		{"0 (invalid)", 0, true},
		{"-100ms (negative)", -100 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := WithReadTimeout(tt.timeout)(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithReadTimeout(%v) error = %v, wantErr %v", tt.timeout, err, tt.wantErr)
			}
			if err == nil && config.ReadTimeout != tt.timeout {
				t.Errorf("ReadTimeout = %v, want %v", config.ReadTimeout, tt.timeout)
			}
		})
	}
}

func TestWithResponseTerminator(t *testing.T) {
	config := DefaultConfig()
	if err := WithResponseTerminator("OK\r\n")(&config); err != nil {
		t.Fatalf("WithResponseTerminator unexpected error: %v", err)
	}
	if config.ResponseTerminator != "OK\r\n" {
		t.Errorf("ResponseTerminator = %q, want %q", config.ResponseTerminator, "OK\r\n")
	}

	// Empty restores timeout-only bounding
	if err := WithResponseTerminator("")(&config); err != nil {
		t.Fatalf("WithResponseTerminator(\"\") unexpected error: %v", err)
	}
	if config.ResponseTerminator != "" {
		t.Errorf("ResponseTerminator = %q, want empty", config.ResponseTerminator)
	}
}
