package atcmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakePort is an in-memory Port. With echo set it reflects every write back
// into the read buffer, mimicking a device in command echo mode.
type fakePort struct {
	mu      sync.Mutex
	rx      bytes.Buffer // bytes available to Read
	tx      bytes.Buffer // bytes the session wrote
	echo    bool
	readErr error
	closed  bool
}

func (f *fakePort) Read(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, ErrPortClosed
	}
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.rx.Read(buf)
}

func (f *fakePort) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, ErrPortClosed
	}
	if f.echo {
		f.rx.Write(data)
	}
	return f.tx.Write(data)
}

func (f *fakePort) ReadContext(ctx context.Context, buf []byte) (int, error) {
	for {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return 0, ErrPortClosed
		}
		if f.readErr != nil {
			err := f.readErr
			f.mu.Unlock()
			return 0, err
		}
		if f.rx.Len() > 0 {
			n, _ := f.rx.Read(buf)
			f.mu.Unlock()
			return n, nil
		}
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (f *fakePort) WriteContext(_ context.Context, data []byte) (int, error) {
	return f.Write(data)
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrPortClosed
	}
	f.closed = true
	return nil
}

func (f *fakePort) Drain() error       { return nil }
func (f *fakePort) FlushInput() error  { return nil }
func (f *fakePort) FlushOutput() error { return nil }
func (f *fakePort) SetRTS(bool) error  { return nil }
func (f *fakePort) SetDTR(bool) error  { return nil }

func (f *fakePort) ModemSignals() (ModemSignals, error) {
	return ModemSignals{}, nil
}

func (f *fakePort) written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tx.String()
}

// newTestSession wires a Session directly onto a fake transport
func newTestSession(t *testing.T, port Port, opts ...Option) *Session {
	t.Helper()
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			t.Fatalf("bad option: %v", err)
		}
	}
	return &Session{device: "/dev/fake0", config: config, port: port, state: StateConnected}
}

func TestSendBeforeOpen(t *testing.T) {
	s := &Session{config: DefaultConfig()}

	if err := s.Send("ATI"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send on disconnected session = %v, want ErrNotConnected", err)
	}
	if _, err := s.Receive(10 * time.Millisecond); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Receive on disconnected session = %v, want ErrNotConnected", err)
	}
	if _, err := s.Transact("ATI", 10*time.Millisecond); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Transact on disconnected session = %v, want ErrNotConnected", err)
	}
	if _, err := s.ModemSignals(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ModemSignals on disconnected session = %v, want ErrNotConnected", err)
	}
}

func TestOpenBadDevice(t *testing.T) {
	_, err := Open("/dev/atcmd-no-such-device")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Open on missing device = %v, want ErrDeviceNotFound", err)
	}
}

func TestOpenBadOption(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(12345))
	if !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Open with bad baud = %v, want ErrInvalidBaudRate", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	s := newTestSession(t, &fakePort{})

	if !s.Connected() {
		t.Fatal("session should start connected")
	}
	if err := s.Close(); err != nil {
		t.Errorf("first Close = %v, want nil", err)
	}
	if s.State() != StateDisconnected {
		t.Errorf("state after Close = %v, want disconnected", s.State())
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil (idempotent)", err)
	}
}

func TestSendAppendsLineEnding(t *testing.T) {
	port := &fakePort{}
	s := newTestSession(t, port, WithLineEnding("\r\n"))

	if err := s.Send("AT+CSQ"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := port.written(); got != "AT+CSQ\r\n" {
		t.Errorf("wire bytes = %q, want %q", got, "AT+CSQ\r\n")
	}
}

func TestSendVerbatim(t *testing.T) {
	// The session is a transport, not an interpreter: malformed commands
	// go out exactly as typed.
	port := &fakePort{}
	s := newTestSession(t, port)

	if err := s.Send("not an at command"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := port.written(); got != "not an at command\r" {
		t.Errorf("wire bytes = %q, want verbatim text plus CR", got)
	}
}

func TestEchoRoundTrip(t *testing.T) {
	port := &fakePort{echo: true}
	s := newTestSession(t, port)

	if err := s.Send("ATI"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	response, err := s.Receive(200 * time.Millisecond)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if !strings.Contains(response, "ATI") {
		t.Errorf("response = %q, want it to contain %q", response, "ATI")
	}
}

func TestTransactWithTerminator(t *testing.T) {
	port := &fakePort{echo: true}
	s := newTestSession(t, port, WithResponseTerminator("\r"))

	start := time.Now()
	response, err := s.Transact("AT+GMR", 5*time.Second)
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if !strings.Contains(response, "AT+GMR") {
		t.Errorf("response = %q, want it to contain the echoed command", response)
	}
	// Terminator must end the read well before the timeout
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Transact took %v despite terminator", elapsed)
	}
}

func TestReceiveTimeout(t *testing.T) {
	s := newTestSession(t, &fakePort{})

	timeout := 150 * time.Millisecond
	start := time.Now()
	response, err := s.Receive(timeout)
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Receive on silent device = %v, want nil (silence is not an error)", err)
	}
	if response != "" {
		t.Errorf("response = %q, want empty", response)
	}
	if elapsed < timeout {
		t.Errorf("Receive returned after %v, before the %v timeout", elapsed, timeout)
	}
	if elapsed > timeout+500*time.Millisecond {
		t.Errorf("Receive took %v, well past the %v timeout", elapsed, timeout)
	}
	if !s.Connected() {
		t.Error("timeout must not drop the session")
	}
}

func TestReceiveDefaultTimeout(t *testing.T) {
	s := newTestSession(t, &fakePort{}, WithReadTimeout(100*time.Millisecond))

	start := time.Now()
	if _, err := s.Receive(0); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond || elapsed > time.Second {
		t.Errorf("Receive(0) took %v, want roughly the configured 100ms", elapsed)
	}
}

func TestReadErrorDropsSession(t *testing.T) {
	port := &fakePort{readErr: io.ErrUnexpectedEOF}
	s := newTestSession(t, port)

	_, err := s.Receive(time.Second)
	if err == nil {
		t.Fatal("Receive should fail on transport error")
	}
	if s.Connected() {
		t.Error("I/O failure must force the session to disconnected")
	}
	if err := s.Send("AT"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send after drop = %v, want ErrNotConnected", err)
	}
	// Close after a forced drop stays a no-op
	if err := s.Close(); err != nil {
		t.Errorf("Close after drop = %v, want nil", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	s := newTestSession(t, &fakePort{})
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Send("ATI"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send after Close = %v, want ErrNotConnected", err)
	}
}
