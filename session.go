package atcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State is the session lifecycle state
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Session owns a single open serial connection. It is an explicit value
// passed to every operation; the presentation controller owns it and there
// is no process-wide current connection.
//
// All operations are blocking and serialized by an internal mutex, so at
// most one transaction is in flight at a time. Callers that need a
// responsive interface run Transact on their own goroutine.
type Session struct {
	mu     sync.Mutex
	device string
	config Config
	port   Port
	state  State
}

// Open opens the named serial device and returns a connected Session.
// On failure the device is left untouched and no session exists; the error
// wraps ErrDeviceNotFound, ErrPermissionDenied or ErrDeviceInUse where the
// cause is known.
func Open(device string, opts ...Option) (*Session, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	p, err := openPort(device, config)
	if err != nil {
		return nil, err
	}

	return &Session{
		device: device,
		config: config,
		port:   p,
		state:  StateConnected,
	}, nil
}

// Device returns the endpoint path this session was opened on
func (s *Session) Device() string {
	return s.device
}

// Config returns the session configuration
func (s *Session) Config() Config {
	return s.config
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected reports whether the session is open
func (s *Session) Connected() bool {
	return s.State() == StateConnected
}

// Send writes command text plus the configured line ending to the device.
// The text is otherwise sent exactly as supplied; no AT syntax validation
// is performed. Returns ErrNotConnected on a closed session. A write
// failure drops the session to Disconnected.
func (s *Session) Send(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(command)
}

// Receive reads response text until the configured response terminator is
// seen or the timeout elapses, whichever comes first. A timeout is not an
// error: silence is normal device behavior, so whatever arrived (possibly
// nothing) is returned with a nil error. A read failure drops the session
// to Disconnected. timeout <= 0 means the configured ReadTimeout.
func (s *Session) Receive(timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receive(timeout)
}

// Transact sends a command and reads its response as one serialized
// exchange. Equivalent to Send followed by Receive with no other
// transaction able to interleave.
func (s *Session) Transact(command string, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.send(command); err != nil {
		return "", err
	}
	return s.receive(timeout)
}

// Close releases the endpoint and transitions to Disconnected. Closing an
// already-closed session is a no-op, not an error.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return nil
	}

	err := s.port.Close()
	s.port = nil
	s.state = StateDisconnected
	if err != nil && !errors.Is(err, ErrPortClosed) {
		return err
	}
	return nil
}

// ModemSignals reads the current modem control line states
func (s *Session) ModemSignals() (ModemSignals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return ModemSignals{}, ErrNotConnected
	}
	return s.port.ModemSignals()
}

// SetRTS sets the RTS control line
func (s *Session) SetRTS(state bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return ErrNotConnected
	}
	return s.port.SetRTS(state)
}

// SetDTR sets the DTR control line
func (s *Session) SetDTR(state bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return ErrNotConnected
	}
	return s.port.SetDTR(state)
}

func (s *Session) send(command string) error {
	if s.state != StateConnected {
		return ErrNotConnected
	}

	if _, err := s.port.Write([]byte(command + s.config.LineEnding)); err != nil {
		s.drop()
		return fmt.Errorf("write to %s failed: %w", s.device, err)
	}
	return nil
}

func (s *Session) receive(timeout time.Duration) (string, error) {
	if s.state != StateConnected {
		return "", ErrNotConnected
	}

	if timeout <= 0 {
		timeout = s.config.ReadTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var response strings.Builder
	buf := make([]byte, 256)
	for {
		n, err := s.port.ReadContext(ctx, buf)
		if n > 0 {
			response.Write(buf[:n])
			if term := s.config.ResponseTerminator; term != "" && strings.Contains(response.String(), term) {
				return response.String(), nil
			}
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return response.String(), nil
			}
			s.drop()
			return response.String(), fmt.Errorf("read from %s failed: %w", s.device, err)
		}
	}
}

// drop force-closes after a mid-session I/O failure. Recovery is operator
// initiated: reopen the session.
func (s *Session) drop() {
	if s.port != nil {
		s.port.Close()
		s.port = nil
	}
	s.state = StateDisconnected
}
