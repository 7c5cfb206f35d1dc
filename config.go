package atcmd

import "time"

// Config holds the configuration for a serial session
type Config struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   Parity

	// LineEnding is appended to every command sent. Command text itself is
	// never modified.
	LineEnding string

	// ReadTimeout bounds Receive when the caller passes no explicit timeout.
	ReadTimeout time.Duration

	// ResponseTerminator ends a Receive early when seen in the accumulated
	// response. Empty means responses are bounded by the timeout alone;
	// there is no terminator all AT devices agree on.
	ResponseTerminator string
}

// Option is a functional option for configuring a session
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		LineEnding:  "\r",
		ReadTimeout: time.Second,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		switch parity {
		case ParityNone, ParityOdd, ParityEven:
			c.Parity = parity
			return nil
		}
		return ErrInvalidConfig
	}
}

// WithLineEnding sets the terminator appended to outgoing commands.
// Accepts "\r", "\n" or "\r\n".
func WithLineEnding(ending string) Option {
	return func(c *Config) error {
		switch ending {
		case "\r", "\n", "\r\n":
			c.LineEnding = ending
			return nil
		}
		return ErrInvalidConfig
	}
}

// WithReadTimeout sets the default Receive timeout
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithResponseTerminator sets the substring that ends a response early.
// An empty terminator restores timeout-only bounding.
func WithResponseTerminator(terminator string) Option {
	return func(c *Config) error {
		c.ResponseTerminator = terminator
		return nil
	}
}
