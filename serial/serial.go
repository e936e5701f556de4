// Package serial provides utilities for searching for and working with serial based devices.
package serial

import (
	"io"
	"time"

	"github.com/pkg/errors"
	ser "go.bug.st/serial"
)

// Description describes a specific serial device.
type Description struct {
	Type Type
	Path string
}

// Type identifies a specific serial device type, like an arduino.
type Type string

// The known device types.
const (
	TypeUnknown = Type("unknown")
	TypeArduino = Type("arduino")
)

// ReportBaudRate is the rate the range sampler reports at.
const ReportBaudRate = 2000000

// Options to be passed to Open().
type Options struct {
	BaudRate    int
	DataBits    int
	StopBits    StopBits
	Parity      Parity
	ReadTimeout time.Duration
}

// Parity describes a serial port parity setting.
type Parity int

const (
	// NoParity disable parity control (default).
	NoParity Parity = iota
	// OddParity enable odd-parity check.
	OddParity
	// EvenParity enable even-parity check.
	EvenParity
)

// StopBits describe a serial port stop bits setting.
type StopBits int

const (
	// OneStopBit sets 1 stop bit (default).
	OneStopBit StopBits = iota
	// OnePointFiveStopBits sets 1.5 stop bits.
	OnePointFiveStopBits
	// TwoStopBits sets 2 stop bits.
	TwoStopBits
)

// ReportOptions returns the 8N1 options of the reporting channel at the given baud rate, or
// ReportBaudRate when baud is not positive.
func ReportOptions(baud int) Options {
	if baud <= 0 {
		baud = ReportBaudRate
	}
	return Options{
		BaudRate: baud,
		DataBits: 8,
		StopBits: OneStopBit,
		Parity:   NoParity,
	}
}

// Normalize validates the options and applies defaults for any unset values.
func (o Options) Normalize() (Options, error) {
	opts := o
	if opts.BaudRate <= 0 {
		opts.BaudRate = ReportBaudRate
	}
	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, errors.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}
	if opts.StopBits < OneStopBit || opts.StopBits > TwoStopBits {
		return opts, errors.Errorf("invalid stop bits setting %d", opts.StopBits)
	}
	if opts.Parity < NoParity || opts.Parity > EvenParity {
		return opts, errors.Errorf("unsupported parity setting %d", opts.Parity)
	}
	if opts.ReadTimeout < 0 {
		return opts, errors.Errorf("invalid read timeout %v", opts.ReadTimeout)
	}
	return opts, nil
}

// mode converts the options into the structure go.bug.st/serial opens ports with.
func (o Options) mode() (*ser.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	mode := &ser.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
	}
	switch opts.StopBits {
	case OneStopBit:
		mode.StopBits = ser.OneStopBit
	case OnePointFiveStopBits:
		mode.StopBits = ser.OnePointFiveStopBits
	case TwoStopBits:
		mode.StopBits = ser.TwoStopBits
	}
	switch opts.Parity {
	case NoParity:
		mode.Parity = ser.NoParity
	case OddParity:
		mode.Parity = ser.OddParity
	case EvenParity:
		mode.Parity = ser.EvenParity
	}
	return mode, nil
}

// Open attempts to open a serial device on the given path. It's a variable
// in case you need to override it during tests.
var Open = func(devicePath string, options Options) (io.ReadWriteCloser, error) {
	mode, err := options.mode()
	if err != nil {
		return nil, err
	}

	device, err := ser.Open(devicePath, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial device %q", devicePath)
	}
	if options.ReadTimeout > 0 {
		if err := device.SetReadTimeout(options.ReadTimeout); err != nil {
			return nil, closeOnError(device, err)
		}
	}

	return device, nil
}

func closeOnError(c io.Closer, err error) error {
	if closeErr := c.Close(); closeErr != nil {
		return errors.Wrapf(err, "also failed to close: %v", closeErr)
	}
	return err
}
