package genericlinux

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/bulkpick/rangesampler/components/board"
)

// I2cBus is an I2C bus opened through the periph.io host drivers. Transactions from every handle
// on the bus are serialized, and only one handle per address may be open at a time.
type I2cBus struct {
	name string

	mu      sync.Mutex
	bus     i2c.BusCloser
	handles map[byte]struct{}
}

// NewI2cBus initializes the host drivers and opens the named bus. An empty name opens the first
// bus the host reports.
func NewI2cBus(name string) (*I2cBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize host drivers")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open i2c bus %q", name)
	}
	return newI2cBus(name, bus), nil
}

func newI2cBus(name string, bus i2c.BusCloser) *I2cBus {
	return &I2cBus{name: name, bus: bus, handles: map[byte]struct{}{}}
}

// OpenHandle lets the I2cBus type implement the board.I2C interface.
func (b *I2cBus) OpenHandle(addr byte) (board.I2CHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handles[addr]; ok {
		return nil, errors.Errorf("i2c address 0x%02x on bus %q already has an open handle", addr, b.name)
	}
	b.handles[addr] = struct{}{}
	return &i2cHandle{bus: b, dev: &i2c.Dev{Bus: b.bus, Addr: uint16(addr)}, addr: addr}, nil
}

// Close releases the underlying bus.
func (b *I2cBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Close()
}

func (b *I2cBus) String() string {
	return fmt.Sprintf("i2c bus %q (%s)", b.name, b.bus)
}

// i2cHandle wraps a periph i2c.Dev so that it conforms to the board.I2CHandle interface.
type i2cHandle struct {
	bus    *I2cBus
	dev    *i2c.Dev
	addr   byte
	closed bool
}

func (h *i2cHandle) tx(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	if h.closed {
		return errors.Errorf("i2c handle for address 0x%02x is closed", h.addr)
	}
	if err := h.dev.Tx(w, r); err != nil {
		return errors.Wrapf(err, "i2c transaction with address 0x%02x on bus %q failed", h.addr, h.bus.name)
	}
	return nil
}

func (h *i2cHandle) Write(ctx context.Context, tx []byte) error {
	return h.tx(ctx, tx, nil)
}

func (h *i2cHandle) Read(ctx context.Context, count int) ([]byte, error) {
	buffer := make([]byte, count)
	if err := h.tx(ctx, nil, buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func (h *i2cHandle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	buffer := make([]byte, 1)
	if err := h.tx(ctx, []byte{register}, buffer); err != nil {
		return 0, err
	}
	return buffer[0], nil
}

func (h *i2cHandle) WriteByteData(ctx context.Context, register, data byte) error {
	return h.tx(ctx, []byte{register, data}, nil)
}

func (h *i2cHandle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	buffer := make([]byte, numBytes)
	if err := h.tx(ctx, []byte{register}, buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

// WriteBlockData writes the register address followed by the data in one transaction, which is
// equivalent to a block write on devices that auto-increment their register pointer.
func (h *i2cHandle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	rawData := make([]byte, len(data)+1)
	rawData[0] = register
	copy(rawData[1:], data)
	return h.tx(ctx, rawData, nil)
}

func (h *i2cHandle) Close() error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	delete(h.bus.handles, h.addr)
	return nil
}
