// Package vl6180x implements a driver for the ST VL6180X time-of-flight proximity sensor.
// datasheet can be found at: https://www.st.com/resource/en/datasheet/vl6180x.pdf
// register tuning follows ST application note AN4545 and the Pololu VL6180X Arduino library.
package vl6180x

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/bulkpick/rangesampler/components/board"
	"github.com/bulkpick/rangesampler/logging"
)

// Config describes where the sensor is wired.
type Config struct {
	I2CBus  string `json:"i2c_bus"`
	I2CAddr int    `json:"i2c_addr,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.I2CBus == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "i2c_bus")
	}
	if conf.I2CAddr < 0 || conf.I2CAddr > 0x7f {
		return goutils.NewConfigValidationError(path, errors.Errorf("i2c_addr 0x%x is not a 7-bit address", conf.I2CAddr))
	}
	return nil
}

// Device is one VL6180X on an I2C bus. It is not safe for concurrent use; the sensor only ever
// has one measurement in flight.
type Device struct {
	logger logging.Logger
	handle board.I2CHandle
	clock  clock.Clock

	timeout    time.Duration
	didTimeout bool
	scaling    uint8
	ptpOffset  uint8
}

// Open opens a handle on the bus at the configured address, or the sensor's default address when
// none is configured. The returned device still needs Init and ConfigureDefault.
func Open(bus board.I2C, conf *Config, logger logging.Logger) (*Device, error) {
	addr := conf.I2CAddr
	if addr == 0 {
		addr = defaultI2Caddr
		logger.Debugf("using default i2c address 0x%02x", addr)
	}
	handle, err := bus.OpenHandle(byte(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "vl6180x: failed to open i2c handle at 0x%02x", addr)
	}
	return New(handle, logger), nil
}

// New returns a device that talks over an already opened handle.
func New(handle board.I2CHandle, logger logging.Logger) *Device {
	return newDevice(handle, logger, clock.New())
}

func newDevice(handle board.I2CHandle, logger logging.Logger, clk clock.Clock) *Device {
	return &Device{
		logger:  logger,
		handle:  handle,
		clock:   clk,
		scaling: 1,
	}
}

// Init loads the tuning settings when the sensor is fresh out of reset. If the sensor was already
// initialized (e.g. the host process restarted without a power cycle), the current range scaling
// is recovered from the device instead.
func (d *Device) Init(ctx context.Context) error {
	ptpOffset, err := d.readReg(ctx, sysrangePartToPartRangeOffset)
	if err != nil {
		return err
	}
	d.ptpOffset = ptpOffset

	fresh, err := d.readReg(ctx, systemFreshOutOfReset)
	if err != nil {
		return err
	}

	if fresh == 1 {
		d.scaling = 1
		for _, setting := range tuningSettings {
			if err := d.writeReg(ctx, setting.reg, setting.value); err != nil {
				return err
			}
		}
		return d.writeReg(ctx, systemFreshOutOfReset, 0)
	}

	scaler, err := d.readReg16(ctx, rangeScaler)
	if err != nil {
		return err
	}
	switch scaler {
	case scalerValues[3]:
		d.scaling = 3
	case scalerValues[2]:
		d.scaling = 2
	default:
		d.scaling = 1
	}
	// the offset register holds the value already divided by the scaling factor
	d.ptpOffset *= d.scaling
	d.logger.Debugw("sensor already initialized", "scaling", d.scaling)
	return nil
}

// ConfigureDefault applies the recommended settings for ranging and ambient light sensing and
// resets the range scaling to 1.
func (d *Device) ConfigureDefault(ctx context.Context) error {
	writes := []regValue{
		// "Recommended : Public registers"
		{readoutAveragingSamplePeriod, 0x30}, // 4.3 ms averaging sample period
		{sysalsAnalogueGain, 0x46},           // ALS gain 1
		{sysrangeVHVRepeatRate, 0xFF},        // auto VHV calibration every 255 measurements
	}
	for _, w := range writes {
		if err := d.writeReg(ctx, w.reg, w.value); err != nil {
			return err
		}
	}
	// ALS integration time 100 ms
	if err := d.writeReg16(ctx, sysalsIntegrationPeriod, 0x0063); err != nil {
		return err
	}

	writes = []regValue{
		{sysrangeVHVRecalibrate, 0x01}, // manual VHV calibration
		// "Optional: Public registers"
		{sysrangeIntermeasurementPeriod, 0x09}, // 100 ms between continuous range measurements
		{sysalsIntermeasurementPeriod, 0x31},   // 500 ms between continuous ALS measurements
		{systemInterruptConfigGPIO, 0x24},      // new sample ready interrupts for ALS and range
		{sysrangeMaxConvergenceTime, 0x31},     // 49 ms
		{interleavedModeEnable, 0},
	}
	for _, w := range writes {
		if err := d.writeReg(ctx, w.reg, w.value); err != nil {
			return err
		}
	}

	return d.SetScaling(ctx, 1)
}

// SetScaling sets the range scaling factor, which trades resolution for maximum range. Valid
// factors are 1, 2 and 3.
func (d *Device) SetScaling(ctx context.Context, scaling uint8) error {
	if scaling < 1 || scaling > 3 {
		return errors.Errorf("vl6180x: invalid range scaling %d, must be 1, 2 or 3", scaling)
	}
	d.scaling = scaling

	if err := d.writeReg16(ctx, rangeScaler, scalerValues[scaling]); err != nil {
		return err
	}
	if err := d.writeReg(ctx, sysrangePartToPartRangeOffset, d.ptpOffset/scaling); err != nil {
		return err
	}
	if err := d.writeReg(ctx, sysrangeCrosstalkValidHeight, defaultCrosstalkValidHeight/scaling); err != nil {
		return err
	}

	// range ignore is only enabled at unity scaling
	rce, err := d.readReg(ctx, sysrangeRangeCheckEnables)
	if err != nil {
		return err
	}
	rce &= 0xFE
	if scaling == 1 {
		rce |= 0x01
	}
	return d.writeReg(ctx, sysrangeRangeCheckEnables, rce)
}

// Scaling returns the current range scaling factor.
func (d *Device) Scaling() uint8 {
	return d.scaling
}

// SetTimeout bounds how long a single measurement waits for the sensor. Zero disables the
// timeout.
func (d *Device) SetTimeout(timeout time.Duration) {
	d.timeout = timeout
}

// Timeout returns the configured measurement timeout.
func (d *Device) Timeout() time.Duration {
	return d.timeout
}

// TimeoutOccurred reports whether a measurement timed out since the last call, and clears the
// flag.
func (d *Device) TimeoutOccurred() bool {
	tmp := d.didTimeout
	d.didTimeout = false
	return tmp
}

// ReadRangeSingle starts a single-shot range measurement and blocks until the sensor reports a
// new sample or the timeout expires. The raw, unscaled range is returned. After a timeout the
// returned value is whatever the result register holds and TimeoutOccurred reports true.
func (d *Device) ReadRangeSingle(ctx context.Context) (uint8, error) {
	if err := d.writeReg(ctx, sysrangeStart, 0x01); err != nil {
		return 0, err
	}
	return d.readRangeContinuous(ctx)
}

// ReadRangeSingleMillimeters is ReadRangeSingle with the range scaling applied.
func (d *Device) ReadRangeSingleMillimeters(ctx context.Context) (uint16, error) {
	raw, err := d.ReadRangeSingle(ctx)
	if err != nil {
		return 0, err
	}
	return uint16(d.scaling) * uint16(raw), nil
}

func (d *Device) readRangeContinuous(ctx context.Context) (uint8, error) {
	start := d.clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		status, err := d.readReg(ctx, resultInterruptStatusGPIO)
		if err != nil {
			return 0, err
		}
		if status&rangeNewSampleReady != 0 {
			break
		}
		if d.timeout > 0 && d.clock.Since(start) > d.timeout {
			d.didTimeout = true
			break
		}
	}

	rng, err := d.readReg(ctx, resultRangeVal)
	if err != nil {
		return 0, err
	}
	if err := d.writeReg(ctx, systemInterruptClear, 0x01); err != nil {
		return 0, err
	}
	return rng, nil
}

// ModelID reads the device's model identification register, ExpectedModelID on a VL6180X.
func (d *Device) ModelID(ctx context.Context) (byte, error) {
	return d.readReg(ctx, identificationModelID)
}

// Close releases the I2C handle.
func (d *Device) Close() error {
	return d.handle.Close()
}

func (d *Device) writeReg(ctx context.Context, reg uint16, value byte) error {
	if err := d.handle.Write(ctx, []byte{byte(reg >> 8), byte(reg), value}); err != nil {
		return errors.Wrapf(err, "vl6180x: failed to write register 0x%03x", reg)
	}
	return nil
}

func (d *Device) writeReg16(ctx context.Context, reg, value uint16) error {
	if err := d.handle.Write(ctx, []byte{byte(reg >> 8), byte(reg), byte(value >> 8), byte(value)}); err != nil {
		return errors.Wrapf(err, "vl6180x: failed to write register 0x%03x", reg)
	}
	return nil
}

func (d *Device) readReg(ctx context.Context, reg uint16) (byte, error) {
	buf, err := d.read(ctx, reg, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Device) readReg16(ctx context.Context, reg uint16) (uint16, error) {
	buf, err := d.read(ctx, reg, 2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

func (d *Device) read(ctx context.Context, reg uint16, count int) ([]byte, error) {
	if err := d.handle.Write(ctx, []byte{byte(reg >> 8), byte(reg)}); err != nil {
		return nil, errors.Wrapf(err, "vl6180x: failed to select register 0x%03x", reg)
	}
	buf, err := d.handle.Read(ctx, count)
	if err != nil {
		return nil, errors.Wrapf(err, "vl6180x: failed to read register 0x%03x", reg)
	}
	if len(buf) != count {
		return nil, errors.Errorf("vl6180x: short read of register 0x%03x, wanted %d bytes, got %d", reg, count, len(buf))
	}
	return buf, nil
}
