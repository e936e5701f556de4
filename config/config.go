// Package config defines the structures to configure a range sampler host and the means to
// read them from JSON files.
package config

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/bulkpick/rangesampler/components/board"
	"github.com/bulkpick/rangesampler/components/sensor/vl6180x"
	"github.com/bulkpick/rangesampler/logging"
	"github.com/bulkpick/rangesampler/serial"
)

// A Config describes how the sampler is wired: the I2C bus it talks to the sensor on, the
// sensor itself and the serial port readings are reported to.
type Config struct {
	ConfigFilePath string `json:"-"`

	I2C      board.I2CConfig `json:"i2c"`
	Sensor   vl6180x.Config  `json:"sensor"`
	Report   ReportConfig    `json:"report"`
	LogLevel string          `json:"log_level,omitempty"`
	// LogFile, when set, also writes logs to a rotated file.
	LogFile string `json:"log_file,omitempty"`
}

// ReportConfig is the serial reporting channel.
type ReportConfig struct {
	// Path of the serial device. "-" reports to stdout.
	Path     string `json:"path"`
	BaudRate int    `json:"baud_rate,omitempty"`
}

// StdoutPath selects stdout as the reporting channel.
const StdoutPath = "-"

// Validate ensures all parts of the config are valid.
func (rc *ReportConfig) Validate(path string) error {
	if rc.Path == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "path")
	}
	if rc.BaudRate < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("invalid baud_rate %d", rc.BaudRate))
	}
	return nil
}

// SerialOptions returns the options the reporting port is opened with.
func (rc *ReportConfig) SerialOptions() serial.Options {
	return serial.ReportOptions(rc.BaudRate)
}

// Ensure ensures all parts of the config are valid and fills in defaults.
func (c *Config) Ensure() error {
	if err := c.I2C.Validate("i2c"); err != nil {
		return err
	}
	if c.Sensor.I2CBus == "" {
		c.Sensor.I2CBus = c.I2C.Name
	}
	if err := c.Sensor.Validate("sensor"); err != nil {
		return err
	}
	if c.Sensor.I2CBus != c.I2C.Name {
		return goutils.NewConfigValidationError("sensor",
			errors.Errorf("i2c_bus %q does not name the configured bus %q", c.Sensor.I2CBus, c.I2C.Name))
	}
	if err := c.Report.Validate("report"); err != nil {
		return err
	}
	if c.Report.BaudRate == 0 {
		c.Report.BaudRate = serial.ReportBaudRate
	}
	if _, err := c.Level(); err != nil {
		return goutils.NewConfigValidationError("log_level", err)
	}
	return nil
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() (logging.Level, error) {
	if c.LogLevel == "" {
		return logging.INFO, nil
	}
	return logging.LevelFromString(c.LogLevel)
}
