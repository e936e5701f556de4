package board

import (
	goutils "go.viam.com/utils"
)

// I2CConfig enumerates a specific, shareable I2C bus.
type I2CConfig struct {
	Name string `json:"name"`
	// Bus is the periph.io bus name or number, e.g. "1" or "/dev/i2c-1". Empty selects the
	// first bus found on the host.
	Bus string `json:"bus"`
}

// Validate ensures all parts of the config are valid.
func (config *I2CConfig) Validate(path string) error {
	if config.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	return nil
}
