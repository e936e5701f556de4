package vl6180x

// Register map. Register indices are 16 bits wide and sent MSB first.
const (
	identificationModelID uint16 = 0x000

	systemInterruptConfigGPIO uint16 = 0x014
	systemInterruptClear      uint16 = 0x015
	systemFreshOutOfReset     uint16 = 0x016

	sysrangeStart                  uint16 = 0x018
	sysrangeIntermeasurementPeriod uint16 = 0x01B
	sysrangeMaxConvergenceTime     uint16 = 0x01C
	sysrangeCrosstalkValidHeight   uint16 = 0x021
	sysrangePartToPartRangeOffset  uint16 = 0x024
	sysrangeRangeCheckEnables      uint16 = 0x02D
	sysrangeVHVRecalibrate         uint16 = 0x02E
	sysrangeVHVRepeatRate          uint16 = 0x031
	sysalsIntermeasurementPeriod   uint16 = 0x03E
	sysalsAnalogueGain             uint16 = 0x03F
	sysalsIntegrationPeriod        uint16 = 0x040
	resultInterruptStatusGPIO      uint16 = 0x04F
	resultRangeVal                 uint16 = 0x062
	rangeScaler                    uint16 = 0x096
	readoutAveragingSamplePeriod   uint16 = 0x10A
	interleavedModeEnable          uint16 = 0x2A3
)

// Bits of RESULT__INTERRUPT_STATUS_GPIO.
const rangeNewSampleReady = 0x04

// ExpectedModelID is what IDENTIFICATION__MODEL_ID reads on a VL6180X.
const ExpectedModelID = 0xB4

// defaultI2Caddr is the address every VL6180X answers on out of reset.
const defaultI2Caddr = 0x29

const defaultCrosstalkValidHeight = 20

// scalerValues holds the RANGE_SCALER register value for scaling factors 1, 2 and 3.
var scalerValues = [4]uint16{0, 253, 127, 84}

type regValue struct {
	reg   uint16
	value byte
}

// tuningSettings are the private register writes from the ST application note AN4545 that must
// be applied once after the device comes out of reset.
var tuningSettings = []regValue{
	{0x207, 0x01},
	{0x208, 0x01},
	{0x096, 0x00},
	{0x097, 0xFD}, // RANGE_SCALER = 253
	{0x0E3, 0x01},
	{0x0E4, 0x03},
	{0x0E5, 0x02},
	{0x0E6, 0x01},
	{0x0E7, 0x03},
	{0x0F5, 0x02},
	{0x0D9, 0x05},
	{0x0DB, 0xCE},
	{0x0DC, 0x03},
	{0x0DD, 0xF8},
	{0x09F, 0x00},
	{0x0A3, 0x3C},
	{0x0B7, 0x00},
	{0x0BB, 0x3C},
	{0x0B2, 0x09},
	{0x0CA, 0x09},
	{0x198, 0x01},
	{0x1B0, 0x17},
	{0x1AD, 0x00},
	{0x0FF, 0x05},
	{0x100, 0x05},
	{0x199, 0x05},
	{0x1A6, 0x1B},
	{0x1AC, 0x3E},
	{0x1A7, 0x1F},
	{0x030, 0x00},
}
