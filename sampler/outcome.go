package sampler

import "fmt"

// Disposition says what the sampler does with a measurement.
type Disposition int

const (
	// Report sends the measurement to the reporting channel.
	Report Disposition = iota
	// Discard drops the measurement. Timed-out measurements are discarded without any signal.
	Discard
)

func (d Disposition) String() string {
	switch d {
	case Report:
		return "report"
	case Discard:
		return "discard"
	}
	return fmt.Sprintf("Disposition(%d)", int(d))
}

// Outcome is the result of one measurement. Millimeters is only meaningful when the disposition
// is Report.
type Outcome struct {
	Disposition Disposition
	Millimeters uint16
}

// Reported returns an Outcome that will be reported with the given distance.
func Reported(mm uint16) Outcome {
	return Outcome{Disposition: Report, Millimeters: mm}
}

// Discarded returns an Outcome that will be dropped.
func Discarded() Outcome {
	return Outcome{Disposition: Discard}
}
