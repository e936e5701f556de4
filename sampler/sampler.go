// Package sampler polls a time-of-flight range sensor forever and reports every successful
// reading, one line per reading, to a reporting channel.
package sampler

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/bulkpick/rangesampler/logging"
)

// MeasurementTimeout bounds every single-shot measurement.
const MeasurementTimeout = 500 * time.Millisecond

// ErrNotReady is returned by Run and Measure when Setup has not completed.
var ErrNotReady = errors.New("range sampler has not been set up")

// RangeSensor is the sensor handle the sampler owns. ReadRangeSingleMillimeters blocks until the
// sensor answers or the configured timeout elapses; TimeoutOccurred reports (and clears) whether
// the last read timed out.
type RangeSensor interface {
	Init(ctx context.Context) error
	ConfigureDefault(ctx context.Context) error
	SetTimeout(timeout time.Duration)
	ReadRangeSingleMillimeters(ctx context.Context) (uint16, error)
	TimeoutOccurred() bool
}

// RangeSampler owns one range sensor and one reporting channel. It is used from a single
// goroutine: Setup once, then Run.
type RangeSampler struct {
	logger   logging.Logger
	sensor   RangeSensor
	reporter *lineReporter
	ready    bool
}

// New returns a sampler that is not yet set up.
func New(sensor RangeSensor, report io.Writer, logger logging.Logger) *RangeSampler {
	return &RangeSampler{
		logger:   logger,
		sensor:   sensor,
		reporter: newLineReporter(report),
	}
}

// Setup initializes the sensor, applies its default configuration and sets the measurement
// timeout. It only has an effect the first time it succeeds.
func (s *RangeSampler) Setup(ctx context.Context) error {
	if s.ready {
		return nil
	}
	if err := s.sensor.Init(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize range sensor")
	}
	if err := s.sensor.ConfigureDefault(ctx); err != nil {
		return errors.Wrap(err, "failed to configure range sensor")
	}
	s.sensor.SetTimeout(MeasurementTimeout)
	s.ready = true
	s.logger.Infow("range sampler ready", "timeout", MeasurementTimeout)
	return nil
}

// Ready reports whether Setup has completed.
func (s *RangeSampler) Ready() bool {
	return s.ready
}

// Measure takes one single-shot measurement. A timed-out measurement yields a Discard outcome and
// no error.
func (s *RangeSampler) Measure(ctx context.Context) (Outcome, error) {
	if !s.ready {
		return Outcome{}, ErrNotReady
	}
	mm, err := s.sensor.ReadRangeSingleMillimeters(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if s.sensor.TimeoutOccurred() {
		return Discarded(), nil
	}
	return Reported(mm), nil
}

// Handle applies the outcome's disposition.
func (s *RangeSampler) Handle(outcome Outcome) error {
	switch outcome.Disposition {
	case Report:
		return s.reporter.report(outcome.Millimeters)
	case Discard:
		return nil
	default:
		return errors.Errorf("unknown disposition %v", outcome.Disposition)
	}
}

// Run measures and handles outcomes back to back with no delay between iterations. It only
// returns when ctx is done (nil) or on a bus or reporting error.
func (s *RangeSampler) Run(ctx context.Context) error {
	if !s.ready {
		return ErrNotReady
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		outcome, err := s.Measure(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "range measurement failed")
		}
		if err := s.Handle(outcome); err != nil {
			return err
		}
	}
}
