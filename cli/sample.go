package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/bulkpick/rangesampler/components/board"
	"github.com/bulkpick/rangesampler/components/board/genericlinux"
	"github.com/bulkpick/rangesampler/components/sensor/vl6180x"
	"github.com/bulkpick/rangesampler/config"
	"github.com/bulkpick/rangesampler/sampler"
	"github.com/bulkpick/rangesampler/serial"
)

type closableI2C interface {
	board.I2C
	Close() error
}

// openI2CBus opens the configured bus. It's a variable so tests can supply a simulated bus.
var openI2CBus = func(conf board.I2CConfig) (closableI2C, error) {
	return genericlinux.NewI2cBus(conf.Bus)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func openReport(c *cli.Context, conf config.ReportConfig) (io.WriteCloser, error) {
	if conf.Path == config.StdoutPath {
		return nopWriteCloser{c.App.Writer}, nil
	}
	return serial.Open(conf.Path, conf.SerialOptions())
}

// SampleAction runs a range sampler with the configured wiring until the context is canceled or
// the bus fails.
func SampleAction(c *cli.Context) (err error) {
	if c.String(flagConfig) == "" {
		return errors.New("sample requires a config file, pass one with --config")
	}
	conf, err := config.Read(c.String(flagConfig))
	if err != nil {
		return err
	}
	level, err := conf.Level()
	if err != nil {
		return err
	}
	logger, closeLogger := newLogger(c, level, conf.LogFile)
	defer func() {
		err = multierr.Append(err, closeLogger())
	}()

	report, err := openReport(c, conf.Report)
	if err != nil {
		return errors.Wrap(err, "failed to open reporting channel")
	}
	defer func() {
		err = multierr.Append(err, report.Close())
	}()

	bus, err := openI2CBus(conf.I2C)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, bus.Close())
	}()

	dev, err := vl6180x.Open(bus, &conf.Sensor, logger.Sublogger("vl6180x"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dev.Close())
	}()

	id, err := dev.ModelID(c.Context)
	if err != nil {
		return errors.Wrap(err, "failed to identify range sensor")
	}
	if id != vl6180x.ExpectedModelID {
		logger.Warnw("unexpected sensor model id, continuing anyway", "model_id", id, "expected", vl6180x.ExpectedModelID)
	}

	s := sampler.New(dev, report, logger)
	if err := s.Setup(c.Context); err != nil {
		return err
	}
	logger.Infow("sampling", "bus", conf.I2C.Name, "report", conf.Report.Path, "baud", conf.Report.BaudRate)
	return s.Run(c.Context)
}
