package cli

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/bulkpick/rangesampler/logging"
	"github.com/bulkpick/rangesampler/rangereader"
	"github.com/bulkpick/rangesampler/serial"
)

// acquireReadTimeout keeps reads from blocking past a canceled context for long.
const acquireReadTimeout = 100 * time.Millisecond

// AcquireAction collects readings from a sampler's reporting channel and prints their median.
func AcquireAction(c *cli.Context) (err error) {
	logger, closeLogger := newLogger(c, logging.INFO, "")
	defer func() {
		err = multierr.Append(err, closeLogger())
	}()

	port := c.String(acquireFlagPort)
	if port == "" {
		port, err = rangereader.FindPort()
		if err != nil {
			return err
		}
		logger.Debugw("found sampler", "port", port)
	}

	opts := serial.ReportOptions(c.Int(acquireFlagBaud))
	opts.ReadTimeout = acquireReadTimeout
	device, err := serial.Open(port, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, device.Close())
	}()

	if settle := c.Duration(acquireFlagSettle); settle > 0 {
		if !goutils.SelectContextOrWait(c.Context, settle) {
			return c.Context.Err()
		}
	}

	times := c.Int(acquireFlagTimes)
	values, err := rangereader.Acquire(c.Context, device, times, logger)
	if err != nil {
		return errors.Wrapf(err, "failed to read distances from %q", port)
	}
	logger.Debugw("acquired", "values", values)

	distance, err := rangereader.Median(values, c.Int(acquireFlagCutoff))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "distance: %gmm (%d readings)\n", distance, len(values))
	return nil
}
