package cli

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/bulkpick/rangesampler/logging"
)

const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
)

// newLogger logs to the app's error writer so that stdout stays free for readings, and to
// logFile when one is given. The returned func closes the log file.
func newLogger(c *cli.Context, level logging.Level, logFile string) (logging.Logger, func() error) {
	logger := logging.NewBlankLogger("rangesampler")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	logger.SetLevel(level)

	if logFile == "" {
		return logger, logger.Sync
	}
	file := logging.NewFileAppender(logFile, logFileMaxSizeMB, logFileMaxBackups)
	logger.AddAppender(file)
	return logger, func() error {
		return multierr.Combine(logger.Sync(), file.Close())
	}
}
