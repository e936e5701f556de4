// Package cli contains the rangesampler command line: sampling on the sensor host and acquiring
// distances from the reporting channel.
package cli

import (
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bulkpick/rangesampler/rangereader"
	"github.com/bulkpick/rangesampler/serial"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"

	acquireFlagPort   = "port"
	acquireFlagBaud   = "baud"
	acquireFlagTimes  = "times"
	acquireFlagCutoff = "cutoff"
	acquireFlagSettle = "settle"
)

var app = &cli.App{
	Name:            "rangesampler",
	Usage:           "sample a VL6180X distance sensor and read its reports",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "sample",
			Usage:  "initialize the sensor and report every reading until interrupted",
			Action: SampleAction,
		},
		{
			Name:  "acquire",
			Usage: "read distances reported by a sampler and print their median",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  acquireFlagPort,
					Usage: "serial port of the sampler, found automatically when unset",
				},
				&cli.IntFlag{
					Name:  acquireFlagBaud,
					Value: serial.ReportBaudRate,
					Usage: "baud rate of the serial port",
				},
				&cli.IntFlag{
					Name:  acquireFlagTimes,
					Value: 60,
					Usage: "number of readings to collect",
				},
				&cli.IntFlag{
					Name:  acquireFlagCutoff,
					Value: rangereader.DefaultCutoff,
					Usage: "readings at or above this distance in mm are ignored",
				},
				&cli.DurationFlag{
					Name:  acquireFlagSettle,
					Value: 2 * time.Second,
					Usage: "time to wait after opening the port, boards reset when it opens",
				},
			},
			Action: AcquireAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
