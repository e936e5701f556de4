// Package rangereader consumes the line stream a range sampler reports and turns it into distance
// estimates.
package rangereader

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/bulkpick/rangesampler/logging"
	"github.com/bulkpick/rangesampler/serial"
)

// DefaultCutoff is the distance in millimeters at and above which readings are treated as
// outliers by Median.
const DefaultCutoff = 130

var (
	// ErrSensorNotFound is returned by FindPort when no known sensor board is attached.
	ErrSensorNotFound = errors.New("the distance sensor was not found")
	// ErrNoReadings is returned by Median when no reading survives the cutoff.
	ErrNoReadings = errors.New("no distance readings below the cutoff")
)

var digits = regexp.MustCompile(`\d+`)

// Acquire reads lines from r until it has collected times distances. The first run of digits on
// each line is the distance; lines without one are skipped.
func Acquire(ctx context.Context, r io.Reader, times int, logger logging.Logger) ([]int, error) {
	if times <= 0 {
		return nil, errors.Errorf("invalid number of readings %d", times)
	}
	results := make([]int, 0, times)
	scanner := bufio.NewScanner(&ctxReader{ctx: ctx, r: r})
	for len(results) < times && scanner.Scan() {
		match := digits.Find(scanner.Bytes())
		if match == nil {
			logger.Debugw("skipping line without a distance", "line", scanner.Text())
			continue
		}
		mm, err := strconv.Atoi(string(match))
		if err != nil {
			logger.Debugw("skipping unparsable distance", "line", scanner.Text(), "error", err)
			continue
		}
		results = append(results, mm)
	}
	if len(results) == times {
		return results, nil
	}
	if err := scanner.Err(); err != nil {
		return results, errors.Wrapf(err, "acquired %d of %d readings", len(results), times)
	}
	return results, errors.Wrapf(io.ErrUnexpectedEOF, "acquired %d of %d readings", len(results), times)
}

// ctxReader stops reading once ctx is done. Reads that return nothing, like a serial port read
// timing out, are retried so callers never see empty reads.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	for {
		if err := cr.ctx.Err(); err != nil {
			return 0, err
		}
		n, err := cr.r.Read(p)
		if n > 0 || err != nil || len(p) == 0 {
			return n, err
		}
	}
}

// Median drops every value at or above cutoff and returns the median of what is left. With an
// even number of values left it is the mean of the two middle ones.
func Median(values []int, cutoff int) (float64, error) {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v < cutoff {
			kept = append(kept, float64(v))
		}
	}
	if len(kept) == 0 {
		return 0, ErrNoReadings
	}
	stat.SortWeighted(kept, nil)
	mid := len(kept) / 2
	if len(kept)%2 == 1 {
		return kept[mid], nil
	}
	return stat.Mean(kept[mid-1:mid+1], nil), nil
}

// FindPort returns the path of the first attached Arduino, which runs the range sampler.
func FindPort() (string, error) {
	devices := serial.Search(serial.SearchFilter{Type: serial.TypeArduino})
	if len(devices) == 0 {
		return "", ErrSensorNotFound
	}
	return devices[0].Path, nil
}
