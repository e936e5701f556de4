package sampler

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// lineEnding matches what an Arduino println emits, so existing readers of the sensor stream keep
// working.
const lineEnding = "\r\n"

// lineReporter writes one decimal distance per line.
type lineReporter struct {
	w   io.Writer
	buf []byte
}

func newLineReporter(w io.Writer) *lineReporter {
	return &lineReporter{w: w, buf: make([]byte, 0, 8)}
}

func (r *lineReporter) report(mm uint16) error {
	r.buf = strconv.AppendUint(r.buf[:0], uint64(mm), 10)
	r.buf = append(r.buf, lineEnding...)
	if _, err := r.w.Write(r.buf); err != nil {
		return errors.Wrap(err, "failed to write reading to reporting channel")
	}
	return nil
}
