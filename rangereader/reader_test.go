package rangereader

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/bulkpick/rangesampler/logging"
)

func TestAcquire(t *testing.T) {
	logger := logging.NewTestLogger(t)
	input := "120\r\n\r\nready\r\n95\r\nb'87\\r\\n'\r\n300\r\n"

	values, err := Acquire(context.Background(), strings.NewReader(input), 3, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []int{120, 95, 87})

	values, err = Acquire(context.Background(), strings.NewReader(input), 4, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []int{120, 95, 87, 300})
}

func TestAcquireShortStream(t *testing.T) {
	logger := logging.NewTestLogger(t)

	values, err := Acquire(context.Background(), strings.NewReader("12\nab\n"), 3, logger)
	test.That(t, errors.Is(err, io.ErrUnexpectedEOF), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "acquired 1 of 3")
	test.That(t, values, test.ShouldResemble, []int{12})

	_, err = Acquire(context.Background(), strings.NewReader("12\n"), 0, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

// timeoutReader behaves like a serial port with a read timeout: every other read returns nothing.
type timeoutReader struct {
	r     io.Reader
	empty bool
}

func (tr *timeoutReader) Read(p []byte) (int, error) {
	tr.empty = !tr.empty
	if tr.empty {
		return 0, nil
	}
	return tr.r.Read(p[:1])
}

func TestAcquireRetriesEmptyReads(t *testing.T) {
	r := &timeoutReader{r: strings.NewReader("41\r\n42\r\n")}
	values, err := Acquire(context.Background(), r, 2, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []int{41, 42})
}

func TestAcquireCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Acquire(ctx, strings.NewReader("1\n2\n"), 2, logging.NewTestLogger(t))
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestMedian(t *testing.T) {
	for _, tc := range []struct {
		values   []int
		cutoff   int
		expected float64
	}{
		{[]int{90}, DefaultCutoff, 90},
		{[]int{95, 90, 100}, DefaultCutoff, 95},
		{[]int{95, 90, 100, 92}, DefaultCutoff, 93.5},
		{[]int{95, 255, 90, 130, 100}, DefaultCutoff, 95},
		{[]int{10, 20, 30, 40}, 35, 20},
	} {
		median, err := Median(tc.values, tc.cutoff)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, median, test.ShouldAlmostEqual, tc.expected)
	}

	_, err := Median([]int{130, 255}, DefaultCutoff)
	test.That(t, err, test.ShouldEqual, ErrNoReadings)
	_, err = Median(nil, DefaultCutoff)
	test.That(t, err, test.ShouldEqual, ErrNoReadings)
}

func TestMedianKeepsInput(t *testing.T) {
	values := []int{100, 90, 95}
	_, err := Median(values, DefaultCutoff)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []int{100, 90, 95})
}
