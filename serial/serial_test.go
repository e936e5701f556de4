package serial

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	ser "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.viam.com/test"
)

func TestOpenDevice(t *testing.T) {
	_, err := Open("", ReportOptions(0))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Open("/dev/does-not-exist", Options{DataBits: 9})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "data bits")
}

func TestReportOptions(t *testing.T) {
	opts := ReportOptions(0)
	test.That(t, opts.BaudRate, test.ShouldEqual, 2000000)
	test.That(t, opts.DataBits, test.ShouldEqual, 8)
	test.That(t, opts.StopBits, test.ShouldEqual, OneStopBit)
	test.That(t, opts.Parity, test.ShouldEqual, NoParity)

	test.That(t, ReportOptions(115200).BaudRate, test.ShouldEqual, 115200)
}

func TestNormalize(t *testing.T) {
	got, err := Options{}.Normalize()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, Options{BaudRate: ReportBaudRate, DataBits: 8})

	for i, tc := range []struct {
		opts Options
		err  string
	}{
		{Options{DataBits: 4}, "data bits"},
		{Options{StopBits: 3}, "stop bits"},
		{Options{Parity: 7}, "parity"},
		{Options{ReadTimeout: -time.Second}, "read timeout"},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			_, err := tc.opts.Normalize()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		})
	}
}

func TestMode(t *testing.T) {
	mode, err := Options{BaudRate: 9600, DataBits: 7, StopBits: TwoStopBits, Parity: EvenParity}.mode()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mode, test.ShouldResemble, &ser.Mode{
		BaudRate: 9600,
		DataBits: 7,
		StopBits: ser.TwoStopBits,
		Parity:   ser.EvenParity,
	})

	mode, err = ReportOptions(0).mode()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mode.BaudRate, test.ShouldEqual, 2000000)
	test.That(t, mode.StopBits, test.ShouldEqual, ser.OneStopBit)
	test.That(t, mode.Parity, test.ShouldEqual, ser.NoParity)
}

func TestSearch(t *testing.T) {
	prevListPorts := listPorts
	defer func() {
		listPorts = prevListPorts
	}()

	ports := []*enumerator.PortDetails{
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10c4", PID: "ea60"},
		{Name: "/dev/ttyS0"},
		nil,
		{Name: "/dev/ttyACM1", IsUSB: true, VID: "zz", PID: "0043"},
		{Name: "/dev/ttyACM2", IsUSB: true, VID: "2A03", PID: "0043"},
	}

	for i, tc := range []struct {
		Filter   SearchFilter
		Ports    []*enumerator.PortDetails
		Err      error
		Expected []Description
	}{
		{SearchFilter{}, nil, nil, nil},
		{SearchFilter{}, ports, errors.New("no sysfs"), nil},
		{SearchFilter{}, ports, nil, []Description{
			{Type: TypeArduino, Path: "/dev/ttyACM0"},
			{Type: TypeArduino, Path: "/dev/ttyACM2"},
		}},
		{SearchFilter{Type: TypeArduino}, ports, nil, []Description{
			{Type: TypeArduino, Path: "/dev/ttyACM0"},
			{Type: TypeArduino, Path: "/dev/ttyACM2"},
		}},
		{SearchFilter{Type: TypeUnknown}, ports, nil, nil},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			listPorts = func() ([]*enumerator.PortDetails, error) {
				return tc.Ports, tc.Err
			}
			test.That(t, Search(tc.Filter), test.ShouldResemble, tc.Expected)
		})
	}
}
