package serial

import (
	"strconv"
	"strings"

	"go.bug.st/serial/enumerator"
)

// SearchFilter narrows a Search to one device type. The zero value matches every known type.
type SearchFilter struct {
	Type Type
}

// usbIdentifier is a USB vendor and product id pair.
type usbIdentifier struct {
	Vendor  int
	Product int
}

var knownUSB = map[usbIdentifier]Type{
	{0x2341, 0x0043}: TypeArduino, // Uno
	{0x2341, 0x0001}: TypeArduino, // Uno, older bootloader
	{0x2341, 0x0042}: TypeArduino, // Mega 2560
	{0x2a03, 0x0043}: TypeArduino, // arduino.org Uno
}

// listPorts enumerates the serial ports of the host. It's a variable so tests can supply fixed
// port lists.
var listPorts = enumerator.GetDetailedPortsList

// Search uses the host's port enumeration to find all serial devices of a known type.
func Search(filter SearchFilter) []Description {
	ports, err := listPorts()
	if err != nil {
		return nil
	}
	var results []Description
	for _, port := range ports {
		if port == nil || !port.IsUSB {
			continue
		}
		devType := typeOf(port.VID, port.PID)
		if devType == TypeUnknown {
			continue
		}
		if filter.Type != "" && filter.Type != devType {
			continue
		}
		results = append(results, Description{Type: devType, Path: port.Name})
	}
	return results
}

func typeOf(vid, pid string) Type {
	vendorID, err := parseID(vid)
	if err != nil {
		return TypeUnknown
	}
	productID, err := parseID(pid)
	if err != nil {
		return TypeUnknown
	}
	if devType, ok := knownUSB[usbIdentifier{int(vendorID), int(productID)}]; ok {
		return devType
	}
	return TypeUnknown
}

func parseID(id string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(strings.ToLower(id), "0x"), 16, 32)
}
