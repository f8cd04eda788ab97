package nmea

import (
	"fmt"

	"go.bug.st/serial"
)

// OpenSerial opens the given device at 4800 baud 8N1, the NMEA 0183
// standard rate, and returns a sentence writer on it.
func OpenSerial(device string) (*StreamWriter, error) {
	mode := &serial.Mode{
		BaudRate: 4800,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return NewStreamWriter(port), nil
}
