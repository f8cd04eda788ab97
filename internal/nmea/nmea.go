// Package nmea formats wind readings as NMEA 0183 MWV sentences for
// chartplotter consumption and writes them to an optional serial port.
package nmea

import (
	"fmt"
	"io"

	"github.com/sweeney/wind-sensor/internal/logic"
)

// Sentence builds the $WIMWV sentence for one decoded output: wind angle in
// degrees, reference R (relative/apparent), wind speed in m/s, status A for
// a valid reading or V while the instrument is stalled.
func Sentence(out logic.Output) string {
	status := "A"
	if out.Stalled {
		status = "V"
	}
	body := fmt.Sprintf("WIMWV,%d.0,R,%.1f,M,%s",
		out.DirectionDeg, float64(out.SpeedCmps)/100, status)
	return fmt.Sprintf("$%s*%02X\r\n", body, checksum(body))
}

// checksum XORs the sentence body between '$' and '*'.
func checksum(body string) byte {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return cs
}

// Writer emits one sentence per decode cycle.
type Writer interface {
	WriteReading(out logic.Output) error
	Close() error
}

// StreamWriter writes sentences to any io.Writer: a serial port, stdout, or
// a test buffer.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter creates a StreamWriter on w.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// WriteReading formats and writes one sentence.
func (s *StreamWriter) WriteReading(out logic.Output) error {
	if _, err := io.WriteString(s.w, Sentence(out)); err != nil {
		return fmt.Errorf("write sentence: %w", err)
	}
	return nil
}

// Close closes the underlying writer when it supports closing.
func (s *StreamWriter) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
