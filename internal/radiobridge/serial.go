package radiobridge

import (
	"bufio"

	"go.bug.st/serial"
)

// maxFrameBytes bounds a single read; the radio chip's RX buffer is at
// most 256 bytes per spec.md §3's widest packet plus preamble.
const maxFrameBytes = 256

// SerialRadio is the production Radio, backed by a real serial port to
// the radio module (e.g. the SX127x driver board original_source's
// rci.py talks to over SPI/UART).
type SerialRadio struct {
	port serial.Port
	r    *bufio.Reader
}

// OpenSerialRadio opens the named device at the given baud rate.
func OpenSerialRadio(device string, baud int) (*SerialRadio, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return &SerialRadio{port: port, r: bufio.NewReaderSize(port, maxFrameBytes)}, nil
}

func (s *SerialRadio) ReadFrame() ([]byte, error) {
	buf := make([]byte, maxFrameBytes)
	n, err := s.r.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (s *SerialRadio) WriteFrame(frame []byte) error {
	_, err := s.port.Write(frame)
	return err
}

// Close releases the underlying serial port.
func (s *SerialRadio) Close() error {
	return s.port.Close()
}
