//go:build darwin || windows

package gps

import (
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

func openSerial(path string, baud int) (io.ReadWriteCloser, error) {
	if !supportedBaud(baud) {
		return nil, fmt.Errorf("unsupported baud %d", baud)
	}
	return serial.Open(serial.OpenOptions{
		PortName:        path,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	})
}
