package link

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaud matches the firmware's configured rate.
	DefaultBaud = 115200

	// readTimeout keeps reads short so ReadLine stays close to non-blocking.
	readTimeout = 50 * time.Millisecond

	// settleDelay gives the microcontroller time to reset after the port
	// opens. Commands sent earlier are lost to the bootloader.
	settleDelay = 2 * time.Second
)

// SerialChannel is a Channel over a local serial port.
type SerialChannel struct {
	port serial.Port
	buf  []byte
	// pending holds complete lines read ahead of the consumer.
	pending []string
}

// OpenSerial opens the named port, waits out the firmware reset, and returns
// a ready channel.
func OpenSerial(portName string, baud int) (*SerialChannel, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	time.Sleep(settleDelay)
	// Drop any boot noise the firmware emitted while resetting.
	port.ResetInputBuffer()

	return &SerialChannel{port: port}, nil
}

// WriteLine sends one newline-terminated command.
func (c *SerialChannel) WriteLine(line string) error {
	if _, err := c.port.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

// ReadLine returns the next complete line from the port, if one is available
// within the read timeout.
func (c *SerialChannel) ReadLine() (string, bool, error) {
	if len(c.pending) > 0 {
		line := c.pending[0]
		c.pending = c.pending[1:]
		return line, true, nil
	}

	tmp := make([]byte, 256)
	n, err := c.port.Read(tmp)
	if err != nil {
		return "", false, fmt.Errorf("serial read: %w", err)
	}
	if n > 0 {
		c.buf = append(c.buf, tmp[:n]...)
		c.splitLines()
	}

	if len(c.pending) == 0 {
		return "", false, nil
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, true, nil
}

// Close closes the underlying port.
func (c *SerialChannel) Close() error {
	return c.port.Close()
}

// splitLines moves complete lines out of the byte buffer.
func (c *SerialChannel) splitLines() {
	for {
		i := bytes.IndexByte(c.buf, '\n')
		if i < 0 {
			return
		}
		line := strings.TrimRight(string(c.buf[:i]), "\r")
		c.buf = c.buf[i+1:]
		c.pending = append(c.pending, line)
	}
}
