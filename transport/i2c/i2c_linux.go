//go:build linux

package i2c

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"golang.org/x/sys/unix"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/atecc/transport", "i2c")

// ioctlSlave is I2C_SLAVE from linux/i2c-dev.h
const ioctlSlave = 0x0703

// Bus is an open i2c-dev device bound to one secure element
type Bus struct {
	lock   sync.Mutex
	fd     int
	path   string
	addr   uint16
	closed bool
}

// Open opens /dev/i2c-<bus> and binds it to the 8-bit device address.
// i2c-dev has no ioctl for the bus speed, the clock is configured by the
// adapter driver or device tree and baud is only logged.
func Open(bus uint8, address uint8, baud uint32) (*Bus, error) {
	path := fmt.Sprintf("/dev/i2c-%d", bus)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.WithMessagef(err, "open %s", path)
	}

	b := &Bus{
		fd:   fd,
		path: path,
		addr: uint16(address >> 1),
	}
	if err = b.setAddress(b.addr); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	logger.KV(xlog.DEBUG, "path", path, "address", fmt.Sprintf("0x%02X", b.addr), "baud", baud)
	return b, nil
}

func (b *Bus) setAddress(addr uint16) error {
	if err := unix.IoctlSetInt(b.fd, ioctlSlave, int(addr)); err != nil {
		return errors.WithMessagef(err, "set address 0x%02X on %s", addr, b.path)
	}
	return nil
}

func (b *Bus) write(data []byte) error {
	if b.closed {
		return errors.Errorf("%s is closed", b.path)
	}
	n, err := unix.Write(b.fd, data)
	if err != nil {
		return errors.WithStack(err)
	}
	if n != len(data) {
		return errors.Errorf("short write: %d of %d", n, len(data))
	}
	return nil
}

func (b *Bus) read(data []byte) error {
	if b.closed {
		return errors.Errorf("%s is closed", b.path)
	}
	n, err := unix.Read(b.fd, data)
	if err != nil {
		return errors.WithStack(err)
	}
	if n != len(data) {
		return errors.Errorf("short read: %d of %d", n, len(data))
	}
	return nil
}

// Wake holds SDA low by addressing the general call address.
// The transfer is not acknowledged, its error is ignored.
func (b *Bus) Wake() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if err := b.setAddress(0x00); err != nil {
		return err
	}
	_ = b.write([]byte{0x00})
	return b.setAddress(b.addr)
}

// Idle puts the device into idle mode
func (b *Bus) Idle() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.write([]byte{wordIdle})
}

// Sleep puts the device into sleep mode
func (b *Bus) Sleep() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.write([]byte{wordSleep})
}

// Send writes a command packet
func (b *Bus) Send(packet []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	buf := make([]byte, 0, len(packet)+1)
	buf = append(buf, wordCommand)
	buf = append(buf, packet...)
	return b.write(buf)
}

// Receive reads the count byte, then the rest of the response
func (b *Bus) Receive(buf []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if len(buf) < 4 {
		return 0, errors.Errorf("receive buffer too small: %d", len(buf))
	}
	if err := b.read(buf[:1]); err != nil {
		return 0, err
	}
	count := int(buf[0])
	if count < 4 || count > len(buf) {
		return 0, errors.Errorf("invalid response count: %d", count)
	}
	if err := b.read(buf[1:count]); err != nil {
		return 0, err
	}
	return count, nil
}

// Close closes the device file, subsequent calls are no-op
func (b *Bus) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return errors.WithStack(unix.Close(b.fd))
}
