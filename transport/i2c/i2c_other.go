//go:build !linux

package i2c

import "github.com/cockroachdb/errors"

// ErrNotSupported is returned on platforms without i2c-dev
var ErrNotSupported = errors.New("i2c transport is supported on linux only")

// Bus is not available on this platform
type Bus struct{}

// Open returns ErrNotSupported, baud is ignored
func Open(bus uint8, address uint8, baud uint32) (*Bus, error) {
	return nil, ErrNotSupported
}

// Wake returns ErrNotSupported
func (b *Bus) Wake() error { return ErrNotSupported }

// Idle returns ErrNotSupported
func (b *Bus) Idle() error { return ErrNotSupported }

// Sleep returns ErrNotSupported
func (b *Bus) Sleep() error { return ErrNotSupported }

// Send returns ErrNotSupported
func (b *Bus) Send(packet []byte) error { return ErrNotSupported }

// Receive returns ErrNotSupported
func (b *Bus) Receive(buf []byte) (int, error) { return 0, ErrNotSupported }

// Close is no-op
func (b *Bus) Close() error { return nil }
