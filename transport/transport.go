// Package transport defines the bus interface used by the hardware device
// session and opens it from interface configuration.
package transport

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/transport/i2c"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/atecc", "transport")

// Transport is a half-duplex command/response bus to one device
type Transport interface {
	// Wake sends the wake token. The caller waits for the wake delay
	// and receives the wake response.
	Wake() error
	// Idle puts the device into idle mode, volatile state is retained
	Idle() error
	// Sleep puts the device into sleep mode, volatile state is lost
	Sleep() error
	// Send transmits a framed command packet
	Send(packet []byte) error
	// Receive reads a framed response into buf and returns its length
	Receive(buf []byte) (int, error)
	// Close releases the bus
	Close() error
}

// Open returns a Transport for the configured interface
func Open(cfg *atca.IfaceConfig) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.IfaceType {
	case atca.IfaceI2C:
		t, err := i2c.Open(*cfg.I2C.Bus, *cfg.I2C.Address, *cfg.I2C.Baud)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to open i2c bus %d", *cfg.I2C.Bus)
		}
		logger.KV(xlog.DEBUG, "iface", cfg.IfaceType, "bus", *cfg.I2C.Bus, "address", *cfg.I2C.Address)
		return t, nil
	}
	return nil, errors.Errorf("interface not supported: %s", cfg.IfaceType)
}
