package atca

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// DefaultWakeDelay is the wake delay in microseconds
const DefaultWakeDelay = 1500

// DefaultRxRetries is the number of receive attempts
const DefaultRxRetries = 20

// I2CConfig holds I2C interface parameters.
// All parameters are mandatory for the I2C interface.
type I2CConfig struct {
	// Address is the 8-bit device address, the 7-bit bus address is Address >> 1
	Address *uint8 `json:"address,omitempty" yaml:"address,omitempty"`
	// Bus is the I2C bus number
	Bus *uint8 `json:"bus,omitempty" yaml:"bus,omitempty"`
	// Baud is the bus speed in Hz
	Baud *uint32 `json:"baud,omitempty" yaml:"baud,omitempty"`
}

// IfaceConfig specifies the interface and device type of a secure element.
//
// The configuration is immutable once constructed,
// a device session owns a deep copy for its lifetime.
type IfaceConfig struct {
	IfaceType  IfaceType  `json:"iface_type" yaml:"iface_type"`
	DeviceType DeviceType `json:"device_type" yaml:"device_type"`
	// WakeDelay is the time in microseconds to wait after the wake token
	WakeDelay uint16 `json:"wake_delay,omitempty" yaml:"wake_delay,omitempty"`
	// RxRetries is the number of attempts to receive a response
	RxRetries int `json:"rx_retries,omitempty" yaml:"rx_retries,omitempty"`

	I2C *I2CConfig `json:"i2c,omitempty" yaml:"i2c,omitempty"`
}

// NewI2CConfig returns I2C interface configuration for a device type.
// Every missing I2C parameter is reported by name.
func NewI2CConfig(deviceType string, wakeDelay uint16, rxRetries int, address *uint8, bus *uint8, baud *uint32) (*IfaceConfig, error) {
	dt, err := DeviceTypeByName(deviceType)
	if err != nil {
		return nil, err
	}
	cfg := &IfaceConfig{
		IfaceType:  IfaceI2C,
		DeviceType: dt,
		WakeDelay:  wakeDelay,
		RxRetries:  rxRetries,
		I2C: &I2CConfig{
			Address: address,
			Bus:     bus,
			Baud:    baud,
		},
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is incomplete
func (c *IfaceConfig) Validate() error {
	switch c.IfaceType {
	case IfaceI2C:
		if c.I2C == nil || c.I2C.Address == nil {
			return errors.New("missing i2c slave address")
		}
		if c.I2C.Bus == nil {
			return errors.New("missing i2c bus")
		}
		if c.I2C.Baud == nil {
			return errors.New("missing i2c baud rate")
		}
	case IfaceSWI, IfaceUART, IfaceSPI, IfaceHID, IfaceCustom:
	default:
		return errors.Errorf("unsupported interface type: %d", c.IfaceType)
	}
	if c.RxRetries < 0 {
		return errors.Errorf("invalid rx_retries: %d", c.RxRetries)
	}
	return nil
}

// Retries returns the number of receive attempts, at least one
func (c *IfaceConfig) Retries() int {
	if c.RxRetries <= 0 {
		return 1
	}
	return c.RxRetries
}

// Clone returns a deep copy of the configuration
func (c *IfaceConfig) Clone() (*IfaceConfig, error) {
	dst := new(IfaceConfig)
	if err := copier.CopyWithOption(dst, c, copier.Option{DeepCopy: true}); err != nil {
		return nil, errors.WithMessage(err, "failed to copy configuration")
	}
	return dst, nil
}

// LoadIfaceConfig loads interface configuration from JSON or YAML file
func LoadIfaceConfig(filename string) (*IfaceConfig, error) {
	cfr, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer cfr.Close()

	cfg := &IfaceConfig{
		IfaceType:  IfaceI2C,
		DeviceType: DeviceUnknown,
		WakeDelay:  DefaultWakeDelay,
		RxRetries:  DefaultRxRetries,
	}

	if strings.HasSuffix(filename, ".json") {
		err = json.NewDecoder(cfr).Decode(cfg)
	} else {
		err = yaml.NewDecoder(cfr).Decode(cfg)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
	}

	if err = cfg.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid configuration: %s", filename)
	}
	return cfg, nil
}
