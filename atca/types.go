package atca

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// DeviceType specifies the secure element family
type DeviceType uint8

// Device types
const (
	DeviceATSHA204A DeviceType = 0x00
	DeviceATECC108A DeviceType = 0x01
	DeviceATECC508A DeviceType = 0x02
	DeviceATECC608A DeviceType = 0x03
	DeviceATSHA206A DeviceType = 0x04
	// DeviceUnknown is the fallback for unrecognized codes and names
	DeviceUnknown DeviceType = 0x20
	// DeviceTestFail selects the software device that fails every operation
	DeviceTestFail DeviceType = 0x21
	// DeviceTestSuccess selects the software device that succeeds
	DeviceTestSuccess DeviceType = 0x22
)

var deviceTypeNames = map[DeviceType]string{
	DeviceATSHA204A:   "atsha204a",
	DeviceATECC108A:   "atecc108a",
	DeviceATECC508A:   "atecc508a",
	DeviceATECC608A:   "atecc608a",
	DeviceATSHA206A:   "atsha206a",
	DeviceUnknown:     "unknown",
	DeviceTestFail:    "test_fail",
	DeviceTestSuccess: "test_success",
}

// Geometry constants
const (
	// SlotCount is the number of data slots
	SlotCount = 16
	// ECCConfigSize is the configuration zone size of ECC devices
	ECCConfigSize = 128
	// SHAConfigSize is the configuration zone size of SHA devices
	SHAConfigSize = 88
	// BlockSize is the size of a zone block
	BlockSize = 32
	// WordSize is the size of a zone word
	WordSize = 4

	RandomSize     = 32
	DigestSize     = 32
	PublicKeySize  = 64
	SignatureSize  = 64
	PrivateKeySize = 32
	AESKeySize     = 16
	NumInSize      = 20
	// MaxSHAMessageSize is the largest message the SHA command can hash,
	// the length is carried in a 16 bit field.
	MaxSHAMessageSize = 0xFFFF
)

// ParseDeviceType maps a numeric code to DeviceType,
// unrecognized codes map to DeviceUnknown.
func ParseDeviceType(code uint8) DeviceType {
	dt := DeviceType(code)
	if _, ok := deviceTypeNames[dt]; ok {
		return dt
	}
	return DeviceUnknown
}

// DeviceTypeByName returns DeviceType by its name, case insensitive
func DeviceTypeByName(name string) (DeviceType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for dt, dn := range deviceTypeNames {
		if dn == n && dt != DeviceUnknown {
			return dt, nil
		}
	}
	return DeviceUnknown, errors.Errorf("unsupported device type %s", name)
}

// String returns the device type name
func (t DeviceType) String() string {
	if n, ok := deviceTypeNames[t]; ok {
		return n
	}
	return deviceTypeNames[DeviceUnknown]
}

// MarshalText implements encoding.TextMarshaler
func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *DeviceType) UnmarshalText(text []byte) error {
	dt, err := DeviceTypeByName(string(text))
	if err != nil {
		return err
	}
	*t = dt
	return nil
}

// IsECC returns true for the ECC family
func (t DeviceType) IsECC() bool {
	switch t {
	case DeviceATECC108A, DeviceATECC508A, DeviceATECC608A:
		return true
	}
	return false
}

// IsSHA returns true for the SHA family
func (t DeviceType) IsSHA() bool {
	return t == DeviceATSHA204A || t == DeviceATSHA206A
}

// IsTest returns true for the software test devices
func (t DeviceType) IsTest() bool {
	return t == DeviceTestFail || t == DeviceTestSuccess
}

// ConfigZoneSize returns the size of the configuration zone.
// Test devices report the ECC geometry.
func (t DeviceType) ConfigZoneSize() int {
	if t.IsSHA() {
		return SHAConfigSize
	}
	return ECCConfigSize
}

// NonceSizeAllowed returns true if the pass-through Nonce command can load
// size bytes into the target on this device.
// The ATECC608A supports 32 or 64 bytes for TempKey and the Message Digest
// Buffer and 32 bytes for the Alternate Key Buffer; all other devices
// support only TempKey with 32 bytes.
func (t DeviceType) NonceSizeAllowed(target NonceTarget, size int) bool {
	if t == DeviceATECC608A || t == DeviceTestSuccess {
		switch target {
		case NonceTargetTempKey, NonceTargetMsgDigestBuffer:
			return size == 32 || size == 64
		case NonceTargetAltKeyBuffer:
			return size == 32
		}
		return false
	}
	return target == NonceTargetTempKey && size == 32
}

// IfaceType specifies the bus interface
type IfaceType uint8

// Interface types
const (
	IfaceI2C     IfaceType = 0x00
	IfaceSWI     IfaceType = 0x01
	IfaceUART    IfaceType = 0x02
	IfaceSPI     IfaceType = 0x03
	IfaceHID     IfaceType = 0x04
	IfaceCustom  IfaceType = 0x05
	IfaceUnknown IfaceType = 0xFE
)

var ifaceTypeNames = map[IfaceType]string{
	IfaceI2C:     "i2c",
	IfaceSWI:     "swi",
	IfaceUART:    "uart",
	IfaceSPI:     "spi",
	IfaceHID:     "hid",
	IfaceCustom:  "custom",
	IfaceUnknown: "unknown",
}

// ParseIfaceType maps a numeric code to IfaceType,
// unrecognized codes map to IfaceUnknown.
func ParseIfaceType(code uint8) IfaceType {
	it := IfaceType(code)
	if _, ok := ifaceTypeNames[it]; ok {
		return it
	}
	return IfaceUnknown
}

// String returns the interface name
func (t IfaceType) String() string {
	if n, ok := ifaceTypeNames[t]; ok {
		return n
	}
	return ifaceTypeNames[IfaceUnknown]
}

// MarshalText implements encoding.TextMarshaler
func (t IfaceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *IfaceType) UnmarshalText(text []byte) error {
	n := strings.ToLower(strings.TrimSpace(string(text)))
	for it, name := range ifaceTypeNames {
		if name == n && it != IfaceUnknown {
			*t = it
			return nil
		}
	}
	return errors.Errorf("unsupported interface type %s", string(text))
}
