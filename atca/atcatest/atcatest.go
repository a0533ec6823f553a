// Package atcatest provides configuration zone images for tests and
// software devices.
package atcatest

import (
	"encoding/binary"

	"github.com/effective-security/atecc/atca"
)

// Slot layout of the images returned by ConfigZone
const (
	// FirstSigningSlot..LastSigningSlot hold P256 private keys
	FirstSigningSlot = 0
	LastSigningSlot  = 7
	// ECDHSlot holds a P256 private key that also permits ECDH
	ECDHSlot = 6
	// LockedSlot has its SlotLocked bit cleared
	LockedSlot = 7
	// DataSlot holds SHA key or other data
	DataSlot = 8
	// FirstPublicSlot..LastPublicSlot hold P256 public keys
	FirstPublicSlot = 9
	LastPublicSlot  = 14
	// AESSlot holds an AES key
	AESSlot = 15
)

// RevisionATECC608A is the Info revision of the ATECC608A
var RevisionATECC608A = []byte{0x00, 0x00, 0x60, 0x02}

// RevisionATECC508A is the Info revision of the ATECC508A
var RevisionATECC508A = []byte{0x00, 0x00, 0x50, 0x00}

// RevisionATSHA204A is the Info revision of the ATSHA204A
var RevisionATSHA204A = []byte{0x00, 0x02, 0x00, 0x09}

// Revision returns the Info revision reported by a device type
func Revision(dt atca.DeviceType) []byte {
	switch dt {
	case atca.DeviceATECC608A, atca.DeviceTestSuccess:
		return RevisionATECC608A
	case atca.DeviceATECC508A, atca.DeviceATECC108A:
		return RevisionATECC508A
	}
	return RevisionATSHA204A
}

// ConfigZone returns a configuration zone image for the device type.
// When locked is true, both the configuration and data zones are locked.
func ConfigZone(dt atca.DeviceType, locked bool) []byte {
	cfg := make([]byte, dt.ConfigZoneSize())

	// serial number and revision
	copy(cfg[0:4], []byte{0x01, 0x23, 0x00, 0x01})
	copy(cfg[4:8], Revision(dt))
	copy(cfg[8:13], []byte{0x02, 0x03, 0x04, 0x05, 0xEE})
	cfg[14] = 0x01 // I2C enable
	cfg[16] = 0xC0 // I2C address

	for i := 0; i < atca.SlotCount; i++ {
		var sc, kc uint16
		switch {
		case i == ECDHSlot:
			sc, kc = 0x2087, 0x0033
		case i <= LastSigningSlot:
			sc, kc = 0x2083, 0x0033
		case i == DataSlot:
			sc, kc = 0x0000, 0x003C
		case i <= LastPublicSlot:
			sc, kc = 0x0000, 0x0030
		default:
			sc, kc = 0x0080, 0x0018
		}
		binary.LittleEndian.PutUint16(cfg[atca.SlotConfigOffset+2*i:], sc)
		if dt.IsSHA() {
			continue
		}
		binary.LittleEndian.PutUint16(cfg[atca.KeyConfigOffset+2*i:], kc)
	}

	cfg[atca.LockValueOffset] = atca.LockUnlocked
	cfg[atca.LockConfigOffset] = atca.LockUnlocked
	if locked {
		cfg[atca.LockValueOffset] = 0x00
		cfg[atca.LockConfigOffset] = 0x00
	}
	if !dt.IsSHA() {
		binary.LittleEndian.PutUint16(cfg[atca.SlotLockedOffset:], ^uint16(1<<LockedSlot))
	}
	return cfg
}
