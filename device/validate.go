package device

import (
	"bytes"

	"github.com/effective-security/atecc/atca"
)

// CheckSlot returns atca.StatusBadParam for a slot index out of range
func CheckSlot(slot uint8) error {
	if slot >= atca.SlotCount {
		return atca.StatusBadParam
	}
	return nil
}

// CheckImportKey validates the key material accepted by ImportKey:
// P256 private (32 bytes) or public (64 bytes) keys on ECC devices,
// AES keys (16 bytes) on the ATECC608A and
// SHA or text data (32 bytes) on every device.
func CheckImportKey(dt atca.DeviceType, keyType atca.KeyType, keyData []byte, slot uint8) error {
	if err := CheckSlot(slot); err != nil {
		return err
	}

	switch keyType {
	case atca.KeyTypeP256:
		if !dt.IsECC() && !dt.IsTest() {
			return atca.StatusBadParam
		}
		if len(keyData) != atca.PrivateKeySize && len(keyData) != atca.PublicKeySize {
			return atca.StatusBadParam
		}
	case atca.KeyTypeAES:
		if dt != atca.DeviceATECC608A && !dt.IsTest() {
			return atca.StatusBadParam
		}
		if len(keyData) != atca.AESKeySize {
			return atca.StatusBadParam
		}
	case atca.KeyTypeShaOrText:
		if len(keyData) != atca.BlockSize {
			return atca.StatusBadParam
		}
	default:
		return atca.StatusBadParam
	}
	return nil
}

// CheckSignMode validates the slot and the external digest of SignHash
func CheckSignMode(mode atca.SignMode, slot uint8) error {
	if err := CheckSlot(slot); err != nil {
		return err
	}
	if mode.IsExternal() && len(mode.Digest()) != atca.DigestSize {
		return atca.StatusBadParam
	}
	return nil
}

// CheckVerifyMode validates the arguments of VerifyHash
func CheckVerifyMode(mode atca.VerifyMode, hash, signature []byte) error {
	if len(hash) != atca.DigestSize || len(signature) != atca.SignatureSize {
		return atca.StatusBadParam
	}
	if mode.IsExternal() {
		if len(mode.PublicKey()) != atca.PublicKeySize {
			return atca.StatusBadParam
		}
		return nil
	}
	return CheckSlot(mode.Slot())
}

// CheckSHA returns atca.StatusBadParam for messages longer than the
// device SHA engine accepts
func CheckSHA(message []byte) error {
	if len(message) > atca.MaxSHAMessageSize {
		return atca.StatusBadParam
	}
	return nil
}

// CheckNonce validates a pass-through nonce for the device type
func CheckNonce(dt atca.DeviceType, target atca.NonceTarget, data []byte) error {
	if !dt.NonceSizeAllowed(target, len(data)) {
		return atca.StatusBadParam
	}
	return nil
}

// CheckHostNonce validates the host nonce of NonceRand
func CheckHostNonce(hostNonce []byte) error {
	if len(hostNonce) != atca.NumInSize {
		return atca.StatusBadParam
	}
	return nil
}

// Config zone regions that differ between devices of the same
// configuration: serial number, revision and I2C settings, and the
// counters with the lock bytes.
var configCompareSkip = [][2]int{
	{0, 16},
	{84, 88},
}

// SameConfig compares two configuration zone images, ignoring the
// device specific regions. Images of different sizes never match.
func SameConfig(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	start := 0
	for _, skip := range configCompareSkip {
		if skip[0] >= len(a) {
			break
		}
		if !bytes.Equal(a[start:skip[0]], b[start:skip[0]]) {
			return false
		}
		start = skip[1]
	}
	return start >= len(a) || bytes.Equal(a[start:], b[start:])
}
