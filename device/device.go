package device

import "github.com/effective-security/atecc/atca"

// Device is the operation surface of a secure element session.
// Errors returned by the operations carry atca.Status,
// use atca.StatusOf to classify them.
type Device interface {
	// Random returns 32 bytes generated by the device RNG
	Random() ([]byte, error)
	// SHA returns the SHA-256 digest of message computed by the device.
	// Messages longer than 65535 bytes fail with atca.StatusBadParam.
	SHA(message []byte) ([]byte, error)
	// Nonce loads a fixed value into one of the device buffers.
	// The ATECC608A accepts TempKey and Message Digest Buffer with
	// 32 or 64 bytes and the Alternate Key Buffer with 32 bytes;
	// all other devices accept only TempKey with 32 bytes.
	Nonce(target atca.NonceTarget, data []byte) error
	// NonceRand combines a 20 byte host nonce with a device random number
	// and returns the 32 byte random number
	NonceRand(hostNonce []byte) ([]byte, error)
	// GenKey generates a private key in the slot
	GenKey(keyType atca.KeyType, slot uint8) error
	// ImportKey writes key material into the slot
	ImportKey(keyType atca.KeyType, keyData []byte, slot uint8) error
	// GetPublicKey returns the 64 byte public key of the private key in the slot
	GetPublicKey(slot uint8) ([]byte, error)
	// SignHash returns the 64 byte ECDSA signature computed with the key in the slot
	SignHash(mode atca.SignMode, slot uint8) ([]byte, error)
	// VerifyHash verifies the ECDSA signature of hash.
	// A signature that does not match returns false and no error;
	// any other failure is returned as error.
	VerifyHash(mode atca.VerifyMode, hash, signature []byte) (bool, error)
	// DeviceType returns the device type of the session
	DeviceType() atca.DeviceType
	// ConfigurationIsLocked returns true if the configuration zone is locked
	ConfigurationIsLocked() (bool, error)
	// DataZoneIsLocked returns true if the data zone is locked
	DataZoneIsLocked() (bool, error)
	// ReadConfigZone returns the raw configuration zone
	ReadConfigZone() ([]byte, error)
	// CmpConfigZone compares data with the configuration zone of the device.
	// The size of data must match the configuration zone size.
	CmpConfigZone(data []byte) (bool, error)
	// GetConfig returns the configuration of every slot, in slot order
	GetConfig() ([]atca.SlotConfig, error)
	// Info returns the device revision
	Info() ([]byte, error)
	// Release closes the session. Subsequent calls return
	// atca.StatusNotInitialized.
	Release() error
}
