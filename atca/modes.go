package atca

import "fmt"

// NonceTarget selects the device buffer loaded by the Nonce command
type NonceTarget uint8

// Nonce targets, the values are the target bits of the Nonce mode
const (
	NonceTargetTempKey         NonceTarget = 0x00
	NonceTargetMsgDigestBuffer NonceTarget = 0x40
	NonceTargetAltKeyBuffer    NonceTarget = 0x80
)

// String returns the target name
func (t NonceTarget) String() string {
	switch t {
	case NonceTargetTempKey:
		return "TempKey"
	case NonceTargetMsgDigestBuffer:
		return "MsgDigestBuffer"
	case NonceTargetAltKeyBuffer:
		return "AltKeyBuffer"
	}
	return fmt.Sprintf("NonceTarget(0x%02X)", uint8(t))
}

// KeyType is the type of key material in a slot.
// The values match the KeyType bits of the KeyConfig register.
type KeyType uint8

// Key types
const (
	KeyTypeP256      KeyType = 4
	KeyTypeAES       KeyType = 6
	KeyTypeShaOrText KeyType = 7
	KeyTypeReserved  KeyType = 0xFF
)

// ParseKeyType maps the KeyConfig bits to KeyType
func ParseKeyType(v uint8) KeyType {
	switch KeyType(v) {
	case KeyTypeP256, KeyTypeAES, KeyTypeShaOrText:
		return KeyType(v)
	}
	return KeyTypeReserved
}

// String returns the key type name
func (k KeyType) String() string {
	switch k {
	case KeyTypeP256:
		return "P256"
	case KeyTypeAES:
		return "AES"
	case KeyTypeShaOrText:
		return "ShaOrText"
	}
	return "Reserved"
}

// MarshalText implements encoding.TextMarshaler
func (k KeyType) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Zone specifies a memory zone of the device
type Zone uint8

// Zones
const (
	ZoneConfig Zone = 0x00
	ZoneOTP    Zone = 0x01
	ZoneData   Zone = 0x02
)

// SignMode selects the message source of the Sign command
type SignMode struct {
	external bool
	digest   []byte
}

// SignExternal signs a digest supplied by the host
func SignExternal(digest []byte) SignMode {
	return SignMode{external: true, digest: digest}
}

// SignInternal signs a message generated internally by the device
func SignInternal() SignMode {
	return SignMode{}
}

// IsExternal returns true if the digest is supplied by the host
func (m SignMode) IsExternal() bool {
	return m.external
}

// Digest returns the external digest
func (m SignMode) Digest() []byte {
	return m.digest
}

// Code returns the Sign mode byte
func (m SignMode) Code() uint8 {
	if m.external {
		return 0x80
	}
	return 0x00
}

// VerifyMode selects the public key source of the Verify command
type VerifyMode struct {
	external  bool
	publicKey []byte
	slot      uint8
}

// VerifyExternal verifies with a public key supplied by the host
func VerifyExternal(publicKey []byte) VerifyMode {
	return VerifyMode{external: true, publicKey: publicKey}
}

// VerifyStored verifies with a public key stored in a slot
func VerifyStored(slot uint8) VerifyMode {
	return VerifyMode{slot: slot}
}

// IsExternal returns true if the public key is supplied by the host
func (m VerifyMode) IsExternal() bool {
	return m.external
}

// PublicKey returns the external public key
func (m VerifyMode) PublicKey() []byte {
	return m.publicKey
}

// Slot returns the slot of the stored public key
func (m VerifyMode) Slot() uint8 {
	return m.slot
}

// Code returns the Verify mode byte
func (m VerifyMode) Code() uint8 {
	if m.external {
		return 0x02
	}
	return 0x00
}
