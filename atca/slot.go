package atca

import "encoding/binary"

// Configuration zone offsets
const (
	SlotConfigOffset = 20
	LockValueOffset  = 86
	LockConfigOffset = 87
	SlotLockedOffset = 88
	KeyConfigOffset  = 96

	// LockUnlocked is the value of an unlocked lock byte
	LockUnlocked = 0x55
)

// SlotConfig describes one data slot, as derived from the configuration zone
type SlotConfig struct {
	ID       uint8   `json:"id"`
	KeyType  KeyType `json:"key_type"`
	IsLocked bool    `json:"is_locked"`

	// SlotConfig register
	ReadKey     uint8 `json:"read_key"`
	NoMac       bool  `json:"no_mac"`
	LimitedUse  bool  `json:"limited_use"`
	EncryptRead bool  `json:"encrypt_read"`
	IsSecret    bool  `json:"is_secret"`
	WriteKey    uint8 `json:"write_key"`
	WriteConfig uint8 `json:"write_config"`

	// KeyConfig register, ECC devices only
	Private   bool  `json:"private"`
	PubInfo   bool  `json:"pub_info"`
	Lockable  bool  `json:"lockable"`
	ReqRandom bool  `json:"req_random"`
	ReqAuth   bool  `json:"req_auth"`
	AuthKey   uint8 `json:"auth_key"`
}

// CanSign returns true if the slot holds a private key
// that may sign external messages
func (s *SlotConfig) CanSign() bool {
	return s.KeyType == KeyTypeP256 && s.Private && s.ReadKey&0x01 != 0
}

// CanSignInternal returns true if the slot holds a private key
// that may sign internally generated messages
func (s *SlotConfig) CanSignInternal() bool {
	return s.KeyType == KeyTypeP256 && s.Private && s.ReadKey&0x02 != 0
}

// CanECDH returns true if the slot holds a private key usable for ECDH
func (s *SlotConfig) CanECDH() bool {
	return s.KeyType == KeyTypeP256 && s.Private && s.ReadKey&0x04 != 0
}

// CanVerify returns true if the slot may hold a public key for Verify
func (s *SlotConfig) CanVerify() bool {
	return s.KeyType == KeyTypeP256 && !s.Private
}

// IsConfigLocked returns true if the configuration zone is locked
func IsConfigLocked(config []byte) bool {
	return len(config) > LockConfigOffset && config[LockConfigOffset] != LockUnlocked
}

// IsDataLocked returns true if the data and OTP zones are locked
func IsDataLocked(config []byte) bool {
	return len(config) > LockValueOffset && config[LockValueOffset] != LockUnlocked
}

// ParseSlots parses the raw configuration zone into one SlotConfig per slot,
// ordered by slot index.
func ParseSlots(dt DeviceType, config []byte) ([]SlotConfig, error) {
	if len(config) != dt.ConfigZoneSize() {
		return nil, StatusBadParam
	}

	slots := make([]SlotConfig, SlotCount)
	dataLocked := IsDataLocked(config)

	for i := range slots {
		s := &slots[i]
		s.ID = uint8(i)

		sc := binary.LittleEndian.Uint16(config[SlotConfigOffset+2*i:])
		s.ReadKey = uint8(sc & 0x0F)
		s.NoMac = sc&0x0010 != 0
		s.LimitedUse = sc&0x0020 != 0
		s.EncryptRead = sc&0x0040 != 0
		s.IsSecret = sc&0x0080 != 0
		s.WriteKey = uint8((sc >> 8) & 0x0F)
		s.WriteConfig = uint8((sc >> 12) & 0x0F)

		if dt.IsSHA() {
			// SHA devices have no KeyConfig and lock all slots with the data zone
			s.KeyType = KeyTypeShaOrText
			s.IsLocked = dataLocked
			continue
		}

		kc := binary.LittleEndian.Uint16(config[KeyConfigOffset+2*i:])
		s.Private = kc&0x0001 != 0
		s.PubInfo = kc&0x0002 != 0
		s.KeyType = ParseKeyType(uint8((kc >> 2) & 0x07))
		s.Lockable = kc&0x0020 != 0
		s.ReqRandom = kc&0x0040 != 0
		s.ReqAuth = kc&0x0080 != 0
		s.AuthKey = uint8((kc >> 8) & 0x0F)

		slotLocked := binary.LittleEndian.Uint16(config[SlotLockedOffset:])
		s.IsLocked = slotLocked&(1<<uint(i)) == 0
	}

	return slots, nil
}

// IsSlotLocked returns true if the SlotLocked bit of the slot is cleared.
// SHA devices report the data zone lock.
func IsSlotLocked(dt DeviceType, config []byte, slot uint8) bool {
	if dt.IsSHA() {
		return IsDataLocked(config)
	}
	if len(config) < SlotLockedOffset+2 || slot >= SlotCount {
		return false
	}
	return binary.LittleEndian.Uint16(config[SlotLockedOffset:])&(1<<uint(slot)) == 0
}
