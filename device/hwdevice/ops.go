package hwdevice

import (
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/atca/command"
	"github.com/effective-security/atecc/device"
)

// lock word of the configuration zone: counters, LockValue and LockConfig
const (
	lockWordBlock  = 2
	lockWordOffset = 5
)

// Info returns the device revision
func (d *Device) Info() ([]byte, error) {
	var rev []byte
	err := d.op("info", func() (err error) {
		rev, err = d.expect(command.Info(), atca.WordSize)
		return
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Random returns 32 bytes generated by the device RNG
func (d *Device) Random() ([]byte, error) {
	var rnd []byte
	err := d.op("random", func() (err error) {
		rnd, err = d.expect(command.Random(), atca.RandomSize)
		return
	})
	if err != nil {
		return nil, err
	}
	return rnd, nil
}

// SHA returns the SHA-256 digest of message computed by the device
func (d *Device) SHA(message []byte) ([]byte, error) {
	if err := device.CheckSHA(message); err != nil {
		return nil, err
	}

	var digest []byte
	err := d.op("sha", func() error {
		if _, err := d.roundTrip(command.SHAStart()); err != nil {
			return err
		}
		rest := message
		for len(rest) >= command.SHABlockSize {
			if _, err := d.roundTrip(command.SHAUpdate(rest[:command.SHABlockSize])); err != nil {
				return err
			}
			rest = rest[command.SHABlockSize:]
		}
		var err error
		digest, err = d.expect(command.SHAEnd(rest), atca.DigestSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return digest, nil
}

// Nonce loads a fixed value into one of the device buffers
func (d *Device) Nonce(target atca.NonceTarget, data []byte) error {
	if err := device.CheckNonce(d.devType, target, data); err != nil {
		return err
	}
	return d.op("nonce", func() error {
		_, err := d.roundTrip(command.NonceLoad(target, data))
		return err
	})
}

// NonceRand combines a 20 byte host nonce with a device random number
// and returns the random number
func (d *Device) NonceRand(hostNonce []byte) ([]byte, error) {
	if err := device.CheckHostNonce(hostNonce); err != nil {
		return nil, err
	}

	var rnd []byte
	err := d.op("nonce_rand", func() (err error) {
		rnd, err = d.expect(command.NonceRand(hostNonce), atca.RandomSize)
		return
	})
	if err != nil {
		return nil, err
	}
	return rnd, nil
}

// GenKey generates a P256 private key in the slot
func (d *Device) GenKey(keyType atca.KeyType, slot uint8) error {
	if err := device.CheckSlot(slot); err != nil {
		return err
	}
	if keyType != atca.KeyTypeP256 || !d.devType.IsECC() {
		return atca.StatusBadParam
	}
	return d.op("genkey", func() error {
		_, err := d.expect(command.GenKeyPrivate(slot), atca.PublicKeySize)
		return err
	})
}

// ImportKey writes key material into the slot.
// A 32 byte P256 key is written as private key with PrivWrite,
// a 64 byte P256 key is written as public key in the padded slot format.
func (d *Device) ImportKey(keyType atca.KeyType, keyData []byte, slot uint8) error {
	if err := device.CheckImportKey(d.devType, keyType, keyData, slot); err != nil {
		return err
	}

	return d.op("import_key", func() error {
		switch {
		case keyType == atca.KeyTypeP256 && len(keyData) == atca.PrivateKeySize:
			_, err := d.roundTrip(command.PrivWrite(slot, keyData))
			return err
		case keyType == atca.KeyTypeP256:
			return d.writePublicKey(slot, keyData)
		default:
			block := make([]byte, atca.BlockSize)
			copy(block, keyData)
			_, err := d.roundTrip(command.Write(atca.ZoneData, command.Address(atca.ZoneData, slot, 0, 0), block))
			return err
		}
	})
}

// writePublicKey writes X and Y, each padded with 4 leading zero bytes,
// as two blocks and two words
func (d *Device) writePublicKey(slot uint8, pub []byte) error {
	padded := make([]byte, 72)
	copy(padded[4:36], pub[:32])
	copy(padded[40:72], pub[32:])

	for block := uint8(0); block < 2; block++ {
		chunk := padded[int(block)*atca.BlockSize : int(block+1)*atca.BlockSize]
		if _, err := d.roundTrip(command.Write(atca.ZoneData, command.Address(atca.ZoneData, slot, block, 0), chunk)); err != nil {
			return err
		}
	}
	for word := uint8(0); word < 2; word++ {
		off := 2*atca.BlockSize + int(word)*atca.WordSize
		if _, err := d.roundTrip(command.Write(atca.ZoneData, command.Address(atca.ZoneData, slot, 2, word), padded[off:off+atca.WordSize])); err != nil {
			return err
		}
	}
	return nil
}

// GetPublicKey returns the public key of the private key in the slot
func (d *Device) GetPublicKey(slot uint8) ([]byte, error) {
	if err := device.CheckSlot(slot); err != nil {
		return nil, err
	}
	if !d.devType.IsECC() {
		return nil, atca.StatusBadParam
	}

	var pub []byte
	err := d.op("get_pubkey", func() (err error) {
		pub, err = d.expect(command.GenKeyPublic(slot), atca.PublicKeySize)
		return
	})
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// SignHash returns the ECDSA signature computed with the key in the slot.
// An external digest is loaded into the Message Digest Buffer on the
// ATECC608A and into TempKey on other devices.
func (d *Device) SignHash(mode atca.SignMode, slot uint8) ([]byte, error) {
	if err := device.CheckSignMode(mode, slot); err != nil {
		return nil, err
	}
	if !d.devType.IsECC() {
		return nil, atca.StatusBadParam
	}

	var sig []byte
	err := d.op("sign", func() error {
		code := mode.Code()
		if mode.IsExternal() {
			target := atca.NonceTargetTempKey
			if d.devType == atca.DeviceATECC608A {
				target = atca.NonceTargetMsgDigestBuffer
				code |= command.SignModeSourceMsgDig
			}
			if _, err := d.roundTrip(command.NonceLoad(target, mode.Digest())); err != nil {
				return err
			}
		}
		var err error
		sig, err = d.expect(command.Sign(code, slot), atca.SignatureSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifyHash verifies the ECDSA signature of hash.
// A signature mismatch reported by the device returns false and no error.
func (d *Device) VerifyHash(mode atca.VerifyMode, hash, signature []byte) (bool, error) {
	if err := device.CheckVerifyMode(mode, hash, signature); err != nil {
		return false, err
	}
	if !d.devType.IsECC() {
		return false, atca.StatusBadParam
	}

	verified := false
	err := d.op("verify", func() error {
		code := mode.Code()
		target := atca.NonceTargetTempKey
		if d.devType == atca.DeviceATECC608A {
			target = atca.NonceTargetMsgDigestBuffer
			code |= command.VerifyModeSourceMsgDig
		}
		if _, err := d.roundTrip(command.NonceLoad(target, hash)); err != nil {
			return err
		}

		p := command.VerifyStored(code, mode.Slot(), signature)
		if mode.IsExternal() {
			p = command.VerifyExternal(code, signature, mode.PublicKey())
		}
		_, err := d.roundTrip(p)
		switch atca.StatusOf(err) {
		case atca.StatusSuccess:
			verified = true
		case atca.StatusCheckMacVerifyFailed:
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return verified, nil
}

// ConfigurationIsLocked returns true if the configuration zone is locked
func (d *Device) ConfigurationIsLocked() (bool, error) {
	word, err := d.readLockWord()
	if err != nil {
		return false, err
	}
	return word[3] != atca.LockUnlocked, nil
}

// DataZoneIsLocked returns true if the data zone is locked
func (d *Device) DataZoneIsLocked() (bool, error) {
	word, err := d.readLockWord()
	if err != nil {
		return false, err
	}
	return word[2] != atca.LockUnlocked, nil
}

func (d *Device) readLockWord() ([]byte, error) {
	var word []byte
	err := d.op("read_lock", func() (err error) {
		addr := command.Address(atca.ZoneConfig, 0, lockWordBlock, lockWordOffset)
		word, err = d.expect(command.Read(atca.ZoneConfig, addr, atca.WordSize), atca.WordSize)
		return
	})
	if err != nil {
		return nil, err
	}
	return word, nil
}

// ReadConfigZone returns the configuration zone, read in blocks and
// the remainder in words
func (d *Device) ReadConfigZone() ([]byte, error) {
	var config []byte
	err := d.op("read_config", func() (err error) {
		config, err = d.readConfig()
		return
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

func (d *Device) readConfig() ([]byte, error) {
	size := d.devType.ConfigZoneSize()
	config := make([]byte, 0, size)

	for len(config)+atca.BlockSize <= size {
		block := uint8(len(config) / atca.BlockSize)
		data, err := d.expect(command.Read(atca.ZoneConfig, command.Address(atca.ZoneConfig, 0, block, 0), atca.BlockSize), atca.BlockSize)
		if err != nil {
			return nil, err
		}
		config = append(config, data...)
	}
	for len(config) < size {
		block := uint8(len(config) / atca.BlockSize)
		word := uint8(len(config) % atca.BlockSize / atca.WordSize)
		data, err := d.expect(command.Read(atca.ZoneConfig, command.Address(atca.ZoneConfig, 0, block, word), atca.WordSize), atca.WordSize)
		if err != nil {
			return nil, err
		}
		config = append(config, data...)
	}
	return config, nil
}

// CmpConfigZone compares data with the configuration zone of the device,
// ignoring the serial number, I2C settings, counters and lock bytes
func (d *Device) CmpConfigZone(data []byte) (bool, error) {
	if len(data) != d.devType.ConfigZoneSize() {
		return false, atca.StatusBadParam
	}

	config, err := d.ReadConfigZone()
	if err != nil {
		return false, err
	}
	return device.SameConfig(config, data), nil
}

// GetConfig returns the configuration of every slot
func (d *Device) GetConfig() ([]atca.SlotConfig, error) {
	config, err := d.ReadConfigZone()
	if err != nil {
		return nil, err
	}
	return atca.ParseSlots(d.devType, config)
}
