// Package swdevice implements the software test devices.
//
// The test_success device answers every operation from memory: canned
// random numbers, SHA-256 computed on the host, P256 keys derived
// deterministically per slot and a locked configuration zone.
// The test_fail device validates arguments the same way and then fails
// every operation with atca.StatusExecutionError.
//
// The package registers the "software" backend of the device package.
package swdevice

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/atca/atcatest"
	"github.com/effective-security/atecc/device"
	"github.com/effective-security/atecc/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/atecc/device", "swdevice")

// BackendName is the name of the backend in the device registry
const BackendName = device.BackendSoftware

func init() {
	_ = device.Register(BackendName, loader)
}

// CannedRandom is the value returned by Random and NonceRand
var CannedRandom = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F,
	0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
	0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E, 0x1F,
}

// Device is a software test device
type Device struct {
	lock sync.Mutex

	devType  atca.DeviceType
	config   []byte
	keys     map[uint8]*ecdsa.PrivateKey
	pubKeys  map[uint8][]byte
	data     map[uint8][]byte
	tempKey  []byte
	msgDig   []byte
	gen      int
	released bool
}

// loader is the device.Loader of the software backend,
// sessions are created with device.Create
func loader(cfg *atca.IfaceConfig) (device.Device, error) {
	return newDevice(cfg)
}

// newDevice returns a software device for the test device types
func newDevice(cfg *atca.IfaceConfig) (*Device, error) {
	if !cfg.DeviceType.IsTest() {
		return nil, errors.Errorf("unsupported device type: %s", cfg.DeviceType)
	}
	if err := device.CheckNoSession(); err != nil {
		return nil, err
	}
	logger.KV(xlog.DEBUG, "device", cfg.DeviceType)

	return &Device{
		devType: cfg.DeviceType,
		config:  atcatest.ConfigZone(cfg.DeviceType, true),
		keys:    make(map[uint8]*ecdsa.PrivateKey),
		pubKeys: make(map[uint8][]byte),
		data:    make(map[uint8][]byte),
	}, nil
}

// DeviceType returns the device type of the session
func (d *Device) DeviceType() atca.DeviceType {
	return d.devType
}

// Release marks the device released. Subsequent calls return
// atca.StatusNotInitialized.
func (d *Device) Release() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.released {
		return atca.StatusNotInitialized
	}
	d.released = true
	return nil
}

// op runs fn holding the device lock, the test_fail device fails
// without running fn
func (d *Device) op(name string, fn func() error) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.released {
		return atca.StatusNotInitialized
	}
	defer metricskey.PerfDeviceOperation.MeasureSince(time.Now(), d.devType.String(), name)

	if d.devType == atca.DeviceTestFail {
		return atca.StatusExecutionError
	}
	return fn()
}

func (d *Device) slotConfig(slot uint8) (*atca.SlotConfig, error) {
	slots, err := atca.ParseSlots(d.devType, d.config)
	if err != nil {
		return nil, err
	}
	return &slots[slot], nil
}

// Info returns the revision of an ATECC608A
func (d *Device) Info() ([]byte, error) {
	var rev []byte
	err := d.op("info", func() error {
		rev = atcatest.Revision(atca.DeviceATECC608A)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Random returns CannedRandom
func (d *Device) Random() ([]byte, error) {
	var rnd []byte
	err := d.op("random", func() error {
		rnd = append([]byte(nil), CannedRandom...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rnd, nil
}

// SHA returns the SHA-256 digest of message
func (d *Device) SHA(message []byte) ([]byte, error) {
	if err := device.CheckSHA(message); err != nil {
		return nil, err
	}

	var digest []byte
	err := d.op("sha", func() error {
		sum := sha256.Sum256(message)
		digest = sum[:]
		d.tempKey = digest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return digest, nil
}

// Nonce loads a fixed value into one of the buffers
func (d *Device) Nonce(target atca.NonceTarget, data []byte) error {
	if err := device.CheckNonce(d.devType, target, data); err != nil {
		return err
	}
	return d.op("nonce", func() error {
		val := append([]byte(nil), data...)
		switch target {
		case atca.NonceTargetMsgDigestBuffer:
			d.msgDig = val
		case atca.NonceTargetTempKey:
			d.tempKey = val
		}
		return nil
	})
}

// NonceRand returns CannedRandom and sets TempKey to the nonce digest
func (d *Device) NonceRand(hostNonce []byte) ([]byte, error) {
	if err := device.CheckHostNonce(hostNonce); err != nil {
		return nil, err
	}

	var rnd []byte
	err := d.op("nonce_rand", func() error {
		rnd = append([]byte(nil), CannedRandom...)
		h := sha256.New()
		h.Write(rnd)
		h.Write(hostNonce)
		h.Write([]byte{0x16, 0x00, 0x00})
		d.tempKey = h.Sum(nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rnd, nil
}

// GenKey derives a P256 key for the slot. Keys are deterministic for
// the sequence of GenKey calls of a session.
func (d *Device) GenKey(keyType atca.KeyType, slot uint8) error {
	if err := device.CheckSlot(slot); err != nil {
		return err
	}
	if keyType != atca.KeyTypeP256 {
		return atca.StatusBadParam
	}

	return d.op("genkey", func() error {
		sc, err := d.slotConfig(slot)
		if err != nil {
			return err
		}
		if sc.IsLocked || !sc.Private || sc.KeyType != atca.KeyTypeP256 {
			return atca.StatusExecutionError
		}

		d.gen++
		key, err := deriveKey(fmt.Sprintf("swdevice-%d-%d", slot, d.gen))
		if err != nil {
			return atca.StatusGenFail
		}
		d.keys[slot] = key
		return nil
	})
}

// deriveKey returns a P256 key derived from seed
func deriveKey(seed string) (*ecdsa.PrivateKey, error) {
	for i := 0; ; i++ {
		sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", seed, i)))
		key, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), sum[:])
		if err == nil || i > 8 {
			return key, err
		}
	}
}

// ImportKey stores key material for the slot
func (d *Device) ImportKey(keyType atca.KeyType, keyData []byte, slot uint8) error {
	if err := device.CheckImportKey(d.devType, keyType, keyData, slot); err != nil {
		return err
	}

	return d.op("import_key", func() error {
		sc, err := d.slotConfig(slot)
		if err != nil {
			return err
		}
		if sc.IsLocked {
			return atca.StatusExecutionError
		}

		switch {
		case keyType == atca.KeyTypeP256 && len(keyData) == atca.PrivateKeySize:
			if !sc.Private {
				return atca.StatusExecutionError
			}
			key, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), keyData)
			if err != nil {
				return atca.StatusExecutionError
			}
			d.keys[slot] = key
		case keyType == atca.KeyTypeP256:
			if _, err := parsePublicKey(keyData); err != nil {
				return atca.StatusExecutionError
			}
			d.pubKeys[slot] = append([]byte(nil), keyData...)
		default:
			d.data[slot] = append([]byte(nil), keyData...)
		}
		return nil
	})
}

// GetPublicKey returns the public key of the private key in the slot
func (d *Device) GetPublicKey(slot uint8) ([]byte, error) {
	if err := device.CheckSlot(slot); err != nil {
		return nil, err
	}

	var pub []byte
	err := d.op("get_pubkey", func() error {
		key, ok := d.keys[slot]
		if !ok {
			return atca.StatusExecutionError
		}
		var err error
		pub, err = publicKeyBytes(key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// SignHash signs the external digest with the key in the slot.
// Internal messages are not supported and return atca.StatusExecutionError.
func (d *Device) SignHash(mode atca.SignMode, slot uint8) ([]byte, error) {
	if err := device.CheckSignMode(mode, slot); err != nil {
		return nil, err
	}

	var sig []byte
	err := d.op("sign", func() error {
		sc, err := d.slotConfig(slot)
		if err != nil {
			return err
		}
		key, ok := d.keys[slot]
		if !mode.IsExternal() || !ok || !sc.CanSign() {
			return atca.StatusExecutionError
		}

		r, s, err := ecdsa.Sign(rand.Reader, key, mode.Digest())
		if err != nil {
			return atca.StatusECC
		}
		sig = make([]byte, atca.SignatureSize)
		r.FillBytes(sig[:32])
		s.FillBytes(sig[32:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifyHash verifies the signature of hash with the external public key
// or the public key stored in the slot
func (d *Device) VerifyHash(mode atca.VerifyMode, hash, signature []byte) (bool, error) {
	if err := device.CheckVerifyMode(mode, hash, signature); err != nil {
		return false, err
	}

	verified := false
	err := d.op("verify", func() error {
		raw := mode.PublicKey()
		if !mode.IsExternal() {
			sc, err := d.slotConfig(mode.Slot())
			if err != nil {
				return err
			}
			stored, ok := d.pubKeys[mode.Slot()]
			if !ok || !sc.CanVerify() {
				return atca.StatusExecutionError
			}
			raw = stored
		}

		pub, err := parsePublicKey(raw)
		if err != nil {
			return nil
		}
		r := new(big.Int).SetBytes(signature[:32])
		s := new(big.Int).SetBytes(signature[32:])
		verified = ecdsa.Verify(pub, hash, r, s)
		return nil
	})
	if err != nil {
		return false, err
	}
	return verified, nil
}

// ConfigurationIsLocked returns true, the configuration zone is locked
func (d *Device) ConfigurationIsLocked() (bool, error) {
	var locked bool
	err := d.op("read_lock", func() error {
		locked = atca.IsConfigLocked(d.config)
		return nil
	})
	return locked, err
}

// DataZoneIsLocked returns true, the data zone is locked
func (d *Device) DataZoneIsLocked() (bool, error) {
	var locked bool
	err := d.op("read_lock", func() error {
		locked = atca.IsDataLocked(d.config)
		return nil
	})
	return locked, err
}

// ReadConfigZone returns a copy of the configuration zone
func (d *Device) ReadConfigZone() ([]byte, error) {
	var config []byte
	err := d.op("read_config", func() error {
		config = append([]byte(nil), d.config...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// CmpConfigZone compares data with the configuration zone
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

func parsePublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	pub, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), append([]byte{0x04}, raw...))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return pub, nil
}

func publicKeyBytes(key *ecdsa.PrivateKey) ([]byte, error) {
	b, err := key.PublicKey.Bytes()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b[1:], nil
}
