package swdevice

import (
	"crypto/sha256"
	"testing"

	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/atca/atcatest"
	"github.com/effective-security/atecc/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDevice(t *testing.T, dt atca.DeviceType) *Device {
	d, err := newDevice(&atca.IfaceConfig{IfaceType: atca.IfaceCustom, DeviceType: dt})
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	_, err := newDevice(&atca.IfaceConfig{DeviceType: atca.DeviceATECC608A})
	assert.EqualError(t, err, "unsupported device type: atecc608a")
}

func TestNew_SessionActive(t *testing.T) {
	cfg := &atca.IfaceConfig{IfaceType: atca.IfaceCustom, DeviceType: atca.DeviceTestSuccess}
	dev, err := device.Create(cfg)
	require.NoError(t, err)

	_, err = newDevice(cfg)
	assert.ErrorIs(t, err, device.ErrSessionActive)
	_, err = loader(cfg)
	assert.ErrorIs(t, err, device.ErrSessionActive)

	require.NoError(t, dev.Release())
	d, err := newDevice(cfg)
	require.NoError(t, err)
	assert.NoError(t, d.Release())
}

func TestSuccess(t *testing.T) {
	d := openDevice(t, atca.DeviceTestSuccess)
	assert.Equal(t, atca.DeviceTestSuccess, d.DeviceType())

	rev, err := d.Info()
	require.NoError(t, err)
	assert.Equal(t, atcatest.RevisionATECC608A, rev)

	rnd, err := d.Random()
	require.NoError(t, err)
	assert.Equal(t, CannedRandom, rnd)

	digest, err := d.SHA([]byte("TestMessage"))
	require.NoError(t, err)
	exp := sha256.Sum256([]byte("TestMessage"))
	assert.Equal(t, exp[:], digest)

	largest := make([]byte, atca.MaxSHAMessageSize)
	digest, err = d.SHA(largest)
	require.NoError(t, err)
	exp = sha256.Sum256(largest)
	assert.Equal(t, exp[:], digest)

	_, err = d.SHA(make([]byte, atca.MaxSHAMessageSize+1))
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(err))

	assert.NoError(t, d.Nonce(atca.NonceTargetMsgDigestBuffer, make([]byte, 64)))
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(d.Nonce(atca.NonceTargetAltKeyBuffer, make([]byte, 64))))

	rnd, err = d.NonceRand(make([]byte, atca.NumInSize))
	require.NoError(t, err)
	assert.Len(t, rnd, atca.RandomSize)

	require.NoError(t, d.Release())
	assert.Equal(t, atca.StatusNotInitialized, atca.StatusOf(d.Release()))
}

func TestKeys(t *testing.T) {
	d := openDevice(t, atca.DeviceTestSuccess)

	_, err := d.GetPublicKey(0)
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))

	require.NoError(t, d.GenKey(atca.KeyTypeP256, 0))
	pub, err := d.GetPublicKey(0)
	require.NoError(t, err)
	assert.Len(t, pub, atca.PublicKeySize)

	// keys are derived deterministically
	d2 := openDevice(t, atca.DeviceTestSuccess)
	require.NoError(t, d2.GenKey(atca.KeyTypeP256, 0))
	pub2, err := d2.GetPublicKey(0)
	require.NoError(t, err)
	assert.Equal(t, pub, pub2)

	digest := sha256.Sum256([]byte("TestMessage"))
	sig, err := d.SignHash(atca.SignExternal(digest[:]), 0)
	require.NoError(t, err)
	assert.Len(t, sig, atca.SignatureSize)

	ok, err := d.VerifyHash(atca.VerifyExternal(pub), digest[:], sig)
	require.NoError(t, err)
	assert.True(t, ok)

	sig[0] ^= 0xFF
	ok, err = d.VerifyHash(atca.VerifyExternal(pub), digest[:], sig)
	require.NoError(t, err)
	assert.False(t, ok)
	sig[0] ^= 0xFF

	_, err = d.VerifyHash(atca.VerifyStored(atcatest.FirstPublicSlot), digest[:], sig)
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))

	require.NoError(t, d.ImportKey(atca.KeyTypeP256, pub, atcatest.FirstPublicSlot))
	ok, err = d.VerifyHash(atca.VerifyStored(atcatest.FirstPublicSlot), digest[:], sig)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = d.SignHash(atca.SignInternal(), 0)
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))
	_, err = d.SignHash(atca.SignExternal(digest[:]), 1)
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))

	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(d.GenKey(atca.KeyTypeP256, atcatest.LockedSlot)))
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(d.GenKey(atca.KeyTypeP256, atcatest.FirstPublicSlot)))
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(d.GenKey(atca.KeyTypeAES, 0)))

	priv := sha256.Sum256([]byte("private"))
	require.NoError(t, d.ImportKey(atca.KeyTypeP256, priv[:], 1))
	_, err = d.SignHash(atca.SignExternal(digest[:]), 1)
	assert.NoError(t, err)

	assert.NoError(t, d.ImportKey(atca.KeyTypeAES, make([]byte, atca.AESKeySize), atcatest.AESSlot))
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(d.ImportKey(atca.KeyTypeAES, make([]byte, 32), atcatest.AESSlot)))
}

func TestConfig(t *testing.T) {
	d := openDevice(t, atca.DeviceTestSuccess)

	locked, err := d.ConfigurationIsLocked()
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = d.DataZoneIsLocked()
	require.NoError(t, err)
	assert.True(t, locked)

	config, err := d.ReadConfigZone()
	require.NoError(t, err)
	assert.Len(t, config, atca.ECCConfigSize)

	same, err := d.CmpConfigZone(config)
	require.NoError(t, err)
	assert.True(t, same)

	_, err = d.CmpConfigZone(config[:10])
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(err))

	slots, err := d.GetConfig()
	require.NoError(t, err)
	assert.Len(t, slots, atca.SlotCount)
}

func TestFail(t *testing.T) {
	d := openDevice(t, atca.DeviceTestFail)

	for i := 0; i < 3; i++ {
		_, err := d.Random()
		assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))
	}

	_, err := d.SHA([]byte("TestMessage"))
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))
	_, err = d.ReadConfigZone()
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))
	_, err = d.ConfigurationIsLocked()
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))

	ok, err := d.VerifyHash(atca.VerifyExternal(make([]byte, 64)), make([]byte, 32), make([]byte, 64))
	assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))
	assert.False(t, ok)

	// parameters are validated first
	_, err = d.SHA(make([]byte, atca.MaxSHAMessageSize+1))
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(err))

	assert.NoError(t, d.Release())
}
