package device

import (
	"testing"

	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/atca/atcatest"
	"github.com/stretchr/testify/assert"
)

func TestCheckImportKey(t *testing.T) {
	tcases := []struct {
		name string
		dt   atca.DeviceType
		kt   atca.KeyType
		size int
		slot uint8
		exp  atca.Status
	}{
		{name: "private", dt: atca.DeviceATECC608A, kt: atca.KeyTypeP256, size: 32, slot: 0, exp: atca.StatusSuccess},
		{name: "public", dt: atca.DeviceATECC508A, kt: atca.KeyTypeP256, size: 64, slot: 9, exp: atca.StatusSuccess},
		{name: "p256_size", dt: atca.DeviceATECC608A, kt: atca.KeyTypeP256, size: 33, slot: 0, exp: atca.StatusBadParam},
		{name: "p256_sha", dt: atca.DeviceATSHA204A, kt: atca.KeyTypeP256, size: 32, slot: 0, exp: atca.StatusBadParam},
		{name: "aes", dt: atca.DeviceATECC608A, kt: atca.KeyTypeAES, size: 16, slot: 15, exp: atca.StatusSuccess},
		{name: "aes_508", dt: atca.DeviceATECC508A, kt: atca.KeyTypeAES, size: 16, slot: 15, exp: atca.StatusBadParam},
		{name: "aes_size", dt: atca.DeviceATECC608A, kt: atca.KeyTypeAES, size: 32, slot: 15, exp: atca.StatusBadParam},
		{name: "sha", dt: atca.DeviceATSHA204A, kt: atca.KeyTypeShaOrText, size: 32, slot: 8, exp: atca.StatusSuccess},
		{name: "sha_size", dt: atca.DeviceATSHA204A, kt: atca.KeyTypeShaOrText, size: 31, slot: 8, exp: atca.StatusBadParam},
		{name: "slot", dt: atca.DeviceATECC608A, kt: atca.KeyTypeShaOrText, size: 32, slot: 16, exp: atca.StatusBadParam},
		{name: "reserved", dt: atca.DeviceATECC608A, kt: atca.KeyTypeReserved, size: 32, slot: 0, exp: atca.StatusBadParam},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckImportKey(tc.dt, tc.kt, make([]byte, tc.size), tc.slot)
			assert.Equal(t, tc.exp, atca.StatusOf(err))
		})
	}
}

func TestCheckSignVerify(t *testing.T) {
	digest := make([]byte, atca.DigestSize)
	sig := make([]byte, atca.SignatureSize)
	pub := make([]byte, atca.PublicKeySize)

	assert.NoError(t, CheckSignMode(atca.SignExternal(digest), 0))
	assert.NoError(t, CheckSignMode(atca.SignInternal(), 15))
	assert.Equal(t, atca.StatusBadParam, CheckSignMode(atca.SignExternal(digest[:31]), 0))
	assert.Equal(t, atca.StatusBadParam, CheckSignMode(atca.SignInternal(), 16))

	assert.NoError(t, CheckVerifyMode(atca.VerifyExternal(pub), digest, sig))
	assert.NoError(t, CheckVerifyMode(atca.VerifyStored(9), digest, sig))
	assert.Equal(t, atca.StatusBadParam, CheckVerifyMode(atca.VerifyExternal(pub[:63]), digest, sig))
	assert.Equal(t, atca.StatusBadParam, CheckVerifyMode(atca.VerifyStored(16), digest, sig))
	assert.Equal(t, atca.StatusBadParam, CheckVerifyMode(atca.VerifyStored(9), digest[:20], sig))
	assert.Equal(t, atca.StatusBadParam, CheckVerifyMode(atca.VerifyStored(9), digest, sig[:48]))
}

func TestCheckSHA(t *testing.T) {
	assert.NoError(t, CheckSHA(nil))
	assert.NoError(t, CheckSHA(make([]byte, atca.MaxSHAMessageSize)))
	assert.Equal(t, atca.StatusBadParam, CheckSHA(make([]byte, atca.MaxSHAMessageSize+1)))
}

func TestCheckNonce(t *testing.T) {
	assert.NoError(t, CheckNonce(atca.DeviceATECC608A, atca.NonceTargetMsgDigestBuffer, make([]byte, 64)))
	assert.Equal(t, atca.StatusBadParam, CheckNonce(atca.DeviceATECC508A, atca.NonceTargetMsgDigestBuffer, make([]byte, 32)))
	assert.Equal(t, atca.StatusBadParam, CheckNonce(atca.DeviceATECC608A, atca.NonceTargetAltKeyBuffer, make([]byte, 64)))

	assert.NoError(t, CheckHostNonce(make([]byte, atca.NumInSize)))
	assert.Equal(t, atca.StatusBadParam, CheckHostNonce(make([]byte, 32)))
}

func TestSameConfig(t *testing.T) {
	a := atcatest.ConfigZone(atca.DeviceATECC608A, true)
	b := atcatest.ConfigZone(atca.DeviceATECC608A, true)
	assert.True(t, SameConfig(a, b))

	// serial number and lock bytes are ignored
	b[0] = 0xFF
	b[atca.LockConfigOffset] = atca.LockUnlocked
	assert.True(t, SameConfig(a, b))

	b[atca.SlotConfigOffset] ^= 0x01
	assert.False(t, SameConfig(a, b))

	assert.False(t, SameConfig(a, a[:atca.SHAConfigSize]))

	sha := atcatest.ConfigZone(atca.DeviceATSHA204A, true)
	assert.True(t, SameConfig(sha, atcatest.ConfigZone(atca.DeviceATSHA204A, false)))
}
