package device_test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"testing"

	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Signer(t *testing.T) {
	dev, err := device.Create(testConfig(atca.DeviceTestSuccess))
	require.NoError(t, err)
	defer func() {
		_ = dev.Release()
	}()

	_, err = device.NewSigner(dev, 0)
	assert.EqualError(t, err, "unable to read public key of slot 0: atca: execution error (0xF4)")

	require.NoError(t, dev.GenKey(atca.KeyTypeP256, 0))
	s, err := device.NewSigner(dev, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), s.Slot())
	assert.Equal(t, "device=test_success, slot=0", s.String())

	var signer crypto.Signer = s
	digest := sha256.Sum256([]byte("TestMessage"))
	der, err := signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	require.NoError(t, err)

	pub, ok := signer.Public().(*ecdsa.PublicKey)
	require.True(t, ok)
	assert.True(t, ecdsa.VerifyASN1(pub, digest[:], der))

	raw, err := device.UnmarshalSignature(der)
	require.NoError(t, err)
	ok, err = dev.VerifyHash(atca.VerifyExternal(nil), digest[:], raw)
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(err))
	assert.False(t, ok)

	rawPub, err := dev.GetPublicKey(0)
	require.NoError(t, err)
	ok, err = dev.VerifyHash(atca.VerifyExternal(rawPub), digest[:], raw)
	require.NoError(t, err)
	assert.True(t, ok)

	d512 := sha512.Sum512([]byte("TestMessage"))
	_, err = signer.Sign(rand.Reader, d512[:], crypto.SHA512)
	assert.EqualError(t, err, "unsupported hash: SHA-512")

	_, err = signer.Sign(rand.Reader, digest[:20], nil)
	assert.EqualError(t, err, "invalid digest size: 20")
}

func Test_SignatureEncoding(t *testing.T) {
	raw := make([]byte, atca.SignatureSize)
	raw[0] = 0x80
	raw[31] = 0x01
	raw[63] = 0x02

	der, err := device.MarshalSignature(raw)
	require.NoError(t, err)
	// the high bit of R requires a leading zero
	assert.Equal(t, byte(0x30), der[0])
	assert.Equal(t, []byte{0x02, 0x21, 0x00, 0x80}, der[2:6])

	back, err := device.UnmarshalSignature(der)
	require.NoError(t, err)
	assert.Equal(t, raw, back)

	_, err = device.UnmarshalSignature([]byte{0x30, 0x00})
	assert.EqualError(t, err, "invalid signature encoding")

	_, err = device.MarshalSignature(raw[:10])
	assert.EqualError(t, err, "invalid signature size: 10")

	_, err = device.ParsePublicKey(make([]byte, 10))
	assert.EqualError(t, err, "invalid public key size: 10")
}
