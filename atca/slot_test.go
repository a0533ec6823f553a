package atca_test

import (
	"testing"

	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/atca/atcatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlots(t *testing.T) {
	cfg := atcatest.ConfigZone(atca.DeviceATECC608A, true)
	assert.True(t, atca.IsConfigLocked(cfg))
	assert.True(t, atca.IsDataLocked(cfg))

	slots, err := atca.ParseSlots(atca.DeviceATECC608A, cfg)
	require.NoError(t, err)
	require.Len(t, slots, atca.SlotCount)

	for i, s := range slots {
		assert.Equal(t, uint8(i), s.ID)
	}

	s0 := slots[0]
	assert.Equal(t, atca.KeyTypeP256, s0.KeyType)
	assert.True(t, s0.Private)
	assert.True(t, s0.IsSecret)
	assert.True(t, s0.Lockable)
	assert.True(t, s0.CanSign())
	assert.True(t, s0.CanSignInternal())
	assert.False(t, s0.CanECDH())
	assert.False(t, s0.IsLocked)
	assert.Equal(t, uint8(2), s0.WriteConfig)

	assert.True(t, slots[atcatest.ECDHSlot].CanECDH())
	assert.True(t, slots[atcatest.LockedSlot].IsLocked)
	assert.Equal(t, atca.KeyTypeShaOrText, slots[atcatest.DataSlot].KeyType)
	assert.True(t, slots[atcatest.FirstPublicSlot].CanVerify())
	assert.False(t, slots[atcatest.FirstPublicSlot].CanSign())
	assert.Equal(t, atca.KeyTypeAES, slots[atcatest.AESSlot].KeyType)

	assert.True(t, atca.IsSlotLocked(atca.DeviceATECC608A, cfg, atcatest.LockedSlot))
	assert.False(t, atca.IsSlotLocked(atca.DeviceATECC608A, cfg, 0))
}

func TestParseSlots_SHA(t *testing.T) {
	cfg := atcatest.ConfigZone(atca.DeviceATSHA204A, false)
	require.Len(t, cfg, atca.SHAConfigSize)
	assert.False(t, atca.IsConfigLocked(cfg))

	slots, err := atca.ParseSlots(atca.DeviceATSHA204A, cfg)
	require.NoError(t, err)
	require.Len(t, slots, atca.SlotCount)
	for _, s := range slots {
		assert.Equal(t, atca.KeyTypeShaOrText, s.KeyType)
		assert.False(t, s.IsLocked)
		assert.False(t, s.CanSign())
	}
}

func TestParseSlots_BadSize(t *testing.T) {
	_, err := atca.ParseSlots(atca.DeviceATECC608A, make([]byte, atca.SHAConfigSize))
	assert.Equal(t, atca.StatusBadParam, atca.StatusOf(err))
}
