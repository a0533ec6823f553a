package command

import (
	"testing"
	"time"

	"github.com/effective-security/atecc/atca"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC(t *testing.T) {
	// wake response as documented for the CryptoAuthentication devices
	wake := []byte{0x04, 0x11, 0x33, 0x43}
	assert.True(t, checkCRC(wake))
	assert.Equal(t, wake, EncodeStatus(DeviceWake))

	assert.Equal(t, uint16(0), CRC(nil))
	assert.False(t, checkCRC([]byte{0x01}))
	assert.False(t, checkCRC([]byte{0x04, 0x11, 0x33, 0x44}))
}

func TestPacket(t *testing.T) {
	p := &Packet{Opcode: OpRead, Param1: 0x80, Param2: 0x0010}
	b := p.Bytes()
	require.Len(t, b, MinPacketSize)
	assert.Equal(t, []byte{0x07, 0x02, 0x80, 0x10, 0x00}, b[:HeaderSize])
	assert.True(t, checkCRC(b))
	assert.Equal(t, "read p1=0x80 p2=0x0010 len=0", p.String())

	parsed, err := ParsePacket(b)
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}
	p = SHAUpdate(data)
	b = p.Bytes()
	require.Len(t, b, MinPacketSize+64)
	parsed, err = ParsePacket(b)
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	b[10] ^= 0xFF
	_, err = ParsePacket(b)
	assert.Equal(t, atca.StatusCRC, err)

	_, err = ParsePacket(b[:5])
	assert.Equal(t, atca.StatusParseError, err)
}

func TestParseResponse(t *testing.T) {
	payload := make([]byte, atca.RandomSize)
	payload[0] = 0xAB
	resp := EncodeResponse(payload)
	require.Len(t, resp, atca.RandomSize+ResponseOverhead)

	data, err := ParseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// trailing bytes beyond count are ignored
	data, err = ParseResponse(append(resp, 0xFF, 0xFF))
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	data, err = ParseResponse(EncodeStatus(DeviceSuccess))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, data)

	_, err = ParseResponse(EncodeStatus(DeviceMiscompare))
	assert.Equal(t, atca.StatusCheckMacVerifyFailed, err)
	_, err = ParseResponse(EncodeStatus(DeviceExecutionError))
	assert.Equal(t, atca.StatusExecutionError, err)

	resp[5] ^= 0x01
	_, err = ParseResponse(resp)
	assert.Equal(t, atca.StatusRxCRCError, err)

	_, err = ParseResponse([]byte{0x04, 0x00})
	assert.Equal(t, atca.StatusRxFail, err)
	_, err = ParseResponse([]byte{0x23, 0x00, 0x00, 0x00})
	assert.Equal(t, atca.StatusRxFail, err)
}

func TestDeviceStatus(t *testing.T) {
	tcases := []struct {
		b   uint8
		exp atca.Status
	}{
		{0x00, atca.StatusSuccess},
		{0x01, atca.StatusCheckMacVerifyFailed},
		{0x03, atca.StatusParseError},
		{0x05, atca.StatusECC},
		{0x07, atca.StatusSelfTestError},
		{0x08, atca.StatusHealthTestError},
		{0x0F, atca.StatusExecutionError},
		{0x11, atca.StatusWakeSuccess},
		{0xEE, atca.StatusWatchdogAboutToExpire},
		{0xFF, atca.StatusCRC},
		{0x42, atca.StatusUnknown},
	}
	for _, tc := range tcases {
		assert.Equal(t, tc.exp, DeviceStatus(tc.b), "0x%02X", tc.b)
	}
}

func TestAddress(t *testing.T) {
	assert.Equal(t, uint16(0x0000), Address(atca.ZoneConfig, 0, 0, 0))
	assert.Equal(t, uint16(0x0018), Address(atca.ZoneConfig, 0, 3, 0))
	assert.Equal(t, uint16(0x0015), Address(atca.ZoneConfig, 0, 2, 5))
	assert.Equal(t, uint16(0x0040), Address(atca.ZoneData, 8, 0, 0))
	assert.Equal(t, uint16(0x0178), Address(atca.ZoneData, 15, 1, 0))
}

func TestBuilders(t *testing.T) {
	p := NonceLoad(atca.NonceTargetMsgDigestBuffer, make([]byte, 64))
	assert.Equal(t, uint8(0x63), p.Param1)
	p = NonceLoad(atca.NonceTargetTempKey, make([]byte, 32))
	assert.Equal(t, uint8(0x03), p.Param1)

	p = PrivWrite(3, []byte{0x01, 0x02})
	require.Len(t, p.Data, PrivWriteSize)
	assert.Equal(t, []byte{0, 0, 0, 0, 0x01, 0x02}, p.Data[:6])
	assert.Equal(t, uint16(3), p.Param2)

	p = Write(atca.ZoneData, 0x40, make([]byte, 32))
	assert.Equal(t, uint8(0x82), p.Param1)
	p = Read(atca.ZoneConfig, 0x15, 4)
	assert.Equal(t, uint8(0x00), p.Param1)

	p = VerifyExternal(0x02, make([]byte, 64), make([]byte, 64))
	assert.Len(t, p.Data, 128)
	assert.Equal(t, uint16(VerifyKeyP256), p.Param2)

	p = GenKeyPrivate(2)
	assert.Equal(t, uint8(GenKeyModePrivate), p.Param1)
	assert.Equal(t, uint16(2), p.Param2)
	assert.Equal(t, uint16(5), SHAEnd([]byte("hello")).Param2)
}

func TestExecutionTime(t *testing.T) {
	assert.Equal(t, 115*time.Millisecond, ExecutionTime(atca.DeviceATECC608A, OpGenKey))
	assert.Equal(t, 60*time.Millisecond, ExecutionTime(atca.DeviceATECC508A, OpSign))
	assert.Equal(t, 22*time.Millisecond, ExecutionTime(atca.DeviceATSHA204A, OpSHA))
	assert.Equal(t, defaultExecutionTime, ExecutionTime(atca.DeviceATSHA204A, OpSign))
	assert.Equal(t, defaultExecutionTime, ExecutionTime(atca.DeviceTestSuccess, OpRandom))
	assert.Equal(t, "opcode(0x99)", Opcode(0x99).String())
}
