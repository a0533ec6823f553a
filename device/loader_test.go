package device_test

import (
	"testing"

	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// register backends
	_ "github.com/effective-security/atecc/device/hwdevice"
	_ "github.com/effective-security/atecc/device/swdevice"
)

func testConfig(dt atca.DeviceType) *atca.IfaceConfig {
	return &atca.IfaceConfig{
		IfaceType:  atca.IfaceCustom,
		DeviceType: dt,
		WakeDelay:  atca.DefaultWakeDelay,
		RxRetries:  atca.DefaultRxRetries,
	}
}

func Test_Registered(t *testing.T) {
	assert.Equal(t, []string{device.BackendHardware, device.BackendSoftware}, device.Registered())

	err := device.Register(device.BackendSoftware, func(*atca.IfaceConfig) (device.Device, error) {
		return nil, nil
	})
	assert.EqualError(t, err, "already registered: software")

	_, err = device.Unregister("tpm")
	assert.EqualError(t, err, "not registered: tpm")
}

func Test_BackendFor(t *testing.T) {
	tcases := []struct {
		dt      atca.DeviceType
		backend string
		err     string
	}{
		{dt: atca.DeviceTestSuccess, backend: device.BackendSoftware},
		{dt: atca.DeviceTestFail, backend: device.BackendSoftware},
		{dt: atca.DeviceATECC608A, backend: device.BackendHardware},
		{dt: atca.DeviceATSHA204A, backend: device.BackendHardware},
		{dt: atca.DeviceUnknown, err: "attempting to create an unknown device type"},
	}

	for _, tc := range tcases {
		t.Run(tc.dt.String(), func(t *testing.T) {
			backend, err := device.BackendFor(tc.dt)
			if tc.err != "" {
				assert.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.backend, backend)
		})
	}
}

func Test_Create(t *testing.T) {
	_, err := device.Create(nil)
	assert.EqualError(t, err, "missing configuration")

	_, err = device.Create(testConfig(atca.DeviceUnknown))
	assert.EqualError(t, err, "attempting to create an unknown device type")

	_, ok := device.Current()
	assert.False(t, ok)

	dev, err := device.Create(testConfig(atca.DeviceTestSuccess))
	require.NoError(t, err)
	assert.Equal(t, atca.DeviceTestSuccess, dev.DeviceType())

	cur, ok := device.Current()
	require.True(t, ok)
	assert.Equal(t, dev, cur)

	_, err = device.Create(testConfig(atca.DeviceTestFail))
	assert.ErrorIs(t, err, device.ErrSessionActive)
	assert.ErrorIs(t, device.CheckNoSession(), device.ErrSessionActive)

	require.NoError(t, dev.Release())
	assert.Equal(t, atca.StatusNotInitialized, atca.StatusOf(dev.Release()))

	_, ok = device.Current()
	assert.False(t, ok)
	assert.NoError(t, device.CheckNoSession())

	_, err = dev.Random()
	assert.Equal(t, atca.StatusNotInitialized, atca.StatusOf(err))

	dev, err = device.Create(testConfig(atca.DeviceTestFail))
	require.NoError(t, err)
	assert.NoError(t, dev.Release())
}

func Test_Create_Unregistered(t *testing.T) {
	loader, err := device.Unregister(device.BackendHardware)
	require.NoError(t, err)
	defer func() {
		_ = device.Register(device.BackendHardware, loader)
	}()

	_, err = device.Create(testConfig(atca.DeviceATECC608A))
	assert.EqualError(t, err, "backend not registered: hardware")

	_, ok := device.Current()
	assert.False(t, ok)
}

func Test_Create_Fails(t *testing.T) {
	cfg := testConfig(atca.DeviceATECC608A)
	cfg.IfaceType = atca.IfaceI2C

	_, err := device.Create(cfg)
	assert.EqualError(t, err, "unable to create atecc608a device: missing i2c slave address")

	_, ok := device.Current()
	assert.False(t, ok)
}

func Test_TestMessage(t *testing.T) {
	dev, err := device.Create(testConfig(atca.DeviceTestSuccess))
	require.NoError(t, err)

	digest, err := dev.SHA([]byte("TestMessage"))
	require.NoError(t, err)
	assert.Len(t, digest, atca.DigestSize)

	assert.NoError(t, dev.Release())
}

func Test_TestFail(t *testing.T) {
	dev, err := device.Create(testConfig(atca.DeviceTestFail))
	require.NoError(t, err)
	defer func() {
		_ = dev.Release()
	}()

	for i := 0; i < 3; i++ {
		_, err = dev.Random()
		assert.Equal(t, atca.StatusExecutionError, atca.StatusOf(err))
	}
}

type panicDevice struct {
	device.Device
}

func (panicDevice) Release() error {
	panic("corrupted")
}

func Test_Release_Panic(t *testing.T) {
	loader, err := device.Unregister(device.BackendSoftware)
	require.NoError(t, err)
	defer func() {
		_, _ = device.Unregister(device.BackendSoftware)
		_ = device.Register(device.BackendSoftware, loader)
	}()

	err = device.Register(device.BackendSoftware, func(cfg *atca.IfaceConfig) (device.Device, error) {
		return panicDevice{}, nil
	})
	require.NoError(t, err)

	dev, err := device.Create(testConfig(atca.DeviceTestSuccess))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		err = dev.Release()
	})
	assert.Equal(t, atca.StatusGenFail, atca.StatusOf(err))

	_, ok := device.Current()
	assert.False(t, ok)
}
