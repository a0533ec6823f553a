package hwdevice

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/atca/command"
	"github.com/effective-security/atecc/device"
	"github.com/effective-security/atecc/metricskey"
	"github.com/effective-security/atecc/transport"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/atecc/device", "hwdevice")

// BackendName is the name of the backend in the device registry
const BackendName = device.BackendHardware

// TransportFactory opens the transport of a device, override for unittest
var TransportFactory = transport.Open

// sleep waits for the device, override for unittest
var sleep = time.Sleep

// pollInterval is the delay between response polls
const pollInterval = time.Millisecond

// maxResponseSize is the largest framed response: a public key or signature
const maxResponseSize = atca.PublicKeySize + command.ResponseOverhead

func init() {
	_ = device.Register(BackendName, loader)
}

// ownership tracks the transport handed over to the session
type ownership int

const (
	// the session never received a transport
	ownershipUnowned ownership = iota
	// the session owns the transport and closes it on Release
	ownershipTransferred
	// the transport was closed by Release
	ownershipReleased
)

// Device is a session with a physical secure element
type Device struct {
	lock sync.Mutex

	cfg     *atca.IfaceConfig
	devType atca.DeviceType
	t       transport.Transport
	owner   ownership
}

// loader is the device.Loader of the hardware backend,
// sessions are created with device.Create
func loader(cfg *atca.IfaceConfig) (device.Device, error) {
	return newDevice(cfg)
}

// newDevice opens the transport of the configuration and probes the device.
// The configuration is copied, the caller keeps ownership of cfg.
func newDevice(cfg *atca.IfaceConfig) (*Device, error) {
	if cfg.DeviceType.IsTest() || cfg.DeviceType == atca.DeviceUnknown {
		return nil, errors.Errorf("unsupported device type: %s", cfg.DeviceType)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := device.CheckNoSession(); err != nil {
		return nil, err
	}

	own, err := cfg.Clone()
	if err != nil {
		return nil, err
	}

	t, err := TransportFactory(own)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to open %s transport", own.IfaceType)
	}

	d := &Device{
		cfg:     own,
		devType: own.DeviceType,
		t:       t,
		owner:   ownershipTransferred,
	}

	rev, err := d.Info()
	if err != nil {
		_ = d.Release()
		return nil, errors.WithMessagef(err, "%s is not responding", own.DeviceType)
	}
	if !revisionMatches(d.devType, rev) {
		logger.KV(xlog.WARNING,
			"reason", "revision_mismatch",
			"device", d.devType,
			"revision", rev)
	}

	logger.KV(xlog.DEBUG, "device", d.devType, "revision", rev)
	return d, nil
}

// revisionMatches checks the family byte of the Info revision
func revisionMatches(dt atca.DeviceType, rev []byte) bool {
	if len(rev) < 3 {
		return false
	}
	switch dt {
	case atca.DeviceATECC608A:
		return rev[2] == 0x60
	case atca.DeviceATECC508A:
		return rev[2] == 0x50
	case atca.DeviceATECC108A:
		return rev[2] == 0x10
	}
	return rev[2] == 0x00
}

// DeviceType returns the device type of the session
func (d *Device) DeviceType() atca.DeviceType {
	return d.devType
}

// Release closes the transport. Subsequent calls return
// atca.StatusNotInitialized.
func (d *Device) Release() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.owner != ownershipTransferred || d.t == nil {
		return atca.StatusNotInitialized
	}

	d.owner = ownershipReleased
	if err := d.t.Close(); err != nil {
		logger.KV(xlog.ERROR, "reason", "close", "device", d.devType, "err", err)
		return atca.StatusCommFail
	}
	return nil
}

// op runs fn holding the session lock
func (d *Device) op(name string, fn func() error) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.owner != ownershipTransferred {
		return atca.StatusNotInitialized
	}

	defer metricskey.PerfDeviceOperation.MeasureSince(time.Now(), d.devType.String(), name)

	err := fn()
	if err != nil {
		logger.KV(xlog.DEBUG,
			"device", d.devType,
			"command", name,
			"status", atca.StatusOf(err),
			"err", err)
	}
	return err
}

// roundTrip wakes the device, executes the command and returns
// the device to idle
func (d *Device) roundTrip(p *command.Packet) ([]byte, error) {
	if err := d.wake(); err != nil {
		return nil, err
	}

	data, err := d.execute(p)

	if ierr := d.t.Idle(); ierr != nil {
		logger.KV(xlog.DEBUG, "reason", "idle", "command", p.Opcode, "err", ierr)
	}
	return data, err
}

// expect executes the command and checks the size of the response data
func (d *Device) expect(p *command.Packet, size int) ([]byte, error) {
	data, err := d.roundTrip(p)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		logger.KV(xlog.DEBUG,
			"reason", "response_size",
			"command", p.Opcode,
			"expected", size,
			"actual", len(data))
		return nil, atca.StatusRxFail
	}
	return data, nil
}

func (d *Device) wake() error {
	defer metricskey.PerfTransportWake.MeasureSince(time.Now(), d.devType.String())

	if err := d.t.Wake(); err != nil {
		logger.KV(xlog.DEBUG, "reason", "wake", "err", err)
		return atca.StatusWakeFailed
	}
	sleep(time.Duration(d.cfg.WakeDelay) * time.Microsecond)

	buf := make([]byte, command.StatusResponseSize)
	n, err := d.receive(buf)
	if err != nil {
		return atca.StatusWakeFailed
	}

	_, err = command.ParseResponse(buf[:n])
	if atca.StatusOf(err) != atca.StatusWakeSuccess {
		logger.KV(xlog.DEBUG, "reason", "wake_response", "status", atca.StatusOf(err))
		return atca.StatusWakeFailed
	}
	return nil
}

func (d *Device) execute(p *command.Packet) ([]byte, error) {
	if err := d.t.Send(p.Bytes()); err != nil {
		logger.KV(xlog.DEBUG, "reason", "send", "command", p.Opcode, "err", err)
		return nil, atca.StatusTxFail
	}
	sleep(command.ExecutionTime(d.devType, p.Opcode))

	buf := make([]byte, maxResponseSize)
	n, err := d.receive(buf)
	if err != nil {
		return nil, err
	}
	return command.ParseResponse(buf[:n])
}

// receive polls the transport up to the configured number of retries
func (d *Device) receive(buf []byte) (int, error) {
	var err error
	for i := 0; i < d.cfg.Retries(); i++ {
		var n int
		n, err = d.t.Receive(buf)
		if err == nil {
			return n, nil
		}
		sleep(pollInterval)
	}
	logger.KV(xlog.DEBUG, "reason", "receive", "retries", d.cfg.Retries(), "err", err)
	return 0, atca.StatusRxNoResponse
}
