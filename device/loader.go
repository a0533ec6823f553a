package device

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/atecc", "device")

// Backend names
const (
	BackendHardware = "hardware"
	BackendSoftware = "software"
)

// Loader creates a device session of a backend
type Loader func(cfg *atca.IfaceConfig) (Device, error)

var (
	lockLoaders sync.RWMutex
	loaders     = make(map[string]Loader)
)

// Register backend loader by name
func Register(backend string, loader Loader) error {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if _, ok := loaders[backend]; ok {
		return errors.Errorf("already registered: %s", backend)
	}

	loaders[backend] = loader
	return nil
}

// Unregister backend loader by name
func Unregister(backend string) (Loader, error) {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if loader, ok := loaders[backend]; ok {
		delete(loaders, backend)
		return loader, nil
	}

	return nil, errors.Errorf("not registered: %s", backend)
}

// Registered returns registered backends
func Registered() []string {
	lockLoaders.RLock()
	defer lockLoaders.RUnlock()

	list := make([]string, 0, len(loaders))
	for name := range loaders {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// BackendFor returns the backend serving the device type
func BackendFor(dt atca.DeviceType) (string, error) {
	switch dt {
	case atca.DeviceTestSuccess, atca.DeviceTestFail:
		return BackendSoftware, nil
	case atca.DeviceUnknown:
		return "", errors.New("attempting to create an unknown device type")
	}
	return BackendHardware, nil
}

// Create returns a new device session for the configuration.
// It fails with ErrSessionActive while another session is live.
func Create(cfg *atca.IfaceConfig) (Device, error) {
	if cfg == nil {
		return nil, errors.New("missing configuration")
	}

	backend, err := BackendFor(cfg.DeviceType)
	if err != nil {
		return nil, err
	}

	lockLoaders.RLock()
	loader, ok := loaders[backend]
	lockLoaders.RUnlock()
	if !ok {
		return nil, errors.Errorf("backend not registered: %s", backend)
	}

	return claim(func() (Device, error) {
		dev, err := loader(cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to create %s device", cfg.DeviceType)
		}
		logger.KV(xlog.INFO, "backend", backend, "device", cfg.DeviceType, "iface", cfg.IfaceType)
		return dev, nil
	})
}
