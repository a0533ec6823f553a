// Package device provides the session layer of a CryptoAuthentication
// secure element.
//
// A Device is created from atca.IfaceConfig by Create, which selects a
// backend by the configured device type:
//   - test_success and test_fail are served by the software backend
//   - unknown is rejected
//   - every other device type is served by the hardware backend
//
// Backends register themselves by name from their package init, import
// them for side effects:
//
//	import (
//		_ "github.com/effective-security/atecc/device/hwdevice"
//		_ "github.com/effective-security/atecc/device/swdevice"
//	)
//
// At most one session is live in a process. Create fails with
// ErrSessionActive while a session exists; Release clears it.
package device
