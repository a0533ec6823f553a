package atca

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Status is a status code returned by a device operation.
// The numeric values match the CryptoAuthLib status codes.
type Status uint8

// Status codes
const (
	StatusSuccess               Status = 0x00
	StatusConfigZoneLocked      Status = 0x01
	StatusDataZoneLocked        Status = 0x02
	StatusWakeFailed            Status = 0xD0
	StatusCheckMacVerifyFailed  Status = 0xD1
	StatusParseError            Status = 0xD2
	StatusCRC                   Status = 0xD4
	StatusUnknown               Status = 0xD5
	StatusECC                   Status = 0xD6
	StatusSelfTestError         Status = 0xD7
	StatusFuncFail              Status = 0xE0
	StatusGenFail               Status = 0xE1
	StatusBadParam              Status = 0xE2
	StatusInvalidID             Status = 0xE3
	StatusInvalidSize           Status = 0xE4
	StatusRxCRCError            Status = 0xE5
	StatusRxFail                Status = 0xE6
	StatusRxNoResponse          Status = 0xE7
	StatusResyncWithWakeup      Status = 0xE8
	StatusParityError           Status = 0xE9
	StatusTxTimeout             Status = 0xEA
	StatusRxTimeout             Status = 0xEB
	StatusTooManyCommRetries    Status = 0xEC
	StatusSmallBuffer           Status = 0xED
	StatusWatchdogAboutToExpire Status = 0xEE
	StatusCommFail              Status = 0xF0
	StatusTimeout               Status = 0xF1
	StatusBadOpcode             Status = 0xF2
	StatusWakeSuccess           Status = 0xF3
	StatusExecutionError        Status = 0xF4
	StatusUnimplemented         Status = 0xF5
	StatusAssertFailure         Status = 0xF6
	StatusTxFail                Status = 0xF7
	StatusNotLocked             Status = 0xF8
	StatusNoDevices             Status = 0xF9
	StatusHealthTestError       Status = 0xFA
	StatusAllocFailure          Status = 0xFB
	StatusUseFlagsConsumed      Status = 0xFC
	StatusNotInitialized        Status = 0xFD
)

var statusNames = map[Status]string{
	StatusSuccess:               "success",
	StatusConfigZoneLocked:      "configuration zone locked",
	StatusDataZoneLocked:        "data zone locked",
	StatusWakeFailed:            "wake failed",
	StatusCheckMacVerifyFailed:  "checkmac or verify failed",
	StatusParseError:            "command parse error",
	StatusCRC:                   "bad CRC in command",
	StatusUnknown:               "unknown status",
	StatusECC:                   "ECC processing fault",
	StatusSelfTestError:         "self test error",
	StatusFuncFail:              "function failed",
	StatusGenFail:               "unspecified failure",
	StatusBadParam:              "bad parameter",
	StatusInvalidID:             "invalid ID",
	StatusInvalidSize:           "invalid size",
	StatusRxCRCError:            "response CRC error",
	StatusRxFail:                "response receive failed",
	StatusRxNoResponse:          "no response from device",
	StatusResyncWithWakeup:      "resync with wakeup",
	StatusParityError:           "parity error",
	StatusTxTimeout:             "transmit timeout",
	StatusRxTimeout:             "receive timeout",
	StatusTooManyCommRetries:    "too many communication retries",
	StatusSmallBuffer:           "buffer too small",
	StatusWatchdogAboutToExpire: "watchdog about to expire",
	StatusCommFail:              "communication failure",
	StatusTimeout:               "timeout",
	StatusBadOpcode:             "bad opcode",
	StatusWakeSuccess:           "wake success",
	StatusExecutionError:        "execution error",
	StatusUnimplemented:         "not implemented",
	StatusAssertFailure:         "assertion failure",
	StatusTxFail:                "transmit failed",
	StatusNotLocked:             "zone not locked",
	StatusNoDevices:             "no devices found",
	StatusHealthTestError:       "random generator health test error",
	StatusAllocFailure:          "allocation failure",
	StatusUseFlagsConsumed:      "use flags consumed",
	StatusNotInitialized:        "not initialized",
}

// ParseStatus maps a raw status code to Status.
// Codes outside of the known set map to StatusUnknown.
func ParseStatus(code uint8) Status {
	s := Status(code)
	if _, ok := statusNames[s]; ok {
		return s
	}
	return StatusUnknown
}

// String returns the status description
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return statusNames[StatusUnknown]
}

// Error implements error interface
func (s Status) Error() string {
	return fmt.Sprintf("atca: %s (0x%02X)", s.String(), uint8(s))
}

// IsSuccess returns true for StatusSuccess
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsCommError returns true if the status reports a bus level failure,
// as opposed to a parameter or execution error.
func (s Status) IsCommError() bool {
	switch s {
	case StatusWakeFailed, StatusCRC, StatusRxCRCError, StatusRxFail,
		StatusRxNoResponse, StatusResyncWithWakeup, StatusParityError,
		StatusTxTimeout, StatusRxTimeout, StatusTooManyCommRetries,
		StatusCommFail, StatusTimeout, StatusTxFail:
		return true
	}
	return false
}

// Err returns nil for StatusSuccess, otherwise the status itself
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return s
}

// StatusOf classifies an error returned by a device operation.
// nil is StatusSuccess, an error that wraps a Status returns it,
// and any other error is StatusUnknown.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusUnknown
}
