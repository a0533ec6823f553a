package command

import "github.com/effective-security/atecc/atca"

// Device response status bytes
const (
	DeviceSuccess         = 0x00
	DeviceMiscompare      = 0x01
	DeviceParseError      = 0x03
	DeviceECCFault        = 0x05
	DeviceSelfTestError   = 0x07
	DeviceHealthTestError = 0x08
	DeviceExecutionError  = 0x0F
	DeviceWake            = 0x11
	DeviceWatchdog        = 0xEE
	DeviceCRCError        = 0xFF
)

// DeviceStatus maps the status byte of a device response to atca.Status.
// Unrecognized values map to atca.StatusUnknown.
func DeviceStatus(b uint8) atca.Status {
	switch b {
	case DeviceSuccess:
		return atca.StatusSuccess
	case DeviceMiscompare:
		return atca.StatusCheckMacVerifyFailed
	case DeviceParseError:
		return atca.StatusParseError
	case DeviceECCFault:
		return atca.StatusECC
	case DeviceSelfTestError:
		return atca.StatusSelfTestError
	case DeviceHealthTestError:
		return atca.StatusHealthTestError
	case DeviceExecutionError:
		return atca.StatusExecutionError
	case DeviceWake:
		return atca.StatusWakeSuccess
	case DeviceWatchdog:
		return atca.StatusWatchdogAboutToExpire
	case DeviceCRCError:
		return atca.StatusCRC
	}
	return atca.StatusUnknown
}
