// Package i2c implements the CryptoAuthentication I2C transport over the
// Linux i2c-dev character device.
//
// The 8-bit device address used by the configuration is shifted to the
// 7-bit bus address. The bus speed is set by the kernel driver, the baud
// rate of the configuration is informational.
package i2c

// Word address values
const (
	wordReset   = 0x00
	wordSleep   = 0x01
	wordIdle    = 0x02
	wordCommand = 0x03
)
