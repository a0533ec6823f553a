package command

import (
	"time"

	"github.com/effective-security/atecc/atca"
)

// defaultExecutionTime is used for opcodes missing from a table
const defaultExecutionTime = 250 * time.Millisecond

// maximum execution times in milliseconds
var (
	execTimesECC608 = map[Opcode]int{
		OpGenKey:    115,
		OpInfo:      5,
		OpLock:      35,
		OpNonce:     20,
		OpPrivWrite: 50,
		OpRandom:    23,
		OpRead:      5,
		OpSHA:       36,
		OpSign:      115,
		OpVerify:    105,
		OpWrite:     45,
	}
	execTimesECC508 = map[Opcode]int{
		OpGenKey:    115,
		OpInfo:      1,
		OpLock:      32,
		OpNonce:     7,
		OpPrivWrite: 48,
		OpRandom:    23,
		OpRead:      1,
		OpSHA:       9,
		OpSign:      60,
		OpVerify:    72,
		OpWrite:     26,
	}
	execTimesSHA204 = map[Opcode]int{
		OpInfo:   2,
		OpLock:   24,
		OpNonce:  60,
		OpRandom: 50,
		OpRead:   5,
		OpSHA:    22,
		OpWrite:  42,
	}
)

// ExecutionTime returns the maximum execution time of op on the device type
func ExecutionTime(dt atca.DeviceType, op Opcode) time.Duration {
	var table map[Opcode]int
	switch dt {
	case atca.DeviceATECC608A:
		table = execTimesECC608
	case atca.DeviceATECC508A, atca.DeviceATECC108A:
		table = execTimesECC508
	case atca.DeviceATSHA204A, atca.DeviceATSHA206A:
		table = execTimesSHA204
	}
	if ms, ok := table[op]; ok {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultExecutionTime
}
