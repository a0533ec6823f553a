package command

import (
	"encoding/binary"
	"fmt"

	"github.com/effective-security/atecc/atca"
)

// Opcode is a command opcode
type Opcode uint8

// Opcodes
const (
	OpRead      Opcode = 0x02
	OpWrite     Opcode = 0x12
	OpNonce     Opcode = 0x16
	OpLock      Opcode = 0x17
	OpRandom    Opcode = 0x1B
	OpInfo      Opcode = 0x30
	OpGenKey    Opcode = 0x40
	OpSign      Opcode = 0x41
	OpVerify    Opcode = 0x45
	OpPrivWrite Opcode = 0x46
	OpSHA       Opcode = 0x47
)

var opcodeNames = map[Opcode]string{
	OpRead:      "read",
	OpWrite:     "write",
	OpNonce:     "nonce",
	OpLock:      "lock",
	OpRandom:    "random",
	OpInfo:      "info",
	OpGenKey:    "genkey",
	OpSign:      "sign",
	OpVerify:    "verify",
	OpPrivWrite: "privwrite",
	OpSHA:       "sha",
}

// String returns the opcode name
func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("opcode(0x%02X)", uint8(o))
}

// Packet sizes
const (
	// HeaderSize is count, opcode, param1 and param2
	HeaderSize = 5
	// CRCSize is the size of the packet CRC
	CRCSize = 2
	// MinPacketSize is the size of a command packet without data
	MinPacketSize = HeaderSize + CRCSize
	// MaxPacketSize is the largest command packet accepted by the device
	MaxPacketSize = 0xFF
	// StatusResponseSize is the size of a status response
	StatusResponseSize = 4
	// MinResponseSize is the smallest valid response
	MinResponseSize = StatusResponseSize
	// ResponseOverhead is count and CRC of a response
	ResponseOverhead = 3
)

// Packet is a command packet
type Packet struct {
	Opcode Opcode
	Param1 uint8
	Param2 uint16
	Data   []byte
}

// Bytes returns the framed packet including count and CRC
func (p *Packet) Bytes() []byte {
	n := MinPacketSize + len(p.Data)
	b := make([]byte, HeaderSize, n)
	b[0] = uint8(n)
	b[1] = uint8(p.Opcode)
	b[2] = p.Param1
	binary.LittleEndian.PutUint16(b[3:], p.Param2)
	b = append(b, p.Data...)
	return appendCRC(b)
}

// String returns a short description of the packet
func (p *Packet) String() string {
	return fmt.Sprintf("%s p1=0x%02X p2=0x%04X len=%d", p.Opcode, p.Param1, p.Param2, len(p.Data))
}

// ParsePacket decodes a framed command packet
func ParsePacket(b []byte) (*Packet, error) {
	if len(b) < MinPacketSize || int(b[0]) != len(b) {
		return nil, atca.StatusParseError
	}
	if !checkCRC(b) {
		return nil, atca.StatusCRC
	}
	p := &Packet{
		Opcode: Opcode(b[1]),
		Param1: b[2],
		Param2: binary.LittleEndian.Uint16(b[3:]),
	}
	if len(b) > MinPacketSize {
		p.Data = append([]byte(nil), b[HeaderSize:len(b)-CRCSize]...)
	}
	return p, nil
}

// EncodeResponse frames response data with count and CRC
func EncodeResponse(data []byte) []byte {
	b := make([]byte, 1, len(data)+ResponseOverhead)
	b[0] = uint8(len(data) + ResponseOverhead)
	b = append(b, data...)
	return appendCRC(b)
}

// EncodeStatus frames a device status byte
func EncodeStatus(status uint8) []byte {
	return EncodeResponse([]byte{status})
}

// ParseResponse validates a framed response and returns its data.
// A status response with a non-success device status is returned as error.
func ParseResponse(b []byte) ([]byte, error) {
	if len(b) < MinResponseSize {
		return nil, atca.StatusRxFail
	}
	count := int(b[0])
	if count < MinResponseSize || count > len(b) {
		return nil, atca.StatusRxFail
	}
	b = b[:count]
	if !checkCRC(b) {
		return nil, atca.StatusRxCRCError
	}
	data := b[1 : count-CRCSize]
	if count == StatusResponseSize {
		if err := DeviceStatus(data[0]).Err(); err != nil {
			return nil, err
		}
	}
	return data, nil
}
