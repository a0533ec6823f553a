package command

import "github.com/effective-security/atecc/atca"

// Mode bits
const (
	NonceModeSeedUpdate    = 0x00
	NonceModePassthrough   = 0x03
	NonceModeInput64       = 0x20
	GenKeyModePublic       = 0x00
	GenKeyModePrivate      = 0x04
	SignModeSourceMsgDig   = 0x20
	VerifyModeSourceMsgDig = 0x20
	ZoneReadWrite32        = 0x80
	InfoModeRevision       = 0x00
	SHAModeStart           = 0x00
	SHAModeUpdate          = 0x01
	SHAModeEnd             = 0x02

	// SHABlockSize is the message block size of the SHA update command
	SHABlockSize = 64
	// VerifyKeyP256 is the key type of an external Verify public key
	VerifyKeyP256 = 0x0004
	// PrivWriteSize is the padded private key and MAC of PrivWrite
	PrivWriteSize = 36 + 32
)

// Address returns the zone address of a block/offset.
// The slot is used for the data zone only.
func Address(zone atca.Zone, slot uint8, block uint8, offset uint8) uint16 {
	addr := uint16(block)<<3 | uint16(offset&0x07)
	if zone == atca.ZoneData {
		addr = uint16(block)<<8 | uint16(slot)<<3 | uint16(offset&0x07)
	}
	return addr
}

// Random returns the Random command
func Random() *Packet {
	return &Packet{Opcode: OpRandom}
}

// Info returns the Info command reading the device revision
func Info() *Packet {
	return &Packet{Opcode: OpInfo, Param1: InfoModeRevision}
}

// SHAStart returns the command starting a SHA-256 computation
func SHAStart() *Packet {
	return &Packet{Opcode: OpSHA, Param1: SHAModeStart}
}

// SHAUpdate returns the command hashing one 64 byte block
func SHAUpdate(block []byte) *Packet {
	return &Packet{Opcode: OpSHA, Param1: SHAModeUpdate, Param2: uint16(len(block)), Data: block}
}

// SHAEnd returns the command hashing the last 0..63 bytes
// and returning the digest
func SHAEnd(tail []byte) *Packet {
	return &Packet{Opcode: OpSHA, Param1: SHAModeEnd, Param2: uint16(len(tail)), Data: tail}
}

// NonceLoad returns the pass-through Nonce command loading data into target
func NonceLoad(target atca.NonceTarget, data []byte) *Packet {
	mode := uint8(NonceModePassthrough) | uint8(target)
	if len(data) == 64 {
		mode |= NonceModeInput64
	}
	return &Packet{Opcode: OpNonce, Param1: mode, Data: data}
}

// NonceRand returns the Nonce command combining a host nonce with
// a device random number
func NonceRand(numIn []byte) *Packet {
	return &Packet{Opcode: OpNonce, Param1: NonceModeSeedUpdate, Data: numIn}
}

// GenKeyPrivate returns the command creating a private key in slot
func GenKeyPrivate(slot uint8) *Packet {
	return &Packet{Opcode: OpGenKey, Param1: GenKeyModePrivate, Param2: uint16(slot)}
}

// GenKeyPublic returns the command computing the public key of slot
func GenKeyPublic(slot uint8) *Packet {
	return &Packet{Opcode: OpGenKey, Param1: GenKeyModePublic, Param2: uint16(slot)}
}

// PrivWrite returns the unencrypted PrivWrite command for a P256 private key
func PrivWrite(slot uint8, key []byte) *Packet {
	data := make([]byte, PrivWriteSize)
	copy(data[4:36], key)
	return &Packet{Opcode: OpPrivWrite, Param2: uint16(slot), Data: data}
}

// Write returns the Write command of a 4 or 32 byte block
func Write(zone atca.Zone, addr uint16, data []byte) *Packet {
	p1 := uint8(zone)
	if len(data) == atca.BlockSize {
		p1 |= ZoneReadWrite32
	}
	return &Packet{Opcode: OpWrite, Param1: p1, Param2: addr, Data: data}
}

// Read returns the Read command of a 4 or 32 byte block
func Read(zone atca.Zone, addr uint16, size int) *Packet {
	p1 := uint8(zone)
	if size == atca.BlockSize {
		p1 |= ZoneReadWrite32
	}
	return &Packet{Opcode: OpRead, Param1: p1, Param2: addr}
}

// Sign returns the Sign command
func Sign(mode uint8, slot uint8) *Packet {
	return &Packet{Opcode: OpSign, Param1: mode, Param2: uint16(slot)}
}

// VerifyExternal returns the Verify command with a host supplied public key
func VerifyExternal(mode uint8, signature, publicKey []byte) *Packet {
	data := make([]byte, 0, len(signature)+len(publicKey))
	data = append(data, signature...)
	data = append(data, publicKey...)
	return &Packet{Opcode: OpVerify, Param1: mode, Param2: VerifyKeyP256, Data: data}
}

// VerifyStored returns the Verify command with the public key stored in slot
func VerifyStored(mode uint8, slot uint8, signature []byte) *Packet {
	return &Packet{Opcode: OpVerify, Param1: mode, Param2: uint16(slot), Data: signature}
}
