// Package simulator emulates a CryptoAuthentication secure element behind
// the transport.Transport interface.
//
// The Chip decodes command packets, keeps the volatile state of the device
// (TempKey, Message Digest Buffer, SHA context) and answers with framed
// responses. P256 keys are held in memory. Faults can be injected to
// exercise communication failures.
package simulator

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"hash"
	"math/big"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/atca/atcatest"
	"github.com/effective-security/atecc/atca/command"
)

// Fault selects an injected communication failure
type Fault int

// Faults
const (
	// NoFault is normal operation
	NoFault Fault = iota
	// FaultNoResponse drops every response, Receive fails
	FaultNoResponse
	// FaultBadCRC corrupts the CRC of every response
	FaultBadCRC
	// FaultNoWake ignores the wake token
	FaultNoWake
)

// slotStorage is the emulated size of every data slot
const slotStorage = 3 * atca.BlockSize

// ErrNoAck is returned when the device does not acknowledge a transfer
var ErrNoAck = errors.New("simulator: no acknowledge")

// ErrClosed is returned after Close
var ErrClosed = errors.New("simulator: closed")

// Chip is an emulated secure element
type Chip struct {
	lock sync.Mutex

	devType atca.DeviceType
	config  []byte
	slots   [atca.SlotCount][]byte
	keys    map[uint8]*ecdsa.PrivateKey

	awake     bool
	tempKey   []byte
	msgDigest []byte
	altKey    []byte
	sha       hash.Hash
	response  []byte

	fault  Fault
	sends  int
	closed bool
}

// New returns a Chip of the device type with locked configuration and data zones
func New(dt atca.DeviceType) *Chip {
	c := &Chip{
		devType: dt,
		config:  atcatest.ConfigZone(dt, true),
		keys:    make(map[uint8]*ecdsa.PrivateKey),
	}
	for i := range c.slots {
		c.slots[i] = make([]byte, slotStorage)
	}
	return c
}

// WithConfig replaces the configuration zone image
func (c *Chip) WithConfig(config []byte) *Chip {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.config = append([]byte(nil), config...)
	return c
}

// SetConfigByte changes one byte of the configuration zone
func (c *Chip) SetConfigByte(offset int, v byte) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.config[offset] = v
}

// SetFault injects a communication failure until reset with NoFault
func (c *Chip) SetFault(f Fault) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.fault = f
}

// Sends returns the number of command packets received
func (c *Chip) Sends() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.sends
}

// Closed returns true after Close
func (c *Chip) Closed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closed
}

// Wake wakes the device and queues the wake response
func (c *Chip) Wake() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.fault == FaultNoWake {
		return nil
	}
	c.awake = true
	c.response = command.EncodeStatus(command.DeviceWake)
	return nil
}

// Idle puts the device into idle mode, volatile state is kept
func (c *Chip) Idle() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.awake {
		return ErrNoAck
	}
	c.awake = false
	return nil
}

// Sleep puts the device into sleep mode and clears volatile state
func (c *Chip) Sleep() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.awake {
		return ErrNoAck
	}
	c.awake = false
	c.tempKey = nil
	c.msgDigest = nil
	c.altKey = nil
	c.sha = nil
	return nil
}

// Send executes a command packet and queues its response
func (c *Chip) Send(packet []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.awake {
		return ErrNoAck
	}
	c.sends++

	p, err := command.ParsePacket(packet)
	if err != nil {
		c.response = command.EncodeStatus(command.DeviceCRCError)
		if err == atca.StatusParseError {
			c.response = command.EncodeStatus(command.DeviceParseError)
		}
		return nil
	}

	data, status := c.execute(p)
	if status != command.DeviceSuccess || data == nil {
		c.response = command.EncodeStatus(status)
	} else {
		c.response = command.EncodeResponse(data)
	}
	return nil
}

// Receive copies the queued response into buf
func (c *Chip) Receive(buf []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	if c.response == nil || c.fault == FaultNoResponse {
		return 0, ErrNoAck
	}
	resp := c.response
	c.response = nil
	if len(resp) > len(buf) {
		return 0, errors.Errorf("simulator: response of %d bytes does not fit %d", len(resp), len(buf))
	}
	n := copy(buf, resp)
	if c.fault == FaultBadCRC {
		buf[n-1] ^= 0xFF
	}
	return n, nil
}

// Close closes the transport
func (c *Chip) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return nil
}

func (c *Chip) configLocked() bool {
	return atca.IsConfigLocked(c.config)
}

func (c *Chip) dataLocked() bool {
	return atca.IsDataLocked(c.config)
}

func (c *Chip) slotConfig(slot uint8) (*atca.SlotConfig, bool) {
	if slot >= atca.SlotCount {
		return nil, false
	}
	slots, err := atca.ParseSlots(c.devType, c.config)
	if err != nil {
		return nil, false
	}
	return &slots[slot], true
}

// execute returns response data, or nil data and a device status
func (c *Chip) execute(p *command.Packet) ([]byte, uint8) {
	switch p.Opcode {
	case command.OpInfo:
		return atcatest.Revision(c.devType), command.DeviceSuccess
	case command.OpRandom:
		return randomBytes(atca.RandomSize), command.DeviceSuccess
	case command.OpSHA:
		return c.execSHA(p)
	case command.OpNonce:
		return c.execNonce(p)
	case command.OpRead:
		return c.execRead(p)
	case command.OpWrite:
		return c.execWrite(p)
	}

	if !c.devType.IsECC() {
		return nil, command.DeviceParseError
	}

	switch p.Opcode {
	case command.OpGenKey:
		return c.execGenKey(p)
	case command.OpPrivWrite:
		return c.execPrivWrite(p)
	case command.OpSign:
		return c.execSign(p)
	case command.OpVerify:
		return c.execVerify(p)
	}
	return nil, command.DeviceParseError
}

func (c *Chip) execSHA(p *command.Packet) ([]byte, uint8) {
	switch p.Param1 {
	case command.SHAModeStart:
		c.sha = sha256.New()
		return nil, command.DeviceSuccess
	case command.SHAModeUpdate:
		if c.sha == nil {
			return nil, command.DeviceExecutionError
		}
		if len(p.Data) != command.SHABlockSize {
			return nil, command.DeviceParseError
		}
		c.sha.Write(p.Data)
		return nil, command.DeviceSuccess
	case command.SHAModeEnd:
		if c.sha == nil {
			return nil, command.DeviceExecutionError
		}
		if len(p.Data) >= command.SHABlockSize || int(p.Param2) != len(p.Data) {
			return nil, command.DeviceParseError
		}
		c.sha.Write(p.Data)
		digest := c.sha.Sum(nil)
		c.sha = nil
		c.tempKey = digest
		return digest, command.DeviceSuccess
	}
	return nil, command.DeviceParseError
}

func (c *Chip) execNonce(p *command.Packet) ([]byte, uint8) {
	mode := p.Param1 & 0x03
	target := atca.NonceTarget(p.Param1 & 0xC0)

	if mode == command.NonceModePassthrough {
		size := 32
		if p.Param1&command.NonceModeInput64 != 0 {
			size = 64
		}
		if len(p.Data) != size || !c.devType.NonceSizeAllowed(target, size) {
			return nil, command.DeviceParseError
		}
		val := append([]byte(nil), p.Data...)
		switch target {
		case atca.NonceTargetMsgDigestBuffer:
			c.msgDigest = val
		case atca.NonceTargetAltKeyBuffer:
			c.altKey = val
		default:
			c.tempKey = val
		}
		return nil, command.DeviceSuccess
	}

	if mode > 0x01 || len(p.Data) != atca.NumInSize {
		return nil, command.DeviceParseError
	}
	rnd := randomBytes(atca.RandomSize)
	h := sha256.New()
	h.Write(rnd)
	h.Write(p.Data)
	h.Write([]byte{byte(command.OpNonce), mode, 0x00})
	c.tempKey = h.Sum(nil)
	return rnd, command.DeviceSuccess
}

func (c *Chip) execRead(p *command.Packet) ([]byte, uint8) {
	zone := atca.Zone(p.Param1 & 0x03)
	size := atca.WordSize
	if p.Param1&command.ZoneReadWrite32 != 0 {
		size = atca.BlockSize
	}

	switch zone {
	case atca.ZoneConfig:
		block := int(p.Param2>>3) & 0x1F
		offset := block*atca.BlockSize + int(p.Param2&0x07)*atca.WordSize
		if size == atca.BlockSize {
			offset = block * atca.BlockSize
		}
		if offset+size > len(c.config) {
			return nil, command.DeviceParseError
		}
		return append([]byte(nil), c.config[offset:offset+size]...), command.DeviceSuccess
	case atca.ZoneData:
		if !c.dataLocked() {
			return nil, command.DeviceExecutionError
		}
		slot, offset, ok := dataOffset(p.Param2, size)
		if !ok {
			return nil, command.DeviceParseError
		}
		sc, _ := c.slotConfig(slot)
		if sc.IsSecret {
			return nil, command.DeviceExecutionError
		}
		return append([]byte(nil), c.slots[slot][offset:offset+size]...), command.DeviceSuccess
	}
	return nil, command.DeviceParseError
}

func (c *Chip) execWrite(p *command.Packet) ([]byte, uint8) {
	zone := atca.Zone(p.Param1 & 0x03)
	size := atca.WordSize
	if p.Param1&command.ZoneReadWrite32 != 0 {
		size = atca.BlockSize
	}
	if len(p.Data) != size {
		return nil, command.DeviceParseError
	}

	switch zone {
	case atca.ZoneConfig:
		if c.configLocked() {
			return nil, command.DeviceExecutionError
		}
		block := int(p.Param2>>3) & 0x1F
		offset := block*atca.BlockSize + int(p.Param2&0x07)*atca.WordSize
		if offset < 16 || offset+size > len(c.config) {
			return nil, command.DeviceExecutionError
		}
		copy(c.config[offset:], p.Data)
		return nil, command.DeviceSuccess
	case atca.ZoneData:
		if !c.configLocked() {
			return nil, command.DeviceExecutionError
		}
		slot, offset, ok := dataOffset(p.Param2, size)
		if !ok {
			return nil, command.DeviceParseError
		}
		if atca.IsSlotLocked(c.devType, c.config, slot) {
			return nil, command.DeviceExecutionError
		}
		copy(c.slots[slot][offset:], p.Data)
		return nil, command.DeviceSuccess
	}
	return nil, command.DeviceParseError
}

func (c *Chip) execGenKey(p *command.Packet) ([]byte, uint8) {
	slot := uint8(p.Param2)
	sc, ok := c.slotConfig(slot)
	if !ok {
		return nil, command.DeviceParseError
	}

	switch p.Param1 {
	case command.GenKeyModePrivate:
		if !c.configLocked() || sc.IsLocked || sc.KeyType != atca.KeyTypeP256 || !sc.Private {
			return nil, command.DeviceExecutionError
		}
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, command.DeviceHealthTestError
		}
		c.keys[slot] = key
		return publicKeyBytes(key), command.DeviceSuccess
	case command.GenKeyModePublic:
		key, ok := c.keys[slot]
		if !ok || sc.KeyType != atca.KeyTypeP256 {
			return nil, command.DeviceExecutionError
		}
		return publicKeyBytes(key), command.DeviceSuccess
	}
	return nil, command.DeviceParseError
}

func (c *Chip) execPrivWrite(p *command.Packet) ([]byte, uint8) {
	slot := uint8(p.Param2)
	sc, ok := c.slotConfig(slot)
	if !ok || len(p.Data) != command.PrivWriteSize {
		return nil, command.DeviceParseError
	}
	if !c.configLocked() || sc.IsLocked || sc.KeyType != atca.KeyTypeP256 || !sc.Private {
		return nil, command.DeviceExecutionError
	}
	key, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), p.Data[4:36])
	if err != nil {
		return nil, command.DeviceExecutionError
	}
	c.keys[slot] = key
	return nil, command.DeviceSuccess
}

func (c *Chip) message(mode uint8) []byte {
	if mode&command.SignModeSourceMsgDig != 0 {
		return c.msgDigest
	}
	return c.tempKey
}

func (c *Chip) execSign(p *command.Packet) ([]byte, uint8) {
	slot := uint8(p.Param2)
	sc, ok := c.slotConfig(slot)
	if !ok {
		return nil, command.DeviceParseError
	}
	if p.Param1&0x80 == 0 {
		// internal messages require GenDig state which is not emulated
		return nil, command.DeviceExecutionError
	}
	msg := c.message(p.Param1)
	key, hasKey := c.keys[slot]
	if len(msg) != atca.DigestSize || !hasKey || !sc.CanSign() {
		return nil, command.DeviceExecutionError
	}

	r, s, err := ecdsa.Sign(rand.Reader, key, msg)
	if err != nil {
		return nil, command.DeviceECCFault
	}
	c.tempKey = nil
	sig := make([]byte, atca.SignatureSize)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, command.DeviceSuccess
}

func (c *Chip) execVerify(p *command.Packet) ([]byte, uint8) {
	msg := c.message(p.Param1)
	if len(msg) != atca.DigestSize || len(p.Data) < atca.SignatureSize {
		return nil, command.DeviceExecutionError
	}

	var raw []byte
	switch p.Param1 & 0x03 {
	case 0x02:
		if p.Param2 != command.VerifyKeyP256 || len(p.Data) != atca.SignatureSize+atca.PublicKeySize {
			return nil, command.DeviceParseError
		}
		raw = p.Data[atca.SignatureSize:]
	case 0x00:
		slot := uint8(p.Param2)
		sc, ok := c.slotConfig(slot)
		if !ok || len(p.Data) != atca.SignatureSize {
			return nil, command.DeviceParseError
		}
		if !sc.CanVerify() {
			return nil, command.DeviceExecutionError
		}
		stored := c.slots[slot]
		raw = make([]byte, 0, atca.PublicKeySize)
		raw = append(raw, stored[4:36]...)
		raw = append(raw, stored[40:72]...)
	default:
		return nil, command.DeviceParseError
	}

	pub, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), append([]byte{0x04}, raw...))
	if err != nil {
		return nil, command.DeviceMiscompare
	}
	r := new(big.Int).SetBytes(p.Data[:32])
	s := new(big.Int).SetBytes(p.Data[32:atca.SignatureSize])
	if !ecdsa.Verify(pub, msg, r, s) {
		return nil, command.DeviceMiscompare
	}
	return nil, command.DeviceSuccess
}

// dataOffset decodes a data zone address
func dataOffset(addr uint16, size int) (slot uint8, offset int, ok bool) {
	slot = uint8(addr>>3) & 0x0F
	offset = int(addr>>8)*atca.BlockSize + int(addr&0x07)*atca.WordSize
	if size == atca.BlockSize {
		offset = int(addr>>8) * atca.BlockSize
	}
	return slot, offset, offset+size <= slotStorage
}

func publicKeyBytes(key *ecdsa.PrivateKey) []byte {
	b, err := key.PublicKey.Bytes()
	if err != nil {
		return nil
	}
	// strip the uncompressed point prefix
	return b[1:]
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}
