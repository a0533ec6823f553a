package command

// crcPolynomial is the CRC-16 polynomial of the CryptoAuthentication protocol
const crcPolynomial = 0x8005

// CRC returns the CRC-16 of data as used by the CryptoAuthentication protocol.
// The bits of every byte are processed LSB first and the register is not reflected.
func CRC(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		for shift := uint8(0x01); shift > 0; shift <<= 1 {
			dataBit := b&shift != 0
			crcBit := crc&0x8000 != 0
			crc <<= 1
			if dataBit != crcBit {
				crc ^= crcPolynomial
			}
		}
	}
	return crc
}

// appendCRC appends the little endian CRC of b to b
func appendCRC(b []byte) []byte {
	crc := CRC(b)
	return append(b, byte(crc), byte(crc>>8))
}

// checkCRC returns true if the last two bytes of b are the CRC of the rest
func checkCRC(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	n := len(b) - 2
	crc := CRC(b[:n])
	return b[n] == byte(crc) && b[n+1] == byte(crc>>8)
}
