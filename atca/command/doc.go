// Package command encodes CryptoAuthentication command packets and decodes
// device responses.
//
// A command packet is framed as
//
//	count | opcode | param1 | param2 (LE16) | data | crc (LE16)
//
// and a response as
//
//	count | data | crc (LE16)
//
// where a four byte response carries a single device status byte.
package command
