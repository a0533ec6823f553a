// Package hwdevice implements the device session of a physical
// CryptoAuthentication secure element.
//
// Every command is a wake, execute, idle round trip over a
// transport.Transport. The device keeps TempKey, the Message Digest Buffer
// and the SHA context across idle, so multi-command operations such as SHA
// and SignHash run as a sequence of round trips while the session lock is
// held.
//
// The package registers the "hardware" backend of the device package.
package hwdevice
