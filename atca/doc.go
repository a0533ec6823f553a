// Package atca provides the status and type model of the Microchip
// CryptoAuthentication family of secure elements (ATSHA204A, ATECC108A,
// ATECC508A, ATECC608A, ATSHA206A).
//
// The package defines:
//   - Status, the closed set of status codes returned by every device operation
//   - DeviceType and IfaceType enumerations with total numeric mappings
//   - NonceTarget, KeyType, SignMode, VerifyMode and Zone selectors
//   - SlotConfig, parsed from the raw configuration zone
//   - IfaceConfig, the interface configuration consumed by a device session
//
// Status implements the error interface, so device operations return it
// directly as an error and StatusOf classifies any error back into a Status.
package atca
