package util

import (
	"bytes"

	"github.com/mr-tron/base58"
)

// AddressVersion prefixes every script hash before base58check encoding.
const AddressVersion = 0x17

const addressLen = 1 + 20 + 4

// GetAddressFromScriptHash returns base58 encoded address.
func GetAddressFromScriptHash(scriptHash []byte) string {
	if len(scriptHash) == 0 {
		return ""
	}
	payload := append([]byte{AddressVersion}, scriptHash...)
	payload = append(payload, Hash256(payload)[0:4]...)
	return base58.Encode(payload)
}

// GetAddressFromSeed derives an address from the hash160 of seed.
func GetAddressFromSeed(seed string) string {
	return GetAddressFromScriptHash(GetScriptHash([]byte(seed)))
}

// AddressValid checks if address is valid.
func AddressValid(addr string) bool {
	if len(addr) == 0 {
		return false
	}
	buffer, err := base58.Decode(addr)
	if err != nil {
		return false
	}

	if len(buffer) != addressLen || buffer[0] != AddressVersion {
		return false
	}

	checksum := Hash256(buffer[:len(buffer)-4])
	return bytes.Equal(buffer[len(buffer)-4:], checksum[:4])
}
