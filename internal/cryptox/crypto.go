// Package cryptox provides password hashing helpers built on argon2id.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters: 1 pass, 64 MiB memory, 4 lanes, 32-byte key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// HashPassword derives a fixed-length hash from a password and a per-user salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword reports whether password+salt hash to the stored value,
// comparing in constant time.
func VerifyPassword(password, salt, hash []byte) bool {
	candidate := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}
