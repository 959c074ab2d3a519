package crypto

import "crypto/sha256"

// SHA256Size is the digest size of SHA-256, in bytes.
const SHA256Size = sha256.Size

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) [SHA256Size]byte {
	return sha256.Sum256(data)
}
