// Package crypto provides the hashing primitive the interpreter core treats
// as an external collaborator: Keccak-256.
package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/evmlite/evmlite/common"
)

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash is Keccak256 with the result already wrapped as a Hash.
func Keccak256Hash(data ...[]byte) common.Hash {
	return common.BytesToHash(Keccak256(data...))
}
