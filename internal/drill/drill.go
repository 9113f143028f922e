package drill

import (
	"errors"
	"hash"
	"math/bits"

	"golang.org/x/crypto/sha3"
)

const (
	// Input layout: challenge (32) + little-endian nonce (8) = 40
	ChallengeLen = 32
	NonceLen     = 8
	InputLen     = ChallengeLen + NonceLen

	// DigestLen is the keccak256 output size.
	DigestLen = 32
)

// Errors
var (
	ErrNonceLen = errors.New("nonce must be 8 bytes")
)

// Hash is the output of one drill evaluation for a (challenge, nonce) pair.
type Hash struct {
	D [DigestLen]byte
}

// Difficulty returns the number of leading zero bits in the digest.
// Higher values are rarer.
func (h Hash) Difficulty() uint32 {
	var d uint32
	for _, b := range h.D {
		if b != 0 {
			return d + uint32(bits.LeadingZeros8(b))
		}
		d += 8
	}
	return d
}

// Memory is reusable scratch state for repeated drill evaluations.
// Each worker owns exactly one Memory for its lifetime; it must never be
// shared between goroutines.
type Memory struct {
	hasher hash.Hash
	input  [InputLen]byte
	sum    [DigestLen]byte
}

// NewMemory allocates scratch state. Allocating once per worker and reusing
// it across iterations keeps the hot loop allocation-free.
func NewMemory() *Memory {
	return &Memory{
		hasher: sha3.NewLegacyKeccak256(),
	}
}

// HashWithMemory evaluates the drill hash of challenge and the 8-byte
// little-endian nonce, reusing the provided scratch memory. Deterministic
// for identical inputs.
func HashWithMemory(mem *Memory, challenge [ChallengeLen]byte, nonce []byte) (Hash, error) {
	if len(nonce) != NonceLen {
		return Hash{}, ErrNonceLen
	}
	copy(mem.input[:ChallengeLen], challenge[:])
	copy(mem.input[ChallengeLen:], nonce)

	mem.hasher.Reset()
	mem.hasher.Write(mem.input[:])
	sum := mem.hasher.Sum(mem.sum[:0])

	var h Hash
	copy(h.D[:], sum)
	return h, nil
}
