package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cloudflare/circl/sign/ed25519"
)

// Keypair is the ed25519 signing identity loaded from a Solana-style
// keypair file (a JSON array of 64 bytes: seed followed by public key).
type Keypair struct {
	priv ed25519.PrivateKey
	pub  Address
}

// LoadKeypair reads and parses a keypair file.
func LoadKeypair(path string) (*Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair: %w", err)
	}
	var nums []int
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, fmt.Errorf("parse keypair %s: %w", path, err)
	}
	if len(nums) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair %s: got %d bytes, want %d", path, len(nums), ed25519.PrivateKeySize)
	}
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		if nums[i] < 0 || nums[i] > 255 {
			return nil, fmt.Errorf("keypair %s: byte %d out of range", path, i)
		}
		seed[i] = byte(nums[i])
	}
	return NewKeypairFromSeed(seed)
}

// NewKeypairFromSeed builds a keypair from a 32-byte ed25519 seed.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	kp := &Keypair{priv: priv}
	copy(kp.pub[:], priv.Public().(ed25519.PublicKey))
	return kp, nil
}

// Pubkey returns the public address of the keypair.
func (k *Keypair) Pubkey() Address {
	return k.pub
}

// Sign signs msg with the keypair's private key.
func (k *Keypair) Sign(msg []byte) [SignatureLen]byte {
	var sig [SignatureLen]byte
	copy(sig[:], ed25519.Sign(k.priv, msg))
	return sig
}
