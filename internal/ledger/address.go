package ledger

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// Address is a 32-byte account address, displayed in base58.
type Address [32]byte

// ParseAddress decodes a base58 address string.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != len(a) {
		return a, fmt.Errorf("invalid address %q: got %d bytes, want %d", s, len(raw), len(a))
	}
	copy(a[:], raw)
	return a, nil
}

// MustAddress decodes a base58 address string and panics on failure.
// Only for package-level constants.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the base58 form of the address.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Well-known program and sysvar addresses
var (
	ProgramID          = MustAddress("oreV2ZymfyeXgNgBdqMkumTqqAprVqgBWQfoYkrtKWQ")
	NoopProgram        = MustAddress("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV")
	SystemProgram      = MustAddress("11111111111111111111111111111111")
	ClockSysvar        = MustAddress("SysvarC1ock11111111111111111111111111111111")
	SlotHashesSysvar   = MustAddress("SysvarS1otHashes111111111111111111111111111")
	InstructionsSysvar = MustAddress("Sysvar1nstructions1111111111111111111111111")
)

// Mining program constants
const (
	// BusCount is the number of reward buses.
	BusCount = 8

	// EpochDuration is the seconds between reward rate resets.
	EpochDuration = 60

	// RoundDuration is the seconds a submitted hash stays valid.
	RoundDuration = 60
)

const pdaMarker = "ProgramDerivedAddress"

// DeriveAddress derives a deterministic program-owned address from seeds.
func DeriveAddress(seeds ...[]byte) Address {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(ProgramID[:])
	h.Write([]byte(pdaMarker))
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// ProofAddress returns the proof account address for an authority.
func ProofAddress(authority Address) Address {
	return DeriveAddress([]byte("proof"), authority[:])
}

// BusAddress returns the address of reward bus id.
func BusAddress(id uint8) Address {
	return DeriveAddress([]byte("bus"), []byte{id})
}

// ConfigAddress returns the global config account address.
func ConfigAddress() Address {
	return DeriveAddress([]byte("config"))
}

// TreasuryAddress returns the treasury account address.
func TreasuryAddress() Address {
	return DeriveAddress([]byte("treasury"))
}
