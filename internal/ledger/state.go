package ledger

import (
	"encoding/binary"
	"fmt"
)

// Program accounts carry an 8-byte type discriminator before their fields.
// All integers are little-endian.
const (
	discriminatorLen = 8

	proofLen  = discriminatorLen + 32 + 8 + 32 + 32 + 8 + 8 + 32 + 8 + 8
	configLen = discriminatorLen + 8 + 8 + 8 + 8
	busLen    = discriminatorLen + 8 + 8
	clockLen  = 40
)

// Proof is the per-miner on-chain state. Its challenge seeds the next
// search round; LastHashAt advances when a solution lands.
type Proof struct {
	Authority    Address
	Balance      uint64
	Challenge    [32]byte
	LastHash     [32]byte
	LastHashAt   int64
	LastStakeAt  int64
	Miner        Address
	TotalHashes  uint64
	TotalRewards uint64
}

// ParseProof decodes a proof account.
func ParseProof(data []byte) (*Proof, error) {
	if len(data) < proofLen {
		return nil, fmt.Errorf("proof account too short: %d bytes, want %d", len(data), proofLen)
	}
	p := &Proof{}
	o := discriminatorLen
	copy(p.Authority[:], data[o:o+32])
	o += 32
	p.Balance = binary.LittleEndian.Uint64(data[o:])
	o += 8
	copy(p.Challenge[:], data[o:o+32])
	o += 32
	copy(p.LastHash[:], data[o:o+32])
	o += 32
	p.LastHashAt = int64(binary.LittleEndian.Uint64(data[o:]))
	o += 8
	p.LastStakeAt = int64(binary.LittleEndian.Uint64(data[o:]))
	o += 8
	copy(p.Miner[:], data[o:o+32])
	o += 32
	p.TotalHashes = binary.LittleEndian.Uint64(data[o:])
	o += 8
	p.TotalRewards = binary.LittleEndian.Uint64(data[o:])
	return p, nil
}

// BoardConfig is the global mining configuration account.
type BoardConfig struct {
	BaseRewardRate uint64
	LastResetAt    int64
	MinDifficulty  uint64
	TopBalance     uint64
}

// ParseBoardConfig decodes the config account.
func ParseBoardConfig(data []byte) (*BoardConfig, error) {
	if len(data) < configLen {
		return nil, fmt.Errorf("config account too short: %d bytes, want %d", len(data), configLen)
	}
	c := &BoardConfig{}
	o := discriminatorLen
	c.BaseRewardRate = binary.LittleEndian.Uint64(data[o:])
	o += 8
	c.LastResetAt = int64(binary.LittleEndian.Uint64(data[o:]))
	o += 8
	c.MinDifficulty = binary.LittleEndian.Uint64(data[o:])
	o += 8
	c.TopBalance = binary.LittleEndian.Uint64(data[o:])
	return c, nil
}

// Bus is one of the reward buses solutions are submitted against.
type Bus struct {
	ID      uint64
	Rewards uint64
}

// ParseBus decodes a bus account.
func ParseBus(data []byte) (*Bus, error) {
	if len(data) < busLen {
		return nil, fmt.Errorf("bus account too short: %d bytes, want %d", len(data), busLen)
	}
	b := &Bus{}
	o := discriminatorLen
	b.ID = binary.LittleEndian.Uint64(data[o:])
	o += 8
	b.Rewards = binary.LittleEndian.Uint64(data[o:])
	return b, nil
}

// Clock mirrors the clock sysvar. Unlike program accounts it carries no
// discriminator.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

// ParseClock decodes the clock sysvar account.
func ParseClock(data []byte) (*Clock, error) {
	if len(data) < clockLen {
		return nil, fmt.Errorf("clock sysvar too short: %d bytes, want %d", len(data), clockLen)
	}
	return &Clock{
		Slot:                binary.LittleEndian.Uint64(data[0:]),
		EpochStartTimestamp: int64(binary.LittleEndian.Uint64(data[8:])),
		Epoch:               binary.LittleEndian.Uint64(data[16:]),
		LeaderScheduleEpoch: binary.LittleEndian.Uint64(data[24:]),
		UnixTimestamp:       int64(binary.LittleEndian.Uint64(data[32:])),
	}, nil
}
