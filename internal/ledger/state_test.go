package ledger

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeProof(p *Proof) []byte {
	buf := make([]byte, proofLen)
	o := discriminatorLen
	copy(buf[o:], p.Authority[:])
	o += 32
	binary.LittleEndian.PutUint64(buf[o:], p.Balance)
	o += 8
	copy(buf[o:], p.Challenge[:])
	o += 32
	copy(buf[o:], p.LastHash[:])
	o += 32
	binary.LittleEndian.PutUint64(buf[o:], uint64(p.LastHashAt))
	o += 8
	binary.LittleEndian.PutUint64(buf[o:], uint64(p.LastStakeAt))
	o += 8
	copy(buf[o:], p.Miner[:])
	o += 32
	binary.LittleEndian.PutUint64(buf[o:], p.TotalHashes)
	o += 8
	binary.LittleEndian.PutUint64(buf[o:], p.TotalRewards)
	return buf
}

func TestParseProof(t *testing.T) {
	want := &Proof{
		Authority:    Address{1, 2, 3},
		Balance:      42_000_000_000,
		Challenge:    [32]byte{0xaa, 0xbb},
		LastHash:     [32]byte{0xcc},
		LastHashAt:   1_700_000_000,
		LastStakeAt:  1_699_999_000,
		Miner:        Address{9},
		TotalHashes:  123456,
		TotalRewards: 789,
	}

	got, err := ParseProof(encodeProof(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseProofTooShort(t *testing.T) {
	_, err := ParseProof(make([]byte, proofLen-1))
	assert.Error(t, err)
}

func TestParseBoardConfig(t *testing.T) {
	buf := make([]byte, configLen)
	binary.LittleEndian.PutUint64(buf[8:], 10)                   // base reward rate
	binary.LittleEndian.PutUint64(buf[16:], 1_700_000_000)       // last reset at
	binary.LittleEndian.PutUint64(buf[24:], 8)                   // min difficulty
	binary.LittleEndian.PutUint64(buf[32:], 5_000_000_000_000)   // top balance

	got, err := ParseBoardConfig(buf)
	require.NoError(t, err)
	assert.Equal(t, &BoardConfig{
		BaseRewardRate: 10,
		LastResetAt:    1_700_000_000,
		MinDifficulty:  8,
		TopBalance:     5_000_000_000_000,
	}, got)

	_, err = ParseBoardConfig(buf[:configLen-1])
	assert.Error(t, err)
}

func TestParseBus(t *testing.T) {
	buf := make([]byte, busLen)
	binary.LittleEndian.PutUint64(buf[8:], 3)
	binary.LittleEndian.PutUint64(buf[16:], 999)

	got, err := ParseBus(buf)
	require.NoError(t, err)
	assert.Equal(t, &Bus{ID: 3, Rewards: 999}, got)
}

func TestParseClock(t *testing.T) {
	buf := make([]byte, clockLen)
	binary.LittleEndian.PutUint64(buf[0:], 250_000_000)          // slot
	binary.LittleEndian.PutUint64(buf[8:], 1_699_990_000)        // epoch start
	binary.LittleEndian.PutUint64(buf[16:], 580)                 // epoch
	binary.LittleEndian.PutUint64(buf[24:], 581)                 // leader schedule epoch
	binary.LittleEndian.PutUint64(buf[32:], 1_700_000_123)       // unix timestamp

	got, err := ParseClock(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_123), got.UnixTimestamp)
	assert.Equal(t, uint64(250_000_000), got.Slot)

	_, err = ParseClock(buf[:clockLen-1])
	assert.Error(t, err)
}
