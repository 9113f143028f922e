package ledger

import (
	"testing"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeypair(t *testing.T) *Keypair {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 42
	kp, err := NewKeypairFromSeed(seed)
	require.NoError(t, err)
	return kp
}

func TestAppendShortvec(t *testing.T) {
	tests := []struct {
		n        int
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, appendShortvec(nil, tt.n), "n=%d", tt.n)
	}
}

func TestInstructionBuilders(t *testing.T) {
	signer := Address{1}
	bus := BusAddress(0)

	auth := Auth(ProofAddress(signer))
	assert.Equal(t, NoopProgram, auth.ProgramID)
	assert.Len(t, auth.Data, 32)
	assert.Empty(t, auth.Accounts)

	open := Open(signer)
	assert.Equal(t, ProgramID, open.ProgramID)
	assert.Equal(t, []byte{ixOpen}, open.Data)
	require.NotEmpty(t, open.Accounts)
	assert.True(t, open.Accounts[0].Signer)

	var digest [32]byte
	digest[0] = 0xab
	var nonce [8]byte
	nonce[0] = 0xcd
	mine := Mine(signer, bus, digest, nonce)
	assert.Equal(t, ProgramID, mine.ProgramID)
	require.Len(t, mine.Data, 1+32+8)
	assert.Equal(t, byte(ixMine), mine.Data[0])
	assert.Equal(t, byte(0xab), mine.Data[1])
	assert.Equal(t, byte(0xcd), mine.Data[33])

	reset := Reset(signer)
	assert.Len(t, reset.Accounts, 1+BusCount+2)
}

func TestTransactionSign(t *testing.T) {
	kp := testKeypair(t)
	var blockhash [BlockhashLen]byte
	blockhash[0] = 0x11

	var digest [32]byte
	var nonce [8]byte
	tx := NewTransaction(kp.Pubkey(), blockhash,
		Auth(ProofAddress(kp.Pubkey())),
		Mine(kp.Pubkey(), BusAddress(2), digest, nonce),
	)

	wire, err := tx.Sign(kp)
	require.NoError(t, err)

	// One signature followed by the message
	require.Greater(t, len(wire), 1+SignatureLen)
	assert.Equal(t, byte(1), wire[0])
	sig := wire[1 : 1+SignatureLen]
	msg := wire[1+SignatureLen:]

	addr := kp.Pubkey()
	assert.True(t, ed25519.Verify(ed25519.PublicKey(addr[:]), msg, sig))

	// Header: one required signer, no readonly signed accounts
	assert.Equal(t, byte(1), msg[0])
	assert.Equal(t, byte(0), msg[1])

	// The payer is the first account in the table
	keyCount := int(msg[3])
	require.GreaterOrEqual(t, keyCount, 2)
	var first Address
	copy(first[:], msg[4:36])
	assert.Equal(t, kp.Pubkey(), first)
}

func TestTransactionSignerMismatch(t *testing.T) {
	kp := testKeypair(t)
	var blockhash [BlockhashLen]byte

	tx := NewTransaction(Address{0xee}, blockhash, Open(Address{0xee}))
	_, err := tx.Sign(kp)
	assert.Error(t, err)
}

func TestTransactionRejectsExtraSigner(t *testing.T) {
	kp := testKeypair(t)
	var blockhash [BlockhashLen]byte

	ix := Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountMeta{
			{Address: Address{0x77}, Signer: true},
		},
		Data: []byte{ixOpen},
	}
	_, err := NewTransaction(kp.Pubkey(), blockhash, ix).Sign(kp)
	assert.Error(t, err)
}

func TestCompileKeysMergesAccess(t *testing.T) {
	kp := testKeypair(t)
	var blockhash [BlockhashLen]byte
	shared := Address{0x55}

	// The same account referenced readonly and writable must appear once,
	// in the writable group.
	tx := NewTransaction(kp.Pubkey(), blockhash,
		Instruction{ProgramID: ProgramID, Accounts: []AccountMeta{{Address: shared}}},
		Instruction{ProgramID: ProgramID, Accounts: []AccountMeta{{Address: shared, Writable: true}}},
	)
	keys, header, err := tx.compileKeys()
	require.NoError(t, err)

	occurrences := 0
	for _, k := range keys {
		if k == shared {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
	assert.Equal(t, keys[1], shared, "writable non-signers precede readonly ones")
	assert.Equal(t, byte(1), header[0])
	assert.Equal(t, byte(1), header[2], "only the program id is readonly unsigned")
}

func TestDeriveAddressDeterministic(t *testing.T) {
	a := ProofAddress(Address{1})
	b := ProofAddress(Address{1})
	c := ProofAddress(Address{2})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	buses := map[Address]bool{}
	for i := uint8(0); i < BusCount; i++ {
		buses[BusAddress(i)] = true
	}
	assert.Len(t, buses, BusCount, "bus addresses must be distinct")
}
