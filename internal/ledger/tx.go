package ledger

import (
	"fmt"
)

const (
	// SignatureLen is the ed25519 signature size.
	SignatureLen = 64

	// BlockhashLen is the recent blockhash size.
	BlockhashLen = 32
)

// Instruction discriminants of the mining program
const (
	ixMine  = 2
	ixOpen  = 3
	ixReset = 4
)

// AccountMeta describes how an instruction touches an account.
type AccountMeta struct {
	Address  Address
	Signer   bool
	Writable bool
}

// Instruction is one program invocation within a transaction.
type Instruction struct {
	ProgramID Address
	Accounts  []AccountMeta
	Data      []byte
}

// Auth emits a no-op instruction carrying the proof address, which the
// mining program reads to authorize the transaction for its round.
func Auth(proof Address) Instruction {
	return Instruction{
		ProgramID: NoopProgram,
		Data:      append([]byte(nil), proof[:]...),
	}
}

// Open creates the proof account for the signer. Idempotent on-chain: a
// second open against an existing proof fails and can be ignored.
func Open(signer Address) Instruction {
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountMeta{
			{Address: signer, Signer: true, Writable: true},
			{Address: ProofAddress(signer), Writable: true},
			{Address: SystemProgram},
			{Address: SlotHashesSysvar},
		},
		Data: []byte{ixOpen},
	}
}

// Mine submits a solution digest and nonce against the given bus.
func Mine(signer Address, bus Address, digest [32]byte, nonce [8]byte) Instruction {
	data := make([]byte, 0, 1+len(digest)+len(nonce))
	data = append(data, ixMine)
	data = append(data, digest[:]...)
	data = append(data, nonce[:]...)
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountMeta{
			{Address: signer, Signer: true},
			{Address: bus, Writable: true},
			{Address: ConfigAddress()},
			{Address: ProofAddress(signer), Writable: true},
			{Address: InstructionsSysvar},
			{Address: SlotHashesSysvar},
		},
		Data: data,
	}
}

// Reset rolls the reward rate over into a new epoch.
func Reset(signer Address) Instruction {
	metas := []AccountMeta{
		{Address: signer, Signer: true},
	}
	for i := uint8(0); i < BusCount; i++ {
		metas = append(metas, AccountMeta{Address: BusAddress(i), Writable: true})
	}
	metas = append(metas,
		AccountMeta{Address: ConfigAddress(), Writable: true},
		AccountMeta{Address: TreasuryAddress(), Writable: true},
	)
	return Instruction{
		ProgramID: ProgramID,
		Accounts:  metas,
		Data:      []byte{ixReset},
	}
}

// Transaction bundles instructions into a legacy-format wire blob with a
// single fee-paying signer.
type Transaction struct {
	payer        Address
	blockhash    [BlockhashLen]byte
	instructions []Instruction
}

// NewTransaction creates a transaction paid and signed by payer.
func NewTransaction(payer Address, blockhash [BlockhashLen]byte, ixs ...Instruction) *Transaction {
	return &Transaction{
		payer:        payer,
		blockhash:    blockhash,
		instructions: ixs,
	}
}

// Sign serializes the message, signs it with kp, and returns the full wire
// encoding (signature count + signatures + message).
func (t *Transaction) Sign(kp *Keypair) ([]byte, error) {
	if kp.Pubkey() != t.payer {
		return nil, fmt.Errorf("signer %s does not match payer %s", kp.Pubkey(), t.payer)
	}
	msg, err := t.message()
	if err != nil {
		return nil, err
	}
	sig := kp.Sign(msg)

	wire := make([]byte, 0, 1+SignatureLen+len(msg))
	wire = appendShortvec(wire, 1)
	wire = append(wire, sig[:]...)
	wire = append(wire, msg...)
	return wire, nil
}

// message compiles the account table and serializes the legacy message.
func (t *Transaction) message() ([]byte, error) {
	keys, header, err := t.compileKeys()
	if err != nil {
		return nil, err
	}
	index := make(map[Address]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}

	msg := make([]byte, 0, 3+1+len(keys)*32+BlockhashLen+64)
	msg = append(msg, header[0], header[1], header[2])
	msg = appendShortvec(msg, len(keys))
	for _, k := range keys {
		msg = append(msg, k[:]...)
	}
	msg = append(msg, t.blockhash[:]...)
	msg = appendShortvec(msg, len(t.instructions))
	for _, ix := range t.instructions {
		msg = append(msg, byte(index[ix.ProgramID]))
		msg = appendShortvec(msg, len(ix.Accounts))
		for _, m := range ix.Accounts {
			msg = append(msg, byte(index[m.Address]))
		}
		msg = appendShortvec(msg, len(ix.Data))
		msg = append(msg, ix.Data...)
	}
	return msg, nil
}

// compileKeys orders the account table as the wire format requires:
// writable signers, readonly signers, writable non-signers, readonly
// non-signers, first-seen order within each group, payer first overall.
func (t *Transaction) compileKeys() ([]Address, [3]byte, error) {
	var header [3]byte

	type access struct {
		signer   bool
		writable bool
	}
	seen := map[Address]*access{
		t.payer: {signer: true, writable: true},
	}
	order := []Address{t.payer}
	note := func(addr Address, signer, writable bool) {
		a, ok := seen[addr]
		if !ok {
			a = &access{}
			seen[addr] = a
			order = append(order, addr)
		}
		a.signer = a.signer || signer
		a.writable = a.writable || writable
	}
	for _, ix := range t.instructions {
		note(ix.ProgramID, false, false)
		for _, m := range ix.Accounts {
			note(m.Address, m.Signer, m.Writable)
		}
	}

	for _, addr := range order {
		if a := seen[addr]; a.signer && addr != t.payer {
			return nil, header, fmt.Errorf("unsupported extra signer %s", addr)
		}
	}

	var keys []Address
	pick := func(signer, writable bool) {
		for _, addr := range order {
			if a := seen[addr]; a.signer == signer && a.writable == writable {
				keys = append(keys, addr)
			}
		}
	}
	pick(true, true)
	pick(true, false)
	numSigners := len(keys)
	numReadonlySigned := 0
	for _, k := range keys[1:] {
		if !seen[k].writable {
			numReadonlySigned++
		}
	}
	pick(false, true)
	pick(false, false)
	numReadonlyUnsigned := 0
	for _, k := range keys[numSigners:] {
		if !seen[k].writable {
			numReadonlyUnsigned++
		}
	}

	header[0] = byte(numSigners)
	header[1] = byte(numReadonlySigned)
	header[2] = byte(numReadonlyUnsigned)
	return keys, header, nil
}

// appendShortvec appends n in the compact-u16 encoding used for all wire
// format lengths.
func appendShortvec(b []byte, n int) []byte {
	for {
		if n < 0x80 {
			return append(b, byte(n))
		}
		b = append(b, byte(n&0x7f)|0x80)
		n >>= 7
	}
}
