package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
)

// Errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNoBus           = errors.New("no bus account available")
)

// Client is a minimal JSON-RPC client for the ledger service. It performs
// no retries; transient failures surface to the caller.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for the given RPC endpoint.
func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{Jsonrpc: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", method, resp.Status)
	}
	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("%s: %w", method, rr.Error)
	}
	if result != nil {
		if err := json.Unmarshal(rr.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// GetAccountData fetches the raw bytes of an account.
func (c *Client) GetAccountData(ctx context.Context, addr Address) ([]byte, error) {
	var out struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	params := []any{addr.String(), map[string]any{"encoding": "base64"}}
	if err := c.call(ctx, "getAccountInfo", params, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, fmt.Errorf("account %s: %w", addr, ErrAccountNotFound)
	}
	if len(out.Value.Data) == 0 {
		return nil, fmt.Errorf("account %s: empty data", addr)
	}
	raw, err := base64.StdEncoding.DecodeString(out.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	return raw, nil
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, addr Address) (uint64, error) {
	var out struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []any{addr.String()}, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

// GetLatestBlockhash fetches a recent blockhash for transaction building.
func (c *Client) GetLatestBlockhash(ctx context.Context) ([BlockhashLen]byte, error) {
	var hash [BlockhashLen]byte
	var out struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getLatestBlockhash", nil, &out); err != nil {
		return hash, err
	}
	raw, err := base58.Decode(out.Value.Blockhash)
	if err != nil || len(raw) != BlockhashLen {
		return hash, fmt.Errorf("invalid blockhash %q", out.Value.Blockhash)
	}
	copy(hash[:], raw)
	return hash, nil
}

// SendTransaction signs and submits the instructions as one transaction and
// returns the signature.
func (c *Client) SendTransaction(ctx context.Context, kp *Keypair, ixs ...Instruction) (string, error) {
	blockhash, err := c.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}
	wire, err := NewTransaction(kp.Pubkey(), blockhash, ixs...).Sign(kp)
	if err != nil {
		return "", err
	}
	var sig string
	params := []any{base64.StdEncoding.EncodeToString(wire), map[string]any{"encoding": "base64"}}
	if err := c.call(ctx, "sendTransaction", params, &sig); err != nil {
		return "", err
	}
	return sig, nil
}

// GetProof fetches the miner state for an authority.
func (c *Client) GetProof(ctx context.Context, authority Address) (*Proof, error) {
	data, err := c.GetAccountData(ctx, ProofAddress(authority))
	if err != nil {
		return nil, err
	}
	return ParseProof(data)
}

// GetUpdatedProof polls until the proof's last-hash timestamp advances past
// lastHashAt, so a new round never reuses a stale challenge.
func (c *Client) GetUpdatedProof(ctx context.Context, authority Address, lastHashAt int64) (*Proof, error) {
	for {
		proof, err := c.GetProof(ctx, authority)
		if err != nil {
			return nil, err
		}
		if proof.LastHashAt > lastHashAt {
			return proof, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// GetBoardConfig fetches the global mining configuration.
func (c *Client) GetBoardConfig(ctx context.Context) (*BoardConfig, error) {
	data, err := c.GetAccountData(ctx, ConfigAddress())
	if err != nil {
		return nil, err
	}
	return ParseBoardConfig(data)
}

// GetClock fetches the clock sysvar.
func (c *Client) GetClock(ctx context.Context) (*Clock, error) {
	data, err := c.GetAccountData(ctx, ClockSysvar)
	if err != nil {
		return nil, err
	}
	return ParseClock(data)
}

// FindBus returns the bus with the most claimable rewards. Buses that fail
// to load are skipped.
func (c *Client) FindBus(ctx context.Context) (Address, error) {
	var (
		bestAddr    Address
		bestRewards uint64
		found       bool
	)
	for i := uint8(0); i < BusCount; i++ {
		addr := BusAddress(i)
		data, err := c.GetAccountData(ctx, addr)
		if err != nil {
			continue
		}
		bus, err := ParseBus(data)
		if err != nil {
			continue
		}
		if !found || bus.Rewards > bestRewards {
			bestAddr = addr
			bestRewards = bus.Rewards
			found = true
		}
	}
	if !found {
		return bestAddr, ErrNoBus
	}
	return bestAddr, nil
}
