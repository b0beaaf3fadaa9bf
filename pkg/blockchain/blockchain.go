package blockchain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/shdw-drive/shdw-drive-go/pkg/config"
	"go.uber.org/zap"
)

// ErrTransactionFailed is returned when a submitted transaction landed with an error.
var ErrTransactionFailed = errors.New("transaction failed")

// RPC is the JSON-RPC 2.0 handle used by ChainClient. *rpc.Client from
// go-ethereum satisfies it for http(s) and ws(s) endpoints.
type RPC interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// ChainClient reads program accounts and submits transactions over RPC.
type ChainClient struct {
	RPC        RPC
	Commitment string
	Timeouts   config.Timeouts
}

// NewChainClient wraps an existing RPC handle.
func NewChainClient(c RPC, commitment string, timeouts config.Timeouts) *ChainClient {
	if commitment == "" {
		commitment = config.DefaultCommitment
	}
	return &ChainClient{
		RPC:        c,
		Commitment: commitment,
		Timeouts:   timeouts.WithDefaults(),
	}
}

// Dial connects to endpoint and checks that it answers getVersion within
// the dial timeout.
func Dial(ctx context.Context, endpoint, commitment string, timeouts config.Timeouts) (*ChainClient, error) {
	timeouts = timeouts.WithDefaults()
	dctx, cancel := context.WithTimeout(ctx, timeouts.Dial)
	defer cancel()

	c, err := rpc.DialContext(dctx, endpoint)
	if err != nil {
		zap.L().Error("Failed to dial rpc", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	var version struct {
		SolanaCore string `json:"solana-core"`
	}
	if err := c.CallContext(dctx, &version, "getVersion"); err != nil {
		c.Close()
		zap.L().Error("Failed to query rpc version", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("rpc %s unreachable: %w", endpoint, err)
	}
	zap.L().Debug("Connected to rpc", zap.String("endpoint", endpoint), zap.String("version", version.SolanaCore))

	return NewChainClient(c, commitment, timeouts), nil
}

// Close releases the RPC connection.
func (c *ChainClient) Close() {
	if c.RPC != nil {
		c.RPC.Close()
	}
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

type accountValue struct {
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
}

func (a *accountValue) bytes() ([]byte, error) {
	if len(a.Data) == 0 {
		return nil, nil
	}
	if len(a.Data) > 1 && a.Data[1] != "base64" {
		return nil, fmt.Errorf("unexpected account encoding %q", a.Data[1])
	}
	return base64.StdEncoding.DecodeString(a.Data[0])
}

type signatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

func (s *signatureStatus) failed() bool {
	return len(s.Err) > 0 && string(s.Err) != "null"
}

// Account is a raw program account returned by ProgramAccounts.
type Account struct {
	Pubkey solana.PublicKey
	Data   []byte
}

// MemcmpFilter restricts ProgramAccounts to accounts whose data contains
// Bytes at Offset.
type MemcmpFilter struct {
	Offset uint64
	Bytes  []byte
}

func (f MemcmpFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"memcmp": map[string]interface{}{
			"offset": f.Offset,
			"bytes":  base58.Encode(f.Bytes),
		},
	})
}

func (c *ChainClient) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, c.Timeouts.ChainRead)
}

// withTimeout returns ctx unchanged if d <= 0, otherwise returns a child context with timeout d.
// The returned cancel function is always non-nil and should be called to release resources.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// LatestBlockhash returns a recent blockhash at the client commitment.
func (c *ChainClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	ctx, cancel := c.readCtx(ctx)
	defer cancel()

	var res struct {
		Context rpcContext `json:"context"`
		Value   struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	}
	err := c.RPC.CallContext(ctx, &res, "getLatestBlockhash", map[string]interface{}{
		"commitment": c.Commitment,
	})
	if err != nil {
		zap.L().Error("failed to get latest blockhash", zap.Error(err))
		return solana.Hash{}, err
	}
	return solana.HashFromBase58(res.Value.Blockhash)
}

// AccountInfo returns the data held at key, or ErrAccountNotFound.
func (c *ChainClient) AccountInfo(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	ctx, cancel := c.readCtx(ctx)
	defer cancel()

	var res struct {
		Context rpcContext    `json:"context"`
		Value   *accountValue `json:"value"`
	}
	err := c.RPC.CallContext(ctx, &res, "getAccountInfo", key.String(), map[string]interface{}{
		"encoding":   "base64",
		"commitment": c.Commitment,
	})
	if err != nil {
		zap.L().Error("failed to get account info", zap.Stringer("account", key), zap.Error(err))
		return nil, err
	}
	if res.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	return res.Value.bytes()
}

// ProgramAccounts lists accounts owned by program that match every filter.
func (c *ChainClient) ProgramAccounts(ctx context.Context, program solana.PublicKey, filters ...MemcmpFilter) ([]Account, error) {
	ctx, cancel := c.readCtx(ctx)
	defer cancel()

	opts := map[string]interface{}{
		"encoding":   "base64",
		"commitment": c.Commitment,
	}
	if len(filters) > 0 {
		opts["filters"] = filters
	}

	var res []struct {
		Pubkey  string       `json:"pubkey"`
		Account accountValue `json:"account"`
	}
	if err := c.RPC.CallContext(ctx, &res, "getProgramAccounts", program.String(), opts); err != nil {
		zap.L().Error("failed to get program accounts", zap.Stringer("program", program), zap.Error(err))
		return nil, err
	}

	accounts := make([]Account, 0, len(res))
	for _, r := range res {
		key, err := solana.PublicKeyFromBase58(r.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid account key %q: %w", r.Pubkey, err)
		}
		data, err := r.Account.bytes()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, Account{Pubkey: key, Data: data})
	}
	return accounts, nil
}

// TokenAccountAmount returns the raw balance of an SPL token account in the
// mint's smallest unit, together with the mint decimals.
func (c *ChainClient) TokenAccountAmount(ctx context.Context, key solana.PublicKey) (*big.Int, int32, error) {
	ctx, cancel := c.readCtx(ctx)
	defer cancel()

	var res struct {
		Context rpcContext `json:"context"`
		Value   struct {
			Amount   string `json:"amount"`
			Decimals int32  `json:"decimals"`
		} `json:"value"`
	}
	err := c.RPC.CallContext(ctx, &res, "getTokenAccountBalance", key.String(), map[string]interface{}{
		"commitment": c.Commitment,
	})
	if err != nil {
		zap.L().Error("failed to get token balance", zap.Stringer("account", key), zap.Error(err))
		return nil, 0, err
	}
	amount, ok := new(big.Int).SetString(res.Value.Amount, 10)
	if !ok {
		return nil, 0, fmt.Errorf("invalid token amount %q", res.Value.Amount)
	}
	return amount, res.Value.Decimals, nil
}

// Health returns nil when the node reports itself healthy.
func (c *ChainClient) Health(ctx context.Context) error {
	ctx, cancel := c.readCtx(ctx)
	defer cancel()

	var res string
	if err := c.RPC.CallContext(ctx, &res, "getHealth"); err != nil {
		return err
	}
	if res != "ok" {
		return fmt.Errorf("node unhealthy: %s", res)
	}
	return nil
}

// SendTransaction submits a fully signed transaction and returns its signature.
func (c *ChainClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	ctx, cancel := withTimeout(ctx, c.Timeouts.ChainSubmit)
	defer cancel()

	encoded, err := EncodeTransaction(tx)
	if err != nil {
		return solana.Signature{}, err
	}

	var sig string
	err = c.RPC.CallContext(ctx, &sig, "sendTransaction", encoded, map[string]interface{}{
		"encoding":            "base64",
		"preflightCommitment": c.Commitment,
	})
	if err != nil {
		zap.L().Error("failed to send transaction", zap.Error(err))
		return solana.Signature{}, err
	}
	return solana.SignatureFromBase58(sig)
}

// ConfirmTransaction polls getSignatureStatuses until sig reaches the client
// commitment, the transaction fails, or the confirmation timeout elapses.
func (c *ChainClient) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := withTimeout(ctx, c.Timeouts.ConfirmWait)
	defer cancel()

	poll := c.Timeouts.ConfirmPoll
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		var res struct {
			Context rpcContext         `json:"context"`
			Value   []*signatureStatus `json:"value"`
		}
		err := c.RPC.CallContext(ctx, &res, "getSignatureStatuses", []string{sig.String()}, map[string]interface{}{
			"searchTransactionHistory": true,
		})
		if err != nil {
			zap.L().Error("failed to get signature status", zap.Stringer("signature", sig), zap.Error(err))
			return err
		}

		if len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.failed() {
				return fmt.Errorf("%w: %s: %s", ErrTransactionFailed, sig, string(status.Err))
			}
			if commitmentReached(status.ConfirmationStatus, c.Commitment) {
				zap.L().Debug("transaction confirmed",
					zap.Stringer("signature", sig),
					zap.String("status", status.ConfirmationStatus),
					zap.Uint64("slot", status.Slot))
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

// SendAndConfirmTransaction submits tx and waits for confirmation.
func (c *ChainClient) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := c.ConfirmTransaction(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

var commitmentRank = map[string]int{
	"processed": 1,
	"confirmed": 2,
	"finalized": 3,
}

func commitmentReached(status, want string) bool {
	got, ok := commitmentRank[status]
	if !ok {
		return false
	}
	return got >= commitmentRank[want]
}
