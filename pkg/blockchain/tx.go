package blockchain

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// NewTransaction compiles instructions into a transaction paid by payer,
// using a fresh blockhash from the cluster.
func (c *ChainClient) NewTransaction(ctx context.Context, payer solana.PublicKey, instructions ...solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := c.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		zap.L().Error("failed to build transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// SignTransaction signs tx with key. Every required signer must be key.
func SignTransaction(tx *solana.Transaction, key solana.PrivateKey) error {
	pub := key.PublicKey()
	_, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(pub) {
			return &key
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to sign transaction", zap.Error(err))
		return err
	}
	return nil
}

// PartialSignTransaction fills only key's signature slot and leaves the
// remaining slots zeroed for a co-signer such as the storage node.
func PartialSignTransaction(tx *solana.Transaction, key solana.PrivateKey) error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serialize message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != required {
		sigs := make([]solana.Signature, required)
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}

	pub := key.PublicKey()
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if !tx.Message.AccountKeys[i].Equals(pub) {
			continue
		}
		sig, err := key.Sign(message)
		if err != nil {
			zap.L().Error("failed to sign message", zap.Error(err))
			return err
		}
		tx.Signatures[i] = sig
		return nil
	}
	return fmt.Errorf("%s is not a required signer", pub)
}

// EncodeTransaction returns the base64 wire encoding of tx.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
