// Package blockchain provides low-level Solana interaction for the storage
// program.
//
// This package contains clients and utilities for:
//   - Reading storage, user-info and unstake accounts over JSON-RPC
//   - Deriving program addresses (PDAs) and associated token accounts
//   - Building the program's Anchor instructions
//   - Signing transactions and storage-node messages
//
// # Architecture
//
// ChainClient wraps a JSON-RPC 2.0 handle (the RPC interface). Dial uses
// go-ethereum's rpc package as a generic transport, so both http(s) and
// ws(s) endpoints work:
//
//	chain, err := blockchain.Dial(ctx, "https://api.mainnet-beta.solana.com", "confirmed", cfg.Timeouts)
//	if err != nil {
//		return err
//	}
//	defer chain.Close()
//
// Keys, transactions and PDAs come from solana-go; account and instruction
// data are Borsh-encoded with gagliardetto/binary.
//
// # Accounts
//
// Storage accounts exist in two on-chain layouts. DecodeStorageAccount
// detects the layout from the 8-byte Anchor discriminator and normalizes
// both into model.StorageAccount:
//
//	data, err := chain.AccountInfo(ctx, address)
//	account, err := blockchain.DecodeStorageAccount(address, data)
//
// Listing the accounts of an owner uses a memcmp filter on owner_1:
//
//	accounts, err := chain.ProgramAccounts(ctx, blockchain.ProgramID,
//		blockchain.MemcmpFilter{Offset: blockchain.OwnerOffsetV2, Bytes: owner.Bytes()},
//		blockchain.MemcmpFilter{Offset: 0, Bytes: disc[:]},
//	)
//
// # Instructions
//
// Each builder returns a *solana.GenericInstruction addressed to ProgramID.
// Instructions that act on an existing account take its version and pick the
// V1 or V2 program entry point accordingly; the account list is the same.
//
// Initialize, resize and make-immutable instructions list Uploader as a
// signer. Such transactions are partially signed by the wallet and then
// submitted to the storage node, which adds its signature:
//
//	tx, _ := chain.NewTransaction(ctx, owner, ix)
//	_ = blockchain.PartialSignTransaction(tx, key)
//	encoded, _ := blockchain.EncodeTransaction(tx)
//
// Other instructions are signed with SignTransaction and sent directly with
// SendAndConfirmTransaction.
//
// # Confirmation
//
// ConfirmTransaction polls getSignatureStatuses every Timeouts.ConfirmPoll
// until the client commitment is reached, the transaction fails
// (ErrTransactionFailed), or Timeouts.ConfirmWait elapses.
//
// # Messages
//
// Storage-node requests are authorized with an ed25519 signature over a
// text message prefixed with MessagePrefix. UploadMessage, EditMessage and
// DeleteMessage build those texts; SignMessage returns the base58 signature.
//
// # Amounts
//
// SHDW has 9 decimals. ShdwToShades and ShadesToShdw convert between token
// units and base units using shopspring/decimal.
//
// # Thread Safety
//
// ChainClient holds no mutable state and is safe for concurrent use as long
// as the underlying RPC handle is.
package blockchain
