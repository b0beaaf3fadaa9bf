package blockchain

import (
	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the storage program every instruction is addressed to.
	ProgramID = solana.MustPublicKeyFromBase58("2e1wdyNhUvE76y6yUCvah2KaviavMJYKoRun8acMRBZZ")
	// TokenMint is the SHDW SPL token mint used for stake and fees.
	TokenMint = solana.MustPublicKeyFromBase58("SHDWyBxihqiCj6YekG2GUr7wqKLeLAMK1gHZck9pL6y")
	// Uploader is the storage-node key that co-signs storage transactions.
	Uploader = solana.MustPublicKeyFromBase58("972oJTFyjmVNsWM4GHEGPWUomAiJf2qrVotLtwnKmWem")
	// EmissionsWallet receives mutable-storage fees.
	EmissionsWallet = solana.MustPublicKeyFromBase58("SHDWRWMZ6kmRG9CvKFSD7kVcnUqXMtd3SaMrLvWscbj")
	// StorageConfigPDA is the program-wide configuration account.
	StorageConfigPDA, _ = StorageConfig()
)

const (
	// TokenDecimals is the number of decimals of the SHDW mint.
	TokenDecimals = 9
	// MessagePrefix starts every message signed for the storage node.
	MessagePrefix = "Shadow Drive Signed Message:\n"
)
