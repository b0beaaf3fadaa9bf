package blockchain

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// findProgramAddress derives a PDA under ProgramID. Derivation only fails
// for malformed seeds, which callers never produce.
func findProgramAddress(seeds ...[]byte) (solana.PublicKey, uint8) {
	key, bump, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		zap.L().Panic("failed to derive program address", zap.Error(err))
	}
	return key, bump
}

func u32LE(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

// StorageConfig returns the program-wide storage config address.
func StorageConfig() (solana.PublicKey, uint8) {
	return findProgramAddress([]byte("storage-config"))
}

// UserInfo returns the user-info address of owner. The account holds the
// counter used as the next storage account seed.
func UserInfo(owner solana.PublicKey) (solana.PublicKey, uint8) {
	return findProgramAddress([]byte("user-info"), owner.Bytes())
}

// StorageAccount returns the address of owner's storage account number seed.
func StorageAccount(owner solana.PublicKey, seed uint32) (solana.PublicKey, uint8) {
	return findProgramAddress([]byte("storage-account"), owner.Bytes(), u32LE(seed))
}

// StakeAccount returns the token vault holding the stake of storageAccount.
func StakeAccount(storageAccount solana.PublicKey) (solana.PublicKey, uint8) {
	return findProgramAddress([]byte("stake-account"), storageAccount.Bytes())
}

// UnstakeInfo returns the address recording the last unstake of storageAccount.
func UnstakeInfo(storageAccount solana.PublicKey) (solana.PublicKey, uint8) {
	return findProgramAddress([]byte("unstake-info"), storageAccount.Bytes())
}

// UnstakeAccount returns the token vault holding unstaked SHDW until claimed.
func UnstakeAccount(storageAccount solana.PublicKey) (solana.PublicKey, uint8) {
	return findProgramAddress([]byte("unstake-account"), storageAccount.Bytes())
}

// FileAccount returns the address of file number fileSeed in storageAccount.
func FileAccount(storageAccount solana.PublicKey, fileSeed uint32) (solana.PublicKey, uint8) {
	return findProgramAddress(storageAccount.Bytes(), u32LE(fileSeed))
}

// OwnerTokenAccount returns the SHDW associated token account of owner.
func OwnerTokenAccount(owner solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, TokenMint)
	if err != nil {
		zap.L().Error("failed to derive associated token account", zap.Stringer("owner", owner), zap.Error(err))
		return solana.PublicKey{}, err
	}
	return ata, nil
}
