package blockchain

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
)

// Instruction names as registered by the program. Names ending in "2"
// operate on StorageAccountV2 accounts.
const (
	InstructionInitializeAccount2    = "initialize_account2"
	InstructionRequestDeleteAccount  = "request_delete_account"
	InstructionRequestDeleteAccount2 = "request_delete_account2"
	InstructionUnmarkDeleteAccount   = "unmark_delete_account"
	InstructionUnmarkDeleteAccount2  = "unmark_delete_account2"
	InstructionUnmarkDeleteFile      = "unmark_delete_file"
	InstructionIncreaseStorage       = "increase_storage"
	InstructionIncreaseStorage2      = "increase_storage2"
	InstructionDecreaseStorage       = "decrease_storage"
	InstructionDecreaseStorage2      = "decrease_storage2"
	InstructionClaimStake            = "claim_stake"
	InstructionClaimStake2           = "claim_stake2"
	InstructionMakeAccountImmutable  = "make_account_immutable"
	InstructionMakeAccountImmutable2 = "make_account_immutable2"
)

type initializeAccountArgs struct {
	Identifier string
	Storage    uint64
}

type increaseStorageArgs struct {
	AdditionalStorage uint64
}

type decreaseStorageArgs struct {
	RemoveStorage uint64
}

// versioned picks the V2 instruction name for V2 accounts.
func versioned(version model.AccountVersion, v1, v2 string) string {
	if version == model.V2 {
		return v2
	}
	return v1
}

// instructionData returns the discriminator of name followed by the Borsh
// encoding of args (if any).
func instructionData(name string, args interface{}) ([]byte, error) {
	var buf bytes.Buffer
	disc := InstructionDiscriminator(name)
	buf.Write(disc[:])
	if args != nil {
		if err := bin.NewBorshEncoder(&buf).Encode(args); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func newInstruction(name string, args interface{}, accounts solana.AccountMetaSlice) (*solana.GenericInstruction, error) {
	data, err := instructionData(name, args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, accounts, data), nil
}

func readonly(key solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(key, false, false)
}

func writable(key solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(key, true, false)
}

func signer(key solana.PublicKey, write bool) *solana.AccountMeta {
	return solana.NewAccountMeta(key, write, true)
}

// InitializeAccountInstruction creates storage account number seed for owner
// with identifier and storage bytes reserved. The uploader must co-sign.
func InitializeAccountInstruction(owner solana.PublicKey, seed uint32, identifier string, storage uint64) (*solana.GenericInstruction, solana.PublicKey, error) {
	storageAccount, _ := StorageAccount(owner, seed)
	userInfo, _ := UserInfo(owner)
	stakeAccount, _ := StakeAccount(storageAccount)
	ownerATA, err := OwnerTokenAccount(owner)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	ix, err := newInstruction(InstructionInitializeAccount2, initializeAccountArgs{
		Identifier: identifier,
		Storage:    storage,
	}, solana.AccountMetaSlice{
		writable(StorageConfigPDA),
		writable(userInfo),
		writable(storageAccount),
		writable(stakeAccount),
		readonly(TokenMint),
		signer(owner, true),
		signer(Uploader, false),
		writable(ownerATA),
		readonly(solana.SystemProgramID),
		readonly(solana.TokenProgramID),
		readonly(solana.SysVarRentPubkey),
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return ix, storageAccount, nil
}

// RequestDeleteAccountInstruction marks storageAccount for deletion at the
// end of the current epoch.
func RequestDeleteAccountInstruction(version model.AccountVersion, storageAccount, owner solana.PublicKey) (*solana.GenericInstruction, error) {
	return newInstruction(versioned(version, InstructionRequestDeleteAccount, InstructionRequestDeleteAccount2), nil,
		solana.AccountMetaSlice{
			readonly(StorageConfigPDA),
			writable(storageAccount),
			signer(owner, true),
			readonly(TokenMint),
			readonly(solana.SystemProgramID),
		})
}

// UnmarkDeleteAccountInstruction clears a pending deletion of storageAccount.
func UnmarkDeleteAccountInstruction(version model.AccountVersion, storageAccount, owner solana.PublicKey) (*solana.GenericInstruction, error) {
	stakeAccount, _ := StakeAccount(storageAccount)
	return newInstruction(versioned(version, InstructionUnmarkDeleteAccount, InstructionUnmarkDeleteAccount2), nil,
		solana.AccountMetaSlice{
			readonly(StorageConfigPDA),
			writable(storageAccount),
			writable(stakeAccount),
			signer(owner, true),
			readonly(TokenMint),
			readonly(solana.SystemProgramID),
		})
}

// UnmarkDeleteFileInstruction clears a pending deletion of file in storageAccount.
func UnmarkDeleteFileInstruction(storageAccount, file, owner solana.PublicKey) (*solana.GenericInstruction, error) {
	stakeAccount, _ := StakeAccount(storageAccount)
	return newInstruction(InstructionUnmarkDeleteFile, nil, solana.AccountMetaSlice{
		readonly(StorageConfigPDA),
		writable(storageAccount),
		writable(file),
		writable(stakeAccount),
		signer(owner, true),
		readonly(TokenMint),
		readonly(solana.SystemProgramID),
	})
}

// IncreaseStorageInstruction stakes additional SHDW to reserve more bytes.
// The uploader must co-sign.
func IncreaseStorageInstruction(version model.AccountVersion, storageAccount, owner solana.PublicKey, additional uint64) (*solana.GenericInstruction, error) {
	stakeAccount, _ := StakeAccount(storageAccount)
	ownerATA, err := OwnerTokenAccount(owner)
	if err != nil {
		return nil, err
	}
	return newInstruction(versioned(version, InstructionIncreaseStorage, InstructionIncreaseStorage2),
		increaseStorageArgs{AdditionalStorage: additional},
		solana.AccountMetaSlice{
			readonly(StorageConfigPDA),
			writable(storageAccount),
			signer(owner, true),
			writable(ownerATA),
			writable(stakeAccount),
			readonly(TokenMint),
			signer(Uploader, false),
			writable(EmissionsWallet),
			readonly(solana.TokenProgramID),
			readonly(solana.SystemProgramID),
		})
}

// DecreaseStorageInstruction releases remove bytes; the freed stake moves to
// the unstake vault until ClaimStakeInstruction. The uploader must co-sign.
func DecreaseStorageInstruction(version model.AccountVersion, storageAccount, owner solana.PublicKey, remove uint64) (*solana.GenericInstruction, error) {
	stakeAccount, _ := StakeAccount(storageAccount)
	unstakeInfo, _ := UnstakeInfo(storageAccount)
	unstakeAccount, _ := UnstakeAccount(storageAccount)
	ownerATA, err := OwnerTokenAccount(owner)
	if err != nil {
		return nil, err
	}
	return newInstruction(versioned(version, InstructionDecreaseStorage, InstructionDecreaseStorage2),
		decreaseStorageArgs{RemoveStorage: remove},
		solana.AccountMetaSlice{
			writable(StorageConfigPDA),
			writable(storageAccount),
			writable(unstakeInfo),
			writable(unstakeAccount),
			signer(owner, true),
			writable(ownerATA),
			writable(stakeAccount),
			readonly(TokenMint),
			signer(Uploader, false),
			writable(EmissionsWallet),
			readonly(solana.SystemProgramID),
			readonly(solana.TokenProgramID),
			readonly(solana.SysVarRentPubkey),
		})
}

// ClaimStakeInstruction transfers unstaked SHDW back to the owner.
func ClaimStakeInstruction(version model.AccountVersion, storageAccount, owner solana.PublicKey) (*solana.GenericInstruction, error) {
	unstakeInfo, _ := UnstakeInfo(storageAccount)
	unstakeAccount, _ := UnstakeAccount(storageAccount)
	ownerATA, err := OwnerTokenAccount(owner)
	if err != nil {
		return nil, err
	}
	return newInstruction(versioned(version, InstructionClaimStake, InstructionClaimStake2), nil,
		solana.AccountMetaSlice{
			readonly(StorageConfigPDA),
			readonly(storageAccount),
			writable(unstakeInfo),
			writable(unstakeAccount),
			signer(owner, true),
			writable(ownerATA),
			readonly(TokenMint),
			readonly(solana.SystemProgramID),
			readonly(solana.TokenProgramID),
		})
}

// MakeAccountImmutableInstruction permanently freezes storageAccount. The
// uploader must co-sign.
func MakeAccountImmutableInstruction(version model.AccountVersion, storageAccount, owner solana.PublicKey) (*solana.GenericInstruction, error) {
	stakeAccount, _ := StakeAccount(storageAccount)
	ownerATA, err := OwnerTokenAccount(owner)
	if err != nil {
		return nil, err
	}
	return newInstruction(versioned(version, InstructionMakeAccountImmutable, InstructionMakeAccountImmutable2), nil,
		solana.AccountMetaSlice{
			readonly(StorageConfigPDA),
			writable(storageAccount),
			writable(stakeAccount),
			writable(EmissionsWallet),
			signer(owner, true),
			signer(Uploader, false),
			writable(ownerATA),
			readonly(TokenMint),
			readonly(solana.SystemProgramID),
			readonly(solana.TokenProgramID),
			readonly(solana.SPLAssociatedTokenAccountProgramID),
			readonly(solana.SysVarRentPubkey),
		})
}
