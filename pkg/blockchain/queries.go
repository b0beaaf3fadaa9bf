package blockchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ownerLayouts = []struct {
	name   string
	offset uint64
}{
	{accountStorageAccount, OwnerOffsetV1},
	{accountStorageAccountV2, OwnerOffsetV2},
}

// StorageAccountsByOwner lists the storage accounts of both layouts whose
// owner_1 is owner. Stake is left zero.
func (c *ChainClient) StorageAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]*model.StorageAccount, error) {
	var out []*model.StorageAccount
	for _, layout := range ownerLayouts {
		disc := AccountDiscriminator(layout.name)
		accounts, err := c.ProgramAccounts(ctx, ProgramID,
			MemcmpFilter{Offset: 0, Bytes: disc[:]},
			MemcmpFilter{Offset: layout.offset, Bytes: owner.Bytes()},
		)
		if err != nil {
			return nil, err
		}
		for _, a := range accounts {
			acct, err := DecodeStorageAccount(a.Pubkey, a.Data)
			if err != nil {
				zap.L().Warn("skipping undecodable storage account", zap.Stringer("account", a.Pubkey), zap.Error(err))
				continue
			}
			out = append(out, acct)
		}
	}
	return out, nil
}

// UserInfoOf returns the user-info account of owner. A wallet that never
// created a storage account has none and yields ErrAccountNotFound.
func (c *ChainClient) UserInfoOf(ctx context.Context, owner solana.PublicKey) (*model.UserInfo, error) {
	key, _ := UserInfo(owner)
	data, err := c.AccountInfo(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeUserInfo(data)
}

// NextAccountSeed returns the seed the next storage account of owner is
// derived with: the user-info counter, or 0 before the first account.
func (c *ChainClient) NextAccountSeed(ctx context.Context, owner solana.PublicKey) (uint32, error) {
	info, err := c.UserInfoOf(ctx, owner)
	if errors.Is(err, ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.AccountCounter, nil
}

// StakeBalance returns the SHDW held in the stake vault of storageAccount.
func (c *ChainClient) StakeBalance(ctx context.Context, storageAccount solana.PublicKey) (decimal.Decimal, error) {
	stake, _ := StakeAccount(storageAccount)
	shades, decimals, err := c.TokenAccountAmount(ctx, stake)
	if err != nil {
		return decimal.Zero, err
	}
	if decimals != TokenDecimals {
		return decimal.Zero, fmt.Errorf("stake vault %s holds a token with %d decimals", stake, decimals)
	}
	return ShadesToShdw(shades), nil
}

// StorageConfigAccount reads the program-wide storage config.
func (c *ChainClient) StorageConfigAccount(ctx context.Context) (*model.StorageConfig, error) {
	data, err := c.AccountInfo(ctx, StorageConfigPDA)
	if err != nil {
		return nil, err
	}
	return DecodeStorageConfig(data)
}

// UnstakeInfoOf returns the last unstake recorded for storageAccount, or
// ErrAccountNotFound if it was never reduced.
func (c *ChainClient) UnstakeInfoOf(ctx context.Context, storageAccount solana.PublicKey) (*model.UnstakeInfo, error) {
	key, _ := UnstakeInfo(storageAccount)
	data, err := c.AccountInfo(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeUnstakeInfo(data)
}
