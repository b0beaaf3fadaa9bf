package sdk

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/blockchain"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"github.com/shdw-drive/shdw-drive-go/pkg/storage"
	"go.uber.org/zap"
)

// CreateStorageAccount reserves size bytes under a new account named name.
// The account is derived from the wallet's user-info counter; the storage
// node co-signs and submits the transaction.
func (c *Client) CreateStorageAccount(ctx context.Context, name string, size uint64) (*model.CreateStorageAccountResponse, error) {
	if name == "" {
		return nil, fmt.Errorf("account name is required")
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: size must be positive", ErrInvalidStorageSize)
	}

	seed, err := c.chain.NextAccountSeed(ctx, c.wallet)
	if err != nil {
		zap.L().Error("Failed to read user info", zap.String("wallet", c.wallet.String()), zap.Error(err))
		return nil, err
	}

	ix, account, err := blockchain.InitializeAccountInstruction(c.wallet, seed, name, size)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("Creating storage account",
		zap.String("storage_account", account.String()),
		zap.Uint32("seed", seed),
		zap.Uint64("size", size))

	var resp model.CreateStorageAccountResponse
	if err := c.submitCoSigned(ctx, storage.RouteCreateAccount, ix, &resp); err != nil {
		zap.L().Error("Failed to create storage account", zap.String("storage_account", account.String()), zap.Error(err))
		return nil, err
	}
	return &resp, nil
}

// GetStorageAccount reads an account of either layout together with its
// stake balance. A failed balance lookup is logged and leaves Stake zero.
func (c *Client) GetStorageAccount(ctx context.Context, key solana.PublicKey) (*model.StorageAccount, error) {
	data, err := c.chain.AccountInfo(ctx, key)
	if err != nil {
		return nil, err
	}
	account, err := blockchain.DecodeStorageAccount(key, data)
	if err != nil {
		zap.L().Error("Failed to decode storage account", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}

	stake, err := c.chain.StakeBalance(ctx, key)
	if err != nil {
		zap.L().Warn("Failed to read stake balance", zap.String("storage_account", key.String()), zap.Error(err))
	} else {
		account.Stake = stake
	}
	return account, nil
}

// GetStorageAccounts lists every account owned by the wallet. Stake is not
// populated.
func (c *Client) GetStorageAccounts(ctx context.Context) ([]*model.StorageAccount, error) {
	return c.chain.StorageAccountsByOwner(ctx, c.wallet)
}

// GetUserInfo returns the wallet's user-info account.
func (c *Client) GetUserInfo(ctx context.Context) (*model.UserInfo, error) {
	return c.chain.UserInfoOf(ctx, c.wallet)
}

// GetStorageConfig returns the program-wide pricing and size limits.
func (c *Client) GetStorageConfig(ctx context.Context) (*model.StorageConfig, error) {
	return c.chain.StorageConfigAccount(ctx)
}

// GetUnstakeInfo returns the last ReduceStorage recorded for key. ClaimStake
// succeeds only once the unstake period after that epoch has passed.
func (c *Client) GetUnstakeInfo(ctx context.Context, key solana.PublicKey) (*model.UnstakeInfo, error) {
	info, err := c.chain.UnstakeInfoOf(ctx, key)
	if err != nil {
		zap.L().Error("Failed to read unstake info", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}
	return info, nil
}

// GetStorageAccountSize returns the storage node's view of key, including
// current usage.
func (c *Client) GetStorageAccountSize(ctx context.Context, key solana.PublicKey) (*model.StorageAccountInfo, error) {
	return c.store.AccountInfo(ctx, key)
}

// ownedAccount loads key and checks the wallet owns it.
func (c *Client) ownedAccount(ctx context.Context, key solana.PublicKey) (*model.StorageAccount, error) {
	account, err := c.GetStorageAccount(ctx, key)
	if err != nil {
		return nil, err
	}
	if !account.IsOwner(c.wallet) {
		return nil, fmt.Errorf("%w: %s", ErrNotAccountOwner, key)
	}
	return account, nil
}

// mutableAccount loads key, checks ownership and that it is not immutable.
func (c *Client) mutableAccount(ctx context.Context, key solana.PublicKey) (*model.StorageAccount, error) {
	account, err := c.ownedAccount(ctx, key)
	if err != nil {
		return nil, err
	}
	if account.Immutable {
		return nil, fmt.Errorf("%w: %s", ErrAccountImmutable, key)
	}
	return account, nil
}

// DeleteStorageAccount marks key for deletion at the end of the epoch.
func (c *Client) DeleteStorageAccount(ctx context.Context, key solana.PublicKey) (*model.TxResponse, error) {
	account, err := c.mutableAccount(ctx, key)
	if err != nil {
		return nil, err
	}
	if account.ToBeDeleted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyMarkedForDeletion, key)
	}

	ix, err := blockchain.RequestDeleteAccountInstruction(account.Version, key, c.wallet)
	if err != nil {
		return nil, err
	}
	resp, err := c.signAndSend(ctx, ix)
	if err != nil {
		zap.L().Error("Failed to request account deletion", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// CancelDeleteStorageAccount clears a pending deletion of key.
func (c *Client) CancelDeleteStorageAccount(ctx context.Context, key solana.PublicKey) (*model.TxResponse, error) {
	account, err := c.mutableAccount(ctx, key)
	if err != nil {
		return nil, err
	}
	if !account.ToBeDeleted {
		return nil, fmt.Errorf("%w: %s", ErrNotMarkedForDeletion, key)
	}

	ix, err := blockchain.UnmarkDeleteAccountInstruction(account.Version, key, c.wallet)
	if err != nil {
		return nil, err
	}
	resp, err := c.signAndSend(ctx, ix)
	if err != nil {
		zap.L().Error("Failed to cancel account deletion", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// AddStorage stakes for size more bytes on key.
func (c *Client) AddStorage(ctx context.Context, key solana.PublicKey, size uint64) (*model.StorageResponse, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: size must be positive", ErrInvalidStorageSize)
	}
	account, err := c.mutableAccount(ctx, key)
	if err != nil {
		return nil, err
	}

	ix, err := blockchain.IncreaseStorageInstruction(account.Version, key, c.wallet, size)
	if err != nil {
		return nil, err
	}
	var resp model.StorageResponse
	if err := c.submitCoSigned(ctx, storage.RouteAddStorage, ix, &resp); err != nil {
		zap.L().Error("Failed to add storage", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}
	return &resp, nil
}

// ReduceStorage unstakes size bytes from key. The remaining reservation
// must stay positive.
func (c *Client) ReduceStorage(ctx context.Context, key solana.PublicKey, size uint64) (*model.StorageResponse, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: size must be positive", ErrInvalidStorageSize)
	}
	account, err := c.mutableAccount(ctx, key)
	if err != nil {
		return nil, err
	}
	if size >= account.Storage {
		return nil, fmt.Errorf("%w: cannot remove %d of %d bytes", ErrInvalidStorageSize, size, account.Storage)
	}

	ix, err := blockchain.DecreaseStorageInstruction(account.Version, key, c.wallet, size)
	if err != nil {
		return nil, err
	}
	var resp model.StorageResponse
	if err := c.submitCoSigned(ctx, storage.RouteShrinkStorage, ix, &resp); err != nil {
		zap.L().Error("Failed to reduce storage", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}
	return &resp, nil
}

// ClaimStake withdraws stake released by an earlier ReduceStorage.
func (c *Client) ClaimStake(ctx context.Context, key solana.PublicKey) (*model.TxResponse, error) {
	account, err := c.ownedAccount(ctx, key)
	if err != nil {
		return nil, err
	}

	ix, err := blockchain.ClaimStakeInstruction(account.Version, key, c.wallet)
	if err != nil {
		return nil, err
	}
	resp, err := c.signAndSend(ctx, ix)
	if err != nil {
		zap.L().Error("Failed to claim stake", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// MakeStorageImmutable freezes key. Files in an immutable account can no
// longer be edited or deleted.
func (c *Client) MakeStorageImmutable(ctx context.Context, key solana.PublicKey) (*model.StorageResponse, error) {
	account, err := c.mutableAccount(ctx, key)
	if err != nil {
		return nil, err
	}

	ix, err := blockchain.MakeAccountImmutableInstruction(account.Version, key, c.wallet)
	if err != nil {
		return nil, err
	}
	var resp model.StorageResponse
	if err := c.submitCoSigned(ctx, storage.RouteMakeImmutable, ix, &resp); err != nil {
		zap.L().Error("Failed to make storage immutable", zap.String("storage_account", key.String()), zap.Error(err))
		return nil, err
	}
	return &resp, nil
}
