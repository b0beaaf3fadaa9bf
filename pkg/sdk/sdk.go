package sdk

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/blockchain"
	"github.com/shdw-drive/shdw-drive-go/pkg/config"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"github.com/shdw-drive/shdw-drive-go/pkg/storage"
	"go.uber.org/zap"
)

var (
	// ErrNotAccountOwner is returned when the wallet does not own the storage account.
	ErrNotAccountOwner = errors.New("wallet does not own the storage account")
	// ErrAccountImmutable is returned for operations an immutable account refuses.
	ErrAccountImmutable = errors.New("storage account is immutable")
	// ErrAlreadyMarkedForDeletion is returned when deleting an account twice.
	ErrAlreadyMarkedForDeletion = errors.New("storage account is already marked for deletion")
	// ErrNotMarkedForDeletion is returned when cancelling a deletion that was never requested.
	ErrNotMarkedForDeletion = errors.New("storage account is not marked for deletion")
	// ErrNotFileOwner is returned when the wallet does not own the file.
	ErrNotFileOwner = errors.New("wallet does not own the file")
	// ErrInvalidStorageSize is returned for a reduction that would leave no storage.
	ErrInvalidStorageSize = errors.New("invalid storage size")
	// ErrFileTooLarge is returned for payloads above storage.FileSizeLimit.
	ErrFileTooLarge = storage.ErrFileTooLarge
	// ErrInvalidFileName is returned for empty, comma-containing or repeated names.
	ErrInvalidFileName = storage.ErrInvalidFileName
)

// ShdwDrive is the public interface of the SDK client. Every operation is
// signed by the wallet the client was built with.
type ShdwDrive interface {
	// Wallet returns the public key of the signing wallet.
	Wallet() solana.PublicKey

	CreateStorageAccount(ctx context.Context, name string, size uint64) (*model.CreateStorageAccountResponse, error)
	GetStorageAccount(ctx context.Context, key solana.PublicKey) (*model.StorageAccount, error)
	GetStorageAccounts(ctx context.Context) ([]*model.StorageAccount, error)
	GetUserInfo(ctx context.Context) (*model.UserInfo, error)
	GetStorageConfig(ctx context.Context) (*model.StorageConfig, error)
	GetUnstakeInfo(ctx context.Context, key solana.PublicKey) (*model.UnstakeInfo, error)
	GetStorageAccountSize(ctx context.Context, key solana.PublicKey) (*model.StorageAccountInfo, error)
	DeleteStorageAccount(ctx context.Context, key solana.PublicKey) (*model.TxResponse, error)
	CancelDeleteStorageAccount(ctx context.Context, key solana.PublicKey) (*model.TxResponse, error)
	AddStorage(ctx context.Context, key solana.PublicKey, size uint64) (*model.StorageResponse, error)
	ReduceStorage(ctx context.Context, key solana.PublicKey, size uint64) (*model.StorageResponse, error)
	ClaimStake(ctx context.Context, key solana.PublicKey) (*model.TxResponse, error)
	MakeStorageImmutable(ctx context.Context, key solana.PublicKey) (*model.StorageResponse, error)

	UploadFile(ctx context.Context, key solana.PublicKey, file *model.File) (*model.UploadResponse, error)
	UploadMultipleFiles(ctx context.Context, key solana.PublicKey, files []*model.File) ([]model.BatchUploadResponse, error)
	EditFile(ctx context.Context, key solana.PublicKey, location string, file *model.File) (*model.EditFileResponse, error)
	DeleteFile(ctx context.Context, key solana.PublicKey, location string) (*model.DeleteFileResponse, error)
	CancelDeleteFile(ctx context.Context, key solana.PublicKey, location string) (*model.TxResponse, error)
	ListObjects(ctx context.Context, key solana.PublicKey) ([]string, error)
	GetObjectData(ctx context.Context, location string) (*model.FileDataResponse, error)
	GetObject(ctx context.Context, key solana.PublicKey, name string) ([]byte, error)

	// Health probes the JSON-RPC node and the storage node.
	Health(ctx context.Context) HealthStatus

	// Close releases resources associated with the client.
	Close()
}

var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Client is the concrete SDK implementation.
type Client struct {
	cfg    *config.Config
	key    solana.PrivateKey
	wallet solana.PublicKey
	chain  *blockchain.ChainClient
	store  *storage.Client
}

var _ ShdwDrive = (*Client)(nil)

// NewClient validates cfg, loads the wallet key and dials the JSON-RPC
// endpoint.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		zap.L().Error("Invalid config", zap.Error(err))
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	if cfg.Debug {
		logLevel.SetLevel(zap.DebugLevel)
	}

	key, err := loadKey(cfg)
	if err != nil {
		return nil, err
	}

	chain, err := blockchain.Dial(ctx, cfg.RPCAddr, cfg.Commitment, cfg.Timeouts)
	if err != nil {
		zap.L().Error("Init rpc client failed", zap.String("rpc", cfg.RPCAddr), zap.Error(err))
		return nil, err
	}

	store := storage.NewClient(cfg.StorageEndpoint, cfg.Timeouts)
	return New(key, chain, store, cfg), nil
}

// New assembles a Client from already built parts. cfg is expected to be
// validated.
func New(key solana.PrivateKey, chain *blockchain.ChainClient, store *storage.Client, cfg *config.Config) *Client {
	wallet := key.PublicKey()
	zap.L().Debug("signer address", zap.String("wallet", wallet.String()))
	return &Client{
		cfg:    cfg,
		key:    key,
		wallet: wallet,
		chain:  chain,
		store:  store,
	}
}

func loadKey(cfg *config.Config) (solana.PrivateKey, error) {
	if cfg.PrivateKey != "" {
		_, key, err := blockchain.ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			zap.L().Error("Private key parsing failed", zap.Error(err))
			return nil, err
		}
		return key, nil
	}
	_, key, err := blockchain.LoadKeypairFile(cfg.KeypairPath)
	return key, err
}

// Wallet returns the public key of the signing wallet.
func (c *Client) Wallet() solana.PublicKey {
	return c.wallet
}

// Close shuts down the JSON-RPC connection.
func (c *Client) Close() {
	if c.chain != nil {
		c.chain.Close()
	}
}

// signAndSend signs ix with the wallet alone and waits for confirmation.
func (c *Client) signAndSend(ctx context.Context, ix solana.Instruction) (*model.TxResponse, error) {
	tx, err := c.chain.NewTransaction(ctx, c.wallet, ix)
	if err != nil {
		return nil, err
	}
	if err := blockchain.SignTransaction(tx, c.key); err != nil {
		return nil, err
	}
	sig, err := c.chain.SendAndConfirmTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{TxID: sig.String()}, nil
}

// submitCoSigned partially signs ix and hands it to the storage node on
// route, which adds the uploader signature and submits it.
func (c *Client) submitCoSigned(ctx context.Context, route string, ix solana.Instruction, out interface{}) error {
	tx, err := c.chain.NewTransaction(ctx, c.wallet, ix)
	if err != nil {
		return err
	}
	if err := blockchain.PartialSignTransaction(tx, c.key); err != nil {
		return err
	}
	return c.store.SubmitTransaction(ctx, route, tx, out)
}
