package blockchain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ParsePrivateKey parses a base58-encoded 64-byte ed25519 secret key and
// returns it with its public key.
func ParsePrivateKey(privateKey string) (solana.PublicKey, solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromBase58(strings.TrimSpace(privateKey))
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if len(key) != 64 {
		return solana.PublicKey{}, nil, fmt.Errorf("invalid private key length %d", len(key))
	}
	return key.PublicKey(), key, nil
}

// LoadKeypairFile reads a solana-keygen JSON keypair file.
func LoadKeypairFile(path string) (solana.PublicKey, solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		zap.L().Error("Failed to load keypair", zap.String("path", path), zap.Error(err))
		return solana.PublicKey{}, nil, err
	}
	return key.PublicKey(), key, nil
}

// SignMessage signs message with key and returns the base58 signature, the
// form storage nodes expect in the "message" field.
func SignMessage(key solana.PrivateKey, message string) (string, error) {
	if len(key) == 0 {
		return "", errors.New("private key is required for signing")
	}
	sig, err := key.Sign([]byte(message))
	if err != nil {
		zap.L().Error("Failed to sign message", zap.Error(err))
		return "", err
	}
	return sig.String(), nil
}

// HashFileNames returns the hex SHA-256 of the comma-joined names.
func HashFileNames(names []string) string {
	sum := sha256.Sum256([]byte(strings.Join(names, ",")))
	return hex.EncodeToString(sum[:])
}

// UploadMessage is the text signed to authorize an upload of files whose
// names hash to fileNamesHash.
func UploadMessage(storageAccount solana.PublicKey, fileNamesHash string) string {
	return fmt.Sprintf("%sStorage Account: %s\nUpload files with hash: %s", MessagePrefix, storageAccount, fileNamesHash)
}

// EditMessage is the text signed to replace fileName with content hashing to fileHash.
func EditMessage(storageAccount solana.PublicKey, fileName, fileHash string) string {
	return fmt.Sprintf("%s StorageAccount: %s\nFile to edit: %s\nNew file hash: %s", MessagePrefix, storageAccount, fileName, fileHash)
}

// DeleteMessage is the text signed to delete the object at url.
func DeleteMessage(storageAccount solana.PublicKey, url string) string {
	return fmt.Sprintf("%sStorageAccount: %s\nFile to delete: %s", MessagePrefix, storageAccount, url)
}

// ParseStorageSize converts a human size such as "1MB" or "10GiB" to bytes.
func ParseStorageSize(size string) (uint64, error) {
	n, err := humanize.ParseBytes(size)
	if err != nil {
		return 0, fmt.Errorf("invalid storage size %q: %w", size, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("storage size must be positive")
	}
	return n, nil
}

var shadesPerShdw = decimal.New(1, TokenDecimals)

// ShdwToShades converts a SHDW amount to its smallest unit (9 decimals).
//
// Supported input types for iamount: string, float64, int64, decimal.Decimal,
// *decimal.Decimal. Any other type results in an error.
func ShdwToShades(iamount any) (*big.Int, error) {
	var amount decimal.Decimal
	switch v := iamount.(type) {
	case string:
		var err error
		amount, err = decimal.NewFromString(v)
		if err != nil {
			zap.L().Error("Failed to convert string to decimal", zap.Error(err))
			return nil, err
		}
	case float64:
		amount = decimal.NewFromFloat(v)
	case int64:
		amount = decimal.NewFromInt(v)
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		amount = *v
	default:
		return nil, fmt.Errorf("unsupported amount type %T", iamount)
	}
	return amount.Mul(shadesPerShdw).Truncate(0).BigInt(), nil
}

// ShadesToShdw converts an amount in shades into SHDW with 9 digits of
// precision.
//
// Supported input types for ivalue: string, *big.Int, uint64, int.
// Any other type results in decimal.Zero and logs an error.
func ShadesToShdw(ivalue any) decimal.Decimal {
	value := new(big.Int)
	switch v := ivalue.(type) {
	case string:
		if _, ok := value.SetString(v, 10); !ok {
			zap.L().Error("Failed to parse shades", zap.String("value", v))
			return decimal.Zero
		}
	case *big.Int:
		value = v
	case uint64:
		value.SetUint64(v)
	case int:
		value.SetInt64(int64(v))
	default:
		zap.L().Error("Unsupported type")
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -TokenDecimals)
}
