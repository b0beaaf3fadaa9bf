package blockchain

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"github.com/shopspring/decimal"
)

// DiscriminatorLength is the size of the Anchor account/instruction prefix.
const DiscriminatorLength = 8

var (
	// ErrUnknownAccount is returned when account data carries an unexpected discriminator.
	ErrUnknownAccount = errors.New("unknown account discriminator")
	// ErrAccountNotFound is returned when an address holds no account.
	ErrAccountNotFound = errors.New("account not found")
)

// Account names as registered by the program.
const (
	accountStorageAccount   = "StorageAccount"
	accountStorageAccountV2 = "StorageAccountV2"
	accountUserInfo         = "UserInfo"
	accountUnstakeInfo      = "UnstakeInfo"
	accountStorageConfig    = "StorageConfig"
)

// AccountDiscriminator returns sha256("account:<name>")[:8].
func AccountDiscriminator(name string) [DiscriminatorLength]byte {
	return discriminator("account:" + name)
}

// InstructionDiscriminator returns sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) [DiscriminatorLength]byte {
	return discriminator("global:" + name)
}

func discriminator(preimage string) [DiscriminatorLength]byte {
	var out [DiscriminatorLength]byte
	sum := sha256.Sum256([]byte(preimage))
	copy(out[:], sum[:DiscriminatorLength])
	return out
}

// storageAccountV1 is the Borsh layout of StorageAccount.
type storageAccountV1 struct {
	IsStatic                  bool
	InitCounter               uint32
	DelCounter                uint32
	Immutable                 bool
	ToBeDeleted               bool
	DeleteRequestEpoch        uint32
	Storage                   uint64
	StorageAvailable          uint64
	Owner1                    solana.PublicKey
	Owner2                    solana.PublicKey
	ShdwPayer                 solana.PublicKey
	AccountCounterSeed        uint32
	TotalCostOfCurrentStorage uint64
	TotalFeesPaid             uint64
	CreationTime              uint32
	CreationEpoch             uint32
	LastFeeEpoch              uint32
	Identifier                string
}

// storageAccountV2 is the Borsh layout of StorageAccountV2.
type storageAccountV2 struct {
	Immutable          bool
	ToBeDeleted        bool
	DeleteRequestEpoch uint32
	Storage            uint64
	Owner1             solana.PublicKey
	AccountCounterSeed uint32
	CreationTime       uint32
	CreationEpoch      uint32
	LastFeeEpoch       uint32
	Identifier         string
}

// Offsets of owner_1 in each layout, discriminator included. Used for
// getProgramAccounts memcmp filters.
const (
	OwnerOffsetV1 = DiscriminatorLength + 1 + 4 + 4 + 1 + 1 + 4 + 8 + 8
	OwnerOffsetV2 = DiscriminatorLength + 1 + 1 + 4 + 8
)

type userInfo struct {
	AccountCounter  uint32
	DelCounter      uint32
	AgreedToTos     bool
	LifetimeBadCsam bool
}

type unstakeInfo struct {
	TimeLastUnstaked  int64
	EpochLastUnstaked uint64
	Unstaker          solana.PublicKey
}

type storageConfig struct {
	ShadesPerGib         uint64
	StorageAvailable     bin.Uint128
	TokenAccount         solana.PublicKey
	Admin2               solana.PublicKey
	Uploader             solana.PublicKey
	MutableFeeStartEpoch *uint32 `bin:"optional"`
	ShadesPerGibPerEpoch uint64
	CrankBps             uint16
	MaxAccountSize       uint64
	MinAccountSize       uint64
}

// decodeAnchor checks the discriminator of name and Borsh-decodes the
// remainder into v.
func decodeAnchor(data []byte, name string, v interface{}) error {
	if len(data) < DiscriminatorLength {
		return fmt.Errorf("account data too short: %d bytes", len(data))
	}
	want := AccountDiscriminator(name)
	if !bytes.Equal(data[:DiscriminatorLength], want[:]) {
		return fmt.Errorf("%w: expected %s", ErrUnknownAccount, name)
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLength:]).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// encodeAnchor is the inverse of decodeAnchor.
func encodeAnchor(name string, v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	disc := AccountDiscriminator(name)
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StorageAccountVersion reports the layout of raw storage account data.
func StorageAccountVersion(data []byte) (model.AccountVersion, error) {
	if len(data) < DiscriminatorLength {
		return 0, fmt.Errorf("account data too short: %d bytes", len(data))
	}
	v1 := AccountDiscriminator(accountStorageAccount)
	v2 := AccountDiscriminator(accountStorageAccountV2)
	switch {
	case bytes.Equal(data[:DiscriminatorLength], v1[:]):
		return model.V1, nil
	case bytes.Equal(data[:DiscriminatorLength], v2[:]):
		return model.V2, nil
	}
	return 0, ErrUnknownAccount
}

// DecodeStorageAccount decodes V1 or V2 storage account data into the
// normalized model. Stake is left zero.
func DecodeStorageAccount(address solana.PublicKey, data []byte) (*model.StorageAccount, error) {
	version, err := StorageAccountVersion(data)
	if err != nil {
		return nil, err
	}

	if version == model.V1 {
		var raw storageAccountV1
		if err := decodeAnchor(data, accountStorageAccount, &raw); err != nil {
			return nil, err
		}
		return &model.StorageAccount{
			Address:            address,
			Version:            model.V1,
			Identifier:         raw.Identifier,
			Owner1:             raw.Owner1,
			Owner2:             raw.Owner2,
			Storage:            raw.Storage,
			StorageAvailable:   raw.StorageAvailable,
			Immutable:          raw.Immutable,
			ToBeDeleted:        raw.ToBeDeleted,
			DeleteRequestEpoch: raw.DeleteRequestEpoch,
			AccountCounterSeed: raw.AccountCounterSeed,
			CreationTime:       raw.CreationTime,
			CreationEpoch:      raw.CreationEpoch,
			LastFeeEpoch:       raw.LastFeeEpoch,
		}, nil
	}

	var raw storageAccountV2
	if err := decodeAnchor(data, accountStorageAccountV2, &raw); err != nil {
		return nil, err
	}
	return &model.StorageAccount{
		Address:            address,
		Version:            model.V2,
		Identifier:         raw.Identifier,
		Owner1:             raw.Owner1,
		Storage:            raw.Storage,
		Immutable:          raw.Immutable,
		ToBeDeleted:        raw.ToBeDeleted,
		DeleteRequestEpoch: raw.DeleteRequestEpoch,
		AccountCounterSeed: raw.AccountCounterSeed,
		CreationTime:       raw.CreationTime,
		CreationEpoch:      raw.CreationEpoch,
		LastFeeEpoch:       raw.LastFeeEpoch,
	}, nil
}

// DecodeUserInfo decodes a user-info account.
func DecodeUserInfo(data []byte) (*model.UserInfo, error) {
	var raw userInfo
	if err := decodeAnchor(data, accountUserInfo, &raw); err != nil {
		return nil, err
	}
	return &model.UserInfo{
		AccountCounter:  raw.AccountCounter,
		DelCounter:      raw.DelCounter,
		AgreedToTos:     raw.AgreedToTos,
		LifetimeBadCsam: raw.LifetimeBadCsam,
	}, nil
}

// DecodeUnstakeInfo decodes an unstake-info account.
func DecodeUnstakeInfo(data []byte) (*model.UnstakeInfo, error) {
	var raw unstakeInfo
	if err := decodeAnchor(data, accountUnstakeInfo, &raw); err != nil {
		return nil, err
	}
	return &model.UnstakeInfo{
		TimeLastUnstaked:  raw.TimeLastUnstaked,
		EpochLastUnstaked: raw.EpochLastUnstaked,
		Unstaker:          raw.Unstaker,
	}, nil
}

// DecodeStorageConfig decodes the program storage config account.
func DecodeStorageConfig(data []byte) (*model.StorageConfig, error) {
	var raw storageConfig
	if err := decodeAnchor(data, accountStorageConfig, &raw); err != nil {
		return nil, err
	}
	return &model.StorageConfig{
		ShadesPerGib:         raw.ShadesPerGib,
		StorageAvailable:     decimal.NewFromBigInt(raw.StorageAvailable.BigInt(), 0),
		TokenAccount:         raw.TokenAccount,
		Admin2:               raw.Admin2,
		Uploader:             raw.Uploader,
		MutableFeeStartEpoch: raw.MutableFeeStartEpoch,
		ShadesPerGibPerEpoch: raw.ShadesPerGibPerEpoch,
		CrankBps:             raw.CrankBps,
		MaxAccountSize:       raw.MaxAccountSize,
		MinAccountSize:       raw.MinAccountSize,
	}, nil
}

// EncodeStorageAccount is the inverse of DecodeStorageAccount. Fields that
// the normalized model does not carry are written as zero.
func EncodeStorageAccount(a *model.StorageAccount) ([]byte, error) {
	switch a.Version {
	case model.V1:
		return encodeAnchor(accountStorageAccount, storageAccountV1{
			Immutable:          a.Immutable,
			ToBeDeleted:        a.ToBeDeleted,
			DeleteRequestEpoch: a.DeleteRequestEpoch,
			Storage:            a.Storage,
			StorageAvailable:   a.StorageAvailable,
			Owner1:             a.Owner1,
			Owner2:             a.Owner2,
			AccountCounterSeed: a.AccountCounterSeed,
			CreationTime:       a.CreationTime,
			CreationEpoch:      a.CreationEpoch,
			LastFeeEpoch:       a.LastFeeEpoch,
			Identifier:         a.Identifier,
		})
	case model.V2:
		return encodeAnchor(accountStorageAccountV2, storageAccountV2{
			Immutable:          a.Immutable,
			ToBeDeleted:        a.ToBeDeleted,
			DeleteRequestEpoch: a.DeleteRequestEpoch,
			Storage:            a.Storage,
			Owner1:             a.Owner1,
			AccountCounterSeed: a.AccountCounterSeed,
			CreationTime:       a.CreationTime,
			CreationEpoch:      a.CreationEpoch,
			LastFeeEpoch:       a.LastFeeEpoch,
			Identifier:         a.Identifier,
		})
	}
	return nil, fmt.Errorf("unsupported account version %d", a.Version)
}

// EncodeUserInfo is the inverse of DecodeUserInfo.
func EncodeUserInfo(u *model.UserInfo) ([]byte, error) {
	return encodeAnchor(accountUserInfo, userInfo{
		AccountCounter:  u.AccountCounter,
		DelCounter:      u.DelCounter,
		AgreedToTos:     u.AgreedToTos,
		LifetimeBadCsam: u.LifetimeBadCsam,
	})
}

// EncodeUnstakeInfo is the inverse of DecodeUnstakeInfo.
func EncodeUnstakeInfo(u *model.UnstakeInfo) ([]byte, error) {
	return encodeAnchor(accountUnstakeInfo, unstakeInfo{
		TimeLastUnstaked:  u.TimeLastUnstaked,
		EpochLastUnstaked: u.EpochLastUnstaked,
		Unstaker:          u.Unstaker,
	})
}

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// EncodeStorageConfig is the inverse of DecodeStorageConfig.
func EncodeStorageConfig(s *model.StorageConfig) ([]byte, error) {
	available := s.StorageAvailable.BigInt()
	if available.Sign() < 0 || available.BitLen() > 128 {
		return nil, fmt.Errorf("storage available %s does not fit in u128", s.StorageAvailable)
	}
	u128 := bin.Uint128{
		Lo: new(big.Int).And(available, maxUint64).Uint64(),
		Hi: new(big.Int).Rsh(available, 64).Uint64(),
	}
	return encodeAnchor(accountStorageConfig, storageConfig{
		ShadesPerGib:         s.ShadesPerGib,
		StorageAvailable:     u128,
		TokenAccount:         s.TokenAccount,
		Admin2:               s.Admin2,
		Uploader:             s.Uploader,
		MutableFeeStartEpoch: s.MutableFeeStartEpoch,
		ShadesPerGibPerEpoch: s.ShadesPerGibPerEpoch,
		CrankBps:             s.CrankBps,
		MaxAccountSize:       s.MaxAccountSize,
		MinAccountSize:       s.MinAccountSize,
	})
}
