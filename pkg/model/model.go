// Package model defines the data structures exchanged with the storage network:
// files to upload, decoded on-chain accounts, and the JSON responses returned
// by storage nodes. These structs mirror the remote API and program accounts;
// none of them is cached or mutated by the SDK beyond the call in flight.
package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// TxResponse carries the signature of a transaction the SDK submitted itself.
type TxResponse struct {
	TxID string `json:"txid"`
}

// CreateStorageAccountResponse is returned by the storage node after it
// co-signed and submitted an account creation transaction.
type CreateStorageAccountResponse struct {
	ShdwBucket           *string `json:"shdw_bucket,omitempty"`
	TransactionSignature string  `json:"transaction_signature"`
}

// StorageResponse is returned by co-signed storage changes (add, reduce,
// make immutable).
type StorageResponse struct {
	Message              string  `json:"message"`
	TransactionSignature string  `json:"transaction_signature"`
	Error                *string `json:"error,omitempty"`
}

// UploadResponse reports the outcome of a multipart upload request.
type UploadResponse struct {
	FinalizedLocations []string      `json:"finalized_locations"`
	Message            string        `json:"message"`
	UploadErrors       []UploadError `json:"upload_errors"`
}

// UploadError describes a single file the node refused to store.
type UploadError struct {
	File           string `json:"file"`
	StorageAccount string `json:"storage_account"`
	Error          string `json:"error"`
}

// EditFileResponse is returned after replacing an existing file.
type EditFileResponse struct {
	FinalizedLocation string  `json:"finalized_location"`
	Error             *string `json:"error,omitempty"`
}

// DeleteFileResponse is returned after a file was marked for deletion.
type DeleteFileResponse struct {
	Message string  `json:"message"`
	Error   *string `json:"error,omitempty"`
}

// FileDataResponse wraps FileData as returned by get-object-data.
type FileDataResponse struct {
	FileData FileData `json:"file_data"`
}

// FileData links a stored object to its on-chain accounts. Keys are kebab-case
// on the wire.
type FileData struct {
	FileAccountPubkey    string `json:"file-account-pubkey"`
	OwnerAccountPubkey   string `json:"owner-account-pubkey"`
	StorageAccountPubkey string `json:"storage-account-pubkey"`
}

// ListObjectsResponse lists the object names stored in an account.
type ListObjectsResponse struct {
	Keys []string `json:"keys"`
}

// StorageAccountInfo is the node-side view of an account's usage.
type StorageAccountInfo struct {
	StorageAccount string `json:"storage_account"`
	ReservedBytes  uint64 `json:"reserved_bytes"`
	CurrentUsage   uint64 `json:"current_usage"`
	Immutable      bool   `json:"immutable"`
	ToBeDeleted    bool   `json:"to_be_deleted"`
	Owner1         string `json:"owner1"`
	AccountCounter uint32 `json:"account_counter_seed"`
	CreationTime   uint32 `json:"creation_time"`
	CreationEpoch  uint32 `json:"creation_epoch"`
	LastFeeEpoch   uint32 `json:"last_fee_epoch"`
	Identifier     string `json:"identifier"`
	Version        string `json:"version"`
}

// BatchUploadStatus is the per-file result of UploadMultipleFiles.
type BatchUploadStatus struct {
	Kind  BatchUploadKind
	Error string
}

// BatchUploadKind enumerates the batch upload outcomes.
type BatchUploadKind int

const (
	// Uploaded means the node stored the file.
	Uploaded BatchUploadKind = iota
	// AlreadyExists means the account already held an object of that name;
	// the file was not sent.
	AlreadyExists
	// UploadFailed means the file was rejected locally or by the node. The
	// reason is in BatchUploadStatus.Error.
	UploadFailed
)

// StatusUploaded, StatusAlreadyExists and StatusError build BatchUploadStatus values.
func StatusUploaded() BatchUploadStatus      { return BatchUploadStatus{Kind: Uploaded} }
func StatusAlreadyExists() BatchUploadStatus { return BatchUploadStatus{Kind: AlreadyExists} }
func StatusError(msg string) BatchUploadStatus {
	return BatchUploadStatus{Kind: UploadFailed, Error: msg}
}

func (s BatchUploadStatus) String() string {
	switch s.Kind {
	case Uploaded:
		return "Uploaded"
	case AlreadyExists:
		return "AlreadyExists"
	default:
		return fmt.Sprintf("Error(%s)", s.Error)
	}
}

// MarshalJSON encodes the status as "Uploaded", "AlreadyExists" or
// {"Error": "<message>"}.
func (s BatchUploadStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case Uploaded:
		return json.Marshal("Uploaded")
	case AlreadyExists:
		return json.Marshal("AlreadyExists")
	default:
		return json.Marshal(map[string]string{"Error": s.Error})
	}
}

// UnmarshalJSON accepts the encodings produced by MarshalJSON.
func (s *BatchUploadStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		switch name {
		case "Uploaded":
			*s = StatusUploaded()
		case "AlreadyExists":
			*s = StatusAlreadyExists()
		default:
			return fmt.Errorf("unknown batch upload status %q", name)
		}
		return nil
	}

	var tagged map[string]string
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	msg, ok := tagged["Error"]
	if !ok {
		return errors.New("batch upload status: missing Error variant")
	}
	*s = StatusError(msg)
	return nil
}

// BatchUploadResponse is the per-file record returned by UploadMultipleFiles.
type BatchUploadResponse struct {
	FileName             string            `json:"file_name"`
	Status               BatchUploadStatus `json:"status"`
	Location             *string           `json:"location,omitempty"`
	TransactionSignature *string           `json:"transaction_signature,omitempty"`
}

// AccountVersion distinguishes the two on-chain storage account layouts.
type AccountVersion int

const (
	V1 AccountVersion = 1
	V2 AccountVersion = 2
)

func (v AccountVersion) String() string {
	return fmt.Sprintf("V%d", int(v))
}

// StorageAccount is a normalized, read-only view of an on-chain storage
// account of either layout plus its current stake balance.
type StorageAccount struct {
	Address            solana.PublicKey
	Version            AccountVersion
	Identifier         string
	Owner1             solana.PublicKey
	Owner2             solana.PublicKey // zero for V2 accounts
	Storage            uint64
	StorageAvailable   uint64 // V1 only
	Immutable          bool
	ToBeDeleted        bool
	DeleteRequestEpoch uint32
	AccountCounterSeed uint32
	CreationTime       uint32
	CreationEpoch      uint32
	LastFeeEpoch       uint32
	// Stake is the SHDW balance of the account's stake vault.
	Stake              decimal.Decimal
}

// IsOwner reports whether key owns the account. Only owner_1 signs account
// instructions; owner_2 of V1 accounts is not accepted.
func (a *StorageAccount) IsOwner(key solana.PublicKey) bool {
	return a.Owner1.Equals(key)
}

// UserInfo mirrors the per-wallet user-info account.
type UserInfo struct {
	AccountCounter  uint32
	DelCounter      uint32
	AgreedToTos     bool
	LifetimeBadCsam bool
}

// UnstakeInfo mirrors the unstake-info account created by storage reductions.
type UnstakeInfo struct {
	TimeLastUnstaked  int64
	EpochLastUnstaked uint64
	Unstaker          solana.PublicKey
}

// StorageConfig mirrors the program-wide configuration account.
type StorageConfig struct {
	ShadesPerGib         uint64
	StorageAvailable     decimal.Decimal
	TokenAccount         solana.PublicKey
	Admin2               solana.PublicKey
	Uploader             solana.PublicKey
	MutableFeeStartEpoch *uint32
	ShadesPerGibPerEpoch uint64
	CrankBps             uint16
	MaxAccountSize       uint64
	MinAccountSize       uint64
}
