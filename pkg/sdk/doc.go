// Package sdk provides the high-level entry point for storing files on the
// storage network.
//
// The SDK hides the split between the program on chain, which accounts for
// reserved storage and stake, and the storage nodes that hold the bytes. A
// single wallet key signs both the transactions and the node requests.
//
// # Quick Start
//
//	import (
//		"github.com/shdw-drive/shdw-drive-go/pkg/config"
//		"github.com/shdw-drive/shdw-drive-go/pkg/model"
//		"github.com/shdw-drive/shdw-drive-go/pkg/sdk"
//	)
//
//	func main() {
//		cfg := &config.Config{
//			Network:     config.Mainnet,
//			KeypairPath: "keypair.json",
//		}
//
//		client, err := sdk.NewClient(ctx, cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer client.Close()
//
//		created, err := client.CreateStorageAccount(ctx, "my-bucket", 10<<20)
//		if err != nil {
//			log.Fatal(err)
//		}
//		account := solana.MustPublicKeyFromBase58(*created.ShdwBucket)
//
//		file := model.NewFileFromPath("photo.jpg", "image/jpeg", "./photo.jpg")
//		resp, err := client.UploadFile(ctx, account, file)
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(resp.FinalizedLocations)
//	}
//
// # Architecture
//
// The SDK coordinates three subsystems:
//
//   - blockchain: JSON-RPC reads, instruction building and signing
//   - storage: the storage-node HTTP API
//   - config: endpoints, key source and timeouts
//
// # Storage Accounts
//
//   - CreateStorageAccount: reserve storage; the node co-signs
//   - GetStorageAccount / GetStorageAccounts: read accounts of either layout
//   - AddStorage / ReduceStorage: stake or unstake; the node co-signs
//   - ClaimStake: withdraw stake released by ReduceStorage
//   - DeleteStorageAccount / CancelDeleteStorageAccount: deletion happens at
//     the end of the epoch and can be undone until then
//   - MakeStorageImmutable: freeze an account permanently
//
// Operations on an account first load it and check that the wallet owns it
// (ErrNotAccountOwner). Mutating an immutable account fails with
// ErrAccountImmutable.
//
// # Files
//
//   - UploadFile / UploadMultipleFiles: multipart uploads, batches of BatchSize
//   - EditFile: replace an object in place
//   - DeleteFile / CancelDeleteFile
//   - ListObjects / GetObjectData / GetObject
//
// UploadMultipleFiles never fails for a single file: each result carries
// Uploaded, AlreadyExists or an Error status.
//
// # Error Handling
//
// Domain conditions are sentinel errors, matched with errors.Is:
//
//	_, err := client.DeleteStorageAccount(ctx, account)
//	switch {
//	case errors.Is(err, sdk.ErrAlreadyMarkedForDeletion):
//		// nothing to do
//	case errors.Is(err, sdk.ErrAccountImmutable):
//		return fmt.Errorf("account %s is frozen", account)
//	}
//
// Storage-node failures are *storage.HTTPError; failed transactions wrap
// blockchain.ErrTransactionFailed.
//
// # Logging
//
// The package installs a console zap logger at Info level in init. Config.Debug
// switches it to Debug. Replace it with zap.ReplaceGlobals to customize.
//
// # Thread Safety
//
// Client holds no mutable state after construction and is safe for
// concurrent use.
package sdk
