// Package storage provides the HTTP client for storage nodes, which hold the
// bytes of every object while the program on chain keeps the accounting.
//
// # Storage Client
//
//	import "github.com/shdw-drive/shdw-drive-go/pkg/storage"
//
//	client := storage.NewClient("https://shadow-storage.genesysgo.net", cfg.Timeouts)
//
// The SDK creates a storage client from Config.StorageEndpoint.
//
// # Authentication
//
// Mutating requests carry the wallet public key ("signer") and a base58
// ed25519 signature ("message") over a text built by the blockchain
// package. The node verifies the signature against the storage account
// owner:
//
//	msg := blockchain.UploadMessage(account, blockchain.HashFileNames(names))
//	sig, _ := blockchain.SignMessage(key, msg)
//	resp, err := client.Upload(ctx, account, owner, sig, files)
//
// # Uploads
//
// Upload and Edit send multipart/form-data. Every file becomes a "file" part
// whose header carries the object name and content type. The form is streamed
// from disk through a pipe; payloads are checked against FileSizeLimit before
// the request starts and fail with ErrFileTooLarge.
//
// # Co-signed Transactions
//
// Creating, resizing and freezing an account needs the node's uploader key.
// The wallet partially signs and SubmitTransaction posts the transaction to
// the matching route (RouteCreateAccount, RouteAddStorage, RouteShrinkStorage,
// RouteMakeImmutable).
//
// # Errors
//
// Non-2xx answers are returned as *HTTPError with the route, status code and
// raw body:
//
//	var httpErr *storage.HTTPError
//	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
//		// ...
//	}
//
// # Timeouts
//
// Multipart uploads and object downloads are bounded by Timeouts.Upload,
// every other call by Timeouts.HTTP. The caller's context is honored as well.
package storage
