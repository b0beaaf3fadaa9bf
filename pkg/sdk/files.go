package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/blockchain"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"github.com/shdw-drive/shdw-drive-go/pkg/storage"
	"go.uber.org/zap"
)

// BatchSize is the largest number of files sent in one upload request.
const BatchSize = 5

// UploadFile stores file in key under file.Name.
func (c *Client) UploadFile(ctx context.Context, key solana.PublicKey, file *model.File) (*model.UploadResponse, error) {
	return c.upload(ctx, key, []*model.File{file})
}

func (c *Client) upload(ctx context.Context, key solana.PublicKey, files []*model.File) (*model.UploadResponse, error) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	sig, err := blockchain.SignMessage(c.key, blockchain.UploadMessage(key, blockchain.HashFileNames(names)))
	if err != nil {
		return nil, err
	}
	resp, err := c.store.Upload(ctx, key, c.wallet, sig, files)
	if err != nil {
		zap.L().Error("Upload failed", zap.String("storage_account", key.String()), zap.Strings("files", names), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// UploadMultipleFiles stores files in key. Names already present in the
// account are reported as AlreadyExists and not sent. Invalid names, repeats
// of an earlier name and oversize files get an Error status. The rest go out
// in batches of at most BatchSize; a failed batch marks each of its files
// with the error. Results follow the order of files.
//
// If ctx ends, the remaining files are marked with its error and ctx.Err()
// is returned along with the partial results.
func (c *Client) UploadMultipleFiles(ctx context.Context, key solana.PublicKey, files []*model.File) ([]model.BatchUploadResponse, error) {
	listing, err := c.store.ListObjects(ctx, key)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(listing.Keys))
	for _, k := range listing.Keys {
		existing[k] = struct{}{}
	}

	results := make([]model.BatchUploadResponse, len(files))
	seen := make(map[string]struct{}, len(files))
	var pending []int
	for i, f := range files {
		results[i].FileName = f.Name
		if err := storage.CheckName(f.Name); err != nil {
			results[i].Status = model.StatusError(err.Error())
			continue
		}
		if _, dup := seen[f.Name]; dup {
			results[i].Status = model.StatusError(fmt.Sprintf("%v: %q appears more than once", ErrInvalidFileName, f.Name))
			continue
		}
		seen[f.Name] = struct{}{}
		if _, ok := existing[f.Name]; ok {
			results[i].Status = model.StatusAlreadyExists()
			continue
		}
		if _, err := storage.CheckSize(f); err != nil {
			results[i].Status = model.StatusError(err.Error())
			continue
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += BatchSize {
		if err := ctx.Err(); err != nil {
			markFailed(results, pending[start:], err)
			return results, err
		}
		end := start + BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		batchFiles := make([]*model.File, len(batch))
		for j, idx := range batch {
			batchFiles[j] = files[idx]
		}

		resp, err := c.upload(ctx, key, batchFiles)
		if err != nil {
			markFailed(results, batch, err)
			if ctxErr := ctx.Err(); ctxErr != nil {
				markFailed(results, pending[end:], ctxErr)
				return results, ctxErr
			}
			continue
		}
		c.applyBatch(key, resp, batch, results)
	}
	return results, nil
}

func markFailed(results []model.BatchUploadResponse, indexes []int, err error) {
	for _, idx := range indexes {
		results[idx].Status = model.StatusError(err.Error())
	}
}

// applyBatch fills the results of one uploaded batch from the node's answer.
func (c *Client) applyBatch(key solana.PublicKey, resp *model.UploadResponse, batch []int, results []model.BatchUploadResponse) {
	failed := make(map[string]string, len(resp.UploadErrors))
	for _, ue := range resp.UploadErrors {
		failed[ue.File] = ue.Error
	}

	var txSig *string
	if resp.Message != "" {
		msg := resp.Message
		txSig = &msg
	}

	for _, idx := range batch {
		name := results[idx].FileName
		if msg, ok := failed[name]; ok {
			results[idx].Status = model.StatusError(msg)
			continue
		}
		location := findLocation(resp.FinalizedLocations, name)
		if location == "" {
			location = storage.ObjectURL(c.cfg.ObjectEndpoint, key, name)
		}
		results[idx].Status = model.StatusUploaded()
		results[idx].Location = &location
		results[idx].TransactionSignature = txSig
	}
}

func findLocation(locations []string, name string) string {
	escaped := "/" + url.PathEscape(name)
	for _, loc := range locations {
		if strings.HasSuffix(loc, "/"+name) || strings.HasSuffix(loc, escaped) {
			return loc
		}
	}
	return ""
}

// EditFile replaces the object at location with file.
func (c *Client) EditFile(ctx context.Context, key solana.PublicKey, location string, file *model.File) (*model.EditFileResponse, error) {
	hash, err := file.SHA256()
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", file.Name, err)
	}
	sig, err := blockchain.SignMessage(c.key, blockchain.EditMessage(key, file.Name, hash))
	if err != nil {
		return nil, err
	}
	resp, err := c.store.Edit(ctx, key, c.wallet, sig, location, file)
	if err != nil {
		zap.L().Error("Edit failed", zap.String("storage_account", key.String()), zap.String("location", location), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// DeleteFile asks the storage node to delete the object at location.
func (c *Client) DeleteFile(ctx context.Context, key solana.PublicKey, location string) (*model.DeleteFileResponse, error) {
	sig, err := blockchain.SignMessage(c.key, blockchain.DeleteMessage(key, location))
	if err != nil {
		return nil, err
	}
	resp, err := c.store.DeleteFile(ctx, c.wallet, sig, location)
	if err != nil {
		zap.L().Error("Delete failed", zap.String("storage_account", key.String()), zap.String("location", location), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// CancelDeleteFile unmarks the file at location for deletion. It must run before
// the end of the epoch in which the file was deleted.
func (c *Client) CancelDeleteFile(ctx context.Context, key solana.PublicKey, location string) (*model.TxResponse, error) {
	if _, err := c.ownedAccount(ctx, key); err != nil {
		return nil, err
	}

	data, err := c.store.ObjectData(ctx, location)
	if err != nil {
		return nil, err
	}
	fileKey, err := solana.PublicKeyFromBase58(data.FileData.FileAccountPubkey)
	if err != nil {
		return nil, fmt.Errorf("invalid file account %q: %w", data.FileData.FileAccountPubkey, err)
	}
	owner, err := solana.PublicKeyFromBase58(data.FileData.OwnerAccountPubkey)
	if err != nil {
		return nil, fmt.Errorf("invalid file owner %q: %w", data.FileData.OwnerAccountPubkey, err)
	}
	if !owner.Equals(c.wallet) {
		return nil, fmt.Errorf("%w: %s", ErrNotFileOwner, location)
	}

	ix, err := blockchain.UnmarkDeleteFileInstruction(key, fileKey, c.wallet)
	if err != nil {
		return nil, err
	}
	resp, err := c.signAndSend(ctx, ix)
	if err != nil {
		zap.L().Error("Failed to cancel file deletion", zap.String("location", location), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ListObjects returns the names of the objects stored in key.
func (c *Client) ListObjects(ctx context.Context, key solana.PublicKey) ([]string, error) {
	resp, err := c.store.ListObjects(ctx, key)
	if err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

// GetObjectData returns the accounts backing the object at location.
func (c *Client) GetObjectData(ctx context.Context, location string) (*model.FileDataResponse, error) {
	return c.store.ObjectData(ctx, location)
}

// GetObject downloads the public object name from key.
func (c *Client) GetObject(ctx context.Context, key solana.PublicKey, name string) ([]byte, error) {
	return c.store.GetObject(ctx, c.cfg.ObjectEndpoint, key, name)
}
