package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/blockchain"
	"github.com/shdw-drive/shdw-drive-go/pkg/config"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"go.uber.org/zap"
)

// Storage-node routes.
const (
	RouteUpload        = "/upload"
	RouteEdit          = "/edit"
	RouteDeleteFile    = "/delete-file"
	RouteListObjects   = "/list-objects"
	RouteObjectData    = "/get-object-data"
	RouteAccountInfo   = "/storage-account-info"
	RouteCreateAccount = "/storage-account"
	RouteAddStorage    = "/add-storage"
	RouteShrinkStorage = "/shrink-storage"
	RouteMakeImmutable = "/make-immutable"
)

// HTTPError is returned when the storage node answers with a non-2xx status.
type HTTPError struct {
	Route  string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("storage node %s: %d %s: %s", e.Route, e.Status, http.StatusText(e.Status), strings.TrimSpace(e.Body))
}

// Client talks to a storage node over HTTP.
type Client struct {
	// Endpoint is the base URL of the storage node, without a trailing slash.
	Endpoint string
	// HTTP is the underlying client. Per-call deadlines come from Timeouts.
	HTTP     *http.Client
	Timeouts config.Timeouts
}

// NewClient returns a Client for endpoint using http.DefaultClient.
func NewClient(endpoint string, timeouts config.Timeouts) *Client {
	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		HTTP:     http.DefaultClient,
		Timeouts: timeouts.WithDefaults(),
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// DeleteFile asks the node to delete the object at location. message must be
// signed over blockchain.DeleteMessage.
func (c *Client) DeleteFile(ctx context.Context, signer solana.PublicKey, message, location string) (*model.DeleteFileResponse, error) {
	body := map[string]string{
		"signer":   signer.String(),
		"message":  message,
		"location": location,
	}
	var resp model.DeleteFileResponse
	if err := c.postJSON(ctx, RouteDeleteFile, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListObjects returns the names of every object stored in account.
func (c *Client) ListObjects(ctx context.Context, account solana.PublicKey) (*model.ListObjectsResponse, error) {
	var resp model.ListObjectsResponse
	if err := c.postJSON(ctx, RouteListObjects, map[string]string{"storageAccount": account.String()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ObjectData returns the on-chain accounts backing the object at location.
func (c *Client) ObjectData(ctx context.Context, location string) (*model.FileDataResponse, error) {
	var resp model.FileDataResponse
	if err := c.postJSON(ctx, RouteObjectData, map[string]string{"location": location}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AccountInfo returns the node's view of account, including current usage.
func (c *Client) AccountInfo(ctx context.Context, account solana.PublicKey) (*model.StorageAccountInfo, error) {
	var resp model.StorageAccountInfo
	if err := c.postJSON(ctx, RouteAccountInfo, map[string]string{"storage_account": account.String()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitTransaction posts a partially signed transaction to route. The node
// adds the uploader signature, submits it and answers with a JSON document
// decoded into out.
func (c *Client) SubmitTransaction(ctx context.Context, route string, tx *solana.Transaction, out interface{}) error {
	encoded, err := blockchain.EncodeTransaction(tx)
	if err != nil {
		return err
	}
	return c.postJSON(ctx, route, map[string]string{"transaction": encoded}, out)
}

// Ping reports whether the node answers HTTP at all. Any status counts as
// reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, c.Timeouts.HTTP)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) postJSON(ctx context.Context, route string, body, out interface{}) error {
	ctx, cancel := withTimeout(ctx, c.Timeouts.HTTP)
	defer cancel()

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", route, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+route, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, route, out)
}

func (c *Client) do(req *http.Request, route string, out interface{}) error {
	zap.L().Debug("Calling storage node", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.httpClient().Do(req)
	if err != nil {
		zap.L().Error("Storage node request failed", zap.String("route", route), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", route, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{Route: route, Status: resp.StatusCode, Body: string(body)}
		zap.L().Error("Storage node returned an error", zap.String("route", route), zap.Int("status", resp.StatusCode), zap.String("body", string(body)))
		return httpErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	return nil
}
