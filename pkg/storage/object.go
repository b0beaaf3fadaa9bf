package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ObjectURL returns the public location of name in account, as served by
// the object endpoint.
func ObjectURL(objectEndpoint string, account solana.PublicKey, name string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(objectEndpoint, "/"), account, url.PathEscape(name))
}

// GetObject downloads the public object name from account.
func (c *Client) GetObject(ctx context.Context, objectEndpoint string, account solana.PublicKey, name string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, c.Timeouts.Upload)
	defer cancel()

	location := ObjectURL(objectEndpoint, account, name)
	zap.L().Debug("Getting object", zap.String("location", location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Route: location, Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
