package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"go.uber.org/zap"
)

// FileSizeLimit is the largest object a storage node accepts (1 GiB).
const FileSizeLimit int64 = 1 << 30

var (
	// ErrFileTooLarge is returned for payloads above FileSizeLimit.
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrInvalidFileName is returned for names the comma-joined fileNames
	// field cannot carry unambiguously: empty, containing a comma, or
	// repeated within one request.
	ErrInvalidFileName = errors.New("invalid file name")
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type formField struct {
	name, value string
}

// CheckSize returns the payload size of f, or ErrFileTooLarge.
func CheckSize(f *model.File) (int64, error) {
	r, size, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", f.Name, err)
	}
	_ = r.Close()
	if size > FileSizeLimit {
		return size, fmt.Errorf("%w: %s is %s, limit is %s", ErrFileTooLarge, f.Name,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(FileSizeLimit)))
	}
	return size, nil
}

// CheckName rejects names that would split differently once joined with
// commas.
func CheckName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFileName)
	}
	if strings.Contains(name, ",") {
		return fmt.Errorf("%w: %q contains a comma", ErrInvalidFileName, name)
	}
	return nil
}

// WritePart writes f to w as a form-data part named field, with the file
// name and content type in the part header.
func WritePart(w *multipart.Writer, field string, f *model.File) error {
	r, size, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer r.Close()
	if size > FileSizeLimit {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", f.MimeType())
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}

// Upload sends files to account in one multipart request. message must be
// signed over blockchain.UploadMessage for the same file names. Every name is
// checked with CheckName and for repeats, and every file against
// FileSizeLimit, before anything is sent.
func (c *Client) Upload(ctx context.Context, account, signer solana.PublicKey, message string, files []*model.File) (*model.UploadResponse, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to upload")
	}
	names := make([]string, len(files))
	seen := make(map[string]struct{}, len(files))
	for i, f := range files {
		if err := CheckName(f.Name); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q appears more than once", ErrInvalidFileName, f.Name)
		}
		seen[f.Name] = struct{}{}
		names[i] = f.Name
	}

	var total int64
	for _, f := range files {
		size, err := CheckSize(f)
		if err != nil {
			return nil, err
		}
		total += size
	}
	zap.L().Debug("Uploading files",
		zap.String("storage_account", account.String()),
		zap.Strings("files", names),
		zap.String("size", humanize.IBytes(uint64(total))))

	fields := []formField{
		{"message", message},
		{"signer", signer.String()},
		{"storage_account", account.String()},
		{"fileNames", strings.Join(names, ",")},
	}
	var resp model.UploadResponse
	if err := c.postMultipart(ctx, RouteUpload, files, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Edit replaces the object at url with file. message must be signed over
// blockchain.EditMessage.
func (c *Client) Edit(ctx context.Context, account, signer solana.PublicKey, message, url string, file *model.File) (*model.EditFileResponse, error) {
	if err := CheckName(file.Name); err != nil {
		return nil, err
	}
	if _, err := CheckSize(file); err != nil {
		return nil, err
	}
	fields := []formField{
		{"signer", signer.String()},
		{"message", message},
		{"storage_account", account.String()},
		{"url", url},
	}
	var resp model.EditFileResponse
	if err := c.postMultipart(ctx, RouteEdit, []*model.File{file}, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// postMultipart streams the form through a pipe so payloads are never held
// in memory as a whole.
func (c *Client) postMultipart(ctx context.Context, route string, files []*model.File, fields []formField, out interface{}) error {
	ctx, cancel := withTimeout(ctx, c.Timeouts.Upload)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, files, fields))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+route, pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, route, out)
}

func writeForm(mw *multipart.Writer, files []*model.File, fields []formField) error {
	for _, f := range files {
		if err := WritePart(mw, "file", f); err != nil {
			return err
		}
	}
	for _, field := range fields {
		if err := mw.WriteField(field.name, field.value); err != nil {
			return err
		}
	}
	return mw.Close()
}
