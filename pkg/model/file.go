package model

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"os"

	"github.com/minio/sha256-simd"
)

const hashBufferSize = 4096

// DefaultContentType is used when a File has no content type.
const DefaultContentType = "application/octet-stream"

// File pairs an object name and content type with a payload that is either a
// filesystem path or an in-memory buffer. Paths are opened only when the file
// is hashed or uploaded.
type File struct {
	Name        string
	ContentType string
	path        string
	data        []byte
	inMemory    bool
}

// NewFileFromPath references a file on disk.
func NewFileFromPath(name, contentType, path string) *File {
	return &File{Name: name, ContentType: contentType, path: path}
}

// NewFileFromBytes wraps an in-memory payload. The slice is not copied.
func NewFileFromBytes(name, contentType string, data []byte) *File {
	return &File{Name: name, ContentType: contentType, data: data, inMemory: true}
}

// MimeType returns ContentType or DefaultContentType when unset.
func (f *File) MimeType() string {
	if f.ContentType == "" {
		return DefaultContentType
	}
	return f.ContentType
}

// Open returns a reader over the payload together with its size. Callers
// must close the reader.
func (f *File) Open() (io.ReadCloser, int64, error) {
	if f.inMemory {
		return io.NopCloser(bytes.NewReader(f.data)), int64(len(f.data)), nil
	}
	if f.path == "" {
		return nil, 0, errors.New("file has no payload")
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, 0, err
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, 0, err
	}
	return fh, info.Size(), nil
}

// SHA256 returns the hex-encoded SHA-256 digest of the payload. File
// payloads are streamed in fixed-size reads.
func (f *File) SHA256() (string, error) {
	if f.inMemory {
		sum := sha256.Sum256(f.data)
		return hex.EncodeToString(sum[:]), nil
	}

	r, _, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	h := sha256.New()
	buf := make([]byte, hashBufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
