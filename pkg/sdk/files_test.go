package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/blockchain"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"github.com/shdw-drive/shdw-drive-go/pkg/storage"
)

// verifyMessage checks that sig is the wallet's signature over want.
func verifyMessage(t *testing.T, h *harness, sig, want string) {
	t.Helper()
	s, err := solana.SignatureFromBase58(sig)
	if err != nil {
		t.Errorf("signature is not base58: %v", err)
		return
	}
	if !s.Verify(h.wallet.PublicKey(), []byte(want)) {
		t.Errorf("signature does not cover %q", want)
	}
}

func listObjectsRoute(h *harness, keys ...string) {
	h.route(storage.RouteListObjects, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.ListObjectsResponse{Keys: keys})
	})
}

func TestUploadFile(t *testing.T) {
	h := newHarness(t)
	account := solana.NewWallet().PublicKey()

	h.route(storage.RouteUpload, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got := r.FormValue("signer"); got != h.wallet.PublicKey().String() {
			t.Errorf("unexpected signer %s", got)
		}
		if got := r.FormValue("fileNames"); got != "hello.txt" {
			t.Errorf("unexpected fileNames %s", got)
		}
		want := blockchain.UploadMessage(account, blockchain.HashFileNames([]string{"hello.txt"}))
		verifyMessage(t, h, r.FormValue("message"), want)

		_ = json.NewEncoder(w).Encode(model.UploadResponse{
			FinalizedLocations: []string{"https://cdn.example/" + account.String() + "/hello.txt"},
			Message:            "5sig",
		})
	})

	resp, err := h.client.UploadFile(context.Background(), account, model.NewFileFromBytes("hello.txt", "text/plain", []byte("hi")))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if len(resp.FinalizedLocations) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestUploadFile_NodeError(t *testing.T) {
	h := newHarness(t)
	file := model.NewFileFromBytes("a.txt", "", []byte("a"))

	_, err := h.client.UploadFile(context.Background(), solana.NewWallet().PublicKey(), file)
	var httpErr *storage.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if !errors.Is(storage.ErrFileTooLarge, ErrFileTooLarge) {
		t.Fatal("ErrFileTooLarge must alias the storage sentinel")
	}
}

func TestUploadMultipleFiles(t *testing.T) {
	h := newHarness(t)
	account := solana.NewWallet().PublicKey()
	listObjectsRoute(h, "exists.txt")

	var (
		mu      sync.Mutex
		batches [][]string
	)
	h.route(storage.RouteUpload, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		names := strings.Split(r.FormValue("fileNames"), ",")
		if len(r.MultipartForm.File["file"]) != len(names) {
			t.Errorf("expected %d file parts, got %d", len(names), len(r.MultipartForm.File["file"]))
		}
		want := blockchain.UploadMessage(account, blockchain.HashFileNames(names))
		verifyMessage(t, h, r.FormValue("message"), want)

		mu.Lock()
		batches = append(batches, names)
		n := len(batches)
		mu.Unlock()

		if n == 2 {
			http.Error(w, "node overloaded", http.StatusServiceUnavailable)
			return
		}
		resp := model.UploadResponse{Message: "batch-sig"}
		for _, name := range names {
			if name == "bad.txt" {
				resp.UploadErrors = append(resp.UploadErrors, model.UploadError{File: name, Error: "rejected"})
				continue
			}
			resp.FinalizedLocations = append(resp.FinalizedLocations, "https://cdn.example/"+account.String()+"/"+name)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	names := []string{"a.txt", "exists.txt", "b.txt", "bad.txt", "c.txt", "d.txt", "e.txt", "f.txt"}
	files := make([]*model.File, len(names))
	for i, n := range names {
		files[i] = model.NewFileFromBytes(n, "text/plain", []byte(n))
	}

	results, err := h.client.UploadMultipleFiles(context.Background(), account, files)
	if err != nil {
		t.Fatalf("UploadMultipleFiles: %v", err)
	}
	if len(results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(results))
	}
	for i, r := range results {
		if r.FileName != names[i] {
			t.Fatalf("result %d is %s, want %s", i, r.FileName, names[i])
		}
	}

	if len(batches) != 2 || len(batches[0]) != BatchSize || len(batches[1]) != 2 {
		t.Fatalf("unexpected batches %v", batches)
	}

	byName := map[string]model.BatchUploadResponse{}
	for _, r := range results {
		byName[r.FileName] = r
	}
	if s := byName["exists.txt"].Status; s.Kind != model.AlreadyExists {
		t.Fatalf("exists.txt: unexpected status %s", s)
	}
	a := byName["a.txt"]
	if a.Status.Kind != model.Uploaded || a.Location == nil || !strings.HasSuffix(*a.Location, "/a.txt") {
		t.Fatalf("a.txt: unexpected result %+v", a)
	}
	if a.TransactionSignature == nil || *a.TransactionSignature != "batch-sig" {
		t.Fatalf("a.txt: unexpected signature %v", a.TransactionSignature)
	}
	if s := byName["bad.txt"].Status; s.Kind != model.UploadFailed || s.Error != "rejected" {
		t.Fatalf("bad.txt: unexpected status %s", s)
	}
	for _, n := range []string{"e.txt", "f.txt"} {
		s := byName[n].Status
		if s.Kind != model.UploadFailed || !strings.Contains(s.Error, "node overloaded") {
			t.Fatalf("%s: unexpected status %s", n, s)
		}
	}
}

func TestUploadMultipleFiles_Cancelled(t *testing.T) {
	h := newHarness(t)
	account := solana.NewWallet().PublicKey()
	listObjectsRoute(h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		calls int
	)
	h.route(storage.RouteUpload, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		mu.Lock()
		calls++
		mu.Unlock()
		cancel()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	files := make([]*model.File, 12)
	for i := range files {
		files[i] = model.NewFileFromBytes(fmt.Sprintf("f%02d.txt", i), "text/plain", []byte("x"))
	}

	results, err := h.client.UploadMultipleFiles(ctx, account, files)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected 1 upload request, got %d", calls)
	}
	if len(results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(results))
	}
	for _, r := range results {
		if r.Status.Kind != model.UploadFailed || !strings.Contains(r.Status.Error, "context canceled") {
			t.Fatalf("%s: unexpected status %s", r.FileName, r.Status)
		}
	}
}

func TestUploadMultipleFiles_AmbiguousNames(t *testing.T) {
	h := newHarness(t)
	account := solana.NewWallet().PublicKey()
	listObjectsRoute(h)

	var (
		mu        sync.Mutex
		fileNames []string
		parts     []int
	)
	h.route(storage.RouteUpload, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		names := strings.Split(r.FormValue("fileNames"), ",")
		verifyMessage(t, h, r.FormValue("message"), blockchain.UploadMessage(account, blockchain.HashFileNames(names)))

		mu.Lock()
		fileNames = append(fileNames, r.FormValue("fileNames"))
		parts = append(parts, len(r.MultipartForm.File["file"]))
		mu.Unlock()

		resp := model.UploadResponse{Message: "sig"}
		for _, name := range names {
			resp.FinalizedLocations = append(resp.FinalizedLocations, "https://cdn.example/"+account.String()+"/"+name)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	files := []*model.File{
		model.NewFileFromBytes("a,b", "", []byte("1")),
		model.NewFileFromBytes("dup", "", []byte("2")),
		model.NewFileFromBytes("dup", "", []byte("3")),
		model.NewFileFromBytes("ok.txt", "", []byte("4")),
	}
	results, err := h.client.UploadMultipleFiles(context.Background(), account, files)
	if err != nil {
		t.Fatalf("UploadMultipleFiles: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(fileNames) != 1 || fileNames[0] != "dup,ok.txt" || parts[0] != 2 {
		t.Fatalf("unexpected requests: fileNames=%v parts=%v", fileNames, parts)
	}

	want := []struct {
		kind   model.BatchUploadKind
		reason string
	}{
		{model.UploadFailed, "comma"},
		{model.Uploaded, ""},
		{model.UploadFailed, "more than once"},
		{model.Uploaded, ""},
	}
	for i, w := range want {
		s := results[i].Status
		if s.Kind != w.kind || !strings.Contains(s.Error, w.reason) {
			t.Fatalf("result %d (%s): unexpected status %s", i, results[i].FileName, s)
		}
	}
}

func TestUploadMultipleFiles_ListFails(t *testing.T) {
	h := newHarness(t)
	files := []*model.File{model.NewFileFromBytes("a.txt", "", []byte("a"))}
	if _, err := h.client.UploadMultipleFiles(context.Background(), solana.NewWallet().PublicKey(), files); err == nil {
		t.Fatal("expected error when objects cannot be listed")
	}
}

func TestEditFile(t *testing.T) {
	h := newHarness(t)
	account := solana.NewWallet().PublicKey()
	location := "https://cdn.example/" + account.String() + "/a.txt"
	file := model.NewFileFromBytes("a.txt", "text/plain", []byte("new content"))
	hash, _ := file.SHA256()

	h.route(storage.RouteEdit, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("url") != location {
			t.Errorf("unexpected url %s", r.FormValue("url"))
		}
		verifyMessage(t, h, r.FormValue("message"), blockchain.EditMessage(account, "a.txt", hash))

		fh := r.MultipartForm.File["file"][0]
		f, _ := fh.Open()
		body, _ := io.ReadAll(f)
		_ = f.Close()
		if string(body) != "new content" {
			t.Errorf("unexpected body %q", body)
		}
		_ = json.NewEncoder(w).Encode(model.EditFileResponse{FinalizedLocation: location})
	})

	resp, err := h.client.EditFile(context.Background(), account, location, file)
	if err != nil {
		t.Fatalf("EditFile: %v", err)
	}
	if resp.FinalizedLocation != location {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDeleteFile(t *testing.T) {
	h := newHarness(t)
	account := solana.NewWallet().PublicKey()
	location := "https://cdn.example/" + account.String() + "/a.txt"

	h.route(storage.RouteDeleteFile, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["location"] != location {
			t.Errorf("unexpected location %s", body["location"])
		}
		verifyMessage(t, h, body["message"], blockchain.DeleteMessage(account, location))
		_ = json.NewEncoder(w).Encode(model.DeleteFileResponse{Message: "deleted"})
	})

	resp, err := h.client.DeleteFile(context.Background(), account, location)
	if err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if resp.Message != "deleted" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func objectDataRoute(h *harness, fileKey, owner solana.PublicKey) {
	h.route(storage.RouteObjectData, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.FileDataResponse{FileData: model.FileData{
			FileAccountPubkey:  fileKey.String(),
			OwnerAccountPubkey: owner.String(),
		}})
	})
}

func TestCancelDeleteFile(t *testing.T) {
	h := newHarness(t)
	key := h.storageAccount(model.V1, nil)
	fileKey, _ := blockchain.FileAccount(key, 3)
	objectDataRoute(h, fileKey, h.wallet.PublicKey())

	if _, err := h.client.CancelDeleteFile(context.Background(), key, "https://cdn.example/x/a.txt"); err != nil {
		t.Fatalf("CancelDeleteFile: %v", err)
	}
	sent := h.sentTransactions()
	if len(sent) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(sent))
	}
	instructionName(t, sent[0], "unmark_delete_file")
	var found bool
	for _, k := range sent[0].Message.AccountKeys {
		if k.Equals(fileKey) {
			found = true
		}
	}
	if !found {
		t.Fatal("transaction must reference the file account")
	}
}

func TestCancelDeleteFile_NotOwner(t *testing.T) {
	h := newHarness(t)
	key := h.storageAccount(model.V1, nil)
	fileKey, _ := blockchain.FileAccount(key, 3)
	objectDataRoute(h, fileKey, solana.NewWallet().PublicKey())

	_, err := h.client.CancelDeleteFile(context.Background(), key, "https://cdn.example/x/a.txt")
	if !errors.Is(err, ErrNotFileOwner) {
		t.Fatalf("expected ErrNotFileOwner, got %v", err)
	}
	if len(h.sentTransactions()) != 0 {
		t.Fatal("no transaction must be sent")
	}
}

func TestListObjects(t *testing.T) {
	h := newHarness(t)
	listObjectsRoute(h, "a.txt", "b.txt")

	keys, err := h.client.ListObjects(context.Background(), solana.NewWallet().PublicKey())
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}
	if strings.Join(keys, ",") != "a.txt,b.txt" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestGetObjectData(t *testing.T) {
	h := newHarness(t)
	fileKey := solana.NewWallet().PublicKey()
	objectDataRoute(h, fileKey, h.wallet.PublicKey())

	data, err := h.client.GetObjectData(context.Background(), "https://cdn.example/x/a.txt")
	if err != nil {
		t.Fatalf("GetObjectData: %v", err)
	}
	if data.FileData.FileAccountPubkey != fileKey.String() {
		t.Fatalf("unexpected data %+v", data)
	}
}

func TestFindLocation(t *testing.T) {
	locations := []string{"https://cdn/acct/a.txt", "https://cdn/acct/my%20file.txt"}
	if got := findLocation(locations, "a.txt"); got != locations[0] {
		t.Fatalf("unexpected location %q", got)
	}
	if got := findLocation(locations, "my file.txt"); got != locations[1] {
		t.Fatalf("unexpected location %q", got)
	}
	if got := findLocation(locations, "b.txt"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestGetObject(t *testing.T) {
	h := newHarness(t)
	account := solana.NewWallet().PublicKey()
	h.client.cfg.ObjectEndpoint = h.node.URL
	h.route("/"+account.String()+"/a.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})

	data, err := h.client.GetObject(context.Background(), account, "a.txt")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected data %q", data)
	}
}
