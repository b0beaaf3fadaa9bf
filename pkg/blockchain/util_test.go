package blockchain

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

func TestParsePrivateKey(t *testing.T) {
	wallet := solana.NewWallet()

	pub, key, err := ParsePrivateKey("  " + wallet.PrivateKey.String() + "\n")
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	if !pub.Equals(wallet.PublicKey()) {
		t.Fatalf("unexpected public key %s", pub)
	}
	if len(key) != 64 {
		t.Fatalf("unexpected key length %d", len(key))
	}

	if _, _, err := ParsePrivateKey(base58.Encode(make([]byte, 32))); err == nil {
		t.Fatal("expected error for a 32-byte key")
	}
	if _, _, err := ParsePrivateKey("not-base58-0OIl"); err == nil {
		t.Fatal("expected error for invalid base58")
	}
}

func TestLoadKeypairFile(t *testing.T) {
	wallet := solana.NewWallet()
	ints := make([]int, len(wallet.PrivateKey))
	for i, b := range wallet.PrivateKey {
		ints[i] = int(b)
	}
	raw, _ := json.Marshal(ints)
	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write keypair: %v", err)
	}

	pub, _, err := LoadKeypairFile(path)
	if err != nil {
		t.Fatalf("LoadKeypairFile: %v", err)
	}
	if !pub.Equals(wallet.PublicKey()) {
		t.Fatalf("unexpected public key %s", pub)
	}

	if _, _, err := LoadKeypairFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestSignMessage(t *testing.T) {
	wallet := solana.NewWallet()
	msg := UploadMessage(wallet.PublicKey(), HashFileNames([]string{"a.txt"}))

	encoded, err := SignMessage(wallet.PrivateKey, msg)
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	sig, err := solana.SignatureFromBase58(encoded)
	if err != nil {
		t.Fatalf("signature is not base58: %v", err)
	}
	if !sig.Verify(wallet.PublicKey(), []byte(msg)) {
		t.Fatal("signature does not verify")
	}

	if _, err := SignMessage(nil, msg); err == nil {
		t.Fatal("expected error without a key")
	}
}

func TestHashFileNames(t *testing.T) {
	// sha256("a.txt,b.txt")
	got := HashFileNames([]string{"a.txt", "b.txt"})
	if len(got) != 64 {
		t.Fatalf("expected hex sha256, got %q", got)
	}
	if got == HashFileNames([]string{"b.txt", "a.txt"}) {
		t.Fatal("hash must depend on order")
	}
	if got != HashFileNames([]string{"a.txt", "b.txt"}) {
		t.Fatal("hash must be deterministic")
	}
	// sha256("") is well known.
	if empty := HashFileNames(nil); empty != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("unexpected empty hash %s", empty)
	}
}

func TestMessages(t *testing.T) {
	account := solana.MustPublicKeyFromBase58("GHSNTDyMmay7xDjBNd9dqoHTGD3neioLk5VJg2q3fJqr")

	upload := UploadMessage(account, "abc")
	if upload != "Shadow Drive Signed Message:\nStorage Account: GHSNTDyMmay7xDjBNd9dqoHTGD3neioLk5VJg2q3fJqr\nUpload files with hash: abc" {
		t.Fatalf("unexpected upload message %q", upload)
	}

	edit := EditMessage(account, "a.txt", "def")
	if !strings.HasPrefix(edit, MessagePrefix+" StorageAccount: ") || !strings.HasSuffix(edit, "File to edit: a.txt\nNew file hash: def") {
		t.Fatalf("unexpected edit message %q", edit)
	}

	del := DeleteMessage(account, "https://shdw-drive.genesysgo.net/x/a.txt")
	if !strings.HasSuffix(del, "\nFile to delete: https://shdw-drive.genesysgo.net/x/a.txt") {
		t.Fatalf("unexpected delete message %q", del)
	}
}

func TestParseStorageSize(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "1KB", want: 1000},
		{in: "1KiB", want: 1024},
		{in: "10MB", want: 10_000_000},
		{in: "1GiB", want: 1 << 30},
		{in: "0", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseStorageSize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestShdwToShades(t *testing.T) {
	d := decimal.RequireFromString("0.25")
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "1.5", want: "1500000000"},
		{name: "float", in: 0.000000001, want: "1"},
		{name: "int64", in: int64(3), want: "3000000000"},
		{name: "decimal", in: d, want: "250000000"},
		{name: "decimal pointer", in: &d, want: "250000000"},
		{name: "truncates", in: "0.0000000019", want: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShdwToShades(tt.in)
			if err != nil {
				t.Fatalf("ShdwToShades: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := ShdwToShades("abc"); err == nil {
		t.Fatal("expected error for invalid string")
	}
	if _, err := ShdwToShades(3); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestShadesToShdw(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "1500000000", want: "1.5"},
		{name: "big", in: big.NewInt(1), want: "0.000000001"},
		{name: "uint64", in: uint64(2_000_000_000), want: "2"},
		{name: "int", in: 0, want: "0"},
		{name: "invalid", in: "x", want: "0"},
		{name: "unsupported", in: 1.5, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShadesToShdw(tt.in).String(); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}
