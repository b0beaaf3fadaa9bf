package blockchain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/shdw-drive/shdw-drive-go/internal/testutil/rpcfake"
	"github.com/shdw-drive/shdw-drive-go/pkg/model"
	"github.com/shopspring/decimal"
)

func TestStorageAccountsByOwner(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	v1Key, _ := StorageAccount(owner, 0)
	v2Key, _ := StorageAccount(owner, 1)

	v1, _ := EncodeStorageAccount(&model.StorageAccount{Version: model.V1, Owner1: owner, Identifier: "old", Storage: 10})
	v2, _ := EncodeStorageAccount(&model.StorageAccount{Version: model.V2, Owner1: owner, Identifier: "new", Storage: 20})
	discV1 := AccountDiscriminator(accountStorageAccount)

	fake := rpcfake.New().Handle("getProgramAccounts", func(params []json.RawMessage) (interface{}, error) {
		var opts struct {
			Filters []struct {
				Memcmp struct {
					Offset uint64 `json:"offset"`
					Bytes  string `json:"bytes"`
				} `json:"memcmp"`
			} `json:"filters"`
		}
		if err := json.Unmarshal(params[1], &opts); err != nil {
			return nil, err
		}
		if len(opts.Filters) != 2 || opts.Filters[1].Memcmp.Bytes != owner.String() {
			t.Errorf("unexpected filters %+v", opts.Filters)
		}
		if opts.Filters[0].Memcmp.Bytes == base58.Encode(discV1[:]) {
			if opts.Filters[1].Memcmp.Offset != OwnerOffsetV1 {
				t.Errorf("V1 query must filter at OwnerOffsetV1")
			}
			return []interface{}{
				rpcfake.ProgramAccount(v1Key.String(), v1),
				rpcfake.ProgramAccount(solana.NewWallet().PublicKey().String(), []byte{0, 1}),
			}, nil
		}
		return []interface{}{rpcfake.ProgramAccount(v2Key.String(), v2)}, nil
	})

	accounts, err := newTestChain(fake).StorageAccountsByOwner(context.Background(), owner)
	if err != nil {
		t.Fatalf("StorageAccountsByOwner: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Version != model.V1 || !accounts[0].Address.Equals(v1Key) || accounts[0].Identifier != "old" {
		t.Fatalf("unexpected V1 account %+v", accounts[0])
	}
	if accounts[1].Version != model.V2 || accounts[1].Storage != 20 {
		t.Fatalf("unexpected V2 account %+v", accounts[1])
	}
}

func TestNextAccountSeed(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	missing := rpcfake.New().Result("getAccountInfo", rpcfake.AccountInfo(nil))
	seed, err := newTestChain(missing).NextAccountSeed(context.Background(), owner)
	if err != nil || seed != 0 {
		t.Fatalf("expected seed 0, got %d (%v)", seed, err)
	}

	data, _ := EncodeUserInfo(&model.UserInfo{AccountCounter: 3, AgreedToTos: true})
	present := rpcfake.New().Result("getAccountInfo", rpcfake.AccountInfo(data))
	seed, err = newTestChain(present).NextAccountSeed(context.Background(), owner)
	if err != nil || seed != 3 {
		t.Fatalf("expected seed 3, got %d (%v)", seed, err)
	}

	var addr string
	_ = json.Unmarshal(present.CallsTo("getAccountInfo")[0].Params[0], &addr)
	want, _ := UserInfo(owner)
	if addr != want.String() {
		t.Fatalf("expected user-info PDA, got %s", addr)
	}
}

func TestStakeBalance(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	fake := rpcfake.New().Result("getTokenAccountBalance", rpcfake.TokenBalance("3000000000", 9))

	bal, err := newTestChain(fake).StakeBalance(context.Background(), account)
	if err != nil {
		t.Fatalf("StakeBalance: %v", err)
	}
	if bal.String() != "3" {
		t.Fatalf("unexpected balance %s", bal)
	}

	var addr string
	_ = json.Unmarshal(fake.CallsTo("getTokenAccountBalance")[0].Params[0], &addr)
	stake, _ := StakeAccount(account)
	if addr != stake.String() {
		t.Fatalf("expected stake PDA, got %s", addr)
	}
}

func TestEncodeStorageAccount_RoundTrip(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	for _, version := range []model.AccountVersion{model.V1, model.V2} {
		in := &model.StorageAccount{
			Version:            version,
			Owner1:             owner,
			Identifier:         "bucket",
			Storage:            1024,
			ToBeDeleted:        true,
			DeleteRequestEpoch: 5,
			AccountCounterSeed: 2,
		}
		data, err := EncodeStorageAccount(in)
		if err != nil {
			t.Fatalf("%v: encode: %v", version, err)
		}
		out, err := DecodeStorageAccount(solana.PublicKey{}, data)
		if err != nil {
			t.Fatalf("%v: decode: %v", version, err)
		}
		if out.Version != version || !out.Owner1.Equals(owner) || out.Storage != 1024 || !out.ToBeDeleted || out.AccountCounterSeed != 2 {
			t.Fatalf("%v: unexpected account %+v", version, out)
		}
	}

	if _, err := EncodeStorageAccount(&model.StorageAccount{Version: 3}); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestStakeBalance_WrongMint(t *testing.T) {
	fake := rpcfake.New().Result("getTokenAccountBalance", rpcfake.TokenBalance("3000000", 6))
	if _, err := newTestChain(fake).StakeBalance(context.Background(), solana.NewWallet().PublicKey()); err == nil {
		t.Fatal("expected error for a vault with foreign decimals")
	}
}

func TestStorageConfigAccount(t *testing.T) {
	epoch := uint32(250)
	data, err := EncodeStorageConfig(&model.StorageConfig{
		ShadesPerGib:         250_000_000,
		StorageAvailable:     decimal.RequireFromString("36893488147419103232"), // 2^65
		Uploader:             Uploader,
		MutableFeeStartEpoch: &epoch,
		MaxAccountSize:       1 << 40,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	fake := rpcfake.New().Handle("getAccountInfo", func(params []json.RawMessage) (interface{}, error) {
		var addr string
		_ = json.Unmarshal(params[0], &addr)
		if addr != StorageConfigPDA.String() {
			return rpcfake.AccountInfo(nil), nil
		}
		return rpcfake.AccountInfo(data), nil
	})

	cfg, err := newTestChain(fake).StorageConfigAccount(context.Background())
	if err != nil {
		t.Fatalf("StorageConfigAccount: %v", err)
	}
	if cfg.ShadesPerGib != 250_000_000 || cfg.MaxAccountSize != 1<<40 {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if cfg.StorageAvailable.String() != "36893488147419103232" {
		t.Fatalf("unexpected storage available: %s", cfg.StorageAvailable)
	}
	if cfg.MutableFeeStartEpoch == nil || *cfg.MutableFeeStartEpoch != 250 {
		t.Fatalf("unexpected mutable fee epoch: %v", cfg.MutableFeeStartEpoch)
	}
}

func TestEncodeStorageConfig_Overflow(t *testing.T) {
	_, err := EncodeStorageConfig(&model.StorageConfig{StorageAvailable: decimal.New(1, 40)})
	if err == nil {
		t.Fatal("expected error for a value above u128")
	}
}

func TestUnstakeInfoOf(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	unstaker := solana.NewWallet().PublicKey()
	data, err := EncodeUnstakeInfo(&model.UnstakeInfo{TimeLastUnstaked: 1700000000, EpochLastUnstaked: 512, Unstaker: unstaker})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	key, _ := UnstakeInfo(account)
	fake := rpcfake.New().Handle("getAccountInfo", func(params []json.RawMessage) (interface{}, error) {
		var addr string
		_ = json.Unmarshal(params[0], &addr)
		if addr != key.String() {
			return rpcfake.AccountInfo(nil), nil
		}
		return rpcfake.AccountInfo(data), nil
	})
	chain := newTestChain(fake)

	info, err := chain.UnstakeInfoOf(context.Background(), account)
	if err != nil {
		t.Fatalf("UnstakeInfoOf: %v", err)
	}
	if info.EpochLastUnstaked != 512 || info.TimeLastUnstaked != 1700000000 || !info.Unstaker.Equals(unstaker) {
		t.Fatalf("unexpected unstake info: %#v", info)
	}

	if _, err := chain.UnstakeInfoOf(context.Background(), solana.NewWallet().PublicKey()); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
