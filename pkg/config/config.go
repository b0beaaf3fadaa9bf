// Package config defines the runtime configuration for the SDK, including
// cluster settings, the JSON-RPC endpoint, storage-node endpoints, the wallet
// key source, debug mode and operation timeouts. It also provides validation,
// defaulting and environment loading helpers.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultStorageEndpoint is the storage-node API that accepts uploads and
	// co-signs storage transactions.
	DefaultStorageEndpoint = "https://shadow-storage.genesysgo.net"
	// DefaultObjectEndpoint is the public CDN serving stored objects.
	DefaultObjectEndpoint = "https://shdw-drive.genesysgo.net"
	// DefaultCommitment is the commitment level used for reads and confirmation.
	DefaultCommitment = "confirmed"
)

// Config holds all SDK settings required to initialize chain and storage clients.
// Use Validate to fill implicit defaults and to check for required fields.
type Config struct {
	// Network selects the target cluster. Its RPCAddr is used when RPCAddr is empty.
	Network Network `json:"network" yaml:"network"`
	// RPCAddr is the JSON-RPC endpoint URL (http, https, ws or wss).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// StorageEndpoint is the storage-node HTTP API.
	// Default: https://shadow-storage.genesysgo.net
	StorageEndpoint string `json:"storage_endpoint" yaml:"storage_endpoint"`
	// ObjectEndpoint is the public CDN objects are read from.
	// Default: https://shdw-drive.genesysgo.net
	ObjectEndpoint string `json:"object_endpoint" yaml:"object_endpoint"`
	// PrivateKey is the base58-encoded 64-byte ed25519 wallet key.
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// KeypairPath points at a solana-keygen JSON keypair file. Used when
	// PrivateKey is empty.
	KeypairPath string `json:"keypair_path" yaml:"keypair_path"`
	// Commitment is one of processed, confirmed or finalized.
	Commitment string `json:"commitment" yaml:"commitment"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Network describes a cluster by name and its public RPC endpoint.
type Network struct {
	Name    string `json:"network_name"`
	RPCAddr string `json:"rpc_addr"`
}

// Mainnet is the predefined mainnet-beta cluster.
var Mainnet = Network{
	Name:    "mainnet-beta",
	RPCAddr: "https://api.mainnet-beta.solana.com",
}

// Devnet is the predefined devnet cluster.
var Devnet = Network{
	Name:    "devnet",
	RPCAddr: "https://api.devnet.solana.com",
}

// NetworkByName resolves a predefined network. The second result is false
// for unknown names.
func NetworkByName(name string) (Network, bool) {
	switch name {
	case Mainnet.Name, "mainnet":
		return Mainnet, true
	case Devnet.Name:
		return Devnet, true
	}
	return Network{}, false
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // JSON-RPC dial/connect
	ChainRead   time.Duration // getAccountInfo, balances etc
	ChainSubmit time.Duration // send tx
	ConfirmWait time.Duration // wait for confirmation
	ConfirmPoll time.Duration // interval between signature status polls
	Upload      time.Duration // multipart uploads and edits
	HTTP        time.Duration // other storage-node calls
}

// Validate normalizes the configuration by applying implicit defaults for
// StorageEndpoint, ObjectEndpoint, Commitment and Network (defaults to
// Mainnet), and verifies that an RPC address and a wallet key source are
// available.
func (c *Config) Validate() error {

	if c.StorageEndpoint == "" {
		c.StorageEndpoint = DefaultStorageEndpoint
	}

	if c.ObjectEndpoint == "" {
		c.ObjectEndpoint = DefaultObjectEndpoint
	}

	if c.Network.Name == "" {
		c.Network = Mainnet
	}

	if c.RPCAddr == "" {
		c.RPCAddr = c.Network.RPCAddr
	}

	if c.Commitment == "" {
		c.Commitment = DefaultCommitment
	}

	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("unsupported commitment %q", c.Commitment)
	}

	if c.RPCAddr == "" {
		return errors.New("RPC address is required")
	}

	if c.PrivateKey == "" && c.KeypairPath == "" {
		return errors.New("private key or keypair path is required")
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ConfirmWait: 90s
//	ConfirmPoll: 500ms
//	Upload:      300s
//	HTTP:        30s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ConfirmWait == 0 {
		tt.ConfirmWait = 90 * time.Second
	}
	if tt.ConfirmPoll == 0 {
		tt.ConfirmPoll = 500 * time.Millisecond
	}
	if tt.Upload == 0 {
		tt.Upload = 300 * time.Second
	}
	if tt.HTTP == 0 {
		tt.HTTP = 30 * time.Second
	}
	return tt
}
