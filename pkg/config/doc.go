// Package config provides configuration management for the Shadow Drive SDK.
//
// This package defines the Config structure that controls all SDK behavior including
// cluster selection, the JSON-RPC endpoint, storage-node endpoints, the wallet key
// source, commitment level and timeouts.
//
// # Basic Configuration
//
// The minimum required configuration is a wallet key source; the RPC endpoint
// falls back to the selected network:
//
//	cfg := &config.Config{
//		Network:     config.Mainnet,
//		KeypairPath: "/home/me/.config/solana/id.json",
//	}
//
// # Network Selection
//
// Two predefined networks are available:
//
//	config.Mainnet - mainnet-beta (https://api.mainnet-beta.solana.com)
//	config.Devnet  - devnet (https://api.devnet.solana.com)
//
// Public endpoints are heavily rate limited; production users should set
// RPCAddr to a dedicated provider.
//
// # Wallet Key
//
// The key is either a base58-encoded 64-byte ed25519 secret key:
//
//	cfg.PrivateKey = "YOUR_BASE58_SECRET_KEY"
//
// or a solana-keygen JSON file:
//
//	cfg.KeypairPath = "keypair.json"
//
// PrivateKey wins when both are set.
//
// # Storage Endpoints
//
//	StorageEndpoint: "https://shadow-storage.genesysgo.net" (uploads, co-signing)
//	ObjectEndpoint:  "https://shdw-drive.genesysgo.net"     (public reads)
//
// # Environment
//
// FromEnv reads an optional .env file and the SHDW_* variables:
//
//	SHDW_NETWORK, SHDW_RPC_ADDR, SHDW_STORAGE_ENDPOINT, SHDW_OBJECT_ENDPOINT,
//	SHDW_PRIVATE_KEY, SHDW_KEYPAIR_PATH, SHDW_COMMITMENT, SHDW_DEBUG
//
// # Timeouts
//
//	cfg.Timeouts = config.Timeouts{
//		Dial:        10 * time.Second,  // RPC connection timeout
//		ChainRead:   15 * time.Second,  // account reads
//		ChainSubmit: 60 * time.Second,  // transaction submission
//		ConfirmWait: 180 * time.Second, // confirmation wait
//		ConfirmPoll: time.Second,       // signature status polling interval
//		Upload:      600 * time.Second, // multipart uploads
//		HTTP:        30 * time.Second,  // other storage-node requests
//	}
//
// Zero values are replaced by defaults in Timeouts.WithDefaults.
package config
