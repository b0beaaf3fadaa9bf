package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Environment variables read by FromEnv.
const (
	EnvNetwork         = "SHDW_NETWORK"
	EnvRPCAddr         = "SHDW_RPC_ADDR"
	EnvStorageEndpoint = "SHDW_STORAGE_ENDPOINT"
	EnvObjectEndpoint  = "SHDW_OBJECT_ENDPOINT"
	EnvPrivateKey      = "SHDW_PRIVATE_KEY"
	EnvKeypairPath     = "SHDW_KEYPAIR_PATH"
	EnvCommitment      = "SHDW_COMMITMENT"
	EnvDebug           = "SHDW_DEBUG"
)

// FromEnv builds a Config from a .env file (if present) and SHDW_*
// environment variables. The result is not validated.
func FromEnv(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		zap.L().Debug("no .env file loaded, reading from environment", zap.Error(err))
	}

	cfg := &Config{
		RPCAddr:         os.Getenv(EnvRPCAddr),
		StorageEndpoint: os.Getenv(EnvStorageEndpoint),
		ObjectEndpoint:  os.Getenv(EnvObjectEndpoint),
		PrivateKey:      os.Getenv(EnvPrivateKey),
		KeypairPath:     os.Getenv(EnvKeypairPath),
		Commitment:      getEnv(EnvCommitment, DefaultCommitment),
	}

	if name := os.Getenv(EnvNetwork); name != "" {
		network, ok := NetworkByName(name)
		if !ok {
			zap.L().Warn("unknown network, using mainnet-beta", zap.String("network", name))
			network = Mainnet
		}
		cfg.Network = network
	}

	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			zap.L().Warn("invalid debug flag", zap.String("value", v), zap.Error(err))
		}
		cfg.Debug = debug
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
