package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Errors
var (
	ErrNoRPCURL      = errors.New("must specify an RPC endpoint with --rpc")
	ErrNoKeypair     = errors.New("must specify a keypair file with --keypair")
	ErrInvalidCores  = errors.New("--cores must be a positive integer")
	ErrInvalidBuffer = errors.New("--buffer-time must not be negative")
)

// Config holds the application configuration
type Config struct {
	RPCURL        string
	KeypairPath   string
	Cores         int
	MinDifficulty uint32
	BufferTime    int64 // Seconds shaved off the round deadline
	Verbose       bool
	LogFile       string
	LogInterval   int // Logging interval in seconds
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		RPCURL:      "https://api.mainnet-beta.solana.com",
		KeypairPath: DefaultKeypairPath(),
		Cores:       runtime.NumCPU(),
		BufferTime:  5,
		LogInterval: 5, // Default 5 seconds
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return ErrNoRPCURL
	}
	if c.KeypairPath == "" {
		return ErrNoKeypair
	}
	if c.Cores <= 0 {
		return ErrInvalidCores
	}
	if c.BufferTime < 0 {
		return ErrInvalidBuffer
	}
	return nil
}

// DefaultKeypairPath returns the conventional keypair location, or an empty
// string if the home directory cannot be resolved.
func DefaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}
