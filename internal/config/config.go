// Package config loads a TOML configuration file describing one run of
// the interpreter: the gas limit and block context to execute under, and
// logging verbosity.
package config

import (
	"fmt"
	"os"

	"github.com/naoina/toml"

	"github.com/evmlite/evmlite/common"
)

// Block mirrors the subset of block-header fields the interpreter's
// BlockContext needs: number, timestamp, coinbase, difficulty and gas limit.
type Block struct {
	Number     uint64
	Time       uint64
	Coinbase   string
	Difficulty uint64
	GasLimit   uint64
}

// Log holds the evmlog verbosity and output target settings. cmd/evmrun
// does not read them; it always logs at info level to stderr.
type Log struct {
	Level string
	File  string
}

// Config is the top-level document a TOML run-config file unmarshals
// into.
type Config struct {
	Block Block
	Log   Log

	// GasLimit is the gas allowance given to the top-level frame; it is
	// independent of Block.GasLimit (the block's aggregate limit) the
	// same way geth's per-call gas and per-block gas are independent.
	GasLimit uint64
}

// Default returns a Config with the same fallbacks runtime.Execute itself
// applies when no file is given, so the CLI has one value to start from
// whether or not -config was passed.
func Default() *Config {
	return &Config{
		Block:    Block{GasLimit: 30_000_000},
		Log:      Log{Level: "info"},
		GasLimit: 10_000_000,
	}
}

// Load reads and parses a TOML config file at path into a Config seeded
// with Default()'s values, so an omitted field falls back to its default
// rather than the zero value.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// CoinbaseAddress parses the configured coinbase string, defaulting to the
// zero address when unset.
func (c *Config) CoinbaseAddress() common.Address {
	if c.Block.Coinbase == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.Block.Coinbase)
}
