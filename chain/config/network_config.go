// Package config loads the JSON genesis-style document that
// parameterizes initialize_network: read file, unmarshal, validate,
// convert into the one struct CORE's genesis actually needs.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"finova/chain/core"
	"finova/chain/types"
)

// NetworkConfig is the on-disk genesis document for a Finova network:
// everything initialize_network needs plus operational fields (data
// dir, RPC port) that Validate checks. cmd/finova-node takes its data
// dir and listen addresses from its own flags, not from these fields.
type NetworkConfig struct {
	ChainName      string `json:"chainName"`
	DataDir        string `json:"dataDir"`
	RPCPort        int    `json:"rpcPort"`
	AttestorKeyHex string `json:"attestorKeyHex"`
	BaseRateMicro  int64  `json:"baseRateMicroPerHour"`
	HoldCap        uint64 `json:"holdCap"`
	HoldCoefMicro  uint32 `json:"holdCoefMicro"`
	NrCoefMicro    uint32 `json:"nrCoefMicro"`
	MaxSupply      uint64 `json:"maxSupplyBaseUnits"`
}

// LoadNetworkConfig loads and validates a NetworkConfig from path.
func LoadNetworkConfig(path string) (*NetworkConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("network config file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network config: %w", err)
	}
	var cfg NetworkConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse network config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the document's required fields and formats.
func (c *NetworkConfig) Validate() error {
	if c.ChainName == "" {
		return fmt.Errorf("missing chainName")
	}
	if c.RPCPort <= 0 || c.RPCPort > 65535 {
		return fmt.Errorf("invalid rpcPort: %d", c.RPCPort)
	}
	key, err := hex.DecodeString(c.AttestorKeyHex)
	if err != nil || len(key) != 32 {
		return fmt.Errorf("invalid attestorKeyHex: must be 64 hex chars")
	}
	if c.BaseRateMicro <= 0 {
		return fmt.Errorf("baseRateMicroPerHour must be positive")
	}
	return nil
}

// NetworkParams converts the loaded document into chain/core's
// initialize_network input.
func (c *NetworkConfig) NetworkParams() (core.NetworkParams, error) {
	keyBytes, err := hex.DecodeString(c.AttestorKeyHex)
	if err != nil || len(keyBytes) != 32 {
		return core.NetworkParams{}, fmt.Errorf("invalid attestorKeyHex")
	}
	var attestorKey [32]byte
	copy(attestorKey[:], keyBytes)

	maxSupply := c.MaxSupply
	if maxSupply == 0 {
		maxSupply = uint64(core.MaxSupply)
	}

	return core.NetworkParams{
		BaseRateMicro: types.MicroValue(c.BaseRateMicro),
		HoldCap:       c.HoldCap,
		HoldCoefMicro: c.HoldCoefMicro,
		NrCoefMicro:   c.NrCoefMicro,
		AttestorKey:   attestorKey,
		MaxSupply:     types.BaseUnits(maxSupply),
	}, nil
}

// DefaultNetworkConfig returns a ready-to-run local development config.
func DefaultNetworkConfig(attestorKeyHex string) *NetworkConfig {
	return &NetworkConfig{
		ChainName:      "finova-devnet",
		DataDir:        "./data",
		RPCPort:        8899,
		AttestorKeyHex: attestorKeyHex,
		BaseRateMicro:  100_000,
		HoldCap:        10_000,
		HoldCoefMicro:  1_000,
		NrCoefMicro:    100,
		MaxSupply:      0,
	}
}
