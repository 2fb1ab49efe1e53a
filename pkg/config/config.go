// Package config loads and watches the broker configuration. Values come from
// a YAML file and can be overridden by environment variables; the source of
// each market attribute is tracked so `brokerctl config show` can report where
// a value came from.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/broker"
	ConfigFileName    = "broker.yml"
)

// Commitment priority modes for ordering candidate orders within a capacity
// window.
const (
	PriorityShortestExpiry = "shortest_expiry"
	PriorityRandom         = "random"
)

// MarketConfig controls how the broker selects, locks and schedules orders.
type MarketConfig struct {
	// MinDeadline is the minimum number of seconds an order must have left
	// before its expiry for the broker to still commit to it.
	MinDeadline uint64 `yaml:"min_deadline" json:"min_deadline"`

	// PeakProveKhz caps the assumed proving throughput in kHz (thousand
	// cycles per second) used for schedule feasibility. Zero disables the
	// check.
	PeakProveKhz uint64 `yaml:"peak_prove_khz" json:"peak_prove_khz"`

	// MaxConcurrentProofs limits how many orders may be committed at once.
	// Zero means unlimited.
	MaxConcurrentProofs uint32 `yaml:"max_concurrent_proofs" json:"max_concurrent_proofs"`

	// AdditionalProofCycles is a per-order overhead added to the estimated
	// cycle count (set-builder and recursion overhead).
	AdditionalProofCycles uint64 `yaml:"additional_proof_cycles" json:"additional_proof_cycles"`

	// BatchBufferTimeSecs is slack added to estimated completion times to
	// absorb aggregation and submission latency.
	BatchBufferTimeSecs uint64 `yaml:"batch_buffer_time_secs" json:"batch_buffer_time_secs"`

	// OrderCommitmentPriority orders candidates within the capacity window:
	// "shortest_expiry" or "random".
	OrderCommitmentPriority string `yaml:"order_commitment_priority" json:"order_commitment_priority"`

	// PriorityAddresses lists client addresses whose orders are committed
	// ahead of all others.
	PriorityAddresses []string `yaml:"priority_addresses" json:"priority_addresses"`

	// LockinPriorityGas is an optional gas-price bump (wei) applied to lock
	// transactions.
	LockinPriorityGas uint64 `yaml:"lockin_priority_gas" json:"lockin_priority_gas"`

	// Gas estimates used for balance budgeting.
	LockinGasEstimate        uint64 `yaml:"lockin_gas_estimate" json:"lockin_gas_estimate"`
	FulfillGasEstimate       uint64 `yaml:"fulfill_gas_estimate" json:"fulfill_gas_estimate"`
	Groth16VerifyGasEstimate uint64 `yaml:"groth16_verify_gas_estimate" json:"groth16_verify_gas_estimate"`

	// Stake balance alert thresholds, in whole stake tokens (decimal
	// strings). Empty disables the alert.
	StakeBalanceWarnThreshold  string `yaml:"stake_balance_warn_threshold" json:"stake_balance_warn_threshold"`
	StakeBalanceErrorThreshold string `yaml:"stake_balance_error_threshold" json:"stake_balance_error_threshold"`

	// TxnTimeoutSecs bounds how long the broker waits for a transaction to
	// confirm. Zero uses the market client default.
	TxnTimeoutSecs uint64 `yaml:"txn_timeout_secs" json:"txn_timeout_secs"`
}

// ChainConfig describes the chain the market lives on.
type ChainConfig struct {
	RPCURL        string `yaml:"rpc_url" json:"rpc_url"`
	MarketAddress string `yaml:"market_address" json:"market_address"`
	// BlockTime is the expected seconds between blocks; it paces the
	// monitor's polling loop.
	BlockTime       uint64 `yaml:"block_time" json:"block_time"`
	RPCRetryCount   uint64 `yaml:"rpc_retry_count" json:"rpc_retry_count"`
	RPCRetrySleepMS uint64 `yaml:"rpc_retry_sleep_ms" json:"rpc_retry_sleep_ms"`
}

// APIConfig configures the status API listener.
type APIConfig struct {
	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Port        string `yaml:"port" json:"port"`
}

// Config is the full broker configuration.
type Config struct {
	Market MarketConfig `yaml:"market" json:"market"`
	Chain  ChainConfig  `yaml:"chain" json:"chain"`
	API    APIConfig    `yaml:"api" json:"api"`

	// sources tracks where each market attribute came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// newDefault returns a config with default values.
func newDefault() *Config {
	return &Config{
		Market: MarketConfig{
			MinDeadline:              120,
			BatchBufferTimeSecs:      60,
			OrderCommitmentPriority:  PriorityShortestExpiry,
			LockinGasEstimate:        200_000,
			FulfillGasEstimate:       350_000,
			Groth16VerifyGasEstimate: 250_000,
		},
		Chain: ChainConfig{
			BlockTime:       2,
			RPCRetryCount:   3,
			RPCRetrySleepMS: 500,
		},
		API: APIConfig{
			BindAddress: "0.0.0.0",
			Port:        "8082",
		},
		sources: make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("BROKER_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		if err := config.applyFile(data); err != nil {
			return nil, err
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFile loads configuration from an explicit file path plus environment
// overrides.
func LoadFile(path string) (*Config, error) {
	config := newDefault()
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}
	config.configFilePath = path

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := config.applyFile(data); err != nil {
		return nil, err
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"min_deadline", "peak_prove_khz", "max_concurrent_proofs",
		"additional_proof_cycles", "batch_buffer_time_secs",
		"order_commitment_priority", "priority_addresses",
		"lockin_priority_gas", "txn_timeout_secs",
	}
}

func (c *Config) applyFile(data []byte) error {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", c.configFilePath, err)
	}

	if file.Market.MinDeadline != 0 {
		c.Market.MinDeadline = file.Market.MinDeadline
		c.sources["min_deadline"] = "file"
	}
	if file.Market.PeakProveKhz != 0 {
		c.Market.PeakProveKhz = file.Market.PeakProveKhz
		c.sources["peak_prove_khz"] = "file"
	}
	if file.Market.MaxConcurrentProofs != 0 {
		c.Market.MaxConcurrentProofs = file.Market.MaxConcurrentProofs
		c.sources["max_concurrent_proofs"] = "file"
	}
	if file.Market.AdditionalProofCycles != 0 {
		c.Market.AdditionalProofCycles = file.Market.AdditionalProofCycles
		c.sources["additional_proof_cycles"] = "file"
	}
	if file.Market.BatchBufferTimeSecs != 0 {
		c.Market.BatchBufferTimeSecs = file.Market.BatchBufferTimeSecs
		c.sources["batch_buffer_time_secs"] = "file"
	}
	if file.Market.OrderCommitmentPriority != "" {
		c.Market.OrderCommitmentPriority = file.Market.OrderCommitmentPriority
		c.sources["order_commitment_priority"] = "file"
	}
	if len(file.Market.PriorityAddresses) > 0 {
		c.Market.PriorityAddresses = file.Market.PriorityAddresses
		c.sources["priority_addresses"] = "file"
	}
	if file.Market.LockinPriorityGas != 0 {
		c.Market.LockinPriorityGas = file.Market.LockinPriorityGas
		c.sources["lockin_priority_gas"] = "file"
	}
	if file.Market.TxnTimeoutSecs != 0 {
		c.Market.TxnTimeoutSecs = file.Market.TxnTimeoutSecs
		c.sources["txn_timeout_secs"] = "file"
	}
	if file.Market.LockinGasEstimate != 0 {
		c.Market.LockinGasEstimate = file.Market.LockinGasEstimate
	}
	if file.Market.FulfillGasEstimate != 0 {
		c.Market.FulfillGasEstimate = file.Market.FulfillGasEstimate
	}
	if file.Market.Groth16VerifyGasEstimate != 0 {
		c.Market.Groth16VerifyGasEstimate = file.Market.Groth16VerifyGasEstimate
	}
	if file.Market.StakeBalanceWarnThreshold != "" {
		c.Market.StakeBalanceWarnThreshold = file.Market.StakeBalanceWarnThreshold
	}
	if file.Market.StakeBalanceErrorThreshold != "" {
		c.Market.StakeBalanceErrorThreshold = file.Market.StakeBalanceErrorThreshold
	}

	if file.Chain.RPCURL != "" {
		c.Chain.RPCURL = file.Chain.RPCURL
	}
	if file.Chain.MarketAddress != "" {
		c.Chain.MarketAddress = file.Chain.MarketAddress
	}
	if file.Chain.BlockTime != 0 {
		c.Chain.BlockTime = file.Chain.BlockTime
	}
	if file.Chain.RPCRetryCount != 0 {
		c.Chain.RPCRetryCount = file.Chain.RPCRetryCount
	}
	if file.Chain.RPCRetrySleepMS != 0 {
		c.Chain.RPCRetrySleepMS = file.Chain.RPCRetrySleepMS
	}

	if file.API.BindAddress != "" {
		c.API.BindAddress = file.API.BindAddress
	}
	if file.API.Port != "" {
		c.API.Port = file.API.Port
	}
	return nil
}

func (c *Config) applyEnv() {
	if val := os.Getenv("BROKER_MIN_DEADLINE"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Market.MinDeadline = i
			c.sources["min_deadline"] = "environment"
		}
	}
	if val := os.Getenv("BROKER_PEAK_PROVE_KHZ"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Market.PeakProveKhz = i
			c.sources["peak_prove_khz"] = "environment"
		}
	}
	if val := os.Getenv("BROKER_MAX_CONCURRENT_PROOFS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 32); err == nil {
			c.Market.MaxConcurrentProofs = uint32(i)
			c.sources["max_concurrent_proofs"] = "environment"
		}
	}
	if val := os.Getenv("BROKER_ADDITIONAL_PROOF_CYCLES"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Market.AdditionalProofCycles = i
			c.sources["additional_proof_cycles"] = "environment"
		}
	}
	if val := os.Getenv("BROKER_BATCH_BUFFER_TIME_SECS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Market.BatchBufferTimeSecs = i
			c.sources["batch_buffer_time_secs"] = "environment"
		}
	}
	if val := os.Getenv("BROKER_ORDER_COMMITMENT_PRIORITY"); val != "" {
		c.Market.OrderCommitmentPriority = val
		c.sources["order_commitment_priority"] = "environment"
	}
	if val := os.Getenv("BROKER_PRIORITY_ADDRESSES"); val != "" {
		c.Market.PriorityAddresses = splitAndTrim(val)
		c.sources["priority_addresses"] = "environment"
	}
	if val := os.Getenv("BROKER_LOCKIN_PRIORITY_GAS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Market.LockinPriorityGas = i
			c.sources["lockin_priority_gas"] = "environment"
		}
	}
	if val := os.Getenv("BROKER_TXN_TIMEOUT_SECS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Market.TxnTimeoutSecs = i
			c.sources["txn_timeout_secs"] = "environment"
		}
	}
	if val := os.Getenv("BROKER_RPC_URL"); val != "" {
		c.Chain.RPCURL = val
	}
	if val := os.Getenv("BROKER_MARKET_ADDRESS"); val != "" {
		c.Chain.MarketAddress = val
	}
	if val := os.Getenv("BROKER_API_PORT"); val != "" {
		c.API.Port = val
	}
	if val := os.Getenv("BROKER_API_BIND_ADDRESS"); val != "" {
		c.API.BindAddress = val
	}
}

// ConfigFilePath returns the path to the config file.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute.
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Market.OrderCommitmentPriority {
	case PriorityShortestExpiry, PriorityRandom:
	default:
		return fmt.Errorf("invalid order_commitment_priority: %s", c.Market.OrderCommitmentPriority)
	}
	for _, addr := range c.Market.PriorityAddresses {
		if !strings.HasPrefix(addr, "0x") || len(addr) != 42 {
			return fmt.Errorf("invalid priority address: %s", addr)
		}
	}
	return nil
}

// Attributes returns the market attributes with their values and sources.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "min_deadline", Value: strconv.FormatUint(c.Market.MinDeadline, 10), Source: c.Source("min_deadline")},
		{Name: "peak_prove_khz", Value: strconv.FormatUint(c.Market.PeakProveKhz, 10), Source: c.Source("peak_prove_khz")},
		{Name: "max_concurrent_proofs", Value: strconv.FormatUint(uint64(c.Market.MaxConcurrentProofs), 10), Source: c.Source("max_concurrent_proofs")},
		{Name: "additional_proof_cycles", Value: strconv.FormatUint(c.Market.AdditionalProofCycles, 10), Source: c.Source("additional_proof_cycles")},
		{Name: "batch_buffer_time_secs", Value: strconv.FormatUint(c.Market.BatchBufferTimeSecs, 10), Source: c.Source("batch_buffer_time_secs")},
		{Name: "order_commitment_priority", Value: c.Market.OrderCommitmentPriority, Source: c.Source("order_commitment_priority")},
		{Name: "priority_addresses", Value: strings.Join(c.Market.PriorityAddresses, ","), Source: c.Source("priority_addresses")},
		{Name: "lockin_priority_gas", Value: strconv.FormatUint(c.Market.LockinPriorityGas, 10), Source: c.Source("lockin_priority_gas")},
		{Name: "txn_timeout_secs", Value: strconv.FormatUint(c.Market.TxnTimeoutSecs, 10), Source: c.Source("txn_timeout_secs")},
	}
}

// FormatText returns a text representation of the configuration.
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration.
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
