// Package config loads per-network gateway settings from a YAML file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	gwlogger "github.com/tradeport-labs/gateway/logger"
	"github.com/tradeport-labs/gateway/types"
)

type networkFile struct {
	Kind               string   `yaml:"kind"`
	RPCURLs            []string `yaml:"rpc_urls"`
	MaxRetries         uint     `yaml:"max_retries"`
	RetryDelayMs       uint     `yaml:"retry_delay_ms"`
	RequestTimeoutMs   uint     `yaml:"request_timeout_ms"`
	BatchSize          uint     `yaml:"batch_size"`
	InterBatchDelayMs  uint     `yaml:"inter_batch_delay_ms"`
	PollIntervalMs     uint     `yaml:"poll_interval_ms"`
	ExpiryMarginBlocks uint64   `yaml:"expiry_margin_blocks"`
	HistoryLookupDepth int      `yaml:"history_lookup_depth"`
	QuoteTTLSeconds    uint     `yaml:"quote_ttl_seconds"`
	InstanceCacheSize  int      `yaml:"instance_cache_size"`
}

type file struct {
	Networks map[string]networkFile `yaml:"networks"`
}

// Load reads the YAML file at path and returns one defaulted Config per
// network, each carrying the given logger.
func Load(path string, logger types.Logger) (map[string]*types.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config %s", path)
	}
	return Parse(data, logger)
}

// Parse builds per-network Configs from raw YAML. A nil logger selects the
// stderr default.
func Parse(data []byte, logger types.Logger) (map[string]*types.Config, error) {
	var parsed file
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrap(err, "could not parse config")
	}
	if logger == nil {
		logger = gwlogger.NewDefaultLogger()
	}
	if len(parsed.Networks) == 0 {
		return nil, errors.New("config declares no networks")
	}

	configs := make(map[string]*types.Config, len(parsed.Networks))
	for network, nf := range parsed.Networks {
		if len(nf.RPCURLs) == 0 {
			return nil, errors.Errorf("network %s declares no rpc_urls", network)
		}
		cfg := &types.Config{
			Logger:             logger,
			Network:            network,
			Kind:               types.ChainKind(nf.Kind),
			RPCURLs:            nf.RPCURLs,
			MaxRetries:         nf.MaxRetries,
			RetryDelay:         time.Duration(nf.RetryDelayMs) * time.Millisecond,
			RequestTimeout:     time.Duration(nf.RequestTimeoutMs) * time.Millisecond,
			BatchSize:          nf.BatchSize,
			InterBatchDelay:    time.Duration(nf.InterBatchDelayMs) * time.Millisecond,
			PollInterval:       time.Duration(nf.PollIntervalMs) * time.Millisecond,
			ExpiryMarginBlocks: nf.ExpiryMarginBlocks,
			HistoryLookupDepth: nf.HistoryLookupDepth,
			QuoteTTL:           time.Duration(nf.QuoteTTLSeconds) * time.Second,
			InstanceCacheSize:  nf.InstanceCacheSize,
		}
		cfg.ApplyDefaults()
		switch cfg.Kind {
		case types.ChainKindSolana, types.ChainKindEVM:
		default:
			return nil, errors.Errorf("network %s has unknown kind %q", network, nf.Kind)
		}
		configs[network] = cfg
	}
	return configs, nil
}
