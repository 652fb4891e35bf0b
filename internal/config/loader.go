package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "YTAIRDROP_"
	// EnvConfigPath names the YAML file to load when no path is passed.
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// listKeys are replaced wholesale when a layer sets them. mapstructure would
// otherwise merge a shorter list into the defaults index by index.
var listKeys = []string{"positions", "network.assets", "fdvs", "sweep.entry_days", "metrics.buckets"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from path, or YTAIRDROP_CONFIG when path is empty
//  3. env (prefix YTAIRDROP_, "__" separates nested keys)
func Load(_ context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// YTAIRDROP_PROGRAM__DURATION_DAYS -> program.duration_days
	// YTAIRDROP_FDVS=1e7,5e7 -> fdvs: [1e7, 5e7]
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "config" {
			return "", nil
		}
		key = strings.ReplaceAll(key, "__", ".")
		if strings.Contains(value, ",") {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrLoadConfig, err)
	}

	cfg := New()
	for _, key := range listKeys {
		if k.Exists(key) {
			resetList(cfg, key)
		}
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}
	return cfg, nil
}

func resetList(cfg *Config, key string) {
	switch key {
	case "positions":
		cfg.Positions = nil
	case "network.assets":
		cfg.Network.Assets = nil
	case "fdvs":
		cfg.FDVs = nil
	case "sweep.entry_days":
		cfg.Sweep.EntryDays = nil
	case "metrics.buckets":
		cfg.Metrics.Buckets = nil
	}
}
