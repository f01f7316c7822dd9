package config

// Package config provides a reusable loader for the bridge's configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/omni-labs/bridge/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for a locker/relayer
// deployment. It mirrors the structure of the YAML file Load reads.
type Config struct {
	Home struct {
		AccountID   string `mapstructure:"account_id" json:"account_id"`
		RPCEndpoint string `mapstructure:"rpc_endpoint" json:"rpc_endpoint"`
	} `mapstructure:"home" json:"home"`

	Chains []ChainConfig `mapstructure:"chains" json:"chains"`

	Signer struct {
		Kind     string `mapstructure:"kind" json:"kind"` // "mpc" or "local"
		Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	} `mapstructure:"signer" json:"signer"`

	Relayer struct {
		Enabled           bool   `mapstructure:"enabled" json:"enabled"`
		FastPathEnabled   bool   `mapstructure:"fast_path_enabled" json:"fast_path_enabled"`
		PollIntervalMS    int    `mapstructure:"poll_interval_ms" json:"poll_interval_ms"`
		RelayerAccountID  string `mapstructure:"relayer_account_id" json:"relayer_account_id"`
	} `mapstructure:"relayer" json:"relayer"`

	Storage struct {
		DBPath string `mapstructure:"db_path" json:"db_path"`
	} `mapstructure:"storage" json:"storage"`

	HTTP struct {
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"http" json:"http"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// ChainConfig describes one bridged chain's connection and contract details.
type ChainConfig struct {
	Name            string `mapstructure:"name" json:"name"` // matches core.ChainKind.String()
	RPCEndpoint     string `mapstructure:"rpc_endpoint" json:"rpc_endpoint"`
	FactoryAddress  string `mapstructure:"factory_address" json:"factory_address"`
	ProverAccountID string `mapstructure:"prover_account_id" json:"prover_account_id"`
	Confirmations   uint64 `mapstructure:"confirmations" json:"confirmations"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the BRIDGE_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("BRIDGE_ENV", ""))
}
