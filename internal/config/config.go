package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"crowdfundChain/internal/contract"
)

// Config holds the settings shared by every command.
type Config struct {
	RPCURL            string
	Contract          string
	Keystore          string
	Passphrase        string
	SessionFile       string
	PGDSN             string
	Fallback          string
	ChainPollInterval time.Duration
	SnapshotOut       string
	LogLevel          string
}

// ActivityConfig configures the activity indexer.
type ActivityConfig struct {
	Config
	FromBlock         uint64
	ToBlock           uint64
	Events            []string
	BatchSize         uint64
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// ExportConfig configures the campaign export.
type ExportConfig struct {
	Config
	Out string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return base(v), nil
}

// LoadActivity merges config file, environment variables, and flags into ActivityConfig.
func LoadActivity(cfgFile string, flags *pflag.FlagSet) (ActivityConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ActivityConfig{}, err
	}

	cfg := ActivityConfig{
		Config:            base(v),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		Events:            getStringSlice(v, "event"),
		BatchSize:         v.GetUint64("batch-size"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
	}
	if cfg.Out == "" {
		cfg.Out = "./data/activity.jsonl"
	}
	return cfg, nil
}

// LoadExport merges config file, environment variables, and flags into ExportConfig.
func LoadExport(cfgFile string, flags *pflag.FlagSet) (ExportConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ExportConfig{}, err
	}

	cfg := ExportConfig{
		Config: base(v),
		Out:    v.GetString("out"),
	}
	if cfg.Out == "" {
		cfg.Out = "./data/campaigns.jsonl"
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CROWDFUND")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("contract", contract.DefaultAddress)
	v.SetDefault("keystore", "./data/keystore")
	v.SetDefault("session-file", "./data/session.json")
	v.SetDefault("fallback", "mock")
	v.SetDefault("chain-poll-interval", 4*time.Second)
	v.SetDefault("log-level", "warn")
	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("checkpoint", "./data/activity_checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func base(v *viper.Viper) Config {
	return Config{
		RPCURL:            v.GetString("rpc"),
		Contract:          v.GetString("contract"),
		Keystore:          v.GetString("keystore"),
		Passphrase:        v.GetString("passphrase"),
		SessionFile:       v.GetString("session-file"),
		PGDSN:             v.GetString("pg-dsn"),
		Fallback:          v.GetString("fallback"),
		ChainPollInterval: v.GetDuration("chain-poll-interval"),
		SnapshotOut:       v.GetString("snapshot-out"),
		LogLevel:          v.GetString("log-level"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
