// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain/solbc"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/utils/logger"
)

const envPrefix = "LAUNCHED"

type Config struct {
	License      string `mapstructure:"license"`
	RPCURL       string `mapstructure:"rpc_url"`
	ListenAddr   string `mapstructure:"listen_addr"`
	WalletSecret string `mapstructure:"platform_wallet_secret"`
	WalletFile   string `mapstructure:"platform_wallet_file"`
	Workers      int    `mapstructure:"workers"`
	PostgresURL  string `mapstructure:"postgres_url"`
	RedisURL     string `mapstructure:"redis_url"`

	LockTTL time.Duration `mapstructure:"lock_ttl"`

	Programs       ProgramsConfig       `mapstructure:"programs"`
	Discriminators DiscriminatorsConfig `mapstructure:"discriminators"`
	RPC            RPCConfig            `mapstructure:"rpc"`
	Keygen         KeygenConfig         `mapstructure:"keygen"`
	Log            logger.Config        `mapstructure:"log"`
}

type ProgramsConfig struct {
	BondingCurve   string `mapstructure:"bonding_curve"`
	TokenFactory   string `mapstructure:"token_factory"`
	SocialRegistry string `mapstructure:"social_registry"`
}

// DiscriminatorsConfig holds hex-encoded instruction tags.
type DiscriminatorsConfig struct {
	GraduateToken          string `mapstructure:"graduate_token"`
	ProcessGraduationFunds string `mapstructure:"process_graduation_funds"`
	VerifySocial           string `mapstructure:"verify_social"`
	RevokeVerification     string `mapstructure:"revoke_verification"`
}

type RPCConfig struct {
	MaxReadTries        uint          `mapstructure:"max_read_tries"`
	ReadBackoff         time.Duration `mapstructure:"read_backoff"`
	ConfirmPollInterval time.Duration `mapstructure:"confirm_poll_interval"`
	ConfirmTimeout      time.Duration `mapstructure:"confirm_timeout"`
}

type KeygenConfig struct {
	Account string `mapstructure:"account"`
	Product string `mapstructure:"product"`
	Token   string `mapstructure:"token"`
}

const (
	DefaultRPCURL     = "https://api.devnet.solana.com"
	DefaultListenAddr = ":8080"
	DefaultWorkers    = 8
	DefaultLockTTL    = 2 * time.Minute
)

func defaults() map[string]interface{} {
	programs := launchpad.GetDefaultConfig()
	rpcOpts := solbc.DefaultOptions()
	logOpts := logger.DefaultConfig()

	return map[string]interface{}{
		"license":                                 "",
		"rpc_url":                                 DefaultRPCURL,
		"listen_addr":                             DefaultListenAddr,
		"platform_wallet_secret":                  "",
		"platform_wallet_file":                    "",
		"workers":                                 DefaultWorkers,
		"postgres_url":                            "",
		"redis_url":                               "",
		"lock_ttl":                                DefaultLockTTL,
		"programs.bonding_curve":                  programs.BondingCurveProgram.String(),
		"programs.token_factory":                  programs.TokenFactoryProgram.String(),
		"programs.social_registry":                programs.SocialRegistryProgram.String(),
		"discriminators.graduate_token":           hexTag(programs.Discriminators.GraduateToken),
		"discriminators.process_graduation_funds": hexTag(programs.Discriminators.ProcessGraduationFunds),
		"discriminators.verify_social":            hexTag(programs.Discriminators.VerifySocial),
		"discriminators.revoke_verification":      hexTag(programs.Discriminators.RevokeVerification),
		"rpc.max_read_tries":                      rpcOpts.MaxReadTries,
		"rpc.read_backoff":                        rpcOpts.ReadBackoff,
		"rpc.confirm_poll_interval":               rpcOpts.ConfirmPollInterval,
		"rpc.confirm_timeout":                     rpcOpts.ConfirmTimeout,
		"keygen.account":                          "",
		"keygen.product":                          "",
		"keygen.token":                            "",
		"log.file":                                logOpts.LogFile,
		"log.max_size":                            logOpts.MaxSize,
		"log.max_age":                             logOpts.MaxAge,
		"log.max_backups":                         logOpts.MaxBackups,
		"log.compress":                            logOpts.Compress,
		"log.development":                         logOpts.Development,
	}
}

// LoadConfig reads path (optional) and applies LAUNCHED_* environment overrides.
// Nested keys map to env names with underscores: programs.bonding_curve -> LAUNCHED_PROGRAMS_BONDING_CURVE.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if cfg.ListenAddr == "" {
		return errors.New("listen_addr is empty")
	}
	if cfg.WalletSecret == "" && cfg.WalletFile == "" {
		return errors.New("platform_wallet_secret or platform_wallet_file is required")
	}
	if cfg.PostgresURL != "" {
		if err := validateURLWithCache(cfg.PostgresURL, "postgres"); err != nil {
			return fmt.Errorf("invalid postgres_url: %w", err)
		}
	}
	if cfg.RedisURL != "" {
		if err := validateURLWithCache(cfg.RedisURL, "redis"); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	}
	if cfg.License != "" && (cfg.Keygen.Account == "" || cfg.Keygen.Product == "") {
		return errors.New("keygen.account and keygen.product are required when a license is set")
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if _, err := cfg.Launchpad(); err != nil {
		return err
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	if cfg.LockTTL <= 0 {
		return errors.New("invalid lock_ttl")
	}
	if cfg.RPC.MaxReadTries == 0 {
		return errors.New("invalid rpc.max_read_tries")
	}
	if cfg.RPC.ConfirmPollInterval <= 0 {
		return errors.New("invalid rpc.confirm_poll_interval")
	}
	if cfg.RPC.ConfirmTimeout < cfg.RPC.ConfirmPollInterval {
		return errors.New("rpc.confirm_timeout must not be shorter than rpc.confirm_poll_interval")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	if parsed.Host == "" {
		return errors.New("missing URL host")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// Launchpad builds the program configuration used by the engine.
func (cfg *Config) Launchpad() (*launchpad.Config, error) {
	programs := &launchpad.Config{}

	keys := []struct {
		name  string
		value string
		dst   *solana.PublicKey
	}{
		{"programs.bonding_curve", cfg.Programs.BondingCurve, &programs.BondingCurveProgram},
		{"programs.token_factory", cfg.Programs.TokenFactory, &programs.TokenFactoryProgram},
		{"programs.social_registry", cfg.Programs.SocialRegistry, &programs.SocialRegistryProgram},
	}
	for _, k := range keys {
		key, err := solana.PublicKeyFromBase58(k.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", k.name, err)
		}
		*k.dst = key
	}

	tags := []struct {
		name  string
		value string
		dst   *[]byte
	}{
		{"discriminators.graduate_token", cfg.Discriminators.GraduateToken, &programs.Discriminators.GraduateToken},
		{"discriminators.process_graduation_funds", cfg.Discriminators.ProcessGraduationFunds, &programs.Discriminators.ProcessGraduationFunds},
		{"discriminators.verify_social", cfg.Discriminators.VerifySocial, &programs.Discriminators.VerifySocial},
		{"discriminators.revoke_verification", cfg.Discriminators.RevokeVerification, &programs.Discriminators.RevokeVerification},
	}
	for _, t := range tags {
		tag, err := launchpad.ParseDiscriminator(t.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		*t.dst = tag
	}

	if err := programs.Validate(); err != nil {
		return nil, err
	}
	return programs, nil
}

// ClientOptions converts the rpc section into solbc client options.
func (cfg *Config) ClientOptions() solbc.Options {
	return solbc.Options{
		MaxReadTries:        cfg.RPC.MaxReadTries,
		ReadBackoff:         cfg.RPC.ReadBackoff,
		ConfirmPollInterval: cfg.RPC.ConfirmPollInterval,
		ConfirmTimeout:      cfg.RPC.ConfirmTimeout,
	}
}

func hexTag(tag []byte) string {
	return fmt.Sprintf("%x", tag)
}
