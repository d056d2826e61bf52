package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds configuration shared by every binary
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// EthereumConfig holds chain connectivity for the API's minting path
type EthereumConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ChainID         int64  `mapstructure:"chain_id"`
	NFTAddress      string `mapstructure:"nft_address"`
	MarketAddress   string `mapstructure:"market_address"`
	OwnerPrivateKey string `mapstructure:"owner_private_key"`
	ArtifactsDir    string `mapstructure:"artifacts_dir"`
}

// SweeperConfig holds the order-expiry sweeper settings
type SweeperConfig struct {
	OrderTTL       time.Duration `mapstructure:"order_ttl"`
	BatchSize      int           `mapstructure:"batch_size"`
	WorkerPoolSize int           `mapstructure:"worker_pool_size"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
}

// DeployKeysConfig holds the pre-funded development identities emitted by the
// bootstrap pipeline. Never production material.
type DeployKeysConfig struct {
	OwnerPrivateKey  string `mapstructure:"owner_private_key"`
	SellerPrivateKey string `mapstructure:"seller_private_key"`
	BuyerPrivateKey  string `mapstructure:"buyer_private_key"`
}

// BootstrapEthereumConfig holds chain connectivity for the deployment pipeline
type BootstrapEthereumConfig struct {
	RPCURL  string `mapstructure:"rpc_url"`
	ChainID int64  `mapstructure:"chain_id"`
}

// APIConfig holds configuration for the api binary
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Server     ServerConfig   `mapstructure:"server"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
}

// SweeperBinConfig holds configuration for the sweeper binary
type SweeperBinConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Sweeper    SweeperConfig  `mapstructure:"sweeper"`
}

// BootstrapConfig holds configuration for the bootstrap binary
type BootstrapConfig struct {
	BaseConfig   `mapstructure:",squash"`
	Ethereum     BootstrapEthereumConfig `mapstructure:"ethereum"`
	Keys         DeployKeysConfig        `mapstructure:"keys"`
	ArtifactsDir string                  `mapstructure:"artifacts_dir"`
	AllowDevKeys bool                    `mapstructure:"allow_dev_keys"`
}

// TraderConfig holds configuration for the trader binary
type TraderConfig struct {
	BaseConfig `mapstructure:",squash"`
	APIBaseURL string        `mapstructure:"api_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max_retries"`
}

// LoadAPIConfig loads configuration for the api binary
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "marketplace")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("ethereum.rpc_url", "http://localhost:8545")
	v.SetDefault("ethereum.chain_id", 1337)
	v.SetDefault("ethereum.artifacts_dir", "artifacts/abi")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper binary
func LoadSweeperConfig(configFile string, envPath string) (*SweeperBinConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "marketplace")
	v.SetDefault("database.sslmode", "disable")
	// A pending order holds an exclusive reservation on its listing. Fifteen
	// minutes bounds how long an abandoned checkout can lock a listing.
	v.SetDefault("sweeper.order_ttl", "15m")
	v.SetDefault("sweeper.batch_size", 100)
	v.SetDefault("sweeper.worker_pool_size", 10)
	v.SetDefault("sweeper.sweep_interval", "1m")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperBinConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadBootstrapConfig loads configuration for the bootstrap binary
func LoadBootstrapConfig(configFile string, envPath string) (*BootstrapConfig, error) {
	v := configureViper("bootstrap", configFile, envPath)

	v.SetDefault("ethereum.rpc_url", "http://localhost:8545")
	v.SetDefault("ethereum.chain_id", 1337)
	v.SetDefault("artifacts_dir", "artifacts/abi")
	v.SetDefault("allow_dev_keys", true)
	// Hardhat's first three funded accounts: owner, seller, buyer.
	v.SetDefault("keys.owner_private_key", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	v.SetDefault("keys.seller_private_key", "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d")
	v.SetDefault("keys.buyer_private_key", "0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg BootstrapConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadTraderConfig loads configuration for the trader binary
func LoadTraderConfig(configFile string, envPath string) (*TraderConfig, error) {
	v := configureViper("trader", configFile, envPath)

	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("timeout", "15s")
	v.SetDefault("max_retries", 3)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg TraderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// readConfig reads the config file, tolerating a missing file so that
// environment variables alone can configure a binary
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all known configuration keys.
// Viper only maps env vars to struct fields for keys it has seen, so without
// this a binary configured purely through the environment would see zero values.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.nft_address",
		"ethereum.market_address",
		"ethereum.owner_private_key",
		"ethereum.artifacts_dir",
		// Sweeper
		"sweeper.order_ttl",
		"sweeper.batch_size",
		"sweeper.worker_pool_size",
		"sweeper.sweep_interval",
		// Bootstrap
		"artifacts_dir",
		"allow_dev_keys",
		"keys.owner_private_key",
		"keys.seller_private_key",
		"keys.buyer_private_key",
		// Trader
		"api_base_url",
		"timeout",
		"max_retries",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
