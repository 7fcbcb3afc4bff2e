package config

import (
	"os"
	"path/filepath"
	"time"
)

// 各网络默认的全节点 RPC 地址
const (
	TestnetRPCURL = "https://fullnode.testnet.sui.io:443"
	DevnetRPCURL  = "https://fullnode.devnet.sui.io:443"
	MainnetRPCURL = "https://fullnode.mainnet.sui.io:443"

	TestnetFaucetURL = "https://faucet.testnet.sui.io/gas"
	DevnetFaucetURL  = "https://faucet.devnet.sui.io/gas"
)

// WalletConfig 全局配置实例（从 TOML 文件加载）
var WalletConfig struct {
	Network    *Network    // Sui 网络配置
	Security   *Security   // 安全配置
	Database   *Database   // 数据库配置
	Connection *Connection // 启动连接重试配置
	Server     *Server     // HTTP 服务配置
}

// Network Sui 网络连接配置
type Network struct {
	Name      string `toml:"name"`       // 网络名称：testnet / devnet / mainnet
	RPCURL    string `toml:"rpc_url"`    // 全节点 RPC 地址，留空时按网络名称选择默认值
	FaucetURL string `toml:"faucet_url"` // 水龙头地址（仅测试网）
}

// Security 安全相关配置
type Security struct {
	KeyPath string `toml:"key_path"` // 主密钥文件路径
	Seed    string `toml:"seed"`     // 可选：配置后主密钥由种子派生而非密钥文件
}

// Database 数据库配置
type Database struct {
	Path string `toml:"path"` // SQLite 数据库路径
}

// Connection 启动时的连接重试配置
type Connection struct {
	MaxRetries        int `toml:"max_retries"`         // 最大重试次数
	RetryDelaySeconds int `toml:"retry_delay_seconds"` // 重试间隔（秒）
}

// Server HTTP API 配置
type Server struct {
	Listen string `toml:"listen"` // 监听地址
}

// Config 应用程序运行时配置
// 所有字段均已填入默认值，可直接使用
type Config struct {
	NetworkName string        // Sui 网络名称
	RPCURL      string        // 全节点 RPC 地址
	FaucetURL   string        // 水龙头地址
	DBDSN       string        // SQLite 数据库路径
	KeyPath     string        // 主密钥文件路径
	Seed        string        // 可选的密钥派生种子
	MaxRetries  int           // 启动连接最大重试次数
	RetryDelay  time.Duration // 启动连接重试间隔
	Listen      string        // HTTP 监听地址
}

// LoadConfig 加载配置
// 优先使用配置文件，否则使用默认值
func LoadConfig() (*Config, error) {
	cfg := &Config{
		NetworkName: "testnet",
		MaxRetries:  3,
		RetryDelay:  5 * time.Second,
		Listen:      "127.0.0.1:5000",
	}

	if n := WalletConfig.Network; n != nil {
		if n.Name != "" {
			cfg.NetworkName = n.Name
		}
		cfg.RPCURL = n.RPCURL
		cfg.FaucetURL = n.FaucetURL
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = defaultRPCURL(cfg.NetworkName)
	}
	if cfg.FaucetURL == "" {
		cfg.FaucetURL = defaultFaucetURL(cfg.NetworkName)
	}

	homeDir, _ := os.UserHomeDir()

	if d := WalletConfig.Database; d != nil && d.Path != "" {
		cfg.DBDSN = expandPath(d.Path)
	} else if homeDir != "" {
		cfg.DBDSN = filepath.Join(homeDir, ".sui-wallet", "wallet.db")
	}

	if s := WalletConfig.Security; s != nil {
		cfg.Seed = s.Seed
		if s.KeyPath != "" {
			cfg.KeyPath = expandPath(s.KeyPath)
		}
	}
	if cfg.KeyPath == "" && homeDir != "" {
		cfg.KeyPath = filepath.Join(homeDir, ".sui-wallet", ".encryption_key")
	}

	if c := WalletConfig.Connection; c != nil {
		if c.MaxRetries > 0 {
			cfg.MaxRetries = c.MaxRetries
		}
		if c.RetryDelaySeconds > 0 {
			cfg.RetryDelay = time.Duration(c.RetryDelaySeconds) * time.Second
		}
	}

	if s := WalletConfig.Server; s != nil && s.Listen != "" {
		cfg.Listen = s.Listen
	}

	return cfg, nil
}

// defaultRPCURL 按网络名称返回默认 RPC 地址
func defaultRPCURL(network string) string {
	switch network {
	case "devnet":
		return DevnetRPCURL
	case "mainnet":
		return MainnetRPCURL
	default:
		return TestnetRPCURL
	}
}

// defaultFaucetURL 按网络名称返回默认水龙头地址
// 主网没有水龙头
func defaultFaucetURL(network string) string {
	switch network {
	case "devnet":
		return DevnetFaucetURL
	case "mainnet":
		return ""
	default:
		return TestnetFaucetURL
	}
}

// expandPath 展开路径中的 ~ 为用户主目录
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
