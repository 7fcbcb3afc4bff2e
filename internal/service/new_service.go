package service

import (
	"context"

	"golang.org/x/xerrors"

	"sui-wallet/internal/config"
	crypto2 "sui-wallet/internal/crypto"
	"sui-wallet/internal/repository"
	"sui-wallet/internal/rpc"
	"sui-wallet/internal/vapi"
)

// NewFromConfig 按配置组装完整的钱包服务
// 加载主密钥 -> 打开数据库 -> 创建账本客户端 -> 构造服务（含启动连接重试）
func NewFromConfig(cfg *config.Config) (*Manager, error) {
	// 主密钥：默认来自密钥文件，配置了种子时改为派生
	var encKey []byte
	var err error
	if cfg.Seed != "" {
		encKey, err = crypto2.DeriveKeyFromSeed([]byte(cfg.Seed))
	} else {
		encKey, err = crypto2.LoadOrCreateKeyFile(cfg.KeyPath)
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to load master key: %w", err)
	}

	// 打开数据库连接并自动迁移表结构
	store, err := repository.OpenStore(cfg.DBDSN, encKey)
	if err != nil {
		return nil, xerrors.Errorf("failed to open wallet store: %w", err)
	}

	// 创建账本客户端
	client := rpc.NewClient(cfg.RPCURL, rpc.DefaultTimeout)
	node := vapi.NewNode(context.Background(), client)

	return NewManager(store, node, Options{
		Network:    cfg.NetworkName,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}), nil
}
