package repository

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"sui-wallet/internal/models"

	logging "github.com/ipfs/go-log/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log = logging.Logger("repository")

// 仓库层错误
var (
	ErrDuplicateAddress = errors.New("account address already exists")
	ErrAccountNotFound  = errors.New("account not found")
	ErrSettingNotFound  = errors.New("setting not found")
)

// Store 数据存储结构
// 封装了 GORM 数据库连接和主加密密钥，提供数据访问功能
type Store struct {
	DB     *gorm.DB // GORM 数据库实例
	encKey []byte   // 主加密密钥，仅用于私钥字段的加解密
}

// OpenStore 打开数据库存储
// 使用 SQLite 数据库，自动创建数据库文件并迁移表结构
// 参数：
//   - dbPath: SQLite 数据库文件路径
//   - encKey: 32 字节主加密密钥
//
// 返回：Store 实例或错误
func OpenStore(dbPath string, encKey []byte) (*Store, error) {
	log.Debug("OpenStore: opening SQLite database connection")

	// 如果路径为空，使用默认路径
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Errorf("OpenStore: failed to get home directory: %v", err)
			return nil, err
		}
		dbPath = filepath.Join(homeDir, ".sui-wallet", "wallet.db")
	}

	// 确保目录存在（内存库和 file: DSN 除外）
	if !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Errorf("OpenStore: failed to create directory %s: %v", dir, err)
			return nil, err
		}
	}

	gormLogger := logger.Default.LogMode(logger.Silent)

	// 打开 SQLite 数据库连接
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Errorf("OpenStore: failed to open database: %v", err)
		return nil, err
	}

	// SQLite 单写者：限制为单连接，写操作天然串行化
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	// 自动迁移所有数据表
	if err = db.AutoMigrate(
		&models.Account{},
		&models.Transaction{},
		&models.Setting{},
	); err != nil {
		log.Errorf("OpenStore: auto migration failed: %v", err)
		return nil, err
	}

	log.Debugf("OpenStore: SQLite database opened successfully at %s", dbPath)
	return &Store{DB: db, encKey: encKey}, nil
}
