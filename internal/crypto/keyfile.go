package crypto2

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("crypto")

// LoadOrCreateKeyFile 加载或创建主加密密钥文件
// 密钥文件是唯一的事实来源：文件存在则直接读取，
// 不存在则生成 32 字节随机密钥并以 0600 权限写入。
// 丢失该文件意味着之前存储的所有私钥密文不可恢复（已接受的运维风险）。
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil {
		if len(data) != KeySize {
			log.Errorf("LoadOrCreateKeyFile: key file %s has invalid size %d", path, len(data))
			return nil, fmt.Errorf("key file %s: %w", path, ErrInvalidKeySize)
		}
		log.Debugf("LoadOrCreateKeyFile: loaded existing key from %s", path)
		return data, nil
	} else if !os.IsNotExist(err) {
		log.Errorf("LoadOrCreateKeyFile: failed to read key file %s: %v", path, err)
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Errorf("LoadOrCreateKeyFile: failed to create directory %s: %v", dir, err)
			return nil, err
		}
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		log.Errorf("LoadOrCreateKeyFile: failed to generate key: %v", err)
		return nil, err
	}

	// 仅属主可读写
	if err := os.WriteFile(path, key, 0600); err != nil {
		log.Errorf("LoadOrCreateKeyFile: failed to write key file %s: %v", path, err)
		return nil, err
	}

	log.Infof("LoadOrCreateKeyFile: generated new encryption key at %s", path)
	return key, nil
}
