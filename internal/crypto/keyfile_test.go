package crypto2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", ".encryption_key")

	key, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// 第二次加载得到同一密钥
	again, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestLoadOrCreateKeyFileRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".encryption_key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))

	_, err := LoadOrCreateKeyFile(path)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}
