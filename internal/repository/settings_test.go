package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRoundtrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetSetting("network", "testnet"))

	value, err := store.GetSetting("network")
	require.NoError(t, err)
	assert.Equal(t, "testnet", value)

	// 后写覆盖
	require.NoError(t, store.SetSetting("network", "devnet"))
	value, err = store.GetSetting("network")
	require.NoError(t, err)
	assert.Equal(t, "devnet", value)
}

func TestGetSettingNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSetting("missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestGetAllSettings(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetSetting("a", "1"))
	require.NoError(t, store.SetSetting("b", "2"))

	all, err := store.GetAllSettings()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}

func TestDeleteSetting(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetSetting("a", "1"))

	deleted, err := store.DeleteSetting("a")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.GetSetting("a")
	assert.ErrorIs(t, err, ErrSettingNotFound)

	deleted, err = store.DeleteSetting("a")
	require.NoError(t, err)
	assert.False(t, deleted)
}
