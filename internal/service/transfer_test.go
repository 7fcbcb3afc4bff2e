package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sui-wallet/internal/chain/types"
	"sui-wallet/internal/models"
)

const recipient = "0xdddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd"

func TestSendTokensSuccess(t *testing.T) {
	ledger := &fakeLedger{
		balances:       map[string]uint64{},
		transferDigest: "digest-ok",
	}
	m := newTestManager(t, ledger)

	sender, err := m.CreateAccount("Alice")
	require.NoError(t, err)
	ledger.balances[sender.Address] = 5 * types.MistPerSui

	result := m.SendTokens(sender.ID, recipient, 1.5)
	require.True(t, result.Success)
	assert.Equal(t, "digest-ok", result.Digest)
	assert.Equal(t, sender.Address, result.From)
	assert.Equal(t, recipient, result.To)
	assert.Equal(t, 1.5, result.Amount)
	assert.Nil(t, result.Error)

	// 成功的转账以 digest 为键进入本地缓存
	tx, err := m.Store().GetTransactionByDigest("digest-ok")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, models.TxStatusSuccess, tx.Status)
	assert.Equal(t, 1.5, tx.Amount)
}

func TestSendTokensOffline(t *testing.T) {
	m := NewManager(newTestStore(t), &fakeLedger{versionErr: errors.New("down")}, Options{MaxRetries: 1})

	result := m.SendTokens(1, recipient, 1)
	require.False(t, result.Success)
	assert.Equal(t, CodeNotConnected, result.Error.Code)

	// 失败不留下任何缓存记录
	txs, err := m.Store().GetTransactionsByAddress(recipient, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSendTokensValidation(t *testing.T) {
	m := newTestManager(t, &fakeLedger{})

	result := m.SendTokens(1, recipient, 0)
	require.False(t, result.Success)
	assert.Equal(t, CodeInvalidRequest, result.Error.Code)

	result = m.SendTokens(1, recipient, -3)
	require.False(t, result.Success)
	assert.Equal(t, CodeInvalidRequest, result.Error.Code)

	result = m.SendTokens(1, "no-prefix", 1)
	require.False(t, result.Success)
	assert.Equal(t, CodeInvalidRequest, result.Error.Code)
}

func TestSendTokensSenderNotFound(t *testing.T) {
	m := newTestManager(t, &fakeLedger{})

	result := m.SendTokens(42, recipient, 1)
	require.False(t, result.Success)
	assert.Equal(t, CodeAccountNotFound, result.Error.Code)
}

func TestSendTokensInsufficientBalance(t *testing.T) {
	ledger := &fakeLedger{
		balances:       map[string]uint64{},
		transferDigest: "never",
	}
	m := newTestManager(t, ledger)

	sender, err := m.CreateAccount("poor")
	require.NoError(t, err)
	ledger.balances[sender.Address] = types.MistPerSui / 2

	result := m.SendTokens(sender.ID, recipient, 1)
	require.False(t, result.Success)
	assert.Equal(t, CodeInsufficientBalance, result.Error.Code)
	assert.Contains(t, result.Error.Message, "0.5 SUI")

	// 未发起链上调用，也没有缓存记录
	assert.Zero(t, ledger.transferCalls)
	txs, err := m.Store().GetTransactionsByAddress(sender.Address, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSendTokensLedgerFailureNotRetried(t *testing.T) {
	ledger := &fakeLedger{
		balances:    map[string]uint64{},
		transferErr: errors.New("gas object conflict"),
	}
	m := newTestManager(t, ledger)

	sender, err := m.CreateAccount("Alice")
	require.NoError(t, err)
	ledger.balances[sender.Address] = 10 * types.MistPerSui

	result := m.SendTokens(sender.ID, recipient, 1)
	require.False(t, result.Success)
	assert.Equal(t, CodeLedgerFailure, result.Error.Code)

	// 提交失败绝不自动重试
	assert.Equal(t, 1, ledger.transferCalls)
	txs, err := m.Store().GetTransactionsByAddress(sender.Address, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSendTokensBalanceQueryFailure(t *testing.T) {
	ledger := &fakeLedger{balances: map[string]uint64{}}
	m := newTestManager(t, ledger)

	sender, err := m.CreateAccount("Alice")
	require.NoError(t, err)
	ledger.balanceErr = errors.New("rpc timeout")

	result := m.SendTokens(sender.ID, recipient, 1)
	require.False(t, result.Success)
	assert.Equal(t, CodeLedgerFailure, result.Error.Code)
	assert.Zero(t, ledger.transferCalls)
}
