package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sui-wallet/internal/chain/types"
	"sui-wallet/internal/models"
)

const historyAddr = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

func TestGetTransactionHistoryRefreshesCache(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	ledger := &fakeLedger{
		digests: []string{"d1", "d2"},
		details: map[string]*types.TransactionDetail{
			"d1": {Digest: "d1", FromAddress: historyAddr, ToAddress: recipient, Amount: 1, Timestamp: now},
			"d2": {Digest: "d2", FromAddress: historyAddr, ToAddress: recipient, Amount: 2, Timestamp: now.Add(time.Minute)},
		},
	}
	m := newTestManager(t, ledger)

	txs, err := m.GetTransactionHistory(historyAddr, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "d2", txs[0].Digest)
	assert.Equal(t, "d1", txs[1].Digest)
	assert.Equal(t, models.TxStatusSuccess, txs[0].Status)
}

func TestHistorySkipsUnresolvableDetails(t *testing.T) {
	now := time.Now()
	ledger := &fakeLedger{
		digests: []string{"good", "bad"},
		details: map[string]*types.TransactionDetail{
			// "bad" 无详情，取详情会失败
			"good": {Digest: "good", FromAddress: historyAddr, ToAddress: recipient, Amount: 1, Timestamp: now},
		},
	}
	m := newTestManager(t, ledger)

	txs, err := m.GetTransactionHistory(historyAddr, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "good", txs[0].Digest)

	// 详情不全的 digest 不留占位记录
	tx, err := m.Store().GetTransactionByDigest("bad")
	require.NoError(t, err)
	assert.Nil(t, tx)

	// 详情补全后下次刷新即可入缓存
	ledger.details["bad"] = &types.TransactionDetail{
		Digest: "bad", FromAddress: historyAddr, ToAddress: recipient, Amount: 2, Timestamp: now,
	}
	txs, err = m.GetTransactionHistory(historyAddr, 10)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestHistoryRemoteFailureFallsBackToCache(t *testing.T) {
	ledger := &fakeLedger{digestsErr: errors.New("rpc timeout")}
	m := newTestManager(t, ledger)

	// 预置一条本地缓存
	_, err := m.Store().SaveTransaction("cached", historyAddr, recipient, 1,
		models.TxStatusSuccess, time.Now())
	require.NoError(t, err)

	txs, err := m.GetTransactionHistory(historyAddr, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "cached", txs[0].Digest)
}

func TestHistoryOfflineServesCache(t *testing.T) {
	m := NewManager(newTestStore(t), &fakeLedger{versionErr: errors.New("down")}, Options{MaxRetries: 1})

	_, err := m.Store().SaveTransaction("cached", historyAddr, recipient, 1,
		models.TxStatusSuccess, time.Now())
	require.NoError(t, err)

	txs, err := m.GetTransactionHistory(historyAddr, 10)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestHistoryRefreshIsIdempotent(t *testing.T) {
	now := time.Now()
	ledger := &fakeLedger{
		digests: []string{"d1"},
		details: map[string]*types.TransactionDetail{
			"d1": {Digest: "d1", FromAddress: historyAddr, ToAddress: recipient, Amount: 1, Timestamp: now},
		},
	}
	m := newTestManager(t, ledger)

	for i := 0; i < 3; i++ {
		txs, err := m.GetTransactionHistory(historyAddr, 10)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	}
}

func TestGetTransactionStatsService(t *testing.T) {
	m := newTestManager(t, &fakeLedger{})

	_, err := m.Store().SaveTransaction("d1", historyAddr, recipient, 3,
		models.TxStatusSuccess, time.Now())
	require.NoError(t, err)

	stats, err := m.GetTransactionStats(historyAddr)
	require.NoError(t, err)
	assert.Equal(t, 3.0, stats.TotalSent)
	assert.Equal(t, int64(1), stats.TotalTransactions)
}
