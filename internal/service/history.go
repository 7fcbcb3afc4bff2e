package service

import (
	"sui-wallet/internal/models"
	"sui-wallet/internal/repository"
)

// GetTransactionHistory 查询地址的交易历史
// 先做一次尽力而为的远端刷新，然后返回本地缓存；
// 刷新的任何失败都被吞掉并记录日志，绝不上抛给调用方。
func (m *Manager) GetTransactionHistory(address string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}

	m.refreshHistory(address, limit)

	txs, err := m.store.GetTransactionsByAddress(address, limit)
	if err != nil {
		log.Errorf("GetTransactionHistory: local cache read failed for %s: %v", address, err)
		return nil, newError(CodeStorageFailure, "failed to read transaction cache: %v", err)
	}
	return txs, nil
}

// refreshHistory 从远端账本回填本地缓存
// 只缓存能取到完整详情（对手方、金额、时间戳）的交易，
// 详情不全的 digest 视为未缓存，留待下次刷新。
func (m *Manager) refreshHistory(address string, limit int) {
	if !m.IsConnected() {
		return
	}

	digests, err := m.ledger.QueryTransactionDigests(address, limit)
	if err != nil {
		log.Warnf("refreshHistory: remote query failed for %s: %v", address, err)
		return
	}

	for _, digest := range digests {
		cached, err := m.store.GetTransactionByDigest(digest)
		if err != nil {
			log.Warnf("refreshHistory: cache lookup failed for %s: %v", digest, err)
			continue
		}
		if cached != nil {
			continue
		}

		detail, err := m.ledger.GetTransactionDetail(digest)
		if err != nil {
			log.Debugf("refreshHistory: skipping %s, detail not resolvable: %v", digest, err)
			continue
		}

		if _, err := m.store.SaveTransaction(detail.Digest, detail.FromAddress,
			detail.ToAddress, detail.Amount, models.TxStatusSuccess, detail.Timestamp); err != nil {
			log.Warnf("refreshHistory: failed to cache %s: %v", digest, err)
		}
	}
}

// GetTransactionStats 地址的本地交易统计
func (m *Manager) GetTransactionStats(address string) (*repository.TransactionStats, error) {
	stats, err := m.store.GetTransactionStats(address)
	if err != nil {
		return nil, newError(CodeStorageFailure, "failed to compute stats: %v", err)
	}
	return stats, nil
}
