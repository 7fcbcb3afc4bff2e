package repository

import (
	"errors"
	"time"

	"sui-wallet/internal/models"

	"gorm.io/gorm"
)

// SaveTransaction 保存交易到本地缓存
// digest 唯一标识一笔交易：重复保存同一 digest 是无操作，返回 (0, nil) 而非错误
func (s *Store) SaveTransaction(digest, fromAddr, toAddr string, amount float64, status string, timestamp time.Time) (uint, error) {
	log.Infof("SaveTransaction: caching transaction %s (%s -> %s)", digest, fromAddr, toAddr)

	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	item := &models.Transaction{
		Digest:      digest,
		FromAddress: fromAddr,
		ToAddress:   toAddr,
		Amount:      amount,
		Status:      status,
		Timestamp:   timestamp,
	}

	var duplicate bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Transaction{}).Where("digest = ?", digest).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			duplicate = true
			return nil
		}
		return tx.Create(item).Error
	})
	if err != nil {
		log.Errorf("SaveTransaction: failed to save transaction %s: %v", digest, err)
		return 0, err
	}

	if duplicate {
		log.Debugf("SaveTransaction: transaction %s already cached, skipping", digest)
		return 0, nil
	}
	log.Infof("SaveTransaction: transaction %s cached with ID %d", digest, item.ID)
	return item.ID, nil
}

// GetTransactionsByAddress 查询地址相关的交易
// 匹配发送方或接收方，按链上时间戳倒序，最多返回 limit 条
func (s *Store) GetTransactionsByAddress(address string, limit int) ([]models.Transaction, error) {
	log.Debugf("GetTransactionsByAddress: querying transactions for %s (limit %d)", address, limit)

	if limit <= 0 {
		limit = 20
	}

	var items []models.Transaction
	if err := s.DB.Where("from_address = ? OR to_address = ?", address, address).
		Order("timestamp DESC").Limit(limit).Find(&items).Error; err != nil {
		log.Errorf("GetTransactionsByAddress: query failed: %v", err)
		return nil, err
	}

	log.Debugf("GetTransactionsByAddress: found %d transactions for %s", len(items), address)
	return items, nil
}

// GetTransactionByDigest 根据 digest 查询单笔交易
// 未缓存时返回 (nil, nil)
func (s *Store) GetTransactionByDigest(digest string) (*models.Transaction, error) {
	item := &models.Transaction{}
	if err := s.DB.Where("digest = ?", digest).First(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Errorf("GetTransactionByDigest: query failed for %s: %v", digest, err)
		return nil, err
	}
	return item, nil
}

// UpdateTransactionStatus 更新交易状态
// 交易不存在时返回 false
func (s *Store) UpdateTransactionStatus(digest, status string) (bool, error) {
	log.Infof("UpdateTransactionStatus: setting %s to %s", digest, status)

	res := s.DB.Model(&models.Transaction{}).Where("digest = ?", digest).Update("status", status)
	if res.Error != nil {
		log.Errorf("UpdateTransactionStatus: update failed for %s: %v", digest, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransactionStats 地址的交易统计
type TransactionStats struct {
	TotalSent         float64 `json:"totalSent"`
	TotalReceived     float64 `json:"totalReceived"`
	TotalTransactions int64   `json:"totalTransactions"`
	NetFlow           float64 `json:"netFlow"`
}

// GetTransactionStats 统计地址的发送、接收总额和交易数
// 只计入 success 状态的交易金额
func (s *Store) GetTransactionStats(address string) (*TransactionStats, error) {
	log.Debugf("GetTransactionStats: computing stats for %s", address)

	stats := &TransactionStats{}

	if err := s.DB.Model(&models.Transaction{}).
		Where("from_address = ? AND status = ?", address, models.TxStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalSent).Error; err != nil {
		log.Errorf("GetTransactionStats: failed to sum sent amounts: %v", err)
		return nil, err
	}

	if err := s.DB.Model(&models.Transaction{}).
		Where("to_address = ? AND status = ?", address, models.TxStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalReceived).Error; err != nil {
		log.Errorf("GetTransactionStats: failed to sum received amounts: %v", err)
		return nil, err
	}

	if err := s.DB.Model(&models.Transaction{}).
		Where("from_address = ? OR to_address = ?", address, address).
		Count(&stats.TotalTransactions).Error; err != nil {
		log.Errorf("GetTransactionStats: failed to count transactions: %v", err)
		return nil, err
	}

	stats.NetFlow = stats.TotalReceived - stats.TotalSent
	return stats, nil
}
