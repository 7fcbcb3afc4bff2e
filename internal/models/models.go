package models

import (
	"time"
)

// 签名方案，目前仅支持 Ed25519
const SchemeEd25519 = "ed25519"

// 交易状态
const (
	TxStatusPending = "pending"
	TxStatusSuccess = "success"
	TxStatusFailed  = "failed"
)

// Account 钱包账户
// 私钥始终以密文形式存储，序列化时不输出
type Account struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Nickname            string    `gorm:"size:64;not null" json:"nickname"`
	Address             string    `gorm:"size:128;uniqueIndex;not null" json:"address"`
	EncryptedPrivateKey []byte    `gorm:"type:blob;not null" json:"-"`
	Scheme              string    `gorm:"size:32;default:ed25519" json:"scheme"`
	IsActive            bool      `gorm:"default:false" json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

// Transaction 本地交易缓存
// digest 由链端分配，全局唯一，重复插入视为无操作
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Digest      string    `gorm:"size:128;uniqueIndex;not null" json:"digest"`
	FromAddress string    `gorm:"size:128;index;not null" json:"fromAddress"`
	ToAddress   string    `gorm:"size:128;index;not null" json:"toAddress"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Status      string    `gorm:"size:16;default:pending" json:"status"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Transaction) TableName() string { return "transactions" }

// Setting 键值配置项，后写覆盖
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Setting) TableName() string { return "settings" }
