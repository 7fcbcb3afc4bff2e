package service

import (
	"errors"
	"strings"
	"time"

	"sui-wallet/internal/chain/types"
	crypto2 "sui-wallet/internal/crypto"
	"sui-wallet/internal/keys"
	"sui-wallet/internal/models"
	"sui-wallet/internal/repository"
)

// TransferResult 转账操作的判别结果
// 每次调用都返回成功或带分类的失败，失败时不保存任何交易记录
type TransferResult struct {
	Success   bool         `json:"success"`
	Digest    string       `json:"digest,omitempty"`
	From      string       `json:"from,omitempty"`
	To        string       `json:"to,omitempty"`
	Amount    float64      `json:"amount,omitempty"`
	Timestamp time.Time    `json:"timestamp,omitempty"`
	Error     *WalletError `json:"error,omitempty"`
}

func transferFailure(code ErrorCode, format string, args ...interface{}) *TransferResult {
	return &TransferResult{Success: false, Error: newError(code, format, args...)}
}

// SendTokens 执行转账
// 前置条件：服务在线、能解析发送方签名密钥、实时余额充足。
// 成功时以链端 digest 为键保存一条 success 状态的交易记录；
// 任何前置条件失败或账本错误都原样上报，绝不自动重试
// （静默重提交有双花风险）。
func (m *Manager) SendTokens(fromID uint, toAddr string, amount float64) *TransferResult {
	log.Infof("SendTokens: sending %f SUI from account #%d to %s", amount, fromID, toAddr)

	if !m.IsConnected() {
		log.Warn("SendTokens: rejected, not connected to network")
		return transferFailure(CodeNotConnected, "not connected to network")
	}

	if amount <= 0 {
		return transferFailure(CodeInvalidRequest, "amount must be positive")
	}
	if !strings.HasPrefix(toAddr, "0x") {
		return transferFailure(CodeInvalidRequest, "invalid recipient address: %s", toAddr)
	}

	amountMist, err := types.SuiToMist(amount)
	if err != nil {
		return transferFailure(CodeInvalidRequest, "invalid amount: %v", err)
	}

	// 解析发送方账户与签名密钥
	sender, err := m.store.GetAccountByID(fromID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return transferFailure(CodeAccountNotFound, "sender account %d not found", fromID)
		}
		return transferFailure(CodeStorageFailure, "failed to load sender account: %v", err)
	}

	keystring, err := m.store.GetPrivateKey(fromID)
	if err != nil {
		if errors.Is(err, crypto2.ErrDecryptionFailed) || errors.Is(err, crypto2.ErrInvalidCiphertext) {
			log.Errorf("SendTokens: failed to decrypt key for account #%d: %v", fromID, err)
			return transferFailure(CodeCryptoFailure, "could not get sender keypair")
		}
		return transferFailure(CodeStorageFailure, "failed to load sender key: %v", err)
	}

	kp, err := keys.ParseKeystring(keystring)
	if err != nil {
		log.Errorf("SendTokens: invalid keystring for account #%d: %v", fromID, err)
		return transferFailure(CodeCryptoFailure, "could not get sender keypair")
	}

	// 余额充足性用实时查询判断，不信任缓存
	balanceMist, err := m.ledger.GetBalance(sender.Address)
	if err != nil {
		log.Errorf("SendTokens: balance query failed for %s: %v", sender.Address, err)
		return transferFailure(CodeLedgerFailure, "failed to query balance: %v", err)
	}
	if balanceMist < amountMist {
		log.Warnf("SendTokens: insufficient balance for %s: have %d MIST, need %d MIST",
			sender.Address, balanceMist, amountMist)
		return transferFailure(CodeInsufficientBalance,
			"insufficient balance (%g SUI)", types.MistToSui(balanceMist))
	}

	digest, err := m.ledger.TransferSui(kp, toAddr, amountMist)
	if err != nil {
		log.Errorf("SendTokens: transfer failed: %v", err)
		return transferFailure(CodeLedgerFailure, "transfer failed: %v", err)
	}

	timestamp := time.Now()
	if _, err := m.store.SaveTransaction(digest, sender.Address, toAddr, amount,
		models.TxStatusSuccess, timestamp); err != nil {
		// 链上已成功，缓存失败只记录日志，结果仍为成功
		log.Errorf("SendTokens: transfer %s succeeded but caching failed: %v", digest, err)
	}

	log.Infof("SendTokens: transfer successful, digest %s", digest)
	return &TransferResult{
		Success:   true,
		Digest:    digest,
		From:      sender.Address,
		To:        toAddr,
		Amount:    amount,
		Timestamp: timestamp,
	}
}
