package service

import (
	"errors"
	"time"

	"sui-wallet/internal/chain/types"
	crypto2 "sui-wallet/internal/crypto"
	"sui-wallet/internal/keys"
	"sui-wallet/internal/models"
	"sui-wallet/internal/repository"
)

// AccountView 账户的服务层视图
// 不含任何私钥材料，余额为尽力而为的实时查询结果
type AccountView struct {
	ID        uint      `json:"id"`
	Nickname  string    `json:"nickname"`
	Address   string    `json:"address"`
	Scheme    string    `json:"scheme"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Balance   float64   `json:"balance"`
}

func (m *Manager) accountView(acct *models.Account) *AccountView {
	return &AccountView{
		ID:        acct.ID,
		Nickname:  acct.Nickname,
		Address:   acct.Address,
		Scheme:    acct.Scheme,
		IsActive:  acct.IsActive,
		CreatedAt: acct.CreatedAt,
		Balance:   m.GetBalance(acct.Address),
	}
}

// CreateAccount 创建新账户
// 派生密钥对 -> 加密入库 -> 第一个账户自动激活 -> 附加实时余额
// （离线或地址未上链时余额为 0）
func (m *Manager) CreateAccount(nickname string) (*AccountView, error) {
	log.Infof("CreateAccount: generating new Sui account %q", nickname)

	if nickname == "" {
		nickname = "Account"
	}

	kp, err := keys.Generate()
	if err != nil {
		log.Errorf("CreateAccount: keypair generation failed: %v", err)
		return nil, newError(CodeCryptoFailure, "failed to generate keypair: %v", err)
	}

	m.accountMu.Lock()
	id, err := m.store.CreateAccount(nickname, kp.Address(), kp.Keystring(), models.SchemeEd25519)
	m.accountMu.Unlock()
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAddress) {
			return nil, newError(CodeDuplicateAddress, "address %s already exists", kp.Address())
		}
		if errors.Is(err, crypto2.ErrInvalidKeySize) {
			return nil, newError(CodeCryptoFailure, "failed to encrypt private key: %v", err)
		}
		log.Errorf("CreateAccount: failed to persist account: %v", err)
		return nil, newError(CodeStorageFailure, "failed to save account: %v", err)
	}

	acct, err := m.store.GetAccountByID(id)
	if err != nil {
		log.Errorf("CreateAccount: failed to reload account #%d: %v", id, err)
		return nil, newError(CodeStorageFailure, "failed to load account: %v", err)
	}

	log.Infof("CreateAccount: account #%d created, address %s", id, acct.Address)
	return m.accountView(acct), nil
}

// GetAllAccounts 获取所有账户，每个账户附加尽力而为的实时余额
func (m *Manager) GetAllAccounts() ([]*AccountView, error) {
	accounts, err := m.store.GetAllAccounts()
	if err != nil {
		log.Errorf("GetAllAccounts: failed to list accounts: %v", err)
		return nil, newError(CodeStorageFailure, "failed to list accounts: %v", err)
	}

	views := make([]*AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, m.accountView(&accounts[i]))
	}
	return views, nil
}

// GetAccount 根据 ID 获取账户
func (m *Manager) GetAccount(id uint) (*AccountView, error) {
	acct, err := m.store.GetAccountByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, newError(CodeAccountNotFound, "account %d not found", id)
		}
		return nil, newError(CodeStorageFailure, "failed to load account: %v", err)
	}
	return m.accountView(acct), nil
}

// GetActiveAccount 获取当前活动账户
// 库中没有账户时返回 (nil, nil)
func (m *Manager) GetActiveAccount() (*AccountView, error) {
	acct, err := m.store.GetActiveAccount()
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, newError(CodeStorageFailure, "failed to load active account: %v", err)
	}
	return m.accountView(acct), nil
}

// SwitchAccount 切换活动账户
// 目标不存在时返回 CodeAccountNotFound
func (m *Manager) SwitchAccount(id uint) (*AccountView, error) {
	log.Infof("SwitchAccount: switching active account to #%d", id)

	switched, err := m.store.SetActiveAccount(id)
	if err != nil {
		return nil, newError(CodeStorageFailure, "failed to switch account: %v", err)
	}
	if !switched {
		return nil, newError(CodeAccountNotFound, "account %d not found", id)
	}

	acct, err := m.store.GetAccountByID(id)
	if err != nil {
		return nil, newError(CodeStorageFailure, "failed to load account: %v", err)
	}
	log.Infof("SwitchAccount: active account is now %q (%s)", acct.Nickname, acct.Address)
	return m.accountView(acct), nil
}

// DeleteAccount 删除账户
// 最后一个账户不可删除；删除的是活动账户时由仓库层重新选举
func (m *Manager) DeleteAccount(id uint) error {
	log.Infof("DeleteAccount: deleting account #%d", id)

	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	if _, err := m.store.GetAccountByID(id); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return newError(CodeAccountNotFound, "account %d not found", id)
		}
		return newError(CodeStorageFailure, "failed to load account: %v", err)
	}

	count, err := m.store.CountAccounts()
	if err != nil {
		return newError(CodeStorageFailure, "failed to count accounts: %v", err)
	}
	if count <= 1 {
		log.Warnf("DeleteAccount: refusing to delete the last remaining account #%d", id)
		return newError(CodeLastAccount, "cannot delete the last remaining account")
	}

	deleted, err := m.store.DeleteAccount(id)
	if err != nil {
		return newError(CodeStorageFailure, "failed to delete account: %v", err)
	}
	if !deleted {
		return newError(CodeAccountNotFound, "account %d not found", id)
	}
	return nil
}

// UpdateNickname 更新账户昵称
func (m *Manager) UpdateNickname(id uint, nickname string) error {
	if nickname == "" {
		return newError(CodeInvalidRequest, "nickname must not be empty")
	}

	updated, err := m.store.UpdateAccountNickname(id, nickname)
	if err != nil {
		return newError(CodeStorageFailure, "failed to update nickname: %v", err)
	}
	if !updated {
		return newError(CodeAccountNotFound, "account %d not found", id)
	}
	return nil
}

// GetKeystring 导出账户私钥的序列化形式
// 明文只出现在返回值中，调用方负责妥善处置
func (m *Manager) GetKeystring(id uint) (string, error) {
	ks, err := m.store.GetPrivateKey(id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", newError(CodeAccountNotFound, "account %d not found", id)
		}
		if errors.Is(err, crypto2.ErrDecryptionFailed) || errors.Is(err, crypto2.ErrInvalidCiphertext) {
			return "", newError(CodeCryptoFailure, "failed to decrypt private key: %v", err)
		}
		return "", newError(CodeStorageFailure, "failed to load private key: %v", err)
	}
	return ks, nil
}

// GetBalance 查询地址余额（显示单位）
// 余额查询是尽力而为的：离线或任何账本查询失败时返回 0 而非错误
func (m *Manager) GetBalance(address string) float64 {
	if !m.IsConnected() {
		return 0
	}

	mist, err := m.ledger.GetBalance(address)
	if err != nil {
		log.Warnf("GetBalance: ledger query failed for %s: %v", address, err)
		return 0
	}
	return types.MistToSui(mist)
}
