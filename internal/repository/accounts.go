package repository

import (
	"errors"

	crypto2 "sui-wallet/internal/crypto"
	"sui-wallet/internal/models"

	"gorm.io/gorm"
)

// CreateAccount 创建新账户
// 私钥先加密再入库；如果插入后是库中唯一的账户，则在同一事务内自动激活。
// 地址已存在时返回 ErrDuplicateAddress。
func (s *Store) CreateAccount(nickname, address, privateKey, scheme string) (uint, error) {
	log.Infof("CreateAccount: creating account %q with address %s", nickname, address)

	enc, err := crypto2.EncryptGCM([]byte(privateKey), s.encKey)
	if err != nil {
		log.Errorf("CreateAccount: failed to encrypt private key: %v", err)
		return 0, err
	}

	item := &models.Account{
		Nickname:            nickname,
		Address:             address,
		EncryptedPrivateKey: enc,
		Scheme:              scheme,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("address = ?", address).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateAddress
		}

		if err := tx.Create(item).Error; err != nil {
			return err
		}

		// 第一个账户自动设为活动账户
		var total int64
		if err := tx.Model(&models.Account{}).Count(&total).Error; err != nil {
			return err
		}
		if total == 1 {
			return tx.Model(&models.Account{}).Where("id = ?", item.ID).Update("is_active", true).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateAddress) {
			log.Warnf("CreateAccount: address %s already exists", address)
		} else {
			log.Errorf("CreateAccount: failed to create account: %v", err)
		}
		return 0, err
	}

	log.Infof("CreateAccount: successfully created account #%d (%s)", item.ID, address)
	return item.ID, nil
}

// GetAllAccounts 获取所有账户（不含私钥材料），按创建时间倒序
func (s *Store) GetAllAccounts() ([]models.Account, error) {
	log.Debug("GetAllAccounts: retrieving all accounts")

	var items []models.Account
	if err := s.DB.Omit("encrypted_private_key").
		Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		log.Errorf("GetAllAccounts: failed to query accounts: %v", err)
		return nil, err
	}

	log.Debugf("GetAllAccounts: found %d accounts", len(items))
	return items, nil
}

// GetAccountByID 根据 ID 获取账户（不含私钥材料）
func (s *Store) GetAccountByID(id uint) (*models.Account, error) {
	log.Debugf("GetAccountByID: retrieving account #%d", id)

	item := &models.Account{}
	if err := s.DB.Omit("encrypted_private_key").First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("GetAccountByID: account #%d not found", id)
			return nil, ErrAccountNotFound
		}
		log.Errorf("GetAccountByID: database error: %v", err)
		return nil, err
	}
	return item, nil
}

// GetAccountByAddress 根据地址获取账户（不含私钥材料）
func (s *Store) GetAccountByAddress(address string) (*models.Account, error) {
	log.Debugf("GetAccountByAddress: retrieving account for address %s", address)

	item := &models.Account{}
	if err := s.DB.Omit("encrypted_private_key").
		Where("address = ?", address).First(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("GetAccountByAddress: no account for address %s", address)
			return nil, ErrAccountNotFound
		}
		log.Errorf("GetAccountByAddress: database error: %v", err)
		return nil, err
	}
	return item, nil
}

// GetActiveAccount 获取当前活动账户
// 不存在活动账户时返回 ErrAccountNotFound
func (s *Store) GetActiveAccount() (*models.Account, error) {
	log.Debug("GetActiveAccount: retrieving active account")

	item := &models.Account{}
	if err := s.DB.Omit("encrypted_private_key").
		Where("is_active = ?", true).First(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug("GetActiveAccount: no active account")
			return nil, ErrAccountNotFound
		}
		log.Errorf("GetActiveAccount: database error: %v", err)
		return nil, err
	}
	return item, nil
}

// GetPrivateKey 按需解密并返回账户私钥的序列化形式
// 明文仅存在于本次调用的返回值中，不做任何缓存
func (s *Store) GetPrivateKey(id uint) (string, error) {
	log.Debugf("GetPrivateKey: retrieving private key for account #%d", id)

	item := &models.Account{}
	if err := s.DB.Select("encrypted_private_key").First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("GetPrivateKey: account #%d not found", id)
			return "", ErrAccountNotFound
		}
		log.Errorf("GetPrivateKey: database error: %v", err)
		return "", err
	}

	plain, err := crypto2.DecryptGCM(item.EncryptedPrivateKey, s.encKey)
	if err != nil {
		log.Errorf("GetPrivateKey: failed to decrypt key for account #%d: %v", id, err)
		return "", err
	}

	log.Debugf("GetPrivateKey: successfully decrypted key for account #%d", id)
	return string(plain), nil
}

// SetActiveAccount 切换活动账户
// 在单个事务内先清除所有账户的活动标志，再设置目标账户，
// 保证任何时刻最多只有一个活动账户。目标不存在时返回 false。
func (s *Store) SetActiveAccount(id uint) (bool, error) {
	log.Infof("SetActiveAccount: activating account #%d", id)

	var switched bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		if err := tx.Model(&models.Account{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", id).
			Update("is_active", true).Error; err != nil {
			return err
		}
		switched = true
		return nil
	})
	if err != nil {
		log.Errorf("SetActiveAccount: failed to activate account #%d: %v", id, err)
		return false, err
	}

	if !switched {
		log.Warnf("SetActiveAccount: account #%d not found", id)
		return false, nil
	}
	log.Infof("SetActiveAccount: account #%d is now active", id)
	return true, nil
}

// UpdateAccountNickname 更新账户昵称
// 账户不存在时返回 false
func (s *Store) UpdateAccountNickname(id uint, nickname string) (bool, error) {
	log.Infof("UpdateAccountNickname: renaming account #%d to %q", id, nickname)

	res := s.DB.Model(&models.Account{}).Where("id = ?", id).Update("nickname", nickname)
	if res.Error != nil {
		log.Errorf("UpdateAccountNickname: failed to update nickname: %v", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAccount 删除账户
// 在单个事务内执行删除；如果被删除的是活动账户且仍有其余账户，
// 则重新选举一个剩余账户为活动账户。账户不存在时返回 false。
// 最后一个账户的保护策略由调用方（钱包服务）负责。
func (s *Store) DeleteAccount(id uint) (bool, error) {
	log.Infof("DeleteAccount: deleting account #%d", id)

	var deleted bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		item := &models.Account{}
		if err := tx.Select("id", "is_active").First(item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Delete(&models.Account{}, id).Error; err != nil {
			return err
		}
		deleted = true

		// 删除的是活动账户时重新选举
		if item.IsActive {
			next := &models.Account{}
			if err := tx.Select("id").Order("created_at DESC, id DESC").
				First(next).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			if err := tx.Model(&models.Account{}).Where("id = ?", next.ID).
				Update("is_active", true).Error; err != nil {
				return err
			}
			log.Infof("DeleteAccount: re-elected account #%d as active", next.ID)
		}
		return nil
	})
	if err != nil {
		log.Errorf("DeleteAccount: failed to delete account #%d: %v", id, err)
		return false, err
	}

	if !deleted {
		log.Warnf("DeleteAccount: account #%d not found", id)
		return false, nil
	}
	log.Infof("DeleteAccount: account #%d deleted successfully", id)
	return true, nil
}

// CountAccounts 返回账户总数
func (s *Store) CountAccounts() (int64, error) {
	var count int64
	if err := s.DB.Model(&models.Account{}).Count(&count).Error; err != nil {
		log.Errorf("CountAccounts: failed to count accounts: %v", err)
		return 0, err
	}
	return count, nil
}
