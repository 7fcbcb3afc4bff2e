package repository

import (
	"errors"

	"sui-wallet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetSetting 写入配置项，后写覆盖
func (s *Store) SetSetting(key, value string) error {
	log.Debugf("SetSetting: setting %s", key)

	item := &models.Setting{Key: key, Value: value}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(item).Error
	if err != nil {
		log.Errorf("SetSetting: failed to set %s: %v", key, err)
		return err
	}
	return nil
}

// GetSetting 读取配置项
// 不存在时返回 ErrSettingNotFound
func (s *Store) GetSetting(key string) (string, error) {
	item := &models.Setting{}
	if err := s.DB.Where("key = ?", key).First(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSettingNotFound
		}
		log.Errorf("GetSetting: failed to get %s: %v", key, err)
		return "", err
	}
	return item.Value, nil
}

// GetAllSettings 读取全部配置项
func (s *Store) GetAllSettings() (map[string]string, error) {
	var items []models.Setting
	if err := s.DB.Find(&items).Error; err != nil {
		log.Errorf("GetAllSettings: query failed: %v", err)
		return nil, err
	}

	result := make(map[string]string, len(items))
	for _, item := range items {
		result[item.Key] = item.Value
	}
	return result, nil
}

// DeleteSetting 删除配置项
// 配置不存在时返回 false
func (s *Store) DeleteSetting(key string) (bool, error) {
	res := s.DB.Delete(&models.Setting{}, "key = ?", key)
	if res.Error != nil {
		log.Errorf("DeleteSetting: failed to delete %s: %v", key, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
