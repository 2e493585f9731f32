package services

import (
	"dovelink/internal/models"

	"gorm.io/gorm"
)

// Directory 角色/主题目录：纯查询，无副作用。
// 零角色用户得到空集合，而不是错误。
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// RolesOf 返回用户持有的全部角色
func (d *Directory) RolesOf(userID uint) ([]models.Role, error) {
	var roles []models.Role
	err := d.db.
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	return roles, err
}

// IsSuperAdmin 是否持有 super_admin 角色
func (d *Directory) IsSuperAdmin(userID uint) (bool, error) {
	var count int64
	err := d.db.Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, models.RoleSuperAdmin).
		Count(&count).Error
	return count > 0, err
}

// TopicsOf 返回用户所有非 super 角色绑定的主题名集合
func (d *Directory) TopicsOf(userID uint) ([]string, error) {
	roles, err := d.RolesOf(userID)
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(roles))
	seen := make(map[string]bool)
	for _, r := range roles {
		if r.IsSuperAdmin() || r.Topic == "" {
			continue
		}
		if !seen[r.Topic] {
			seen[r.Topic] = true
			topics = append(topics, r.Topic)
		}
	}
	return topics, nil
}

// ListAdmins 返回持有至少一个角色的用户（含角色），用于新问题的全量扇出
func (d *Directory) ListAdmins() ([]models.User, error) {
	var users []models.User
	err := d.db.Preload("Roles").
		Where("id IN (SELECT DISTINCT user_id FROM user_roles)").
		Find(&users).Error
	return users, err
}
