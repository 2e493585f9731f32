package models

import (
	"strings"
	"time"
)

// 角色名约定：super_admin 为全局管理员，内容管理员角色名以 _admin 结尾
const (
	RoleSuperAdmin  = "super_admin"
	AdminNameMarker = "_admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string    `gorm:"index" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // Hash
	Phone     string    `gorm:"size:20" json:"phone"`
	Bio       string    `gorm:"size:200" json:"bio"` // 个人简介
	Roles     []Role    `gorm:"many2many:user_roles;" json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAdminRole 是否持有任意管理员角色（删除权限用的宽判定）
func (u *User) HasAdminRole() bool {
	for _, r := range u.Roles {
		if r.Name == RoleSuperAdmin || strings.Contains(r.Name, AdminNameMarker) {
			return true
		}
	}
	return false
}

// Role 角色：super_admin 无主题绑定，内容管理员绑定唯一主题
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string    `gorm:"size:200" json:"description"`
	Topic       string    `gorm:"size:50" json:"topic"` // super_admin 为空
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Role) IsSuperAdmin() bool {
	return r.Name == RoleSuperAdmin
}
