package models

import (
	"time"
)

// InvitationCode 单次使用的角色邀请码
type InvitationCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"uniqueIndex;size:8;not null" json:"code"`
	RoleID    uint       `gorm:"not null;index" json:"role_id"`
	Role      Role       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"role"`
	Used      bool       `gorm:"default:false;index" json:"used"`
	UsedByID  *uint      `gorm:"index" json:"used_by_id"`
	UsedBy    *User      `gorm:"foreignKey:UsedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}
