package models

import (
	"time"
)

// Reply 管理员对问题的官方回复
type Reply struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AdministratorID *uint     `gorm:"index" json:"administrator_id"`
	Administrator   *User     `gorm:"foreignKey:AdministratorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"administrator"`
	IssueID         uint      `gorm:"not null;index" json:"issue_id"`
	Issue           Issue     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"issue"`
	Content         string    `gorm:"size:1000;not null" json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Message 普通用户在问题下的评论
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user"`
	IssueID   uint      `gorm:"not null;index" json:"issue_id"`
	Issue     Issue     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"issue"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
