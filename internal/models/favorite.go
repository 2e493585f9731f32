package models

import (
	"time"
)

// Favorite 收藏，一个用户对一个问题至多一条
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_issue_fav" json:"user_id"`
	IssueID   uint      `gorm:"not null;index;uniqueIndex:idx_user_issue_fav" json:"issue_id"`
	Issue     Issue     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"issue"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewHistory 浏览历史，记录"最后浏览时间"，同一 (user, issue) 只有一行
type ViewHistory struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index;uniqueIndex:idx_user_issue_view" json:"user_id"`
	IssueID  uint      `gorm:"not null;index;uniqueIndex:idx_user_issue_view" json:"issue_id"`
	Issue    Issue     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"issue"`
	ViewedAt time.Time `json:"viewed_at"`
}
