package models

import (
	"time"
)

// Issue 反馈问题
type Issue struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	HostID      *uint      `gorm:"index" json:"host_id"` // 发布者，用户注销后置空
	Host        *User      `gorm:"foreignKey:HostID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"host"`
	Title       string     `gorm:"size:50;not null" json:"title"`
	TopicID     *uint      `gorm:"index" json:"topic_id"`
	Topic       *Topic     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"topic"`
	Date        *time.Time `json:"date"` // 问题发生时间
	Description string     `gorm:"size:1000" json:"description"`
	Status      string     `gorm:"default:'已提交，等待审核'" json:"status"`
	IsPublic    bool       `gorm:"default:true" json:"is_public"`
	Views       int        `gorm:"default:0" json:"views"`
	Likes       int        `gorm:"default:0" json:"likes"`
	Popularity  float64    `gorm:"default:0" json:"popularity"` // 热度缓存值 = likes*W_like + views*W_view
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IssueLike 点赞记录，一个用户对一个问题至多一条
type IssueLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_issue_like" json:"user_id"`
	IssueID   uint      `gorm:"not null;index;uniqueIndex:idx_user_issue_like" json:"issue_id"`
	Issue     Issue     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"issue"`
	CreatedAt time.Time `json:"created_at"`
}
