package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeStatusUpdate NotificationType = "status_update" // 状态更新
	NotificationTypeAdminReply   NotificationType = "admin_reply"   // 管理员回复
	NotificationTypeNewComment   NotificationType = "new_comment"   // 新评论
	NotificationTypeIssueLiked   NotificationType = "issue_liked"   // 问题被点赞
	NotificationTypeSystem       NotificationType = "system"        // 系统通知
)

type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	Recipient   User             `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"recipient"`
	SenderID    *uint            `gorm:"index" json:"sender_id"`
	Sender      *User            `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"sender"`
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title       string           `gorm:"size:100;not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	IssueID     *uint            `gorm:"index" json:"issue_id"`
	Issue       *Issue           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"issue"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
