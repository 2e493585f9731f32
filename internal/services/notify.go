package services

import (
	"fmt"
	"log"
	"strings"

	"dovelink/internal/models"

	"gorm.io/gorm"
)

// Notifier 通知扇出引擎 + 读取状态跟踪。
// 每个入口对应一种领域事件，接收者集合是确定性的；
// 通知写入失败只记日志，不影响触发它的主操作。
type Notifier struct {
	db  *gorm.DB
	dir *Directory
}

func NewNotifier(db *gorm.DB, dir *Directory) *Notifier {
	return &Notifier{db: db, dir: dir}
}

// create 写入单条通知。接收者缺失时直接跳过。
func (n *Notifier) create(recipientID uint, senderID *uint, typ models.NotificationType, title, message string, issueID *uint) {
	notification := models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		Title:       title,
		Message:     message,
		IssueID:     issueID,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		log.Printf("创建通知失败 recipient=%d type=%s: %v", recipientID, typ, err)
	}
}

// OnStatusChange 问题状态变化后通知发布者
func (n *Notifier) OnStatusChange(issue *models.Issue, oldStatus, newStatus string) {
	if issue.HostID == nil || oldStatus == newStatus {
		return
	}
	n.create(*issue.HostID, nil, models.NotificationTypeStatusUpdate,
		"您的问题状态已更新",
		fmt.Sprintf("您的问题「%s」状态从「%s」更新为「%s」", issue.Title, oldStatus, newStatus),
		&issue.ID)
}

// OnAdminReply 管理员回复后通知问题发布者
func (n *Notifier) OnAdminReply(reply *models.Reply, issue *models.Issue) {
	if issue.HostID == nil || reply.AdministratorID == nil {
		return
	}
	n.create(*issue.HostID, reply.AdministratorID, models.NotificationTypeAdminReply,
		"管理员回复了您的问题",
		fmt.Sprintf("管理员回复了您的问题「%s」：%s", issue.Title, truncate(reply.Content, 50)),
		&issue.ID)
}

// OnNewComment 新评论：通知发布者（评论者非本人时），
// 并通知该问题下除当前评论者和发布者之外的所有历史评论者（按用户去重）。
func (n *Notifier) OnNewComment(msg *models.Message, issue *models.Issue, commenter *models.User) {
	if issue.HostID != nil && (msg.UserID == nil || *msg.UserID != *issue.HostID) {
		n.create(*issue.HostID, msg.UserID, models.NotificationTypeNewComment,
			"您的问题有新评论",
			fmt.Sprintf("用户「%s」评论了您的问题「%s」：%s", commenter.Username, issue.Title, truncate(msg.Body, 50)),
			&issue.ID)
	}

	var otherIDs []uint
	q := n.db.Model(&models.Message{}).
		Distinct("user_id").
		Where("issue_id = ? AND user_id IS NOT NULL", issue.ID)
	if msg.UserID != nil {
		q = q.Where("user_id <> ?", *msg.UserID)
	}
	if issue.HostID != nil {
		q = q.Where("user_id <> ?", *issue.HostID)
	}
	if err := q.Pluck("user_id", &otherIDs).Error; err != nil {
		log.Printf("查询历史评论者失败 issue=%d: %v", issue.ID, err)
		return
	}
	for _, uid := range otherIDs {
		n.create(uid, msg.UserID, models.NotificationTypeNewComment,
			"您参与的问题有新评论",
			fmt.Sprintf("用户「%s」在问题「%s」中发表了新评论", commenter.Username, issue.Title),
			&issue.ID)
	}
}

// OnIssueLiked 问题被点赞后通知发布者（点赞者非本人时）
func (n *Notifier) OnIssueLiked(issue *models.Issue, liker *models.User) {
	if issue.HostID == nil || liker.ID == *issue.HostID {
		return
	}
	n.create(*issue.HostID, &liker.ID, models.NotificationTypeIssueLiked,
		"您的问题被点赞",
		fmt.Sprintf("用户「%s」点赞了您的问题「%s」", liker.Username, issue.Title),
		&issue.ID)
}

// OnNewIssue 新问题：遍历所有持有角色的用户，super_admin 全部通知，
// 内容管理员按主题匹配通知。管理员数量级小，全量扫描可接受。
func (n *Notifier) OnNewIssue(issue *models.Issue, topicName string) {
	admins, err := n.dir.ListAdmins()
	if err != nil {
		log.Printf("查询管理员列表失败: %v", err)
		return
	}
	for _, admin := range admins {
		notify := false
		for _, role := range admin.Roles {
			if role.IsSuperAdmin() {
				notify = true
				break
			}
			if role.Topic != "" && strings.EqualFold(role.Topic, topicName) {
				notify = true
				break
			}
		}
		if notify {
			n.create(admin.ID, nil, models.NotificationTypeSystem,
				"有新的问题提交",
				fmt.Sprintf("新问题「%s」已提交，主题：%s", issue.Title, topicName),
				&issue.ID)
		}
	}
}

// List 按时间倒序列出通知。adminScoped 时再次套用主题匹配规则：
// super_admin 不过滤，内容管理员只看到关联问题主题匹配的通知。
func (n *Notifier) List(userID uint, isRead *bool, adminScoped bool) ([]models.Notification, error) {
	q := n.db.Preload("Sender").Preload("Issue").
		Where("recipient_id = ?", userID).
		Order("created_at DESC")
	if isRead != nil {
		q = q.Where("is_read = ?", *isRead)
	}
	q, err := n.applyAdminScope(q, userID, adminScoped)
	if err != nil {
		return nil, err
	}

	var notifications []models.Notification
	err = q.Find(&notifications).Error
	return notifications, err
}

// UnreadCount 未读数量，adminScoped 语义同 List
func (n *Notifier) UnreadCount(userID uint, adminScoped bool) (int64, error) {
	q := n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false)
	q, err := n.applyAdminScope(q, userID, adminScoped)
	if err != nil {
		return 0, err
	}

	var count int64
	err = q.Count(&count).Error
	return count, err
}

func (n *Notifier) applyAdminScope(q *gorm.DB, userID uint, adminScoped bool) (*gorm.DB, error) {
	if !adminScoped {
		return q, nil
	}
	super, err := n.dir.IsSuperAdmin(userID)
	if err != nil {
		return nil, err
	}
	if super {
		return q, nil
	}
	topics, err := n.dir.TopicsOf(userID)
	if err != nil {
		return nil, err
	}
	lowered := make([]string, len(topics))
	for i, t := range topics {
		lowered[i] = strings.ToLower(t)
	}
	sub := n.db.Model(&models.Issue{}).Select("issues.id").
		Joins("JOIN topics ON topics.id = issues.topic_id").
		Where("LOWER(topics.name) IN ?", lowered)
	return q.Where("issue_id IN (?)", sub), nil
}

// MarkRead 将属于该用户的指定通知标记为已读，返回实际更新条数
func (n *Notifier) MarkRead(ids []uint, userID uint) (int64, error) {
	res := n.db.Model(&models.Notification{}).
		Where("id IN ? AND recipient_id = ?", ids, userID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// MarkAllRead 全部标记为已读
func (n *Notifier) MarkAllRead(userID uint) (int64, error) {
	res := n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// truncate 截断到 max 个字符（按 rune）
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
