package services

import (
	"strings"

	"dovelink/internal/models"

	"gorm.io/gorm"
)

// Visibility 管理员可见性过滤。
// 主题匹配规则：主题名大小写不敏感的全等比较，可见性过滤和通知扇出共用
// matchesTopic，保证两处语义一致。
type Visibility struct {
	db  *gorm.DB
	dir *Directory
}

func NewVisibility(db *gorm.DB, dir *Directory) *Visibility {
	return &Visibility{db: db, dir: dir}
}

// matchesTopic 主题名匹配：大小写不敏感全等
func matchesTopic(topics []string, name string) bool {
	for _, t := range topics {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// VisibleIssues 返回 actor 可见的问题集合。
// super_admin 看到所有公开问题；内容管理员只看到主题匹配的公开问题；
// 零角色用户得到空集。
func (v *Visibility) VisibleIssues(actorID uint) ([]models.Issue, error) {
	super, err := v.dir.IsSuperAdmin(actorID)
	if err != nil {
		return nil, err
	}

	q := v.db.Preload("Topic").Preload("Host").Where("is_public = ?", true)
	if !super {
		topics, err := v.dir.TopicsOf(actorID)
		if err != nil {
			return nil, err
		}
		if len(topics) == 0 {
			return []models.Issue{}, nil
		}
		q = q.Where("topic_id IN (?)", v.topicIDQuery(topics))
	}

	var issues []models.Issue
	err = q.Order("updated_at DESC, created_at DESC").Find(&issues).Error
	return issues, err
}

// topicIDQuery 子查询：名字（忽略大小写）在集合内的主题 ID
func (v *Visibility) topicIDQuery(topics []string) *gorm.DB {
	lowered := make([]string, len(topics))
	for i, t := range topics {
		lowered[i] = strings.ToLower(t)
	}
	return v.db.Model(&models.Topic{}).Select("id").Where("LOWER(name) IN ?", lowered)
}

// CanReply 管理员是否可以回复该问题（主题范围判定），每次回复前服务端校验
func (v *Visibility) CanReply(actorID uint, issue *models.Issue) (bool, error) {
	super, err := v.dir.IsSuperAdmin(actorID)
	if err != nil {
		return false, err
	}
	if super {
		return true, nil
	}
	if issue.TopicID == nil {
		return false, nil
	}
	topicName, err := v.topicName(*issue.TopicID)
	if err != nil {
		return false, err
	}
	topics, err := v.dir.TopicsOf(actorID)
	if err != nil {
		return false, err
	}
	return matchesTopic(topics, topicName), nil
}

// CanDelete 删除权限比回复权限宽：发布者本人、super_admin、
// 或任意角色名含管理员标记的用户都可以删除，不做主题限定。
func (v *Visibility) CanDelete(actor *models.User, issue *models.Issue) bool {
	if issue.HostID != nil && *issue.HostID == actor.ID {
		return true
	}
	return actor.HasAdminRole()
}

func (v *Visibility) topicName(topicID uint) (string, error) {
	var topic models.Topic
	if err := v.db.First(&topic, topicID).Error; err != nil {
		return "", err
	}
	return topic.Name, nil
}
