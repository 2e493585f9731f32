package services

import (
	"errors"
	"time"

	"dovelink/internal/models"

	"gorm.io/gorm"
)

// Favorites 收藏与浏览历史。两者都按 (user, issue) 唯一，
// 浏览历史是 upsert（只更新最后浏览时间），天然无竞态。
type Favorites struct {
	db *gorm.DB
}

func NewFavorites(db *gorm.DB) *Favorites {
	return &Favorites{db: db}
}

// Toggle 收藏开关，返回切换后的状态
func (s *Favorites) Toggle(userID, issueID uint) (favorited bool, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var issue models.Issue
		if err := tx.First(&issue, issueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing models.Favorite
		findErr := tx.Where("user_id = ? AND issue_id = ?", userID, issueID).First(&existing).Error
		switch {
		case findErr == nil:
			favorited = false
			return tx.Delete(&existing).Error
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			favorited = true
			return tx.Create(&models.Favorite{UserID: userID, IssueID: issueID}).Error
		default:
			return findErr
		}
	})
	return favorited, err
}

// ListFavorites 按收藏时间倒序
func (s *Favorites) ListFavorites(userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.db.Preload("Issue").Preload("Issue.Topic").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}

// RecordHistory 更新"最后浏览时间"，同一 (user, issue) 只保留一行
func (s *Favorites) RecordHistory(userID, issueID uint) error {
	now := time.Now()
	var existing models.ViewHistory
	err := s.db.Where("user_id = ? AND issue_id = ?", userID, issueID).First(&existing).Error
	switch {
	case err == nil:
		return s.db.Model(&existing).Update("viewed_at", now).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		record := models.ViewHistory{UserID: userID, IssueID: issueID, ViewedAt: now}
		createErr := s.db.Create(&record).Error
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// 并发写入了同一行，改走更新
			return s.db.Model(&models.ViewHistory{}).
				Where("user_id = ? AND issue_id = ?", userID, issueID).
				Update("viewed_at", now).Error
		}
		return createErr
	default:
		return err
	}
}

// ListHistory 按最后浏览时间倒序
func (s *Favorites) ListHistory(userID uint) ([]models.ViewHistory, error) {
	var history []models.ViewHistory
	err := s.db.Preload("Issue").Preload("Issue.Topic").
		Where("user_id = ?", userID).
		Order("viewed_at DESC").
		Find(&history).Error
	return history, err
}
