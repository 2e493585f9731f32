package services

import (
	"errors"
	"os"
	"strconv"

	"dovelink/internal/models"

	"gorm.io/gorm"
)

// PopularityWeights 热度权重，热度 = likes*Like + views*View
type PopularityWeights struct {
	Like float64
	View float64
}

// DefaultWeights 默认权重：点赞×2 + 浏览×1
var DefaultWeights = PopularityWeights{Like: 2, View: 1}

// WeightsFromEnv 从环境变量读取权重，未配置时用默认值
func WeightsFromEnv() PopularityWeights {
	w := DefaultWeights
	if v, err := strconv.ParseFloat(os.Getenv("POPULARITY_LIKE_WEIGHT"), 64); err == nil && v > 0 {
		w.Like = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("POPULARITY_VIEW_WEIGHT"), 64); err == nil && v > 0 {
		w.View = v
	}
	return w
}

// Popularity 维护 Issue 的 views/likes/popularity 三元组。
// 全部更新走服务端表达式（gorm.Expr），同一事务内完成，
// 并发请求同一问题时不会互相覆盖。
type Popularity struct {
	db      *gorm.DB
	weights PopularityWeights
}

func NewPopularity(db *gorm.DB, weights PopularityWeights) *Popularity {
	return &Popularity{db: db, weights: weights}
}

func (p *Popularity) Weights() PopularityWeights {
	return p.weights
}

// RecordView 浏览计数 +1 并重算热度，返回最新计数
func (p *Popularity) RecordView(issueID uint) (views int, popularity float64, err error) {
	err = p.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Issue{}).Where("id = ?", issueID).
			UpdateColumn("views", gorm.Expr("views + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := p.refreshPopularity(tx, issueID); err != nil {
			return err
		}
		var issue models.Issue
		if err := tx.Select("views", "popularity").First(&issue, issueID).Error; err != nil {
			return err
		}
		views = issue.Views
		popularity = issue.Popularity
		return nil
	})
	return views, popularity, err
}

// ToggleLike 点赞开关。在同一事务内查询 IssueLike 当前状态再决定加减，
// 防止并发下的重复减计数；计数下限为 0。
func (p *Popularity) ToggleLike(userID, issueID uint) (liked bool, likes int, popularity float64, err error) {
	err = p.db.Transaction(func(tx *gorm.DB) error {
		var issue models.Issue
		if err := tx.First(&issue, issueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing models.IssueLike
		findErr := tx.Where("user_id = ? AND issue_id = ?", userID, issueID).First(&existing).Error
		switch {
		case findErr == nil:
			// 已点赞 → 取消。并发取消同一行时只有真正删到行的一方减计数，
			// 保证 likes 与点赞行集合基数一致
			res := tx.Where("user_id = ? AND issue_id = ?", userID, issueID).
				Delete(&models.IssueLike{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				if err := tx.Model(&models.Issue{}).Where("id = ?", issueID).
					UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error; err != nil {
					return err
				}
			}
			liked = false
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			like := models.IssueLike{UserID: userID, IssueID: issueID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Issue{}).Where("id = ?", issueID).
				UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
				return err
			}
			liked = true
		default:
			return findErr
		}

		if err := p.refreshPopularity(tx, issueID); err != nil {
			return err
		}
		if err := tx.Select("likes", "popularity").First(&issue, issueID).Error; err != nil {
			return err
		}
		likes = issue.Likes
		popularity = issue.Popularity
		return nil
	})
	return liked, likes, popularity, err
}

// refreshPopularity 由当前持久化计数重算热度，保持不变式
// popularity == likes*W_like + views*W_view
func (p *Popularity) refreshPopularity(tx *gorm.DB, issueID uint) error {
	return tx.Model(&models.Issue{}).Where("id = ?", issueID).
		UpdateColumn("popularity", gorm.Expr("likes * ? + views * ?", p.weights.Like, p.weights.View)).Error
}
