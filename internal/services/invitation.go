package services

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"dovelink/internal/models"

	"gorm.io/gorm"
)

const (
	codeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// 随机码碰撞重试上限，正常情况下一两次就能成功
	codeMaxRetries = 10
)

// Invitations 邀请码：一次性使用、兑换即授予绑定角色。
// 兑换通过条件更新保证原子性，两个并发兑换者不可能都观察到"未使用"。
type Invitations struct {
	db *gorm.DB
}

func NewInvitations(db *gorm.DB) *Invitations {
	return &Invitations{db: db}
}

// Generate 为指定角色批量生成随机邀请码，码冲突时重新生成
func (s *Invitations) Generate(roleName string, count int) ([]models.InvitationCode, error) {
	role, err := s.findRole(roleName)
	if err != nil {
		return nil, err
	}

	codes := make([]models.InvitationCode, 0, count)
	for i := 0; i < count; i++ {
		inv, err := s.createWithRetry(role.ID)
		if err != nil {
			return codes, err
		}
		inv.Role = *role
		codes = append(codes, *inv)
	}
	return codes, nil
}

// GenerateCustom 生成自定义邀请码（统一转大写），已存在时返回 Conflict
func (s *Invitations) GenerateCustom(roleName, code string) (*models.InvitationCode, error) {
	role, err := s.findRole(roleName)
	if err != nil {
		return nil, err
	}
	inv := models.InvitationCode{Code: strings.ToUpper(code), RoleID: role.ID}
	if err := s.db.Create(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	inv.Role = *role
	return &inv, nil
}

// Redeem 兑换邀请码并授予绑定角色。
// UPDATE ... WHERE used = false 是唯一的"占用"路径，RowsAffected 为 0 时
// 再区分 AlreadyUsed 和 NotFound。
func (s *Invitations) Redeem(code string, userID uint) (*models.Role, error) {
	var role *models.Role
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		role, err = s.RedeemTx(tx, code, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// RedeemTx 在调用方事务内兑换，注册这类复合操作复用同一事务
func (s *Invitations) RedeemTx(tx *gorm.DB, code string, userID uint) (*models.Role, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	res := tx.Model(&models.InvitationCode{}).
		Where("code = ? AND used = ?", code, false).
		Updates(map[string]interface{}{
			"used":       true,
			"used_by_id": userID,
			"used_at":    time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.InvitationCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAlreadyUsed
		}
		return nil, ErrNotFound
	}

	var inv models.InvitationCode
	if err := tx.Preload("Role").Where("code = ?", code).First(&inv).Error; err != nil {
		return nil, err
	}

	user := models.User{ID: userID}
	if err := tx.Model(&user).Association("Roles").Append(&inv.Role); err != nil {
		return nil, err
	}
	role := inv.Role
	return &role, nil
}

// List 列出全部邀请码（管理端）
func (s *Invitations) List() ([]models.InvitationCode, error) {
	var codes []models.InvitationCode
	err := s.db.Preload("Role").Preload("UsedBy").Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (s *Invitations) findRole(name string) (*models.Role, error) {
	var role models.Role
	if err := s.db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *Invitations) createWithRetry(roleID uint) (*models.InvitationCode, error) {
	for i := 0; i < codeMaxRetries; i++ {
		inv := models.InvitationCode{Code: randomCode(codeLength), RoleID: roleID}
		err := s.db.Create(&inv).Error
		if err == nil {
			return &inv, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

// randomCode 大写字母+数字的随机码
func randomCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
