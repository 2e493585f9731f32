package handlers

import (
	"errors"
	"net/http"
	"strings"

	"dovelink/internal/middleware"
	"dovelink/internal/models"
	"dovelink/internal/services"
	"dovelink/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	invitations *services.Invitations
}

func NewAuthHandler(db *gorm.DB, invitations *services.Invitations) *AuthHandler {
	return &AuthHandler{db: db, invitations: invitations}
}

type registerRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Bio            string `json:"bio"`
	InvitationCode string `json:"invitation_code"`
}

// Register 注册。携带邀请码时兑换并授予绑定角色，兑换失败则整个注册失败。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名不能为空", "field": "username"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "密码至少6位", "field": "password"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Phone:    req.Phone,
		Bio:      req.Bio,
	}
	// 创建和邀请码兑换在同一事务内，兑换失败整体回滚
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if req.InvitationCode != "" {
			role, err := h.invitations.RedeemTx(tx, req.InvitationCode, user.ID)
			if err != nil {
				return err
			}
			user.Roles = []models.Role{*role}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "用户名已注册"})
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录，签发带 roles 声明的 JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}

	var user models.User
	if err := h.db.Preload("Roles").Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me 当前登录用户信息（含角色）和未读通知数
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"unread_count": c.GetInt64(middleware.UnreadCountKey),
	})
}
