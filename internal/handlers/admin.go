package handlers

import (
	"net/http"

	"dovelink/internal/models"
	"dovelink/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler 管理端：邀请码与用户角色管理，路由层挂 SuperAdminRequired
type AdminHandler struct {
	db          *gorm.DB
	invitations *services.Invitations
}

func NewAdminHandler(db *gorm.DB, invitations *services.Invitations) *AdminHandler {
	return &AdminHandler{db: db, invitations: invitations}
}

type generateInvitationsRequest struct {
	Role       string `json:"role" binding:"required"`
	Count      int    `json:"count"`
	CustomCode string `json:"custom_code"`
}

// GenerateInvitations 批量生成随机邀请码，或生成单个自定义邀请码
func (h *AdminHandler) GenerateInvitations(c *gin.Context) {
	var req generateInvitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}

	if req.CustomCode != "" {
		code, err := h.invitations.GenerateCustom(req.Role, req.CustomCode)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"codes": []models.InvitationCode{*code}})
		return
	}

	if req.Count < 1 {
		req.Count = 5
	}
	codes, err := h.invitations.Generate(req.Role, req.Count)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"codes": codes})
}

// ListInvitations 全部邀请码
func (h *AdminHandler) ListInvitations(c *gin.Context) {
	codes, err := h.invitations.List()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

// ListUsers 全部用户（含角色）
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Preload("Roles").Find(&users).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type updateRolesRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required"`
}

// UpdateUserRoles 替换用户的角色集合
func (h *AdminHandler) UpdateUserRoles(c *gin.Context) {
	userID, ok := parseID(c)
	if !ok {
		return
	}

	var req updateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		abortWithError(c, services.ErrNotFound)
		return
	}

	var roles []models.Role
	if len(req.RoleIDs) > 0 {
		if err := h.db.Where("id IN ?", req.RoleIDs).Find(&roles).Error; err != nil {
			abortWithError(c, err)
			return
		}
	}

	if err := h.db.Model(&user).Association("Roles").Replace(roles); err != nil {
		abortWithError(c, err)
		return
	}

	user.Roles = roles
	c.JSON(http.StatusOK, gin.H{"user": user})
}
