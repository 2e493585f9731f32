package handlers

import (
	"net/http"

	"dovelink/internal/middleware"
	"dovelink/internal/models"
	"dovelink/internal/services"
	"dovelink/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReplyHandler struct {
	db         *gorm.DB
	visibility *services.Visibility
	notifier   *services.Notifier
}

func NewReplyHandler(db *gorm.DB, visibility *services.Visibility, notifier *services.Notifier) *ReplyHandler {
	return &ReplyHandler{db: db, visibility: visibility, notifier: notifier}
}

type createReplyRequest struct {
	Content   string `json:"content" binding:"required"`
	NewStatus string `json:"new_status"` // 可选：回复同时更新问题状态
}

// CreateReply 管理员回复。主题范围每次服务端校验；
// 状态变化在这里显式计算新旧值并触发通知，不依赖持久化钩子。
func (h *ReplyHandler) CreateReply(c *gin.Context) {
	user := middleware.CurrentUser(c)
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	var issue models.Issue
	if err := h.db.First(&issue, issueID).Error; err != nil {
		abortWithError(c, services.ErrNotFound)
		return
	}

	allowed, err := h.visibility.CanReply(user.ID, &issue)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !allowed {
		abortWithError(c, services.ErrForbidden)
		return
	}

	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}
	content, err := utils.ValidateContent(req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if req.NewStatus != "" && req.NewStatus != issue.Status {
		oldStatus := issue.Status
		if err := h.db.Model(&issue).Update("status", req.NewStatus).Error; err != nil {
			abortWithError(c, err)
			return
		}
		issue.Status = req.NewStatus
		h.notifier.OnStatusChange(&issue, oldStatus, req.NewStatus)
	}

	reply := models.Reply{
		AdministratorID: &user.ID,
		IssueID:         issue.ID,
		Content:         content,
	}
	if err := h.db.Create(&reply).Error; err != nil {
		abortWithError(c, err)
		return
	}

	h.notifier.OnAdminReply(&reply, &issue)

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// ListReplies 问题下的官方回复，时间倒序
func (h *ReplyHandler) ListReplies(c *gin.Context) {
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	var replies []models.Reply
	err := h.db.Preload("Administrator").
		Where("issue_id = ?", issueID).
		Order("created_at DESC").
		Find(&replies).Error
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

type createMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// CreateMessage 发表评论并向发布者和历史评论者扇出通知
func (h *ReplyHandler) CreateMessage(c *gin.Context) {
	user := middleware.CurrentUser(c)
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	var issue models.Issue
	if err := h.db.First(&issue, issueID).Error; err != nil {
		abortWithError(c, services.ErrNotFound)
		return
	}

	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}
	body, err := utils.ValidateContent(req.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}

	msg := models.Message{
		UserID:  &user.ID,
		IssueID: issue.ID,
		Body:    body,
	}
	if err := h.db.Create(&msg).Error; err != nil {
		abortWithError(c, err)
		return
	}

	h.notifier.OnNewComment(&msg, &issue, user)

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// ListMessages 问题下的评论，时间倒序
func (h *ReplyHandler) ListMessages(c *gin.Context) {
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	var messages []models.Message
	err := h.db.Preload("User").
		Where("issue_id = ?", issueID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type updateStatusRequest struct {
	NewStatus string `json:"new_status" binding:"required"`
}

// UpdateStatus 更新问题状态，触发状态变更通知
func (h *ReplyHandler) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	var issue models.Issue
	if err := h.db.First(&issue, issueID).Error; err != nil {
		abortWithError(c, services.ErrNotFound)
		return
	}

	allowed, err := h.visibility.CanReply(user.ID, &issue)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !allowed {
		abortWithError(c, services.ErrForbidden)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}

	oldStatus := issue.Status
	if err := h.db.Model(&issue).Update("status", req.NewStatus).Error; err != nil {
		abortWithError(c, err)
		return
	}
	issue.Status = req.NewStatus

	h.notifier.OnStatusChange(&issue, oldStatus, req.NewStatus)

	c.JSON(http.StatusOK, gin.H{"issue": issue})
}
