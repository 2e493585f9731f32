package handlers

import (
	"net/http"

	"dovelink/internal/middleware"
	"dovelink/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifier *services.Notifier
}

func NewNotificationHandler(notifier *services.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// List 通知列表。is_read 过滤可选；admin_scoped=true 时
// 再次套用主题范围过滤（与问题可见性同一规则）。
func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var isRead *bool
	switch c.Query("is_read") {
	case "true":
		v := true
		isRead = &v
	case "false":
		v := false
		isRead = &v
	}
	adminScoped := c.Query("admin_scoped") == "true"

	notifications, err := h.notifier.List(user.ID, isRead, adminScoped)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UnreadCount 未读通知数
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	adminScoped := c.Query("admin_scoped") == "true"

	count, err := h.notifier.UnreadCount(user.ID, adminScoped)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

type markReadRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// MarkRead 批量标记已读，只作用于自己的通知
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}

	count, err := h.notifier.MarkRead(req.IDs, user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}

// MarkAllRead 全部标记已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	count, err := h.notifier.MarkAllRead(user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}
