package handlers

import (
	"errors"
	"net/http"

	"dovelink/internal/services"
	"dovelink/internal/utils"

	"github.com/gin-gonic/gin"
)

// abortWithError 把领域错误映射到 HTTP 状态码
func abortWithError(c *gin.Context, err error) {
	var vErr *utils.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "目标不存在"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "没有权限执行该操作"})
	case errors.Is(err, services.ErrAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": "邀请码已被使用"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "操作冲突"})
	case errors.Is(err, services.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
	}
}
