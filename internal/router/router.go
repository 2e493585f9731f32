package router

import (
	"dovelink/internal/handlers"
	"dovelink/internal/middleware"
	"dovelink/internal/services"
	"dovelink/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes 组装服务与 handler 并注册全部路由
func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	// Services
	directory := services.NewDirectory(db)
	visibility := services.NewVisibility(db, directory)
	popularity := services.NewPopularity(db, services.WeightsFromEnv())
	notifier := services.NewNotifier(db, directory)
	invitations := services.NewInvitations(db)
	favorites := services.NewFavorites(db)
	classifier := services.NewClassifier()
	cache := utils.NewCache(500)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, invitations)
	issueHandler := handlers.NewIssueHandler(db, visibility, popularity, notifier, favorites, classifier, cache)
	replyHandler := handlers.NewReplyHandler(db, visibility, notifier)
	notificationHandler := handlers.NewNotificationHandler(notifier)
	adminHandler := handlers.NewAdminHandler(db, invitations)

	r.Use(middleware.LoadUser(db))

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.POST("/register", authHandler.Register)              // 注册（可携带邀请码）
	api.POST("/login", authHandler.Login)                    // 登录，返回 JWT
	api.GET("/issues", issueHandler.List)                    // 公开问题列表
	api.GET("/issues/trending", issueHandler.Trending)       // 热门问题榜
	api.GET("/issues/:id", issueHandler.Detail)              // 问题详情（计浏览量）
	api.GET("/issues/:id/replies", replyHandler.ListReplies) // 官方回复列表
	api.GET("/issues/:id/messages", replyHandler.ListMessages)

	// 受保护路由 (Protected Routes)
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.POST("/classify", issueHandler.Classify) // 智能分类

		authorized.POST("/issues", issueHandler.Create)
		authorized.DELETE("/issues/:id", issueHandler.Delete)
		authorized.GET("/issues/:id/can-delete", issueHandler.CheckDeletePermission)
		authorized.POST("/issues/:id/like", issueHandler.Like)
		authorized.POST("/issues/:id/favorite", issueHandler.FavoriteToggle)
		authorized.GET("/favorites", issueHandler.ListFavorites)
		authorized.GET("/history", issueHandler.ListHistory)

		authorized.GET("/admin/issues", issueHandler.AdminList)              // 管理员可见问题
		authorized.POST("/issues/:id/replies", replyHandler.CreateReply)     // 管理员回复（服务端校验主题范围）
		authorized.POST("/issues/:id/messages", replyHandler.CreateMessage)  // 评论
		authorized.PATCH("/issues/:id/status", replyHandler.UpdateStatus)    // 状态更新

		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authorized.POST("/notifications/mark-read", notificationHandler.MarkRead)
		authorized.POST("/notifications/mark-all-read", notificationHandler.MarkAllRead)
	}

	// 超级管理员路由 (Super Admin Routes)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.SuperAdminRequired())
	{
		admin.POST("/invitations", adminHandler.GenerateInvitations)
		admin.GET("/invitations", adminHandler.ListInvitations)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/:id/roles", adminHandler.UpdateUserRoles)
	}
}
