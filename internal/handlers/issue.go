package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dovelink/internal/middleware"
	"dovelink/internal/models"
	"dovelink/internal/services"
	"dovelink/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const trendingCacheKey = "issues:trending"
const trendingCacheTTL = time.Minute

type IssueHandler struct {
	db         *gorm.DB
	visibility *services.Visibility
	popularity *services.Popularity
	notifier   *services.Notifier
	favorites  *services.Favorites
	classifier *services.Classifier
	cache      *utils.Cache
}

func NewIssueHandler(db *gorm.DB, visibility *services.Visibility, popularity *services.Popularity,
	notifier *services.Notifier, favorites *services.Favorites, classifier *services.Classifier,
	cache *utils.Cache) *IssueHandler {
	return &IssueHandler{
		db:         db,
		visibility: visibility,
		popularity: popularity,
		notifier:   notifier,
		favorites:  favorites,
		classifier: classifier,
		cache:      cache,
	}
}

type createIssueRequest struct {
	Title       string `json:"title" binding:"required"`
	Topic       string `json:"topic"`
	Description string `json:"description" binding:"required"`
	Date        string `json:"date"` // 问题发生时间，格式 2006-01-02
	IsPublic    *bool  `json:"is_public"`
}

// Create 提交新问题，成功后向匹配的管理员扇出通知
func (h *IssueHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}

	title, err := utils.ValidateTitle(req.Title)
	if err != nil {
		abortWithError(c, err)
		return
	}
	description, err := utils.ValidateDescription(req.Description)
	if err != nil {
		abortWithError(c, err)
		return
	}

	issue := models.Issue{
		HostID:      &user.ID,
		Title:       title,
		Description: description,
	}
	if req.IsPublic != nil {
		issue.IsPublic = *req.IsPublic
	} else {
		issue.IsPublic = true
	}

	var topicName string
	if req.Topic != "" {
		name, err := utils.ValidateTopicName(req.Topic)
		if err != nil {
			abortWithError(c, err)
			return
		}
		var topic models.Topic
		if err := h.db.Where("LOWER(name) = LOWER(?)", name).First(&topic).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "未知的问题分类", "field": "topic"})
			return
		}
		issue.TopicID = &topic.ID
		topicName = topic.Name
	}

	if req.Date != "" {
		if d, err := time.Parse("2006-01-02", req.Date); err == nil {
			issue.Date = &d
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "日期格式应为 2006-01-02", "field": "date"})
			return
		}
	}

	if err := h.db.Create(&issue).Error; err != nil {
		abortWithError(c, err)
		return
	}

	h.notifier.OnNewIssue(&issue, topicName)

	c.JSON(http.StatusCreated, gin.H{"issue": issue})
}

// List 公开问题列表，支持主题过滤、关键字搜索和排序（time|popularity）
func (h *IssueHandler) List(c *gin.Context) {
	q := h.db.Preload("Topic").Preload("Host").Where("is_public = ?", true)

	if topic := c.Query("topic"); topic != "" {
		name, err := utils.ValidateTopicName(topic)
		if err != nil {
			abortWithError(c, err)
			return
		}
		q = q.Where("topic_id IN (?)",
			h.db.Model(&models.Topic{}).Select("id").Where("LOWER(name) = LOWER(?)", name))
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	switch c.Query("sort") {
	case "popularity":
		q = q.Order("popularity DESC, created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var issues []models.Issue
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&issues).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues, "page": page})
}

// Trending 热门问题榜，短 TTL 缓存
func (h *IssueHandler) Trending(c *gin.Context) {
	if cached := h.cache.Get(trendingCacheKey); cached != nil {
		c.JSON(http.StatusOK, gin.H{"issues": cached})
		return
	}

	var issues []models.Issue
	err := h.db.Preload("Topic").
		Where("is_public = ?", true).
		Order("popularity DESC, created_at DESC").
		Limit(10).
		Find(&issues).Error
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.cache.Set(trendingCacheKey, issues, trendingCacheTTL)
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// AdminList 管理员视角的可见问题列表（主题范围过滤）
func (h *IssueHandler) AdminList(c *gin.Context) {
	user := middleware.CurrentUser(c)
	issues, err := h.visibility.VisibleIssues(user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// Detail 问题详情：浏览计数 +1，登录用户同时更新浏览历史
func (h *IssueHandler) Detail(c *gin.Context) {
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	var issue models.Issue
	if err := h.db.Preload("Topic").Preload("Host").First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortWithError(c, services.ErrNotFound)
		} else {
			abortWithError(c, err)
		}
		return
	}

	views, popularity, err := h.popularity.RecordView(issue.ID)
	if err == nil {
		issue.Views = views
		issue.Popularity = popularity
	}

	if user := middleware.CurrentUser(c); user != nil {
		if err := h.favorites.RecordHistory(user.ID, issue.ID); err != nil {
			// 浏览历史属于附带记录，失败不影响详情返回
			c.Error(err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// Delete 删除问题：发布者本人或任意管理员
func (h *IssueHandler) Delete(c *gin.Context) {
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

	if !h.visibility.CanDelete(user, &issue) {
		abortWithError(c, services.ErrForbidden)
		return
	}

	if err := h.db.Delete(&issue).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CheckDeletePermission 查询当前用户对该问题的删除权限
func (h *IssueHandler) CheckDeletePermission(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"can_delete": h.visibility.CanDelete(user, &issue)})
}

// Like 点赞开关，点赞成功后通知发布者
func (h *IssueHandler) Like(c *gin.Context) {
	user := middleware.CurrentUser(c)
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	liked, likes, popularity, err := h.popularity.ToggleLike(user.ID, issueID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if liked {
		var issue models.Issue
		if err := h.db.First(&issue, issueID).Error; err == nil {
			h.notifier.OnIssueLiked(&issue, user)
		}
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": likes, "popularity": popularity})
}

// FavoriteToggle 收藏开关
func (h *IssueHandler) FavoriteToggle(c *gin.Context) {
	user := middleware.CurrentUser(c)
	issueID, ok := parseID(c)
	if !ok {
		return
	}

	favorited, err := h.favorites.Toggle(user.ID, issueID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// ListFavorites 我的收藏
func (h *IssueHandler) ListFavorites(c *gin.Context) {
	user := middleware.CurrentUser(c)
	favorites, err := h.favorites.ListFavorites(user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// ListHistory 我的浏览历史
func (h *IssueHandler) ListHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)
	history, err := h.favorites.ListHistory(user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

type classifyRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// Classify 对问题文本进行智能分类（带关键词回退，不会失败）
func (h *IssueHandler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数不完整"})
		return
	}
	result := h.classifier.Classify(req.Title, req.Description)
	c.JSON(http.StatusOK, result)
}

// parseID 解析路径中的 :id
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 ID"})
		return 0, false
	}
	return uint(id), true
}
