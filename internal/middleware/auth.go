package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"dovelink/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// Claims JWT 载荷，roles 仅供前端展示，服务端权限判定一律查库
type Claims struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	return []byte(secret)
}

// GenerateToken 签发访问令牌
func GenerateToken(user *models.User) (string, error) {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// LoadUser 解析 Bearer 令牌并从数据库加载用户（含角色）到上下文。
// 令牌里的 roles 声明不用于任何权限判定。
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret(), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		var user models.User
		if err := db.Preload("Roles").First(&user, claims.UserID).Error; err == nil {
			c.Set(CheckUserKey, &user)

			var count int64
			db.Model(&models.Notification{}).
				Where("recipient_id = ? AND is_read = ?", user.ID, false).
				Count(&count)
			c.Set(UnreadCountKey, count)
		}
		c.Next()
	}
}

// AuthRequired 要求已登录
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		c.Next()
	}
}

// SuperAdminRequired 要求持有 super_admin 角色（基于库里加载的角色）
func SuperAdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		for _, r := range user.Roles {
			if r.IsSuperAdmin() {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "需要超级管理员权限"})
	}
}

// CurrentUser 取出上下文中的当前用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}
