package services

import (
	"testing"

	dbpkg "dovelink/internal/db"
	"dovelink/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 内存 sqlite + 全量迁移
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbpkg.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Password: "hash"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createTopic(t *testing.T, gdb *gorm.DB, name string) *models.Topic {
	t.Helper()
	topic := models.Topic{Name: name}
	if err := gdb.Create(&topic).Error; err != nil {
		t.Fatalf("create topic %s: %v", name, err)
	}
	return &topic
}

func createRole(t *testing.T, gdb *gorm.DB, name, topic string) *models.Role {
	t.Helper()
	role := models.Role{Name: name, Topic: topic}
	if err := gdb.Create(&role).Error; err != nil {
		t.Fatalf("create role %s: %v", name, err)
	}
	return &role
}

func grantRole(t *testing.T, gdb *gorm.DB, user *models.User, role *models.Role) {
	t.Helper()
	if err := gdb.Model(user).Association("Roles").Append(role); err != nil {
		t.Fatalf("grant role %s to %s: %v", role.Name, user.Username, err)
	}
}

func createIssue(t *testing.T, gdb *gorm.DB, host *models.User, topic *models.Topic, title string) *models.Issue {
	t.Helper()
	issue := models.Issue{Title: title, Description: "描述", IsPublic: true}
	if host != nil {
		issue.HostID = &host.ID
	}
	if topic != nil {
		issue.TopicID = &topic.ID
	}
	if err := gdb.Create(&issue).Error; err != nil {
		t.Fatalf("create issue %s: %v", title, err)
	}
	return &issue
}
