package db

import (
	"fmt"
	"log"
	"os"

	"dovelink/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open 连接数据库并完成迁移和初始数据
func Open() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=dovelink port=5432 sslmode=disable TimeZone=Asia/Shanghai"
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	Seed(gdb)
	return gdb, nil
}

// Migrate 迁移全部表结构
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Topic{},
		&models.Issue{},
		&models.IssueLike{},
		&models.Reply{},
		&models.Message{},
		&models.Notification{},
		&models.InvitationCode{},
		&models.Favorite{},
		&models.ViewHistory{},
	)
}

// Seed 创建预设主题，以及 super_admin 和各主题的内容管理员角色
func Seed(gdb *gorm.DB) {
	var count int64
	gdb.Model(&models.Topic{}).Count(&count)
	if count > 0 {
		log.Println("Topics already seeded, skipping")
		return
	}

	topics := []models.Topic{
		{Name: "学业"},
		{Name: "生活"},
		{Name: "管理"},
		{Name: "情感"},
		{Name: "其他"},
	}

	for i := range topics {
		if err := gdb.Create(&topics[i]).Error; err != nil {
			log.Printf("Failed to create topic %s: %v", topics[i].Name, err)
		}
	}

	super := models.Role{Name: models.RoleSuperAdmin, Description: "超级管理员"}
	if err := gdb.Create(&super).Error; err != nil {
		log.Printf("Failed to create role %s: %v", super.Name, err)
	}
	for _, topic := range topics {
		role := models.Role{
			Name:        topic.Name + models.AdminNameMarker,
			Description: topic.Name + "管理员",
			Topic:       topic.Name,
		}
		if err := gdb.Create(&role).Error; err != nil {
			log.Printf("Failed to create role %s: %v", role.Name, err)
		}
	}
	log.Println("Initial topics and roles created successfully")
}
