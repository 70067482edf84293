// Package main 数据库初始化入口：建表并创建首个管理员
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"slanglab-api/internal/config"
	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer client.Close()

	// 建表
	fmt.Println("Running migrations...")
	if err := client.DB().WithContext(ctx).AutoMigrate(
		&entity.User{},
		&entity.SlangTerm{},
		&entity.SlangVote{},
		&entity.SlangTranslation{},
		&entity.SearchHistory{},
		&entity.Favorite{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	fmt.Println("Migrations complete.")

	// 创建首个管理员
	adminEmail := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@slanglab.dev"
	}
	adminPassword := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123" // 生产环境请务必通过环境变量设置
	}

	userRepo := postgres.NewUserRepository(client)

	exists, err := userRepo.ExistsByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("failed to check admin existence: %v", err)
	}
	if exists {
		fmt.Printf("Admin user already exists: %s\n", adminEmail)
		return
	}

	fmt.Printf("Creating admin user: %s...\n", adminEmail)
	admin := &entity.User{
		ID:       uuid.NewString(),
		Email:    adminEmail,
		Username: "admin",
		Role:     entity.UserRoleAdmin,
	}
	if err := admin.SetPassword(adminPassword); err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created with ID: %s\n", admin.ID)
	fmt.Println("Bootstrap complete.")
}
