// Command createadmin creates or resets the admin account without
// starting the HTTP service. Credentials come from ADMIN_USERNAME and
// ADMIN_PASSWORD (or flags, which take precedence).
package main

import (
	"context"
	"flag"
	"os"

	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/internal/database"
	"github.com/linglong/blog-admin/internal/users"
	"github.com/linglong/blog-admin/pkg/logger"
)

func main() {
	username := flag.String("username", "", "admin username (defaults to ADMIN_USERNAME)")
	password := flag.String("password", "", "admin password (defaults to ADMIN_PASSWORD)")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if *username == "" {
		*username = cfg.Admin.Username
	}
	if *password == "" {
		*password = cfg.Admin.Password
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required")
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	col := client.Database(cfg.MongoDB.Database).Collection("users")
	svc := users.NewService(users.NewMongoRepository(col))
	if err := svc.EnsureAdmin(ctx, *username, *password); err != nil {
		logger.Fatalf("failed to ensure admin account: %v", err)
	}
	logger.Infof("admin account %q is ready", *username)
}
