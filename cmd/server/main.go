package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthill-gaming/social/internal/cache"
	"github.com/anthill-gaming/social/internal/config"
	"github.com/anthill-gaming/social/internal/database"
	"github.com/anthill-gaming/social/internal/handlers"
	"github.com/anthill-gaming/social/internal/internalapi"
	"github.com/anthill-gaming/social/internal/middleware"
	"github.com/anthill-gaming/social/internal/services"
	"github.com/anthill-gaming/social/internal/storage"
	"github.com/anthill-gaming/social/pkg/logger"
	"github.com/anthill-gaming/social/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed loading .env file: %v", err)
	}

	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var friendCache services.FriendCache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisClient.Close()
		friendCache = cache.NewFriendCache(redisClient, cfg.Redis.FriendsTTL)
	}

	var auditStorage services.ObjectUploader
	if cfg.MinIO.Endpoint != "" {
		storageClient, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("minio initialization failed: %v", err)
		}
		if err := storageClient.EnsureBucket(ctx); err != nil {
			logger.Warn("audit_storage_unavailable", map[string]interface{}{
				"bucket": storageClient.Bucket(),
				"error":  err.Error(),
			})
		} else {
			auditStorage = storageClient
		}
	}

	internalClient := internalapi.NewClient(map[string]string{
		internalapi.ServiceMessage: cfg.InternalAPI.MessageURL,
		internalapi.ServiceLogin:   cfg.InternalAPI.LoginURL,
	}, cfg.InternalAPI.Token, cfg.InternalAPI.Timeout)

	friendService := services.NewFriendService(db, friendCache, cfg.Friends.EnforceUnique)
	groupService := services.NewGroupService(
		db,
		internalapi.NewMessageClient(internalClient),
		internalapi.NewUserClient(internalClient),
		friendCache,
	)
	auditService := services.NewAuditService(db, auditStorage, cfg.Audit.QueueBufferSize)
	auditService.StartExporter(ctx, cfg.Audit.ExportInterval)

	app := fiber.New()
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	handlers.Register(app,
		handlers.NewFriendsHandler(friendService, auditService),
		handlers.NewGroupsHandler(groupService, auditService),
		handlers.NewAuditHandler(auditService),
	)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":           cfg.Server.Port,
		"address":        listenAddr,
		"db_driver":      cfg.DB.Driver,
		"friends_cache":  friendCache != nil,
		"audit_export":   auditStorage != nil,
		"unique_friends": cfg.Friends.EnforceUnique,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		cancel()
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
