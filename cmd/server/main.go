package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/internal/database"
	"github.com/groupchat/groupchat/internal/handlers"
	"github.com/groupchat/groupchat/internal/middleware"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/internal/storage"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/storagetoken"
)

func openBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendMinIO:
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	case config.StorageBackendBadger, "":
		store, err := storage.NewBadgerStore(cfg.Badger, cfg.Server.SiteURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func storageName(cfg *config.Config) string {
	if cfg.Storage.Backend == "" {
		return config.StorageBackendBadger
	}
	return cfg.Storage.Backend
}

func main() {
	logger.Init()

	cfg := config.Load()
	storagetoken.SetSecret(cfg.Storage.URLSecret)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	blobStore, closeStore, err := openBlobStore(rootCtx, cfg)
	if err != nil {
		log.Fatalf("blob storage initialization failed: %v", err)
	}
	defer closeStore()

	hub := services.NewHub()
	var notifier services.Notifier = hub
	if cfg.Live.RedisURL != "" {
		relay, err := services.NewRedisRelay(cfg.Live.RedisURL, hub)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		if err := relay.Ping(rootCtx); err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer relay.Close()

		go func() {
			if err := relay.Run(rootCtx); err != nil {
				logger.Error("live_relay_stopped", err, nil)
			}
		}()
		notifier = relay
	}

	groups := services.NewGroupService(db, notifier)
	files := services.NewFileService(db, blobStore, cfg.Storage.URLExpiry, notifier)
	messages := services.NewMessageService(db, files, notifier)
	registry := services.NewChatRegistry(groups, messages)

	app := fiber.New(fiber.Config{BodyLimit: cfg.Server.BodyLimitMB * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	handlers.RegisterRoutes(app, handlers.Deps{
		Context:   rootCtx,
		Groups:    groups,
		Messages:  messages,
		Files:     files,
		Registry:  registry,
		Hub:       hub,
		Heartbeat: cfg.Live.Heartbeat,
		Info: handlers.ServerInfo{
			Storage:       storageName(cfg),
			LiveRelay:     cfg.Live.RedisURL != "",
			UploadLimitMB: cfg.Server.BodyLimitMB,
		},
	})

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":            cfg.Server.Port,
		"address":         listenAddr,
		"site_url":        cfg.Server.SiteURL,
		"db_driver":       cfg.DB.Driver,
		"storage_backend": cfg.Storage.Backend,
		"live_relay":      cfg.Live.RedisURL != "",
		"body_limit":      fmt.Sprintf("%dMB", cfg.Server.BodyLimitMB),
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
		cancelRoot()
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
