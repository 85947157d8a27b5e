package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/coursedesk/chat-service/internal/api"
	"github.com/coursedesk/chat-service/internal/auth"
	"github.com/coursedesk/chat-service/internal/config"
	"github.com/coursedesk/chat-service/internal/events"
	"github.com/coursedesk/chat-service/internal/logger"
	"github.com/coursedesk/chat-service/internal/presence"
	"github.com/coursedesk/chat-service/internal/realtime"
	"github.com/coursedesk/chat-service/internal/repository"
	"github.com/coursedesk/chat-service/internal/unread"
	"github.com/coursedesk/chat-service/internal/userdir"
	"github.com/coursedesk/chat-service/internal/ws"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("config load (%s): %v, using defaults", cfgPath, err)
		cfg = config.Default()
	}

	zl, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()

	var jv *auth.JWTValidator
	if cfg.JWT.Algorithm == "RS256" {
		jv, err = auth.NewJWTValidatorRS256(cfg.JWT.PublicKeyPath)
	} else {
		jv, err = auth.NewJWTValidatorHS256(cfg.JWT.HSSecret)
	}
	if err != nil {
		zl.Fatalf("jwt validator init: %v", err)
	}

	ctx := context.Background()

	var (
		repo repository.MessageRepository
		dir  userdir.Directory
	)
	if cfg.Mongo.URI != "" {
		client, err := repository.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			zl.Fatalf("mongo: %v", err)
		}
		defer client.Disconnect(ctx)

		db := client.Database(cfg.Mongo.Database)
		repo, err = repository.NewMongoMessageRepository(ctx, db.Collection(cfg.Mongo.MessageCol))
		if err != nil {
			zl.Fatalf("message repository: %v", err)
		}
		dir = userdir.NewMongoDirectory(db.Collection(cfg.Mongo.UserCol))
	} else {
		zl.Warn("no mongo uri configured, using in-memory stores")
		repo = repository.NewMemoryMessageRepository()
		dir = userdir.NewMemoryDirectory()
	}

	var bridge *realtime.Bridge
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		bridge = realtime.NewBridge(rdb, cfg.Redis.Prefix, uuid.NewString(), zl)
	}

	pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageAccepted, zl)
	defer pub.Close()

	registry := presence.NewRegistry()
	coordinator := unread.NewCoordinator(registry, dir, zl)
	hub := ws.NewHub(cfg.WS.RoomQueueCapacity, bridge, zl)
	defer hub.Close()

	gw := ws.NewGateway(hub, registry, repo, dir, coordinator, pub, bridge, zl, ws.Options{
		PingInterval:  cfg.PingInterval,
		WriteDeadline: cfg.WriteDeadline,
		MaxMsgSize:    cfg.WS.MaxMessageSizeBytes,
		RateLimitRPS:  cfg.WS.RateLimitPerSec,
	})

	srv := api.NewServer(jv, gw, repo, zl)

	errs := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		zl.Infof("chat service listening on %s", addr)
		errs <- srv.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		zl.Fatalf("server error: %v", e)
	case s := <-sig:
		zl.Infof("signal received: %v", s)
	}

	if err := srv.App().ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Warnf("http shutdown: %v", err)
	}
	zl.Info("shutting down")
}
