package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/Pranaykumar222/CampusConnect/internal/api"
	"github.com/Pranaykumar222/CampusConnect/internal/auth"
	"github.com/Pranaykumar222/CampusConnect/internal/config"
	"github.com/Pranaykumar222/CampusConnect/internal/events"
	"github.com/Pranaykumar222/CampusConnect/internal/logger"
	"github.com/Pranaykumar222/CampusConnect/internal/presence"
	"github.com/Pranaykumar222/CampusConnect/internal/repository"
	"github.com/Pranaykumar222/CampusConnect/internal/service"
	"github.com/Pranaykumar222/CampusConnect/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	logg, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := repository.NewMongoClient(ctx, cfg.Mongo.URI)
	if err != nil {
		logg.Fatalw("mongo connect failed", "uri", cfg.Mongo.URI, "err", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.Mongo.Database)

	users := repository.NewMongoUserRepo(db)
	chats := repository.NewMongoChatRepo(db)
	messages := repository.NewMongoMessageRepo(db)
	notifications := repository.NewMongoNotificationRepo(db)
	connections := repository.NewMongoConnectionRepo(db)

	var publisher *events.Publisher
	var eventSink service.EventPublisher
	if cfg.Kafka.Enabled {
		publisher = events.NewPublisher(cfg.Kafka.Brokers,
			cfg.Kafka.TopicMessageSent, cfg.Kafka.TopicConnections, logg)
		defer func() { _ = publisher.Close() }()
		eventSink = publisher
	}

	hub := ws.NewHub()
	notifier := service.NewNotifier(notifications, users, hub, logg)
	messaging := service.NewMessagingService(chats, messages, users, notifier, hub, eventSink, logg)
	connectionSvc := service.NewConnectionService(connections, users, notifier, eventSink, logg)

	validator := auth.NewValidator(cfg.JWT.Secret)
	wsServer := ws.NewServer(hub, validator, users, chats, messaging, logg, ws.Options{
		PingInterval:    cfg.PingInterval,
		WriteDeadline:   cfg.WriteDeadline,
		MaxMessageSize:  cfg.WS.MaxMessageSizeBytes,
		EventsPerSecond: cfg.WS.EventsPerSecond,
	})

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		bridge := presence.NewBridge(rdb, cfg.Redis.Prefix, hub, logg)
		wsServer.SetPresenceHook(func(userID string, online bool) {
			bridge.SetOnline(ctx, userID, online)
		})
		go bridge.Run(ctx)
	}

	app := api.NewServer(validator, wsServer, messaging, connectionSvc, notifier)

	errs := make(chan error, 1)
	go func() {
		addr := ":" + cfg.App.Port
		logg.Infow("starting realtime service", "addr", addr)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		logg.Errorw("server error", "err", err)
	case s := <-sig:
		logg.Infow("signal received", "signal", s.String())
	}

	if err := app.Shutdown(); err != nil {
		logg.Warnw("shutdown error", "err", err)
	}
	logg.Info("shut down")
}
