package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Synergy_Link/internal/config"
	"Synergy_Link/internal/handler"
	"Synergy_Link/internal/pkg"
	"Synergy_Link/internal/repository/mysql"
	"Synergy_Link/internal/repository/redis"
	"Synergy_Link/internal/repository/storage"
	"Synergy_Link/internal/router"
	"Synergy_Link/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := pkg.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	if !cfg.LogDev {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mysql.InitDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if cfg.DBAutoMigrate {
		if err := mysql.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb, err := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pkg.NewMetrics(reg)

	userRepo := &mysql.UserRepository{DB: db}
	swipeRepo := &mysql.SwipeRepository{DB: db}
	matchRepo := &mysql.MatchRepository{DB: db}
	messageRepo := &mysql.MessageRepository{DB: db}
	communityRepo := &mysql.CommunityRepository{DB: db}
	memberRepo := &mysql.CommunityMemberRepository{DB: db}
	outboxRepo := &mysql.OutboxRepository{DB: db}

	var images service.ImageUploader
	if cfg.S3Bucket != "" {
		store, err := storage.NewImageStore(ctx, storage.S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("init s3: %w", err)
		}
		images = store
	} else {
		log.Warn("s3_bucket not set, image uploads disabled")
	}

	notifier := service.NewPushNotifier(userRepo, service.NewOutboxDispatcher(outboxRepo, metrics), log.Named("push"))
	swipeSvc := service.NewSwipeService(swipeRepo, matchRepo, userRepo, notifier, log.Named("swipe"), metrics)
	chatSvc := service.NewChatService(matchRepo, messageRepo, userRepo, &redis.ChatBus{RDB: rdb}, notifier, log.Named("chat"), metrics)
	communitySvc := service.NewCommunityService(communityRepo, memberRepo, cfg.CommunityOfficialThreshold, log.Named("community"), metrics)
	userSvc := service.NewUserService(userRepo, swipeRepo, images, log.Named("user"))

	var sender service.Sender
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaPushTopic})
		defer producer.Close()
		sender = service.KafkaSender(producer)
	} else {
		log.Warn("kafka_brokers not set, push jobs are only logged")
		sender = service.LogSender(log.Named("outbox"))
	}
	relayer := service.NewOutboxRelayer(outboxRepo, sender,
		&redis.DistLock{RDB: rdb, TTL: 30 * time.Second},
		service.RelayerConfig{
			BatchSize: cfg.OutboxBatchSize,
			MaxRetry:  cfg.OutboxMaxRetry,
			Interval:  cfg.OutboxInterval,
		}, log.Named("outbox"), metrics)

	engine := router.InitRouter(router.Handlers{
		User:      handler.NewUserHandler(userSvc),
		Swipe:     handler.NewSwipeHandler(swipeSvc),
		Match:     handler.NewMatchHandler(chatSvc),
		Community: handler.NewCommunityHandler(communitySvc),
	}, pkg.NewTokenSigner(cfg.JWTSecret), reg, log.Named("http"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end on shutdown so chat streams close
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		relayer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
