package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/api"
	"github.com/qs3c/vidgen_server/internal/api/handler"
	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/database"
	"github.com/qs3c/vidgen_server/internal/pkg/email"
	"github.com/qs3c/vidgen_server/internal/pkg/oss"
	"github.com/qs3c/vidgen_server/internal/pkg/paypal"
	"github.com/qs3c/vidgen_server/internal/pkg/replicate"
	"github.com/qs3c/vidgen_server/internal/pkg/session"
	"github.com/qs3c/vidgen_server/internal/repository"
	"github.com/qs3c/vidgen_server/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Session.Secret == "" {
		log.Fatalf("session.secret (SESSION_SECRET) is required")
	}

	// 初始化存储
	store, err := repository.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected")

	sessions := middleware.NewSessions(
		session.NewStore(rdb, cfg.Session.Secret, cfg.Session.ExpireHours),
		cfg.Session,
	)

	// 外部服务
	paypalClient := paypal.NewClient(&cfg.PayPal)
	replicateClient := replicate.NewClient(&cfg.Replicate)
	mailer := email.NewService(&cfg.Email)
	if !mailer.Configured() {
		log.Println("SMTP not configured, emails disabled")
	}

	var mirror service.VideoMirror
	if cfg.OSS.Enabled() {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to init oss: %v", err)
		}
		mirror = ossClient
		log.Println("OSS mirroring enabled")
	}

	// 初始化 Service
	catalog := service.NewPlanCatalog(cfg.Plans)
	authService := service.NewAuthService(store, mailer)
	accountService := service.NewAccountService(store)
	paymentService := service.NewPaymentService(store, catalog, paypalClient, mailer)
	generationService := service.NewGenerationService(store, catalog, accountService,
		replicateClient, mirror, cfg.Replicate.PlaceholderURL)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, sessions)
	pageHandler := handler.NewPageHandler(catalog, accountService, cfg.PayPal)
	paymentHandler := handler.NewPaymentHandler(paymentService, sessions)
	accountHandler := handler.NewAccountHandler(accountService, sessions)
	generateHandler := handler.NewGenerateHandler(generationService, sessions)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		pageHandler,
		paymentHandler,
		accountHandler,
		generateHandler,
		accountService,
		sessions,
		cfg,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 视频生成可能持续较长时间
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
