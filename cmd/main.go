package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community-forum/config"
	"community-forum/internal/api/community"
	"community-forum/internal/common"
	"community-forum/internal/messaging"
	"community-forum/internal/metrics"
	"community-forum/internal/middleware"
	"community-forum/internal/ratelimit"
	"community-forum/internal/repository/interfaces"
	"community-forum/internal/repository/memory"
	"community-forum/internal/repository/mongodb"
	"community-forum/internal/service"
	"community-forum/internal/telemetry"
	"community-forum/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, config.AppConfig.OTELEnabled, config.AppConfig.OTELEndpoint, config.AppConfig.OTELServiceName)
	if err != nil {
		util.Logger.Fatal("初始化链路追踪失败", zap.Error(err))
	}
	defer func() {
		c, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	// 初始化存储
	var (
		repo    interfaces.CommunityRepository
		members interfaces.MemberRepository
	)
	switch config.AppConfig.StorageDriver {
	case "memory":
		store := memory.NewStore()
		repo, members = store, store
		util.Logger.Warn("使用内存存储，数据不会持久化")
	default:
		client := connectMongo(ctx)
		defer func() {
			c, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_ = client.Disconnect(c)
		}()

		db := client.Database(config.AppConfig.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			util.Logger.Fatal("创建索引失败", zap.Error(err))
		}
		repo = mongodb.NewCommunityRepository(db)
		members = mongodb.NewMemberRepository(db)
	}

	// 初始化事件发布
	publisher, err := messaging.New(messaging.Options{
		Bus:          config.AppConfig.EventBus,
		NATSURL:      config.AppConfig.NATSURL,
		KafkaBrokers: config.AppConfig.KafkaBrokers,
		KafkaTopic:   config.AppConfig.KafkaTopic,
	})
	if err != nil {
		util.Logger.Fatal("初始化事件发布失败", zap.Error(err))
	}
	defer publisher.Close()

	communityService := service.NewCommunityService(repo, members, publisher, config.AppConfig.InQueryLimit)
	communityHandler := community.NewCommunityHandler(communityService)

	// 注册自定义验证器
	util.RegisterValidators()

	// 初始化限流（未配置 Redis 时不限流）
	var limit gin.HandlerFunc
	if config.AppConfig.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
		})
		defer rdb.Close()
		limiter := ratelimit.New(ratelimit.NewRedisCounter(rdb), int64(config.AppConfig.RateLimitPerMinute), time.Minute)
		limit = limiter.Middleware()
		util.Logger.Info("已启用限流", zap.Int("per_minute", config.AppConfig.RateLimitPerMinute))
	}

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.New()

	// 添加中间件
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))
	r.Use(middleware.RecoveryMiddleware())

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		middleware.RequestIDHeader,
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		middleware.RequestIDHeader,
	}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"errors": errorMonitor.GetErrorCounts(),
		})
	})

	// 定义 API 路由
	api := r.Group("/api")
	communityHandler.RegisterRoutes(api, limit)

	if config.AppConfig.Debug {
		for _, route := range r.Routes() {
			util.Logger.Info("路由",
				zap.String("method", route.Method),
				zap.String("path", route.Path),
				zap.String("handler", route.Handler))
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:              config.AppConfig.HTTPAddr,
		Handler:           otelhttp.NewHandler(r, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Logger.Error("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// connectMongo 连接 MongoDB 并在启动时重试 ping
func connectMongo(ctx context.Context) *mongo.Client {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.MongoURI))
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}

	err = common.WithRetry(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			util.Logger.Warn("数据库连接测试失败，准备重试", zap.Error(err))
			return err
		}
		return nil
	}, config.AppConfig.MongoConnectRetries)
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}

	util.Logger.Info("数据库连接成功", zap.String("database", config.AppConfig.MongoDatabase))
	return client
}
