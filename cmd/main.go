package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	logger "github.com/Gopher0727/GroupGuard/middleware/log"

	"github.com/Gopher0727/GroupGuard/config"
	"github.com/Gopher0727/GroupGuard/internal/consumer"
	"github.com/Gopher0727/GroupGuard/internal/handlers"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/notify"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
	"github.com/Gopher0727/GroupGuard/internal/risk"
	"github.com/Gopher0727/GroupGuard/internal/routers"
	"github.com/Gopher0727/GroupGuard/internal/services"
	"github.com/Gopher0727/GroupGuard/internal/storage"
	"github.com/Gopher0727/GroupGuard/internal/utils"
	"github.com/Gopher0727/GroupGuard/middleware/jwt"
	"github.com/Gopher0727/GroupGuard/pkg/middlewares"
	"github.com/Gopher0727/GroupGuard/pkg/mq"
	"github.com/Gopher0727/GroupGuard/utils/ratelimit"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLogger.Close()

	// 初始化全局限流器
	middlewares.InitGlobalLimiter(cfg.RateLimit.Burst, cfg.RateLimit.QPS)

	// 初始化 Worker Pool (协程池)
	// 用于异步处理请求与通知派发，防止高并发下 Goroutine 暴涨
	pool := utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start()
	defer pool.Stop()

	// 初始化 PostgreSQL
	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	postgres, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		log.Fatalf("postgres 初始化失败: %v", err)
	}

	// 初始化 Redis
	redisClient, err := storage.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns)
	if err != nil {
		log.Fatalf("redis 初始化失败: %v", err)
	}

	// 初始化仓储层
	groupRepo := repositories.NewGroupRepository(postgres)
	memberRepo := repositories.NewMemberRepository(postgres)
	activityRepo := repositories.NewActivityRepository(postgres)
	alertRepo := repositories.NewAlertRepository(postgres)
	settingRepo := repositories.NewSettingRepository(postgres)

	// 初始化风险分类器
	policy := risk.NewPolicy(cfg.Risk)
	classifier := risk.NewClassifier()

	// 初始化 Kafka Producer (通知通道)
	var dispatcher *notify.Dispatcher
	notifyProducer, err := mq.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
	if err != nil {
		log.Printf("Kafka 生产者初始化失败: %v。系统将以降级模式运行（不派发通知）。", err)
	} else {
		defer notifyProducer.Close()

		notifyLimiter := ratelimit.NewWindowLimiter(redisClient, appLogger.Logger, true)
		dispatcher = notify.NewDispatcher(
			notify.NewKafkaNotifier(notifyProducer),
			settingRepo,
			notifyLimiter,
			pool,
			appLogger,
			cfg.Risk.NotifyLimit,
			time.Duration(cfg.Risk.NotifyWindowSec)*time.Second,
		)
	}

	// 初始化服务层
	escalation := services.EscalationPolicy{
		SuspiciousAt: models.RiskHigh,
		DangerousAt:  models.RiskCritical,
	}
	if level, err := models.ParseRiskLevel(cfg.Risk.SuspiciousAt); err == nil {
		escalation.SuspiciousAt = level
	}
	if level, err := models.ParseRiskLevel(cfg.Risk.DangerousAt); err == nil {
		escalation.DangerousAt = level
	}

	alertService := services.NewAlertService(postgres, alertRepo, groupRepo, dispatcher, escalation, appLogger, cfg.Risk.MaxRetries)
	lifecycleService := services.NewLifecycleService(postgres, groupRepo, memberRepo, cfg.Risk.MaxRetries)
	recorderService := services.NewRecorderService(postgres, groupRepo, memberRepo, activityRepo, classifier, policy, alertService, appLogger, cfg.Risk.MaxRetries)
	reportService := services.NewReportService(postgres, groupRepo, alertRepo, activityRepo, appLogger, cfg.Risk.MaxRetries)
	settingService := services.NewSettingService(settingRepo, cfg.Risk.MaxRetries)

	// 初始化 Kafka Consumer (活动事件通道)
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	activityConsumer := consumer.NewActivityConsumer(recorderService)
	consumerClient, err := consumer.StartConsumer(consumerCtx, cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.ActivityTopic, activityConsumer)
	if err != nil {
		log.Printf("Kafka 消费者初始化失败: %v。活动事件仅接受 HTTP 上报。", err)
	} else {
		defer consumerClient.Close()
	}

	// 初始化处理器
	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.RefreshHours)
	activityHandler := handlers.NewActivityHandler(recorderService)
	alertHandler := handlers.NewAlertHandler(alertService)
	groupHandler := handlers.NewGroupHandler(lifecycleService, reportService)
	settingHandler := handlers.NewSettingHandler(settingService)

	// 配置并创建 Gin 引擎
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// 设置路由
	routers.SetupRoutes(r,
		cfg,
		activityHandler,
		alertHandler,
		groupHandler,
		settingHandler,
		tokenManager,
		pool,
	)

	// 启动服务器
	log.Printf("正在启动服务器，监听端口 :%d\n", cfg.Server.Port)
	if err := r.Run(":" + strconv.FormatInt(int64(cfg.Server.Port), 10)); err != nil {
		log.Fatalf("启动服务器失败: %v", err)
	}
}
