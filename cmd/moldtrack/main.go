package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/moldtrack/internal/config"
	"github.com/bitfantasy/moldtrack/internal/middleware"
	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/handler"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting moldtrack service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 无管理员时创建默认管理员
	seedAdminUser(db, zapLogger)

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 仓库、服务、处理器
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// 唯一索引冲突翻译成gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Mold{},
		&entity.Component{},
		&entity.Machine{},
		&entity.MaintenanceSchedule{},
		&entity.Event{},
		&entity.ProductionLog{},
		&entity.StampingHistory{},
		&entity.MaintenanceRequest{},
		&entity.Attachment{},
	); err != nil {
		return err
	}

	indexSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_events_source_status ON events(source_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_production_logs_component_created ON production_logs(component_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stamping_histories_component_created ON stamping_histories(component_id, created_at DESC)",
	}
	for _, stmt := range indexSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAdminUser(db *gorm.DB, zapLogger *zap.Logger) {
	var count int64
	if err := db.Model(&entity.User{}).Where("is_admin = true").Count(&count).Error; err != nil {
		zapLogger.Warn("Failed to check admin users", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	admin := &entity.User{
		ID:      uuid.New().String()[:32],
		Code:    "admin",
		Name:    "管理员",
		IsAdmin: true,
	}
	if err := db.Create(admin).Error; err != nil {
		zapLogger.Warn("Failed to seed admin user", zap.Error(err))
		return
	}
	zapLogger.Info("Seeded default admin user", zap.String("code", admin.Code))
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// SSE 实时推送（需要认证，支持 query param token）
		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 模具
			authorized.POST("/molds", h.Mold.Create)
			authorized.GET("/molds", h.Mold.List)
			authorized.GET("/molds/tree", h.Mold.Tree)
			authorized.GET("/molds/:id", h.Mold.Get)
			authorized.PUT("/molds/:id", h.Mold.Update)
			authorized.DELETE("/molds/:id", h.Mold.Delete)

			// 零件
			authorized.POST("/components", h.Component.Create)
			authorized.GET("/components", h.Component.List)
			authorized.GET("/components/:id", h.Component.Get)
			authorized.PUT("/components/:id", h.Component.Update)
			authorized.DELETE("/components/:id", h.Component.Delete)

			// 生产记录
			authorized.POST("/components/:id/production", h.Component.LogProduction)
			authorized.GET("/components/:id/production", h.Component.ListProduction)
			authorized.PUT("/production-logs/:id", h.Component.UpdateProduction)
			authorized.DELETE("/production-logs/:id", h.Component.DeleteProduction)

			// 冲压参数
			authorized.PUT("/components/:id/stamping-data", h.Component.UpdateStampingData)
			authorized.GET("/components/:id/stamping-history", h.Component.ListStampingHistory)

			// 设备与保养计划
			authorized.POST("/machines", h.Machine.Create)
			authorized.GET("/machines", h.Machine.List)
			authorized.GET("/machines/:id", h.Machine.Get)
			authorized.PUT("/machines/:id", h.Machine.Update)
			authorized.DELETE("/machines/:id", h.Machine.Delete)
			authorized.POST("/machines/:id/schedules", h.Machine.CreateSchedule)
			authorized.GET("/machines/:id/schedules", h.Machine.ListSchedules)
			authorized.PUT("/schedules/:id", h.Machine.UpdateSchedule)
			authorized.POST("/schedules/:id/complete", h.Machine.CompleteSchedule)
			authorized.DELETE("/schedules/:id", h.Machine.DeleteSchedule)

			// 事件
			authorized.POST("/events", h.Event.Create)
			authorized.GET("/events", h.Event.List)
			authorized.GET("/events/upcoming", h.Event.ListUpcoming)
			authorized.GET("/events/:id", h.Event.Get)
			authorized.PUT("/events/:id", h.Event.Update)
			authorized.POST("/events/:id/close", h.Event.Close)
			authorized.GET("/sources/:id/events", h.Event.ListBySource)

			// 维修申请
			authorized.POST("/maintenance-requests", h.Request.Create)
			authorized.GET("/maintenance-requests", h.Request.List)
			authorized.GET("/maintenance-requests/:id", h.Request.Get)
			authorized.PUT("/maintenance-requests/:id/status", h.Request.UpdateStatus)

			// 附件
			authorized.POST("/attachments", h.Attachment.Upload)
			authorized.GET("/attachments", h.Attachment.ListByOwner)
			authorized.GET("/attachments/:id/download", h.Attachment.Download)
			authorized.DELETE("/attachments/:id", h.Attachment.Delete)

			// 看板
			authorized.GET("/dashboard/overview", h.Dashboard.Overview)
			authorized.GET("/dashboard/mold-status", h.Dashboard.MoldStatus)
			authorized.GET("/dashboard/scrap-rates", h.Dashboard.ScrapRates)
			authorized.GET("/dashboard/maintenance-costs", h.Dashboard.MaintenanceCosts)

			// 导出
			authorized.GET("/exports/molds", h.Export.ExportMolds)
			authorized.GET("/exports/components/:id/production", h.Export.ExportProduction)

			// 用户管理 (仅管理员)
			admin := authorized.Group("")
			admin.Use(middleware.AdminOnly())
			{
				admin.POST("/users", h.User.Create)
				admin.GET("/users", h.User.List)
				admin.GET("/users/:id", h.User.Get)
				admin.PUT("/users/:id", h.User.Update)
				admin.DELETE("/users/:id", h.User.Delete)
			}
		}
	}
}
