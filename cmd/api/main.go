package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/campuslink/campuslink-backend/internal/config"
	"github.com/campuslink/campuslink-backend/internal/handler"
	"github.com/campuslink/campuslink-backend/internal/middleware"
	"github.com/campuslink/campuslink-backend/internal/migration"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/internal/routes"
	"github.com/campuslink/campuslink-backend/internal/scheduler"
	"github.com/campuslink/campuslink-backend/internal/service"
	pkgcache "github.com/campuslink/campuslink-backend/pkg/cache"
	"github.com/campuslink/campuslink-backend/pkg/jwt"
	pkglogger "github.com/campuslink/campuslink-backend/pkg/logger"
	pkgredis "github.com/campuslink/campuslink-backend/pkg/redis"
	pkgstorage "github.com/campuslink/campuslink-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	config.LoadDotEnv()

	env := config.Env()
	pkglogger.InitStructured(env)

	cfg, err := config.Load(config.PathForEnv(env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL at %s:%d", cfg.Database.Host, cfg.Database.Port)

	seed := env == "local" || env == "development"
	if err := migration.Run(db, seed); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis is optional. Without it the channel directory cache degrades
	// to a pass-through and every request hits MySQL.
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Error("Redis unavailable, caching disabled: %v", err)
		redisClient = nil
	}
	cacheService := pkgcache.NewService(redisClient)

	var s3Client *pkgstorage.S3Client
	if cfg.Storage.Bucket != "" {
		s3Client, err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to init attachment storage: %v", err)
		}
	} else {
		pkglogger.Info("No storage bucket configured, attachment uploads disabled")
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	channelRepo := repository.NewChannelRepository(db)
	settingsRepo := repository.NewChannelSettingsRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	voteRepo := repository.NewPollVoteRepository(db)
	scheduledRepo := repository.NewScheduledMessageRepository(db)
	rosterRepo := repository.NewRosterRepository(db)

	// Services
	identitySvc := service.NewIdentityService(rosterRepo)
	channelSvc := service.NewChannelService(channelRepo, settingsRepo, rosterRepo, cacheService)
	messageSvc := service.NewMessageService(messageRepo, channelSvc, channelRepo, voteRepo, rosterRepo)
	pollSvc := service.NewPollService(voteRepo, messageRepo)
	scheduledSvc := service.NewScheduledMessageService(scheduledRepo, channelRepo, channelSvc)
	sweepSvc := service.NewSweepService(scheduledRepo, messageRepo, channelRepo, settingsRepo)
	uploadSvc := service.NewUploadService(channelRepo, s3Client)

	// Handlers
	channelHandler := handler.NewChannelHandler(channelSvc)
	messageHandler := handler.NewMessageHandler(messageSvc, pollSvc)
	scheduledHandler := handler.NewScheduledHandler(scheduledSvc)
	uploadHandler := handler.NewUploadHandler(uploadSvc)
	adminHandler := handler.NewAdminHandler(sweepSvc)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.Setup(router,
		channelHandler,
		messageHandler,
		scheduledHandler,
		uploadHandler,
		adminHandler,
		jwtManager,
		identitySvc,
	)

	var sweepScheduler *scheduler.Scheduler
	if cfg.Sweep.Enabled {
		sweepScheduler = scheduler.New(30 * time.Second)
		sweepScheduler.Register("dispatch-due", cfg.Sweep.DispatchInterval, func(now time.Time) error {
			_, err := sweepSvc.DispatchDue(now)
			return err
		})
		sweepScheduler.Register("retention-sweep", cfg.Sweep.RetentionInterval, func(now time.Time) error {
			_, err := sweepSvc.SweepExpired(now)
			return err
		})
		sweepScheduler.Start()
		defer sweepScheduler.Stop()
	}

	if sqlDB, err := db.DB(); err == nil {
		middleware.SetDBConnectionsActive(float64(sqlDB.Stats().OpenConnections))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initDB opens the MySQL connection with error translation enabled so
// duplicate key violations surface as gorm.ErrDuplicatedKey.
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
