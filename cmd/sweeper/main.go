// Command sweeper runs the dispatch and retention sweeps once and exits.
// Intended for cron-style deployments where the API runs with sweeps
// disabled.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/campuslink/campuslink-backend/internal/config"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/internal/service"
	pkglogger "github.com/campuslink/campuslink-backend/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	dispatchOnly := flag.Bool("dispatch-only", false, "run only the scheduled message dispatch")
	retentionOnly := flag.Bool("retention-only", false, "run only the retention sweep")
	flag.Parse()

	config.LoadDotEnv()

	env := config.Env()
	pkglogger.InitStructured(env)

	cfg, err := config.Load(config.PathForEnv(env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sweepSvc := service.NewSweepService(
		repository.NewScheduledMessageRepository(db),
		repository.NewMessageRepository(db),
		repository.NewChannelRepository(db),
		repository.NewChannelSettingsRepository(db),
	)

	now := time.Now()

	if !*retentionOnly {
		dispatched, err := sweepSvc.DispatchDue(now)
		if err != nil {
			log.Fatalf("Dispatch sweep failed: %v", err)
		}
		pkglogger.Info("Dispatched %d scheduled messages", dispatched)
	}

	if !*dispatchOnly {
		purged, err := sweepSvc.SweepExpired(now)
		if err != nil {
			log.Fatalf("Retention sweep failed: %v", err)
		}
		total := int64(0)
		for _, n := range purged {
			total += n
		}
		pkglogger.Info("Purged %d expired messages across %d channels", total, len(purged))
	}
}
