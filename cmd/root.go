package cmd

import (
	"context"
	"os"
	"time"

	applicationrepo "github.com/sorogrupos/jobcast/applications/repository"
	applicationusecase "github.com/sorogrupos/jobcast/applications/usecase"
	broadcastusecase "github.com/sorogrupos/jobcast/broadcast/usecase"
	coreconfig "github.com/sorogrupos/jobcast/core/config"
	coredb "github.com/sorogrupos/jobcast/core/database"
	grouprepo "github.com/sorogrupos/jobcast/groups/repository"
	groupusecase "github.com/sorogrupos/jobcast/groups/usecase"
	"github.com/sorogrupos/jobcast/infrastructure/valkey"
	jobrepo "github.com/sorogrupos/jobcast/jobs/repository"
	jobusecase "github.com/sorogrupos/jobcast/jobs/usecase"
	"github.com/sorogrupos/jobcast/pkg/fanout"
	"github.com/sorogrupos/jobcast/pkg/utils"
	schedulerepo "github.com/sorogrupos/jobcast/schedules/repository"
	scheduleusecase "github.com/sorogrupos/jobcast/schedules/usecase"
	"github.com/sorogrupos/jobcast/ui/websocket"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Repositories
	scheduleRepository    *schedulerepo.ScheduleGormRepository
	jobRepository         *jobrepo.JobGormRepository
	groupRepository       *grouprepo.GroupGormRepository
	applicationRepository *applicationrepo.ApplicationGormRepository

	// Usecases
	scheduleUC    *scheduleusecase.ScheduleUsecase
	scheduleStore *scheduleusecase.ScheduleStore
	jobUC         *jobusecase.JobUsecase
	groupUC       *groupusecase.GroupUsecase
	applicationUC *applicationusecase.ApplicationUsecase
	broadcastUC   *broadcastusecase.BroadcastUsecase

	// Infrastructure
	vkClient    *valkey.Client
	fanoutPool  *fanout.Pool
	fanoutStop  func()
)

var rootCmd = &cobra.Command{
	Use:   "jobcast",
	Short: "Job broadcast scheduling API",
	Long:  `Multi-tenant backend for scheduling job vacancy broadcasts to WhatsApp groups.`,
}

func init() {
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cobra.OnInitialize(initApp)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}

func initApp() {
	if viper.GetBool("app_debug") {
		os.Setenv("APP_DEBUG", "true")
	}

	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	db, err := coredb.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect database: %v", err)
	}

	ctx := context.Background()
	scheduleRepository = schedulerepo.NewScheduleGormRepository(db)
	jobRepository = jobrepo.NewJobGormRepository(db)
	groupRepository = grouprepo.NewGroupGormRepository(db)
	applicationRepository = applicationrepo.NewApplicationGormRepository(db)
	for name, init := range map[string]func(context.Context) error{
		"schedules":    scheduleRepository.Init,
		"jobs":         jobRepository.Init,
		"groups":       groupRepository.Init,
		"applications": applicationRepository.Init,
	} {
		if err := init(ctx); err != nil {
			logrus.Fatalf("Failed to migrate %s: %v", name, err)
		}
	}

	if cfg.Valkey.Enabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			logrus.Warnf("Valkey unavailable, continuing without it: %v", err)
			vkClient = nil
		}
	}

	fanoutPool = fanout.NewPool(cfg.Fanout.Workers, cfg.Fanout.QueueSize)
	poolCtx, cancel := context.WithCancel(context.Background())
	fanoutPool.Start(poolCtx)
	fanoutStop = func() {
		cancel()
		fanoutPool.Stop()
	}

	notifier := websocket.Notifier{}
	scheduleUC = scheduleusecase.NewScheduleUsecase(scheduleRepository, groupRepository, notifier)
	scheduleStore = scheduleusecase.NewScheduleStore(scheduleUC)
	jobUC = jobusecase.NewJobUsecase(jobRepository, scheduleRepository)
	groupUC = groupusecase.NewGroupUsecase(groupRepository)
	applicationUC = applicationusecase.NewApplicationUsecase(applicationRepository, jobRepository)

	var locker broadcastusecase.Locker
	if vkClient != nil {
		locker = vkClient
	}
	broadcastUC = broadcastusecase.NewBroadcastUsecase(
		jobRepository,
		groupRepository,
		scheduleRepository,
		fanoutPool,
		newLogSender(),
		locker,
		notifier,
	)
}

// StopApp releases subsystems during graceful shutdown.
func StopApp() {
	if fanoutStop != nil {
		fanoutStop()
	}
	if vkClient != nil {
		vkClient.Close()
	}
	coredb.Close()
	logrus.Info("[APP] Shutdown complete")
}
