package api

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"gavel/adapters/events"
	postgresAdapter "gavel/adapters/postgres"
	redisAdapter "gavel/adapters/redis"
	"gavel/auction"
	"gavel/models"
	"gavel/scheduler"
)

type ServerImpl struct {
	admission *auction.AdmissionEngine
	lifecycle *auction.LifecycleController
	query     *auction.QueryService
	sched     *scheduler.Scheduler
	notifier  *events.Notifier

	redisClient *redis.Client
	db          *gorm.DB

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if err := db.AutoMigrate(&models.Auction{}, &models.Bid{}); err != nil {
		return nil, fmt.Errorf("[%s] Fail to migrate schema, err=%w", op, err)
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	// 初始化事件通知器
	notifier, err := events.NewNotifier(redisClient, config.Redis.StreamKeys.AuctionEvents)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create event notifier, err=%w", op, err)
	}

	// 初始化儲存與帳本
	store, err := postgresAdapter.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create auction store, err=%w", op, err)
	}
	ledger, err := redisAdapter.NewLedger(
		redisClient,
		redisAdapter.WithLedgerPrefix(config.Redis.KeyPrefix),
		redisAdapter.WithLedgerTTL(config.Engine.LedgerTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create idempotency ledger, err=%w", op, err)
	}

	// 初始化引擎
	admission, err := auction.NewAdmissionEngine(store, ledger, notifier,
		auction.WithAdmissionRetry(config.Engine.RetryAttempts, config.Engine.RetryDelay))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create admission engine, err=%w", op, err)
	}
	lifecycle, err := auction.NewLifecycleController(store, notifier,
		auction.WithLifecycleRetry(config.Engine.RetryAttempts, config.Engine.RetryDelay))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create lifecycle controller, err=%w", op, err)
	}
	query, err := auction.NewQueryService(store)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create query service, err=%w", op, err)
	}

	// 初始化排程器，多副本部署時以分散式租約選出唯一的掃描者
	schedulerOpts := []scheduler.Option{
		scheduler.WithInterval(config.Scheduler.Interval),
		scheduler.WithBatchSize(config.Scheduler.BatchSize),
	}
	if config.Scheduler.LeaderLock {
		schedulerOpts = append(schedulerOpts, scheduler.WithLeaderLock(
			redisAdapter.NewAutoRenewMutex(
				redisClient,
				config.Redis.KeyPrefix+"scheduler-leader",
				redisAdapter.WithAutoRenewMutexSkipLockError(true),
			),
		))
	}
	sched, err := scheduler.NewScheduler(store, notifier, schedulerOpts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create scheduler, err=%w", op, err)
	}

	return &ServerImpl{
		admission:   admission,
		lifecycle:   lifecycle,
		query:       query,
		sched:       sched,
		notifier:    notifier,
		redisClient: redisClient,
		db:          db,
		config:      config,
	}, nil
}

func (impl *ServerImpl) Start() {
	// 啟動事件通知器
	impl.notifier.Start()
	// 啟動排程器
	impl.sched.Start()
}

func (impl *ServerImpl) Close() {
	// 關閉排程器
	impl.sched.Close()
	// 關閉事件通知器
	impl.notifier.Close()
}
