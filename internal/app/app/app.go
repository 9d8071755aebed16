package app

import (
	"database/sql"
	"embed"
	"runtime"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"bankledger/internal/app/config"
	"bankledger/internal/app/logger"
	"bankledger/internal/app/service/ledger"
	"bankledger/internal/app/service/onboarding"
	"bankledger/internal/app/storage"
	"bankledger/internal/app/storage/postgres"
	"bankledger/pkg/notify"
)

type App struct {
	config config.Config
	logger logger.Logger

	db           *sql.DB
	redis        *redis.Client
	customers    storage.CustomerRepository
	accounts     storage.AccountRepository
	transactions storage.TransactionRepository
	ledger       *ledger.Service
	onboarding   *onboarding.Service
	notifier     *notify.Service
	stopCh       chan struct{}
}

func New(cfg config.Config, logger logger.Logger, e embed.FS) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "db open")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "db ping")
	}

	if err := applyMigrations(e, db); err != nil {
		return nil, errors.Wrap(err, "db migrate")
	}

	customers, err := postgres.NewCustomerRepository(db)
	if err != nil {
		return nil, errors.Wrap(err, "customer repository init")
	}

	transactions, err := postgres.NewTransactionRepository(db)
	if err != nil {
		return nil, errors.Wrap(err, "transaction repository init")
	}

	accounts, err := postgres.NewAccountRepository(db, transactions)
	if err != nil {
		return nil, errors.Wrap(err, "account repository init")
	}

	ledgerSvc, err := ledger.New(accounts, transactions)
	if err != nil {
		return nil, errors.Wrap(err, "ledger service init")
	}

	onboardingSvc, err := onboarding.New(db, customers, accounts)
	if err != nil {
		return nil, errors.Wrap(err, "onboarding service init")
	}

	notifier, err := notify.NewService(cfg.Webhook.URL,
		notify.WithLogger(logger.Logger))
	if err != nil {
		return nil, errors.Wrap(err, "notify service init")
	}
	notifier.Start(runtime.GOMAXPROCS(0))

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	a := &App{
		config:       cfg,
		logger:       logger,
		stopCh:       make(chan struct{}),
		db:           db,
		redis:        rdb,
		customers:    customers,
		accounts:     accounts,
		transactions: transactions,
		ledger:       ledgerSvc,
		onboarding:   onboardingSvc,
		notifier:     notifier,
	}

	go func() {
		<-a.stopCh
		a.logger.Info().Msg("Shutting down application")
	}()

	return a, nil
}

func (a *App) Stop() {
	a.notifier.Stop()
	close(a.stopCh)
}
