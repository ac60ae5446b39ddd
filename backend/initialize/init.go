package initialize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"bugtracker/backend/app/controllers"
	"bugtracker/backend/app/credential"
	"bugtracker/backend/app/db"
	"bugtracker/backend/app/dto"
	jwtutil "bugtracker/backend/app/jwt"
	"bugtracker/backend/app/metrics"
	"bugtracker/backend/app/middleware"
	"bugtracker/backend/app/notify"
	"bugtracker/backend/app/repo"
	"bugtracker/backend/app/services"
	"bugtracker/backend/config"
	"bugtracker/backend/global"
	"bugtracker/backend/router"
	"bugtracker/backend/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg        *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Router     http.Handler
	Registry   *prometheus.Registry
	Queue      notify.Queue
	Dispatcher *notify.Dispatcher
	Accounts   *services.AccountService
	Projects   *services.ProjectService
	Tickets    *services.TicketService
}

// Build loads configuration, opens the stores and wires the application.
// override, if set, adjusts the loaded configuration before use.
func Build(configPath string, override func(*config.Config)) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	global.Config = cfg
	global.Logger = NewLogger(os.Stdout, cfg.Debug)
	SetLevel(cfg.Debug)
	if cfg.DevSecret {
		global.Logger.Warn().Msg("no jwt secret configured, using the development secret")
	}

	gdb, err := db.Connect(db.Config{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN, Name: cfg.DB.Name, Debug: cfg.Debug})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb
	if cfg.DB.Migrate {
		if err := db.Migrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		global.Rdb = rdb
	}

	return Assemble(cfg, gdb, rdb), nil
}

// Assemble wires repositories, services and routes on top of open stores.
// rdb may be nil, in which case notifications are queued in memory.
func Assemble(cfg *config.Config, gdb *gorm.DB, rdb *redis.Client) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var queue notify.Queue
	if rdb != nil {
		queue = notify.NewRedisQueue(rdb, cfg.Redis.Queue)
	} else {
		queue = notify.NewMemoryQueue(cfg.Notify.Buffer)
	}
	var sink notify.Sink = notify.LogSink{Logger: global.Logger}
	if cfg.NotifyViaTelegram() {
		sink = notify.NewTelegramSink(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Telegram.ChatID)
	}

	userRepo := repo.NewUserRepository(gdb)
	projectRepo := repo.NewProjectRepository(gdb)
	bugRepo := repo.NewBugRepository(gdb)
	notificationRepo := repo.NewNotificationRepository(gdb)

	dispatcher := &notify.Dispatcher{
		Queue:    queue,
		Sink:     sink,
		Recorder: notificationRepo,
		Metrics:  m,
		Logger:   global.Logger,
		Workers:  cfg.Notify.Workers,
	}
	outbox := notify.NewOutbox(queue, m, global.Logger)

	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL}
	accounts := services.NewAccountService(userRepo, credential.NewBcrypt(cfg.PasswordCost), signer)
	projects := services.NewProjectService(projectRepo)
	tickets := services.NewTicketService(bugRepo, projectRepo, userRepo, outbox)

	validate := dto.NewValidator()
	var pinger controllers.Pinger
	if sqlDB, err := gdb.DB(); err == nil {
		pinger = sqlDB
	}
	h := router.NewRouter(router.Controllers{
		HTTP:     controllers.NewHTTPController(pinger),
		Users:    controllers.NewUserController(accounts, validate),
		Projects: controllers.NewProjectController(projects, validate),
		Bugs:     controllers.NewBugController(tickets, validate),
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, &middleware.Auth{Accounts: accounts})
	h = middleware.Logging(m, middleware.Recover(h))

	return &App{
		Cfg:        cfg,
		DB:         gdb,
		Redis:      rdb,
		Router:     h,
		Registry:   reg,
		Queue:      queue,
		Dispatcher: dispatcher,
		Accounts:   accounts,
		Projects:   projects,
		Tickets:    tickets,
	}
}

// WatchConfig follows edits to the configuration file at path. Only the
// debug switch is applied at runtime; other keys need a restart.
func (a *App) WatchConfig(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	config.Watch(path, func(cfg *config.Config) {
		SetLevel(cfg.Debug)
		global.Logger.Info().Bool("debug", cfg.Debug).Msg("configuration reloaded")
	}, func(err error) {
		global.Logger.Warn().Err(err).Msg("ignoring invalid configuration change")
	})
}

// Run serves HTTP and delivers notifications until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Dispatcher.Run(ctx)
	}()

	global.Logger.Info().Str("addr", a.Cfg.HTTP.Addr()).Str("db", a.Cfg.DB.Driver).Msg("http server listening")
	err := server.StartHTTPServer(ctx, a.Cfg.HTTP.Addr(), a.Router)
	cancel()
	<-done
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

func (a *App) Close() error {
	var errs []error
	if err := a.Queue.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close queue: %w", err))
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
