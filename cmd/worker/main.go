package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"foodbridge/config"
	"foodbridge/internal/cron"
	"foodbridge/internal/delivery"
	"foodbridge/internal/delivery/worker"
	"foodbridge/internal/delivery/worker/handler"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/infra/idempotency"
	logs "foodbridge/internal/infra/log"
	"foodbridge/internal/infra/notification"
	"foodbridge/internal/infra/persistence/postgres"
	redisinfra "foodbridge/internal/infra/redis"
	"foodbridge/internal/usecase"
	"foodbridge/internal/usecase/impl"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		injectCron(),
		fx.Invoke(
			startServer,
			startCron,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		redisinfra.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewDonationRepository,
			postgres.NewDeviceRepository,
			postgres.NewNotificationRepository,
			postgres.NewAggregateRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newFirebaseService,
			newEventDeduper,
		),
	)
}

// newFirebaseService creates the push service from the configured credentials
func newFirebaseService(ctx context.Context, cfg *config.Config) (service.PushService, error) {
	if cfg.Firebase == nil {
		return nil, fmt.Errorf("firebase configuration is required for the worker")
	}

	svc, err := notification.NewFirebaseService(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase service: %w", err)
	}

	return svc, nil
}

// newEventDeduper creates the processed-event marker store
func newEventDeduper(client *redis.Client, cfg *config.Config) (service.EventDeduper, error) {
	var ttl time.Duration
	if cfg.Redis != nil {
		ttl = cfg.Redis.ProcessedEventTTL
	}

	return idempotency.NewRedisDeduper(client, ttl)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			newNotifierService,
			impl.NewTriggerService,
			impl.NewSweepService,
		),
	)
}

// newNotifierService creates the dispatcher with the configured fan-out width
func newNotifierService(
	notificationRepo repository.NotificationRepository,
	deviceRepo repository.DeviceRepository,
	pushSvc service.PushService,
	logger *slog.Logger,
	cfg *config.Config,
) usecase.NotifierUsecase {
	workers := 0
	if cfg.Notification != nil {
		workers = cfg.Notification.FanOutWorkers
	}

	return impl.NewNotifierService(notificationRepo, deviceRepo, pushSvc, logger, workers)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func injectCron() fx.Option {
	return fx.Options(
		fx.Provide(
			cron.NewExpiryJob,
			newSweepLock,
			newCronService,
		),
	)
}

// newSweepLock creates the Redis lock guarding concurrent sweep instances
func newSweepLock(client *redis.Client, cfg *config.Config) (*cron.RedisLock, error) {
	key := "fb:cron:donation-expiry-sweep"
	var ttl time.Duration
	if cfg.Sweep != nil {
		if cfg.Sweep.LockKey != "" {
			key = cfg.Sweep.LockKey
		}
		ttl = cfg.Sweep.LockTTL
	}

	return cron.NewRedisLock(client, key, ttl)
}

// newCronService assembles the cron loop with the expiry sweep registered
func newCronService(
	logger *slog.Logger,
	lock *cron.RedisLock,
	expiryJob *cron.ExpiryJob,
	cfg *config.Config,
) (*cron.Service, error) {
	var interval time.Duration
	if cfg.Sweep != nil {
		interval = cfg.Sweep.Interval
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logger,
		Registry: cron.NewRegistry(expiryJob),
		Lock:     lock,
		Interval: interval,
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}

func startCron(lc fx.Lifecycle, svc *cron.Service, logger *slog.Logger) {
	cronCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := svc.Run(cronCtx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("cron service stopped", slog.Any("error", err))
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})
}
