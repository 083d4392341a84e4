package bootstrap

import (
	"context"
	"fmt"
	"time"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appsvc "paperarchive/internal/app"
	"paperarchive/internal/cache"
	"paperarchive/internal/config"
	"paperarchive/internal/logging"
	"paperarchive/internal/objectstore"
	mysqlClient "paperarchive/internal/platform/mysql"
	ossClient "paperarchive/internal/platform/oss"
	rabbitmqClient "paperarchive/internal/platform/rabbitmq"
	redisClient "paperarchive/internal/platform/redis"
	"paperarchive/internal/repository"
	"paperarchive/internal/transport/http/handler"
	"paperarchive/internal/worker"
)

type App struct {
	Config      *config.Config
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Bucket      *alioss.Bucket
	AuditWorker *worker.AuditWorker

	AuthService    *appsvc.AuthService
	CatalogService *appsvc.CatalogService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logging.Init(cfg.App.LogLevel)

	a := &App{Config: cfg, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	verifier, err := appsvc.NewCredentialVerifier(cfg.Auth.AdminIdentity, cfg.Auth.AdminSecret, cfg.Auth.AdminSecretHash)
	if err != nil {
		return err
	}

	gormLevel := logger.Warn
	if cfg.App.LogLevel == "debug" {
		gormLevel = logger.Info
	}
	a.MySQL, err = mysqlClient.New(ctx, cfg.MySQLDSN(), gormLevel)
	if err != nil {
		return err
	}
	if err := mysqlClient.Migrate(a.MySQL); err != nil {
		return err
	}

	var tokenOpts []appsvc.TokenOption
	if cfg.Auth.RevokeOnLogout {
		a.Redis, err = redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		tokenOpts = append(tokenOpts, appsvc.WithDenylist(cache.NewTokenDenylist(a.Redis)))
	}
	tokens, err := appsvc.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour, tokenOpts...)
	if err != nil {
		return err
	}
	a.AuthService = appsvc.NewAuthService(verifier, tokens)

	a.Bucket, err = ossClient.New(cfg.OSS)
	if err != nil {
		return err
	}
	publicBase := cfg.OSS.PublicBase
	if publicBase == "" {
		publicBase = objectstore.PublicBaseFor(cfg.OSS.Endpoint, cfg.OSS.Bucket)
	}
	gateway := objectstore.NewGateway(a.Bucket, cfg.OSS.Namespace, publicBase)

	var catalogOpts []appsvc.CatalogOption
	if cfg.RabbitMQ.Enabled {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.AuditQueue)
		if err != nil {
			return err
		}
		a.AuditWorker = worker.NewAuditWorker(a.MQConn, repository.NewAuditRepository(a.MySQL), cfg.RabbitMQ.AuditQueue)
		if err := a.AuditWorker.Start(ctx); err != nil {
			return fmt.Errorf("start audit worker failed: %w", err)
		}
		catalogOpts = append(catalogOpts, appsvc.WithEventPublisher(
			rabbitmqClient.NewEventPublisher(a.MQConn, cfg.RabbitMQ.AuditQueue),
		))
	}
	a.CatalogService = appsvc.NewCatalogService(repository.NewPaperRepository(a.MySQL), gateway, catalogOpts...)

	logrus.WithFields(logrus.Fields{
		"env":              cfg.App.Env,
		"revoke_on_logout": cfg.Auth.RevokeOnLogout,
		"audit_events":     cfg.RabbitMQ.Enabled,
		"object_namespace": cfg.OSS.Namespace,
	}).Info("dependencies ready")
	return nil
}

// Probes lists the health checks for the dependencies that are enabled.
func (a *App) Probes() []handler.Probe {
	probes := []handler.Probe{{
		Name: "mysql",
		Check: func(ctx context.Context) error {
			sqlDB, err := a.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if a.Redis != nil {
		probes = append(probes, handler.Probe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() },
		})
	}
	if a.MQConn != nil {
		probes = append(probes, handler.Probe{
			Name:  "rabbitmq",
			Check: func(context.Context) error { return rabbitmqClient.Ping(a.MQConn) },
		})
	}
	return probes
}

func (a *App) Close() error {
	var closeErr error
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
