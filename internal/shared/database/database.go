package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderly/internal/shared/config"
	applog "wanderly/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds database connections. Redis and Mongo are optional and stay nil
// when their init fails; callers degrade instead of refusing to start.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
	Mongo      *mongo.Client
	MongoDB    *mongo.Database
}

// InitDB connects PostgreSQL (required, migrated), then Redis and MongoDB
func InitDB(cfg *config.Config) (*DB, error) {
	log := applog.GetDefault().WithComponent("database")

	pg, err := initPostgreSQL(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("PostgreSQL connected and migrated")

	db := &DB{PostgreSQL: pg}

	if rdb, err := initRedis(cfg); err != nil {
		log.Warn("Redis unavailable, continuing without cache", "error", err)
	} else {
		db.Redis = rdb
		log.Info("Redis connected", "addr", cfg.Redis.Addr)
	}

	if client, err := initMongo(cfg); err != nil {
		log.Warn("MongoDB unavailable, notification inbox disabled", "error", err)
	} else {
		db.Mongo = client
		db.MongoDB = client.Database(cfg.Mongo.Database)
		log.Info("MongoDB connected", "database", cfg.Mongo.Database)
	}

	return db, nil
}

// OpenPostgreSQL connects and migrates without touching the optional stores
func OpenPostgreSQL(cfg *config.Config) (*gorm.DB, error) {
	pg, err := initPostgreSQL(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return pg, nil
}

func initPostgreSQL(cfg *config.Config) (*gorm.DB, error) {
	var gormLogger logger.Interface
	if cfg.IsDevelopment() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,

		PoolSize:     10,
		MinIdleConns: 5,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// OpenMongo connects to the notification inbox
func OpenMongo(cfg *config.Config) (*mongo.Client, error) {
	return initMongo(cfg)
}

func initMongo(cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetServerSelectionTimeout(cfg.Mongo.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Close closes all database connections
func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close PostgreSQL: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}
	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MongoDB: %w", err))
		}
	}

	return errors.Join(errs...)
}

// HealthCheck pings every connected store
func (db *DB) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{}

	sqlDB, err := db.PostgreSQL.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	status["postgres"] = healthOf(err)

	if db.Redis != nil {
		status["redis"] = healthOf(db.Redis.Ping(ctx).Err())
	} else {
		status["redis"] = "disabled"
	}

	if db.Mongo != nil {
		status["mongo"] = healthOf(db.Mongo.Ping(ctx, nil))
	} else {
		status["mongo"] = "disabled"
	}
	return status
}

func healthOf(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
