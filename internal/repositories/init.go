package repositories

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"contaula-server/configs"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	// serverSelectionTimeout bounds how long the driver waits for a usable
	// server before an operation fails.
	serverSelectionTimeout = 8 * time.Second

	UsersCollection    = "users"
	ProgressCollection = "progress"
)

type Dbs struct {
	Mongo *mongo.Client
	Redis *redis.Client
}

var DBS Dbs

var initOnce sync.Once

// Init connects the shared database handles. Repeated calls are no-ops; the
// process keeps a single connection per backend for its lifetime. Fatal if a
// liveness probe fails, the store being unreachable at startup is not
// recoverable.
func Init() {
	initOnce.Do(func() {
		initMongoDB()
		initRedis()
	})
}

// initMongoDB initializes the MongoDB connection
func initMongoDB() {
	ctx, cancel := context.WithTimeout(context.Background(), serverSelectionTimeout+2*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(configs.Configs.MongoDB.Uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		configs.Logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		return
	}

	if err := client.Ping(ctx, nil); err != nil {
		configs.Logger.Fatal("MongoDB ping failed", zap.Error(err))
		return
	}

	DBS.Mongo = client
	configs.Logger.Info("MongoDB connected successfully",
		zap.String("database", configs.Configs.MongoDB.Database))
}

// initRedis initializes the Redis connection
func initRedis() {
	opt := &redis.Options{
		Addr:     configs.Configs.Redis.Addresses[0],
		Username: configs.Configs.Redis.Username,
		Password: configs.Configs.Redis.Password, // if Redis requires authentication
		DB:       configs.Configs.Redis.Database, // use default DB
	}

	if configs.Configs.Redis.Tls {
		opt.TLSConfig = &tls.Config{}
	}

	DBS.Redis = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := DBS.Redis.Ping(ctx).Result()
	if err != nil {
		configs.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		return
	}

	configs.Logger.Info("Redis connected successfully", zap.String("result", result))
}

// Database returns the configured application database handle.
func Database() *mongo.Database {
	return DBS.Mongo.Database(configs.Configs.MongoDB.Database)
}

// Users returns the users collection handle.
func Users() *mongo.Collection {
	return Database().Collection(UsersCollection)
}

// Progress returns the progress collection handle.
func Progress() *mongo.Collection {
	return Database().Collection(ProgressCollection)
}
