package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB client
	MongoDB *mongo.Database
	// Redis client
	Redis *redisclient.Client

	stopIndexMaintenance chan struct{}
)

// InitMongoDB initializes the MongoDB connection
func InitMongoDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := ensureIndexes(); err != nil {
		logging.Logger.Warn("index check at startup failed", zap.Error(err))
	}
	startIndexMaintenance()

	logging.Logger.Info("mongodb ready",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
	return nil
}

// InitRedis initializes the Redis connection, as a cluster client when
// REDIS_CLUSTER_ADDRS is set. A failed ping is logged but the client is kept
// so the cache can recover once Redis comes back.
func InitRedis() {
	universal := &redis.UniversalOptions{
		Addrs:        []string{AppConfig.RedisURI},
		Password:     AppConfig.RedisPassword,
		DB:           AppConfig.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     AppConfig.RedisPoolSize,
		MinIdleConns: AppConfig.RedisMinIdleConns,
	}
	cluster := len(AppConfig.RedisClusterAddrs) > 0
	if cluster {
		universal.Addrs = AppConfig.RedisClusterAddrs
		Redis = redisclient.NewClusterClient(redis.NewClusterClient(universal.Cluster()))
	} else {
		Redis = redisclient.NewClient(redis.NewClient(universal.Simple()))
	}
	target := strings.Join(universal.Addrs, ",")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		logging.Logger.Warn("redis unreachable, visitor cache degraded",
			zap.String("target", target),
			zap.Error(err))
		return
	}

	logging.Logger.Info("connected to Redis",
		zap.String("target", target),
		zap.Bool("cluster", cluster))
}

// CloseConnections stops index maintenance and disconnects the clients
func CloseConnections(ctx context.Context) {
	if stopIndexMaintenance != nil {
		close(stopIndexMaintenance)
		stopIndexMaintenance = nil
	}
	if MongoDB != nil {
		if err := MongoDB.Client().Disconnect(ctx); err != nil {
			logging.Logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			logging.Logger.Error("failed to close Redis", zap.Error(err))
		}
	}
}

// maskMongoURI hides the credentials of a connection string, keeping its scheme
func maskMongoURI(uri string) string {
	scheme := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if scheme < 0 || at < scheme {
		return uri
	}
	return uri[:scheme+3] + "****:****@" + uri[at+1:]
}

// collectionIndexes lists the indexes each kiosk collection needs
func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		AppConfig.VisitorCollection: {
			{
				Keys:    bson.D{{Key: "cedula", Value: 1}},
				Options: options.Index().SetName("cedula_1").SetUnique(true),
			},
		},
		AppConfig.OtpCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_1").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "cedula", Value: 1}},
				Options: options.Index().SetName("cedula_1"),
			},
			// Garbage collection only, expiry is decided at validation time
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("expires_at_1").SetExpireAfterSeconds(3600),
			},
		},
		AppConfig.ConsentCollection: {
			{
				Keys:    bson.D{{Key: "consecutivo", Value: 1}},
				Options: options.Index().SetName("consecutivo_1").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "visitor_id", Value: 1}, {Key: "signed_at", Value: -1}},
				Options: options.Index().SetName("visitor_id_1_signed_at_-1"),
			},
		},
		AppConfig.AuditLogCollection: {
			{
				Keys:    bson.D{{Key: "entity_id", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("entity_id_1_timestamp_-1"),
			},
			{
				Keys:    bson.D{{Key: "action", Value: 1}},
				Options: options.Index().SetName("action_1"),
			},
		},
	}
}

// ensureIndexes creates whatever kiosk indexes are missing
func ensureIndexes() error {
	logger := logging.Logger.Named("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, wanted := range collectionIndexes() {
		created, err := ensureCollectionIndexes(ctx, MongoDB.Collection(name), wanted)
		if err != nil {
			logger.Error("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
			return fmt.Errorf("indexes on %s: %w", name, err)
		}
		if created > 0 {
			logger.Info("created indexes", zap.String("collection", name), zap.Int("count", created))
		}
	}
	return nil
}

// missingIndexes returns the wanted models whose name is not in existing
func missingIndexes(existing map[string]bool, wanted []mongo.IndexModel) []mongo.IndexModel {
	var missing []mongo.IndexModel
	for _, model := range wanted {
		if model.Options != nil && model.Options.Name != nil && existing[*model.Options.Name] {
			continue
		}
		missing = append(missing, model)
	}
	return missing
}

func ensureCollectionIndexes(ctx context.Context, collection *mongo.Collection, wanted []mongo.IndexModel) (int, error) {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return 0, err
	}
	var listed []struct {
		Name string `bson:"name"`
	}
	if err := cursor.All(ctx, &listed); err != nil {
		return 0, err
	}
	existing := make(map[string]bool, len(listed))
	for _, index := range listed {
		existing[index.Name] = true
	}

	missing := missingIndexes(existing, wanted)
	if len(missing) == 0 {
		return 0, nil
	}
	// another replica may be creating the same index
	if _, err := collection.Indexes().CreateMany(ctx, missing); err != nil && !mongo.IsDuplicateKeyError(err) {
		return 0, err
	}
	return len(missing), nil
}

// startIndexMaintenance re-checks indexes every IndexMaintenanceInterval until CloseConnections
func startIndexMaintenance() {
	if AppConfig.IndexMaintenanceInterval <= 0 {
		return
	}
	logger := logging.Logger.Named("database")
	stop := make(chan struct{})
	stopIndexMaintenance = stop

	go func() {
		ticker := time.NewTicker(AppConfig.IndexMaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := ensureIndexes(); err != nil {
					logger.Warn("periodic index check failed", zap.Error(err))
				}
			}
		}
	}()
}
