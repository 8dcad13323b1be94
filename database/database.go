package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"matchcore/config"
)

// InitCassandra opens a Cassandra session against the configured keyspace
func InitCassandra(cfg *config.Config, log *zap.Logger) (*gocql.Session, error) {
	// Create cluster configuration
	cluster := gocql.NewCluster(cfg.CassandraHost)
	cluster.Port = cfg.CassandraPort
	cluster.Keyspace = cfg.CassandraKeyspace
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: cfg.CassandraUsername,
		Password: cfg.CassandraPassword,
	}

	// Set consistency and timeout
	cluster.Consistency = gocql.Quorum
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second

	// Enable retry policy
	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{
		NumRetries: 3,
	}

	// Enable connection pooling
	cluster.NumConns = 10
	cluster.MaxWaitSchemaAgreement = 2 * time.Minute

	log.Info("connecting to cassandra",
		zap.String("host", cfg.CassandraHost),
		zap.Int("port", cfg.CassandraPort),
		zap.String("keyspace", cfg.CassandraKeyspace),
	)

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Cassandra: %w", err)
	}

	// Test the connection
	if err := HealthCheck(context.Background(), session); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to test Cassandra connection: %w", err)
	}

	log.Info("cassandra session initialized")
	return session, nil
}

// EnsureSchema runs each CREATE ... IF NOT EXISTS statement in order
func EnsureSchema(ctx context.Context, session *gocql.Session, statements []string) error {
	for _, stmt := range statements {
		if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// HealthCheck performs a health check on the Cassandra session
func HealthCheck(ctx context.Context, session *gocql.Session) error {
	if session == nil {
		return fmt.Errorf("Cassandra session is not initialized")
	}
	return session.Query("SELECT release_version FROM system.local").WithContext(ctx).Exec()
}

// InitMongo connects to MongoDB and returns the configured database
func InitMongo(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	log.Info("connecting to mongodb", zap.String("database", cfg.MongoDatabase))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("mongodb client initialized")
	return client, client.Database(cfg.MongoDatabase), nil
}
