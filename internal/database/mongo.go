package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/coursehub/internal/config"
	loggerConfig "github.com/deppfellow/coursehub/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo wraps a MongoDB client bound to the configured database.
type Mongo struct {
	Client *mongo.Client
	name   string
	log    *zerolog.Logger
}

// NewMongo connects to MongoDB and pings the primary. Commands are
// reported to New Relic when the agent is running.
func NewMongo(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Mongo, error) {
	opts := options.Client().ApplyURI(cfg.Database.Mongo.URI)
	if loggerService != nil && loggerService.GetApplication() != nil {
		opts.SetMonitor(nrmongo.NewCommandMonitor(nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info().
		Str("driver", config.DriverMongo).
		Str("database", cfg.Database.Mongo.Name).
		Msg("connected to the database")

	return &Mongo{Client: client, name: cfg.Database.Mongo.Name, log: logger}, nil
}

// Database returns the configured database handle.
func (m *Mongo) Database() *mongo.Database {
	return m.Client.Database(m.name)
}

// EnsureIndexes creates the indexes List and the course lookup sort on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	byDate := mongo.IndexModel{Keys: bson.D{{Key: "date", Value: -1}}}

	if _, err := m.Database().Collection("courses").Indexes().CreateOne(ctx, byDate); err != nil {
		return fmt.Errorf("creating courses index: %w", err)
	}

	lessons := []mongo.IndexModel{
		byDate,
		{Keys: bson.D{{Key: "course", Value: 1}, {Key: "date", Value: -1}}},
	}
	if _, err := m.Database().Collection("lessons").Indexes().CreateMany(ctx, lessons); err != nil {
		return fmt.Errorf("creating lessons indexes: %w", err)
	}

	m.log.Info().Msg("mongo indexes ensured")
	return nil
}

// Ping checks the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	m.log.Info().Msg("closing mongo client")
	return m.Client.Disconnect(ctx)
}
