package repository

import (
	"MarketChat/entity"
	"MarketChat/internal/config"
	"MarketChat/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection    = "rooms"
	settingsCollection = "business_settings"
)

type MongoDB struct {
	client   *mongo.Client
	database string
	log      *slog.Logger
}

// NewMongoClient returns nil, nil when mongo is disabled in the config.
// Every operation inherits the configured client timeout.
func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	timeout := time.Duration(conf.Mongo.Timeout) * time.Second
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri).SetTimeout(timeout)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping error: %w", err)
	}

	return &MongoDB{
		client:   client,
		database: conf.Mongo.Database,
		log:      logger.With(sl.Module("mongodb")),
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

// infraError classifies a driver failure; timeouts and network errors alike
// mean the operation did not happen.
func infraError(err error, op string) error {
	return entity.Infrastructure(err, "mongodb %s", op)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// EnsureIndexes creates the indexes the chat core depends on. The unique
// pair index is what makes concurrent room creation converge on one room.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	rooms := m.collection(roomsCollection)
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "business_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "last_activity", Value: -1}}},
		{Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "last_activity", Value: -1}}},
	}
	if _, err := rooms.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongodb create room indexes: %w", err)
	}

	settings := m.collection(settingsCollection)
	_, err := settings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "business_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb create settings index: %w", err)
	}
	return nil
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}
