package repository

import (
	"context"
	"fmt"
	"time"

	"shopcatalog/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectAttempts = 10

// ConnectMongo подключается к MongoDB с повторными попытками:
// в Docker база может подняться позже сервиса
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(time.Minute).
		SetServerSelectionTimeout(5 * time.Second)

	var err error
	for i := 0; i < connectAttempts; i++ {
		var client *mongo.Client
		client, err = mongo.Connect(ctx, clientOpts)
		if err == nil {
			if err = PingMongo(ctx, client); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to MongoDB")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}

// PingMongo проверяет доступность primary (транзакциям нужен именно он)
func PingMongo(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(pingCtx, readpref.Primary())
}
