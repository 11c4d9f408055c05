// Package mongo provides the MongoDB client used by the metadata store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrFailedToConnect is returned when the server does not answer
	// within the configured retry budget.
	ErrFailedToConnect = errors.New("failed to connect to mongo")
	// ErrHealthcheckFailed wraps ping failures from the health probe.
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
)

// Config holds connection settings for the MongoDB server. The host,
// port and database variables match the original deployment layout.
type Config struct {
	Host           string        `env:"DB_HOST" envDefault:"localhost"`
	Port           int           `env:"DB_PORT" envDefault:"27017"`
	Database       string        `env:"DB_DATABASE" envDefault:"files_manager"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize    uint64        `env:"DB_MAX_POOL_SIZE" envDefault:"100"`
	RetryAttempts  int           `env:"DB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"5s"`
}

// URI returns the mongodb connection string for the configured host and port.
func (c Config) URI() string {
	return fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
}

// Connect creates a client and verifies connectivity, retrying up to
// cfg.RetryAttempts times with cfg.RetryInterval between attempts.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	for attempt := 0; attempt < cfg.RetryAttempts; attempt++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.URI()).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnect, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrFailedToConnect
}

// ConnectDatabase connects and returns a handle to the configured database.
func ConnectDatabase(ctx context.Context, cfg Config) (*mongo.Database, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.Database), nil
}

// Healthcheck returns a probe function that pings the server.
func Healthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
