package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/stashd/stashd/internal/api"
	"github.com/stashd/stashd/internal/auth"
	"github.com/stashd/stashd/internal/blob"
	"github.com/stashd/stashd/internal/files"
	"github.com/stashd/stashd/internal/metadata"
	"github.com/stashd/stashd/internal/session"
	"github.com/stashd/stashd/internal/thumbs"
	"github.com/stashd/stashd/pkg/config"
	"github.com/stashd/stashd/pkg/httpserver"
	"github.com/stashd/stashd/pkg/logger"
	"github.com/stashd/stashd/pkg/mongo"
	"github.com/stashd/stashd/pkg/queue"
	"github.com/stashd/stashd/pkg/redis"
)

func main() {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, "stashd")

	if err := run(context.Background(), log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		redisCfg redis.Config
		mongoCfg mongo.Config
		blobCfg  blob.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&redisCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&blobCfg)
	config.MustLoad(&httpCfg)

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	db, err := mongo.ConnectDatabase(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	sessions, err := session.NewRedisStore(redisClient)
	if err != nil {
		return err
	}
	meta, err := metadata.NewMongoStore(db)
	if err != nil {
		return err
	}
	blobs, err := blob.NewStore(blobCfg)
	if err != nil {
		return err
	}

	storage, err := queue.NewRedisStorage(redisClient)
	if err != nil {
		return err
	}
	enqueuer, err := queue.NewEnqueuer(storage, queue.WithEnqueuerQueue(thumbs.QueueName))
	if err != nil {
		return err
	}
	worker, err := queue.NewWorker(storage,
		queue.WithWorkerQueue(thumbs.QueueName),
		queue.WithWorkerLogger(log))
	if err != nil {
		return err
	}
	worker.RegisterHandler(thumbs.NewHandler(meta, blobs, log))

	if err := worker.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = worker.Stop() }()

	gateway := auth.NewGateway(sessions, meta, log)
	svc := files.NewService(meta, blobs, enqueuer, log)
	server := api.NewServer(gateway, svc, sessions, meta, log)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, server.Handler())
}
