// Package main provides the entry point for the stream consumer worker.
// Exit codes: 0 on clean drain; 1 if the stream or the database is
// unreachable at startup, or when the consecutive-error threshold trips.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logstream/internal/config"
	"logstream/internal/db"
	"logstream/internal/services"
	"logstream/internal/stream"
	"logstream/internal/utils"
	"logstream/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const startupProbeTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		return 1
	}
	utils.SetupLogger(configManager)

	// The worker owns its own small stream pool with keep-alive,
	// separate from the front-end's pool.
	workerConfig := configManager.GetWorkerConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:            configManager.GetRedisConfig().Addr,
		PoolSize:        workerConfig.StreamPoolSize,
		MinIdleConns:    2,
		ConnMaxIdleTime: 0,
	})
	defer redisClient.Close()

	streamClient := stream.NewRedisStream(redisClient, configManager.GetStreamConfig())

	database, err := db.NewDB(configManager)
	if err != nil {
		logrus.Errorf("Failed to connect to database: %v", err)
		return 1
	}
	logStore := services.NewLogStore(database)
	defer closeDatabase(database)

	// Startup connectivity probes: refuse to start half-connected
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), startupProbeTimeout)
	defer cancelProbe()
	if err := streamClient.Ping(probeCtx); err != nil {
		logrus.Errorf("Stream unreachable at startup: %v", err)
		return 1
	}
	if err := logStore.Ping(probeCtx); err != nil {
		logrus.Errorf("Database unreachable at startup: %v", err)
		return 1
	}

	consumer := worker.NewConsumer(streamClient, logStore, configManager)

	// SIGINT/SIGTERM enter Draining: the current iteration completes,
	// then the loop exits without consuming more.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		logrus.Infof("Received signal: %v, draining...", sig)
		consumer.Drain()

		// Second signal forces immediate exit
		<-quit
		logrus.Warn("Second interrupt signal received, forcing immediate exit")
		os.Exit(1)
	}()

	if err := consumer.Run(context.Background()); err != nil {
		if errors.Is(err, worker.ErrTooManyErrors) {
			logrus.Error("Worker stopped: consecutive error threshold reached")
		} else {
			logrus.Errorf("Worker stopped with error: %v", err)
		}
		return 1
	}

	logrus.Info("Worker drained cleanly")
	return 0
}

func closeDatabase(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logrus.Warnf("Error closing database: %v", err)
	}
}
