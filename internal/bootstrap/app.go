package bootstrap

import (
	"context"
	"fmt"
	"time"

	miniosdk "github.com/minio/minio-go/v7"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"noteally/internal/ai"
	"noteally/internal/app"
	"noteally/internal/cache"
	"noteally/internal/config"
	"noteally/internal/model"
	minioClient "noteally/internal/platform/minio"
	mysqlClient "noteally/internal/platform/mysql"
	rabbitmqClient "noteally/internal/platform/rabbitmq"
	redisClient "noteally/internal/platform/redis"
	"noteally/internal/repository"
	"noteally/internal/storage"
	"noteally/internal/worker"
)

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
	Minio  *miniosdk.Client

	NoteService      *app.NoteService
	SummarizeService *app.SummarizeService
	SummaryWorker    *worker.SummaryWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Note{}, &model.NoteLike{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	minioCli, err := minioClient.New(
		ctx,
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.UseSSL,
		cfg.Storage.Bucket,
	)
	if err != nil {
		return nil, err
	}

	noteRepo := repository.NewNoteRepository(mysqlDB)
	fileStore := storage.NewNoteFileStore(minioCli, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL, cfg.Storage.UseSSL)
	feedCache := cache.NewFeedCache(
		redisCli,
		time.Duration(cfg.Redis.FeedTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.FeedDirtyTTLSeconds)*time.Second,
	)
	jobPublisher := rabbitmqClient.NewSummaryJobPublisher(mqConn, cfg.RabbitMQ.SummaryJobQueue)

	generator := ai.NewGenerator(ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	summarizeService := app.NewSummarizeService(generator)
	noteService := app.NewNoteService(noteRepo, fileStore, feedCache, jobPublisher, summarizeService)

	summaryWorker := worker.NewSummaryWorker(mqConn, summarizeService, noteService, cfg.RabbitMQ.SummaryJobQueue)
	if err := summaryWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start summary worker failed: %w", err)
	}

	return &App{
		Config:           cfg,
		MySQL:            mysqlDB,
		Redis:            redisCli,
		MQConn:           mqConn,
		Minio:            minioCli,
		NoteService:      noteService,
		SummarizeService: summarizeService,
		SummaryWorker:    summaryWorker,
		StartedAt:        time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.SummaryWorker != nil {
		a.SummaryWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
