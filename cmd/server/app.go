package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/phrazzld/tarea-api/internal/config"
	"github.com/phrazzld/tarea-api/internal/platform/dynamo"
	"github.com/phrazzld/tarea-api/internal/platform/logger"
	"github.com/phrazzld/tarea-api/internal/platform/s3store"
	"github.com/phrazzld/tarea-api/internal/platform/snsnotify"
	"github.com/phrazzld/tarea-api/internal/service"
)

// application holds the initialized dependencies of the server.
type application struct {
	config       *config.Config
	logger       *slog.Logger
	tareaService service.TareaService
}

// initializeApp loads configuration, sets up logging, builds the AWS
// clients, and wires them into the service layer.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("region", cfg.AWS.Region),
		slog.String("table", cfg.Storage.TableName),
		slog.String("bucket", cfg.Storage.BucketName))

	awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	endpoint := endpointOverride(cfg.AWS)

	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = endpoint
	})
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = endpoint
		// Local stacks serve buckets by path, not virtual host.
		o.UsePathStyle = endpoint != nil
	})
	snsClient := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = endpoint
	})

	tareaStore := dynamo.NewTareaStore(dynamoClient, cfg.Storage.TableName)
	objectStore := s3store.NewObjectStore(
		s3Client,
		s3.NewPresignClient(s3Client),
		cfg.Storage.BucketName,
	)
	notifier := snsnotify.NewNotifier(snsClient, cfg.Notification.TopicARN)

	tareaService := service.NewTareaService(tareaStore, objectStore, notifier, appLogger)

	return &application{
		config:       cfg,
		logger:       appLogger,
		tareaService: tareaService,
	}, nil
}

// loadAWSConfig resolves the shared AWS client configuration. Static
// credentials from the environment win over the default provider chain
// when present, which is how the local stack is driven.
func loadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				cfg.SessionToken,
			)))
	}

	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// endpointOverride returns the endpoint to pin every client to, or nil
// for the real AWS endpoints.
func endpointOverride(cfg config.AWSConfig) *string {
	if cfg.EndpointURL == "" {
		return nil
	}
	url := cfg.EndpointURL
	return &url
}
