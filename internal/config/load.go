package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variable names the
// deployment supplies. The AWS names match what the SDK and the
// surrounding infrastructure already use.
var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.log_level":      "LOG_LEVEL",
	"aws.region":            "AWS_REGION",
	"aws.endpoint_url":      "AWS_ENDPOINT_URL",
	"aws.access_key_id":     "AWS_ACCESS_KEY_ID",
	"aws.secret_access_key": "AWS_SECRET_ACCESS_KEY",
	"aws.session_token":     "AWS_SESSION_TOKEN",
	"storage.table_name":    "DYNAMODB_TABLE_NAME",
	"storage.bucket_name":   "S3_BUCKET_NAME",
	"notification.topic_arn": "SNS_TOPIC_ARN",
}

// Load configuration from environment variables.
// Returns a populated Config struct or an error if loading or
// validation fails. Only the port and log level have defaults; resource
// identifiers and credentials must be supplied by the deployment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 4000)
	v.SetDefault("server.log_level", "info")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
