// Package config loads and validates the application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	AWS          AWSConfig          `mapstructure:"aws"          validate:"required"`
	Storage      StorageConfig      `mapstructure:"storage"      validate:"required"`
	Notification NotificationConfig `mapstructure:"notification" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// AWSConfig contains the settings shared by every AWS client. The
// credential fields are optional: when empty, the default provider
// chain (environment, shared config, instance role) is used. EndpointURL
// points the clients at a local stack during development.
type AWSConfig struct {
	Region          string `mapstructure:"region" validate:"required"`
	EndpointURL     string `mapstructure:"endpoint_url" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
}

// StorageConfig names the two backing stores. Neither has a default:
// they identify deployment-specific resources.
type StorageConfig struct {
	TableName  string `mapstructure:"table_name"  validate:"required"`
	BucketName string `mapstructure:"bucket_name" validate:"required"`
}

// NotificationConfig identifies the topic mutation events are published to.
type NotificationConfig struct {
	TopicARN string `mapstructure:"topic_arn" validate:"required"`
}
