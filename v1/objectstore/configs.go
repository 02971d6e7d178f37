package objectstore

import "time"

// Config contains the S3-compatible connection details. It is only needed
// when a location uses the s3:// scheme.
type Config struct {
	Endpoint        string        `yaml:"endpoint" envconfig:"MINIO_ENDPOINT"` // e.g. "localhost:9000" or "s3.amazonaws.com"
	AccessKeyID     string        `yaml:"access_key_id" envconfig:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" envconfig:"MINIO_SECRET_ACCESS_KEY"`
	UseSSL          bool          `yaml:"use_ssl" envconfig:"MINIO_USE_SSL" default:"false"`
	Region          string        `yaml:"region" envconfig:"MINIO_REGION"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"MINIO_TIMEOUT" default:"60s"`
}
