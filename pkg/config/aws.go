package config

import (
	"context"
	"errors"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	credentials "github.com/aws/aws-sdk-go-v2/credentials"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// AWSConfig returns the SDK configuration for s3:// backends. Static
// credentials are used when both keys are set, otherwise the default chain
// (environment, shared config, instance role) applies. The endpoint, when
// set, becomes the base endpoint of the configuration.
func (c S3Config) AWSConfig(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	switch {
	case c.Anonymous:
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	case c.AccessKey != "" && c.SecretKey != "":
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	case c.AccessKey != "" || c.SecretKey != "":
		return aws.Config{}, errors.New("s3: access_key and secret_key must be set together")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if c.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(c.Endpoint)
	}
	return cfg, nil
}
