package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// AWSConfig loads the AWS SDK configuration. Static credentials from the
// environment win over the default provider chain.
func (c Config) AWSConfig(ctx context.Context) (aws.Config, error) {
	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.AWSRegion),
	}

	if c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" {
		awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
			aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     c.AWSAccessKeyID,
					SecretAccessKey: c.AWSSecretAccessKey,
				}, nil
			}),
		))
	}

	return awsconfig.LoadDefaultConfig(ctx, awsOptions...)
}
