package awsconfig

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Options selects the AWS region and, for local development, an endpoint
// such as LocalStack.
type Options struct {
	Region   string
	Endpoint string
}

// Load builds an AWS configuration. A non-empty Endpoint routes every call to
// that URL with static test credentials; otherwise the standard credential
// chain applies.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	if opts.Endpoint != "" {
		slog.Info("Routing AWS calls to custom endpoint", "endpoint", opts.Endpoint, "region", opts.Region)
		return awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(opts.Region),
			awsConfig.WithBaseEndpoint(opts.Endpoint),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}

	slog.Info("Using standard AWS credential chain", "region", opts.Region)
	return awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(opts.Region))
}
