// Package awshelper creates AWS SDK sessions pointed at the LocalStack edge and implements
// the access-key policy for generated configuration.
package awshelper

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/endpoints"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"

	localendpoints "github.com/localstack/tflocal/endpoints"
)

// SessionConfig is a representation of the configuration options for a LocalStack AWS session.
type SessionConfig struct {
	Region           string
	S3Endpoint       string
	DynamoDBEndpoint string
	S3ForcePathStyle bool
}

// NewSessionConfig builds the session configuration for the given region from the resolver.
func NewSessionConfig(resolver *localendpoints.Resolver, region string) *SessionConfig {
	return &SessionConfig{
		Region:           region,
		S3Endpoint:       resolver.Resolve("s3"),
		DynamoDBEndpoint: resolver.Resolve("dynamodb"),
		S3ForcePathStyle: resolver.UseS3PathStyle(),
	}
}

// CreateLocalStackSession returns an AWS session whose s3 and dynamodb endpoints resolve to
// LocalStack, authenticated with the mock credentials the emulator accepts. Real AWS
// credentials are deliberately never picked up here.
func CreateLocalStackSession(config *SessionConfig) (*session.Session, error) {
	defaultResolver := endpoints.DefaultResolver()
	localResolverFn := func(service, region string, optFns ...func(*endpoints.Options)) (endpoints.ResolvedEndpoint, error) {
		switch service {
		case endpoints.S3ServiceID:
			return endpoints.ResolvedEndpoint{URL: config.S3Endpoint, SigningRegion: config.Region}, nil
		case endpoints.DynamodbServiceID:
			return endpoints.ResolvedEndpoint{URL: config.DynamoDBEndpoint, SigningRegion: config.Region}, nil
		}

		return defaultResolver.EndpointFor(service, region, optFns...)
	}

	awsConfig := aws.Config{
		Region:           aws.String(config.Region),
		EndpointResolver: endpoints.ResolverFunc(localResolverFn),
		Credentials:      credentials.NewStaticCredentials(options.DefaultAccessKey, options.DefaultAccessKey, ""),
		S3ForcePathStyle: aws.Bool(config.S3ForcePathStyle),
	}

	sess, err := session.NewSessionWithOptions(session.Options{Config: awsConfig})
	if err != nil {
		return nil, errors.Errorf("error initializing session: %w", err)
	}

	return sess, nil
}
