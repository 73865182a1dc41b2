// Package remote bootstraps the remote-state storage that the generated backend override
// points at: the S3 state bucket and, when configured, the DynamoDB lock table. All calls go
// to the LocalStack edge, never to a real AWS account, and are idempotent "create if missing"
// operations.
package remote

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/localstack/tflocal/awshelper"
	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	localendpoints "github.com/localstack/tflocal/endpoints"
)

// AttrLockID is the name of the primary key for the lock table in DynamoDB. Terraform
// requires the lock table to have a hash key with this exact name.
const AttrLockID = "LockID"

// payPerRequestBillingMode creates lock tables with on-demand billing instead of provisioned
// capacity.
const payPerRequestBillingMode = "PAY_PER_REQUEST"

// StateBackendConfig is the subset of the merged backend settings the bootstrap needs.
type StateBackendConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Key           string `mapstructure:"key"`
	Region        string `mapstructure:"region"`
	DynamoDBTable string `mapstructure:"dynamodb_table"`
}

// DecodeBackendConfig extracts the typed bootstrap settings from the merged backend map.
func DecodeBackendConfig(settings map[string]any) (*StateBackendConfig, error) {
	config := &StateBackendConfig{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.New(err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, errors.New(err)
	}

	return config, nil
}

// Client talks to the LocalStack s3 and dynamodb APIs.
type Client struct {
	s3Client       *s3.S3
	dynamodbClient *dynamodb.DynamoDB
	logger         *logrus.Entry
}

func NewClient(opts *options.TflocalOptions, resolver *localendpoints.Resolver, region string) (*Client, error) {
	sess, err := awshelper.CreateLocalStackSession(awshelper.NewSessionConfig(resolver, region))
	if err != nil {
		return nil, err
	}

	return &Client{
		s3Client:       s3.New(sess),
		dynamodbClient: dynamodb.New(sess),
		logger:         opts.Logger,
	}, nil
}

// BootstrapBackend makes sure the state bucket exists and, when the backend names a lock
// table, that the table exists too.
func (client *Client) BootstrapBackend(config *StateBackendConfig) error {
	if err := client.CreateStateBucketIfNecessary(config.Bucket, config.Region); err != nil {
		return err
	}

	if config.DynamoDBTable != "" {
		return client.CreateLockTableIfNecessary(config.DynamoDBTable)
	}

	return nil
}

// CreateStateBucketIfNecessary creates the given S3 bucket unless it already exists.
func (client *Client) CreateStateBucketIfNecessary(bucketName, region string) error {
	exists, err := client.doesS3BucketExist(bucketName)
	if err != nil {
		return err
	}

	if exists {
		client.logger.Debugf("State bucket %s already exists", bucketName)
		return nil
	}

	client.logger.Debugf("Creating state bucket %s", bucketName)

	input := &s3.CreateBucketInput{Bucket: aws.String(bucketName)}

	// Region-aware creation: any region other than the default needs an explicit location
	// constraint.
	if region != "" && region != options.DefaultRegion {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(region),
		}
	}

	if _, err := client.s3Client.CreateBucket(input); err != nil {
		if isBucketAlreadyOwnedByYouError(err) {
			client.logger.Debugf("State bucket %s was created concurrently", bucketName)
			return nil
		}

		return errors.Errorf("error creating state bucket %s: %w", bucketName, err)
	}

	return nil
}

// CreateLockTableIfNecessary creates the lock table in DynamoDB unless it already exists:
// a single LockID hash key of type string, with on-demand billing.
func (client *Client) CreateLockTableIfNecessary(tableName string) error {
	exists, err := client.doesLockTableExist(tableName)
	if err != nil {
		return err
	}

	if exists {
		client.logger.Debugf("Lock table %s already exists", tableName)
		return nil
	}

	client.logger.Debugf("Creating lock table %s in DynamoDB", tableName)

	_, err = client.dynamodbClient.CreateTable(&dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: aws.String(payPerRequestBillingMode),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String(AttrLockID), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String(AttrLockID), KeyType: aws.String(dynamodb.KeyTypeHash)},
		},
	})

	if err != nil {
		if isTableAlreadyBeingCreatedError(err) {
			client.logger.Debugf("Lock table %s is being created concurrently", tableName)
			return nil
		}

		return errors.Errorf("error creating lock table %s: %w", tableName, err)
	}

	return nil
}

func (client *Client) doesS3BucketExist(bucketName string) (bool, error) {
	if _, err := client.s3Client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(bucketName)}); err != nil {
		var awsErr awserr.Error
		if ok := errors.As(err, &awsErr); ok && (awsErr.Code() == "NotFound" || awsErr.Code() == "NoSuchBucket") {
			return false, nil
		}

		return false, errors.Errorf("error checking access to state bucket %s: %w", bucketName, err)
	}

	return true, nil
}

func (client *Client) doesLockTableExist(tableName string) (bool, error) {
	if _, err := client.dynamodbClient.DescribeTable(&dynamodb.DescribeTableInput{TableName: aws.String(tableName)}); err != nil {
		var awsErr awserr.Error
		if ok := errors.As(err, &awsErr); ok && awsErr.Code() == dynamodb.ErrCodeResourceNotFoundException {
			return false, nil
		}

		return false, errors.Errorf("error checking lock table %s: %w", tableName, err)
	}

	return true, nil
}

func isBucketAlreadyOwnedByYouError(err error) bool {
	var awsErr awserr.Error
	ok := errors.As(err, &awsErr)

	return ok && (awsErr.Code() == s3.ErrCodeBucketAlreadyOwnedByYou || awsErr.Code() == "OperationAborted")
}

func isTableAlreadyBeingCreatedError(err error) bool {
	var awsErr awserr.Error
	ok := errors.As(err, &awsErr)

	return ok && awsErr.Code() == dynamodb.ErrCodeResourceInUseException
}
