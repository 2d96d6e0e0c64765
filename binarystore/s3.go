package binarystore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	ycd "github.com/rubpy/ycd-go"
)

//////////////////////////////////////////////////

type S3Config struct {
	Bucket string `mapstructure:"s3-bucket"`
	Prefix string `mapstructure:"s3-prefix"`
	Region string `mapstructure:"s3-region"`

	// Custom endpoint (MinIO, LocalStack); enables path-style addressing.
	Endpoint string `mapstructure:"s3-endpoint"`

	AccessKeyID     string `mapstructure:"s3-access-key-id"`
	SecretAccessKey string `mapstructure:"s3-secret-access-key"`
}

var MissingBucket = errors.New("S3 bucket is empty")

type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, MissingBucket
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3FromClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3FromClient(client *s3.Client, bucket string, prefix string) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3) Store(ctx context.Context, id string, bin *ycd.BinaryData) (ref string, err error) {
	if err = checkInput(id, bin); err != nil {
		return
	}

	key := objectKey(s.prefix, id, bin.FileName)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(bin.Data),
		ContentLength: aws.Int64(int64(len(bin.Data))),
		Metadata: map[string]string{
			"file-name": bin.FileName,
		},
	}
	if bin.MimeType != "" {
		input.ContentType = aws.String(bin.MimeType)
	}

	if _, err = s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3.Client.PutObject: %w", err)
	}

	return "s3://" + s.bucket + "/" + key, nil
}
