package corpus

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
)

type S3Config struct {
	Bucket     string
	Region     string
	Endpoint   string // empty for AWS, set for MinIO and friends
	AccessKey  string
	SecretKey  string
	ValidKey   string
	AnswersKey string
}

// S3Source reads the lists as objects from an S3-compatible bucket.
type S3Source struct {
	cfg    S3Config
	client *s3.Client
}

func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{cfg: cfg, client: client}, nil
}

func (s *S3Source) ValidWords(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx, s.cfg.ValidKey)
}

func (s *S3Source) Answers(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx, s.cfg.AnswersKey)
}

func (s *S3Source) fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := getObject(s.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s/%s: %w", s.cfg.Bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %s/%s: %w", s.cfg.Bucket, key, err)
	}
	return data, nil
}
