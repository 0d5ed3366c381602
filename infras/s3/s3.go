package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"resort/config"
	"resort/infras/otel"
	"resort/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrKey    = "object_key"
	otelAttrBucket = "bucket"
)

// S3 stores public media (room photos) in one S3-compatible bucket and serves it from
// EXTERNAL_S3_PUBLIC_DOMAIN.
type S3 interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL reverses Put. It returns "" for URLs outside the bucket.
	KeyFromURL(url string) string
}

type s3Impl struct {
	client *s3.Client
	bucket string
	public string
	direct string
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) S3 {
	conf := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, "")),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to load aws configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(conf.APIEndpoint)
		o.UsePathStyle = true
		o.Region = "auto"
	})

	return &s3Impl{
		client: client,
		bucket: conf.BucketName,
		public: strings.TrimSuffix(conf.PublicDomain, "/") + "/",
		direct: strings.TrimSuffix(conf.APIEndpoint, "/") + "/" + conf.BucketName + "/",
		otel:   otel,
	}
}

func (svc *s3Impl) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Put")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{otelAttrKey: key, otelAttrBucket: svc.bucket})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(svc.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return svc.public + key, nil
}

func (svc *s3Impl) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{otelAttrKey: key, otelAttrBucket: svc.bucket})

	if _, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(svc.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

func (svc *s3Impl) KeyFromURL(url string) string {
	for _, prefix := range []string{svc.public, svc.direct} {
		if key, ok := strings.CutPrefix(url, prefix); ok && key != "" {
			return key
		}
	}

	return constant.Empty
}
