package objstore

//go:generate go run go.uber.org/mock/mockgen -source=./objstore.go -destination=./mocks/objstore_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"

	"innkeeper/config"
	"innkeeper/infras/otel"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
)

const (
	otelAttrKey    = "object_key"
	otelAttrPrefix = "key_prefix"
	otelAttrBucket = "bucket"
)

// ErrNotFound is returned by Get when no object exists at the requested key.
var ErrNotFound = errors.New("object not found")

// isAccessDenied reports a permission failure. Callers must treat it as fatal
// rather than a per-key miss, so Get and Put surface it as failure.StorageAuth.
func isAccessDenied(err error) bool {
	var apiErr smithy.APIError

	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied"
}

// ObjectStore exposes the per-key primitives the storage backend offers:
// get, put, delete and paginated listing. There is no multi-key atomicity.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	Delete(ctx context.Context, key string) error
	// Exists distinguishes "not found" (false, nil) from a storage or
	// permission error (false, err). Callers must treat the latter as fatal.
	Exists(ctx context.Context, key string) (bool, error)
	// ListPage returns one page of keys under prefix plus the continuation
	// token for the next page; an empty token means the listing is exhausted.
	ListPage(ctx context.Context, prefix, continuationToken string) (keys []string, nextToken string, err error)
}

type objStoreImpl struct {
	Client *s3.Client
	Config *config.Config
	otel   otel.Otel
}

func (svc *objStoreImpl) Get(ctx context.Context, key string) (body []byte, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	bucket := svc.Config.Storage.S3.BucketName
	scope.SetAttributes(map[string]any{
		otelAttrKey:    key,
		otelAttrBucket: bucket,
	})

	out, err := svc.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}

		if isAccessDenied(err) {
			return nil, failure.StorageAuth(fmt.Errorf("failed to get object %q: %w", key, err)) //nolint:wrapcheck
		}

		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}

	defer func() {
		if closeErr := out.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("key", key).Msg("failed to close object body")
		}
	}()

	body, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", key, err)
	}

	return body, nil
}

func (svc *objStoreImpl) Put(ctx context.Context, key string, body []byte) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".Put")
	defer scope.End()
	defer scope.TraceIfError(err)

	bucket := svc.Config.Storage.S3.BucketName
	scope.SetAttributes(map[string]any{
		otelAttrKey:    key,
		otelAttrBucket: bucket,
	})

	reader := bytes.NewReader(body)

	_, err = svc.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(constant.ContentTypeJSON),
		ContentLength: aws.Int64(reader.Size()),
	})
	if err != nil {
		if isAccessDenied(err) {
			return failure.StorageAuth(fmt.Errorf("failed to put object %q: %w", key, err)) //nolint:wrapcheck
		}

		return fmt.Errorf("failed to put object %q: %w", key, err)
	}

	return nil
}

func (svc *objStoreImpl) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	bucket := svc.Config.Storage.S3.BucketName
	scope.SetAttributes(map[string]any{
		otelAttrKey:    key,
		otelAttrBucket: bucket,
	})

	_, err = svc.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete object")

		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}

	return nil
}

func (svc *objStoreImpl) Exists(ctx context.Context, key string) (exists bool, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".Exists")
	defer scope.End()
	defer scope.TraceIfError(err)

	bucket := svc.Config.Storage.S3.BucketName
	scope.SetAttributes(map[string]any{
		otelAttrKey:    key,
		otelAttrBucket: bucket,
	})

	_, err = svc.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}

		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}

		return false, fmt.Errorf("failed to check object %q: %w", key, err)
	}

	return true, nil
}

func (svc *objStoreImpl) ListPage(ctx context.Context, prefix, continuationToken string) (keys []string, nextToken string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelStorageScopeName, constant.OtelStorageScopeName+".ListPage")
	defer scope.End()
	defer scope.TraceIfError(err)

	bucket := svc.Config.Storage.S3.BucketName
	scope.SetAttributes(map[string]any{
		otelAttrPrefix: prefix,
		otelAttrBucket: bucket,
	})

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(svc.Config.Storage.S3.ListPageSize),
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	out, err := svc.Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list objects under %q: %w", prefix, err)
	}

	keys = make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}

	if aws.ToBool(out.IsTruncated) {
		nextToken = aws.ToString(out.NextContinuationToken)
	}

	return keys, nextToken, nil
}

func New(config *config.Config, otel otel.Otel) ObjectStore {
	endpoint := config.Storage.S3.APIEndpoint
	accessKeyID := config.Storage.S3.AccessKeyID
	secretAccessKey := config.Storage.S3.SecretAccessKey

	staticProvider := credentials.NewStaticCredentialsProvider(
		accessKeyID,
		secretAccessKey,
		"",
	)

	cfg, err := awsConfig.LoadDefaultConfig(
		context.TODO(),
		awsConfig.WithCredentialsProvider(staticProvider),
	)

	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		o.Region = config.Storage.S3.Region
	})

	return &objStoreImpl{
		Client: s3Client,
		Config: config,
		otel:   otel,
	}
}
