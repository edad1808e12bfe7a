package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/chelma/cloud-demo/internal/model"
)

// s3API is the subset of the S3 client the store needs.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Store keeps plans in an S3 bucket under <prefix>/<cluster>/plan.json.
type S3Store struct {
	client     s3API
	bucket     string
	prefix     string
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// S3Option configures the S3 store.
type S3Option func(*S3Store)

// WithLogger sets the logger used to report retries.
func WithLogger(l *zap.Logger) S3Option {
	return func(s *S3Store) { s.logger = l }
}

// WithBackOff replaces the retry policy.
func WithBackOff(f func() backoff.BackOff) S3Option {
	return func(s *S3Store) { s.newBackOff = f }
}

// NewS3Store creates a store over an existing bucket.
func NewS3Store(client s3API, bucket, prefix string, opts ...S3Option) *S3Store {
	if prefix == "" {
		prefix = "clusters"
	}
	s := &S3Store{
		client:     client,
		bucket:     bucket,
		prefix:     strings.Trim(prefix, "/"),
		logger:     zap.NewNop(),
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = time.Minute
	return bo
}

// BucketName derives the plan bucket for an account and region. S3 bucket names are
// global, so both are part of it.
func BucketName(accountID, region string) string {
	return fmt.Sprintf("capturefit-plans-%s-%s", accountID, region)
}

// Key returns the object key holding the plan for cluster.
func (s *S3Store) Key(cluster string) string {
	return path.Join(s.prefix, cluster, "plan.json")
}

// Get loads the stored plan for cluster.
func (s *S3Store) Get(ctx context.Context, cluster string) (*model.ClusterPlan, error) {
	if err := model.ValidateClusterName(cluster); err != nil {
		return nil, err
	}

	var data []byte
	err := s.retry(ctx, "get plan", func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.Key(cluster)),
		})
		if err != nil {
			return classify(err)
		}
		defer out.Body.Close()

		data, err = io.ReadAll(out.Body)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting plan from s3://%s/%s: %w", s.bucket, s.Key(cluster), err)
	}

	var plan model.ClusterPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing stored plan: %w", err)
	}
	return &plan, nil
}

// Put writes the plan for cluster.
func (s *S3Store) Put(ctx context.Context, cluster string, plan model.ClusterPlan) error {
	if err := model.ValidateClusterName(cluster); err != nil {
		return err
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}

	err = s.retry(ctx, "put plan", func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.Key(cluster)),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/json"),
		})
		return classify(err)
	})
	if err != nil {
		return fmt.Errorf("putting plan to s3://%s/%s: %w", s.bucket, s.Key(cluster), err)
	}
	return nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context, region string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyOwnedByYou":
				return nil
			case "BucketAlreadyExists":
				return fmt.Errorf("bucket name %q is already taken by another account", s.bucket)
			}
		}
		return fmt.Errorf("creating bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("created plan bucket", zap.String("bucket", s.bucket), zap.String("region", region))
	return nil
}

func (s *S3Store) retry(ctx context.Context, op string, fn func() error) error {
	bo := backoff.WithContext(s.newBackOff(), ctx)
	return backoff.RetryNotify(fn, bo, func(err error, wait time.Duration) {
		s.logger.Warn("retrying s3 request",
			zap.String("op", op),
			zap.String("bucket", s.bucket),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

// classify marks errors that retrying cannot fix as permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return backoff.Permanent(ErrNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return backoff.Permanent(ErrNotFound)
		case "AccessDenied", "NoSuchBucket", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return backoff.Permanent(err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	return err
}
