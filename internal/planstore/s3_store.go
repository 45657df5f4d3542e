package planstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const planKeyPrefix = "plans/"

// S3Store persists plans as JSON objects in an S3-compatible bucket under
// plans/<id>.json. The bucket is created on first use if missing.
type S3Store struct {
	client *minio.Client
	bucket string

	ensureOnce sync.Once
	ensureErr  error
}

// S3Config carries the connection settings for an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("planstore: s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = fmt.Errorf("planstore: check bucket %s: %w", s.bucket, err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.ensureErr = fmt.Errorf("planstore: create bucket %s: %w", s.bucket, err)
		}
	})
	return s.ensureErr
}

func planKey(planID string) string {
	return planKeyPrefix + planID + ".json"
}

func (s *S3Store) Put(ctx context.Context, planID string, data []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, planKey(planID),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("planstore: put %s: %w", planID, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, planID string) ([]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, planKey(planID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("planstore: get %s: %w", planID, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// minio surfaces missing keys on read, not open
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("planstore: read %s: %w", planID, err)
	}
	return data, nil
}

func (s *S3Store) List(ctx context.Context) ([][]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	var out [][]byte
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    planKeyPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("planstore: list: %w", obj.Err)
		}
		r, err := s.client.GetObject(ctx, s.bucket, obj.Key, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("planstore: list get %s: %w", obj.Key, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("planstore: list read %s: %w", obj.Key, err)
		}
		out = append(out, data)
	}
	return out, nil
}
