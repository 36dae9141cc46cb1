package blobcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements TaggedStore for MinIO/S3 compatible storage. Each
// cache tier gets its own bucket; the logical key travels as an object
// user-tag so that FindByTag can detect ambiguous writes.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

// Put uploads an object with the logical-key user tag, overwriting any
// object already stored under key.
func (m *MinioStore) Put(ctx context.Context, key string, data []byte, tagValue string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		UserTags:    map[string]string{TagName: tagValue},
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// FindByTag lists the bucket and returns the keys of every object whose
// logical-key tag matches tagValue. Listing is acceptable here because each
// bucket holds only cached analysis results.
func (m *MinioStore) FindByTag(ctx context.Context, tagValue string) ([]string, error) {
	var keys []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		tags, err := m.client.GetObjectTagging(ctx, m.bucket, obj.Key, minio.GetObjectTaggingOptions{})
		if err != nil {
			return nil, fmt.Errorf("get object tags: %w", err)
		}
		if tags.ToMap()[TagName] == tagValue {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

// Read downloads an object's content, or ErrObjectNotFound when missing.
func (m *MinioStore) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}
