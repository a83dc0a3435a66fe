package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"emperror.dev/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tnqbao/gau-filestore-service/config"
	"github.com/tnqbao/gau-filestore-service/service"
)

// MinioClient stores blobs as objects in a single bucket. Exclusive create relies on the
// caller holding the name lock; the StatObject probe catches names taken earlier.
type MinioClient struct {
	Client   *minio.Client
	Endpoint string
	Bucket   string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	m := &MinioClient{
		Client:   minioClient,
		Endpoint: endpoint,
		Bucket:   cfg.Minio.Bucket,
	}

	if err := m.EnsureBucket(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to ensure MinIO bucket %s: %v", m.Bucket, err))
	}

	return m
}

// EnsureBucket creates the bucket if it does not exist yet.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (m *MinioClient) Create(ctx context.Context, name string, data []byte) error {
	if err := service.ValidateName(name); err != nil {
		return err
	}

	exists, err := m.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return errors.WithDetails(service.ErrBlobExists, "name", name)
	}

	_, err = m.Client.PutObject(ctx, m.Bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return errors.WrapWithDetails(err, "uploading object", "bucket", m.Bucket, "name", name)
	}
	return nil
}

func (m *MinioClient) Exists(ctx context.Context, name string) (bool, error) {
	if err := service.ValidateName(name); err != nil {
		return false, err
	}

	_, err := m.Client.StatObject(ctx, m.Bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.WrapWithDetails(err, "stat object", "bucket", m.Bucket, "name", name)
	}
	return true, nil
}

func (m *MinioClient) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := service.ValidateName(name); err != nil {
		return nil, err
	}

	obj, err := m.Client.GetObject(ctx, m.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.WrapWithDetails(err, "getting object", "bucket", m.Bucket, "name", name)
	}

	// GetObject is lazy, Stat surfaces a missing key before the caller starts streaming
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, errors.WithDetails(service.ErrNotFound, "name", name)
		}
		return nil, errors.WrapWithDetails(err, "stat object", "bucket", m.Bucket, "name", name)
	}
	return obj, nil
}

func (m *MinioClient) Remove(ctx context.Context, name string) error {
	if err := service.ValidateName(name); err != nil {
		return err
	}

	err := m.Client.RemoveObject(ctx, m.Bucket, name, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return errors.WrapWithDetails(err, "removing object", "bucket", m.Bucket, "name", name)
	}
	return nil
}

func (m *MinioClient) Names(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range m.Client.ListObjects(ctx, m.Bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.WrapWithDetails(obj.Err, "listing objects", "bucket", m.Bucket)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
