package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-form-service/config"
)

// MinioClient is the content sink for attachment bytes. All objects live in a
// single configured bucket, addressed by the storage key the attachment store
// derives from server-generated IDs.
type MinioClient struct {
	Admin    *madmin.AdminClient
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

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, false)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: false,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Admin:    madminClient,
		Client:   minioClient,
		Endpoint: endpoint,
		Bucket:   cfg.Attachment.Bucket,
	}

	if err := client.EnsureBucket(context.Background(), client.Bucket); err != nil {
		panic(fmt.Sprintf("Failed to ensure attachment bucket: %v", err))
	}

	return client
}

// EnsureBucket creates the bucket if it doesn't exist.
func (m *MinioClient) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := m.Client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err := m.Client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: "us-east-1"})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (m *MinioClient) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.Client.PutObject(ctx, m.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return nil
}

func (m *MinioClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	object, err := m.Client.GetObject(ctx, m.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

func (m *MinioClient) RemoveObject(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}

	return nil
}

// ServerInfo reports storage cluster health for the health endpoint.
func (m *MinioClient) ServerInfo(ctx context.Context) (madmin.InfoMessage, error) {
	info, err := m.Admin.ServerInfo(ctx)
	if err != nil {
		return madmin.InfoMessage{}, fmt.Errorf("failed to get MinIO server info: %w", err)
	}
	return info, nil
}
