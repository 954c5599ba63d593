package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const bucketName = "classified-frames"

// Archiver keeps classified frames in object storage so disputed credit
// awards can be reviewed later. Optional: a nil *Archiver drops frames
// silently.
type Archiver struct {
	client *minio.Client
}

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewArchiver connects to MinIO and ensures the archive bucket exists.
func NewArchiver(cfg Config) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", bucketName, err)
		}
		log.Printf("✅ Created archive bucket %s", bucketName)
	}

	log.Printf("✅ Frame archiver connected to %s", cfg.Endpoint)
	return &Archiver{client: client}, nil
}

// ArchiveFrame stores a classified JPEG under a category/timestamp key.
// Failures are logged, never surfaced: archiving is best-effort and must
// not fail the classification request.
func (a *Archiver) ArchiveFrame(category, item string, jpeg []byte) {
	if a == nil {
		return
	}

	objectName := fmt.Sprintf("%s/%d-%s.jpg", category, time.Now().UnixNano(), item)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := a.client.PutObject(ctx, bucketName, objectName,
		bytes.NewReader(jpeg), int64(len(jpeg)),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		log.Printf("⚠️  Failed to archive frame %s: %v", objectName, err)
		return
	}
	log.Printf("🗄️  Archived classified frame %s", objectName)
}
