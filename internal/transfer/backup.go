package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nhle/smartnote/internal/model"
)

// SnapshotVersion is bumped when the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is everything needed to rebuild a notebook.
type Snapshot struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	Notes     []model.Note   `json:"notes"`
	Folders   []model.Folder `json:"folders"`
	Tasks     []model.Task   `json:"tasks"`
}

// NewSnapshot builds a snapshot of the given collections.
func NewSnapshot(notes []model.Note, folders []model.Folder, tasks []model.Task, now time.Time) Snapshot {
	if notes == nil {
		notes = []model.Note{}
	}
	if folders == nil {
		folders = []model.Folder{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return Snapshot{Version: SnapshotVersion, CreatedAt: now.UTC(), Notes: notes, Folders: folders, Tasks: tasks}
}

// Uploader is the subset of the S3 client used for backups.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SnapshotKey names the object for a snapshot taken at t.
func SnapshotKey(prefix string, t time.Time) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + "snapshot-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Backup uploads snap as JSON to bucket and returns the object key.
func Backup(ctx context.Context, up Uploader, bucket, prefix string, snap Snapshot) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("backup bucket is not configured")
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	key := SnapshotKey(prefix, snap.CreatedAt)
	_, err = up.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return key, nil
}

// S3Options are the connection settings for NewS3Client. Empty keys fall
// back to the default AWS credential chain.
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client builds an S3 client. A custom endpoint (MinIO and the like)
// switches to path-style addressing.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
