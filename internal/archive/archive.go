// Package archive stores the artifacts of a finished analysis, either in a
// local directory or in an S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/csidc/landwatch/internal/models"
	"github.com/csidc/landwatch/internal/present"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// Sink receives named objects
type Sink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ArtifactName is the file name of one decoded artifact of a result
func ArtifactName(resultID string, a models.Artifact) string {
	return fmt.Sprintf("%s_%s.jpg", resultID, a)
}

// SummaryName is the file name of the JSON summary of a result
func SummaryName(resultID string) string {
	return resultID + "_summary.json"
}

// maxConcurrentPuts bounds parallel uploads of one result
const maxConcurrentPuts = 4

// SaveResult writes every artifact present in r plus a JSON summary to sink,
// returning the locations written in artifact order. The summary is written
// only once every artifact is stored.
func SaveResult(ctx context.Context, sink Sink, r *models.AnalysisResult) ([]string, error) {
	var stored []models.Artifact
	for _, a := range models.Artifacts {
		if r.Image(a) != nil {
			stored = append(stored, a)
		}
	}

	written := make([]string, len(stored))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPuts)
	for i, a := range stored {
		g.Go(func() error {
			loc, err := sink.Put(gctx, ArtifactName(r.ResultID, a), r.Image(a), "image/jpeg")
			if err != nil {
				return eris.Wrapf(err, "failed to store %s", a)
			}
			written[i] = loc
			return nil
		})
	}
	err := g.Wait()

	locations := make([]string, 0, len(written)+1)
	for _, loc := range written {
		if loc != "" {
			locations = append(locations, loc)
		}
	}
	if err != nil {
		return locations, err
	}

	var buf bytes.Buffer
	if err := present.RenderJSON(&buf, r); err != nil {
		return locations, err
	}
	loc, err := sink.Put(ctx, SummaryName(r.ResultID), buf.Bytes(), "application/json")
	if err != nil {
		return locations, eris.Wrap(err, "failed to store summary")
	}
	locations = append(locations, loc)

	slog.Info("Archived analysis", "result_id", r.ResultID, "objects", len(locations))
	return locations, nil
}

// DirSink writes objects as files in a directory
type DirSink struct {
	Dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, eris.Wrapf(err, "failed to create %s", dir)
	}
	return &DirSink{Dir: dir}, nil
}

func (d *DirSink) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	p := filepath.Join(d.Dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", eris.Wrapf(err, "failed to write %s", p)
	}
	return p, nil
}

// MinioOptions configures the bucket sink
type MinioOptions struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// MinioSink uploads objects to an S3-compatible bucket
type MinioSink struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSink connects and makes sure the bucket exists
func NewMinioSink(ctx context.Context, opts MinioOptions) (*MinioSink, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to create object storage client")
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to check bucket %s", opts.Bucket)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, eris.Wrapf(err, "failed to create bucket %s", opts.Bucket)
		}
		slog.Info("Created bucket", "bucket", opts.Bucket, "region", opts.Region)
	}

	return &MinioSink{client: cli, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

// Key is the object key name is stored under
func (m *MinioSink) Key(name string) string {
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}

func (m *MinioSink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := m.Key(name)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", eris.Wrapf(err, "failed to upload %s", key)
	}
	return fmt.Sprintf("s3://%s/%s", m.bucket, key), nil
}
