// Package archive persists original statement files to Google Cloud Storage
// so an import can be audited or replayed later.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/taxpj/backend/internal/logger"
)

const uploadTimeout = 2 * time.Minute

// Archiver stores raw statement files keyed by import.
type Archiver interface {
	// Archive stores data under the given import and file name and returns
	// the URI of the stored object.
	Archive(ctx context.Context, importID, fileName string, data []byte) (string, error)
	// Fetch retrieves the bytes of a previously archived statement.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// GCSArchiver implements Archiver on a Google Cloud Storage bucket. It
// assumes Application Default Credentials unless a credentials file is given.
type GCSArchiver struct {
	bucket string
	opts   []option.ClientOption
}

// NewGCSArchiver creates an archiver over the named bucket. credentialsFile
// may be empty to use ambient credentials.
func NewGCSArchiver(bucket, credentialsFile string) *GCSArchiver {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return &GCSArchiver{bucket: bucket, opts: opts}
}

// ObjectName builds the bucket path for a statement: imports/{id}/{file}.
func ObjectName(importID, fileName string) string {
	return fmt.Sprintf("imports/%s/%s", importID, path.Base(fileName))
}

// Archive implements Archiver.
func (a *GCSArchiver) Archive(ctx context.Context, importID, fileName string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx, a.opts...)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	objectName := ObjectName(importID, fileName)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy statement to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", a.bucket, objectName)
	log := logger.FromContext(ctx)
	log.Debug().
		Str("uri", uri).
		Int("bytes", len(data)).
		Msg("statement archived")
	return uri, nil
}

// Fetch implements Archiver.
func (a *GCSArchiver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucketName, objectPath, err := splitURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, a.opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object bytes: %w", err)
	}
	return data, nil
}

func splitURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// FileNameFromURI extracts the original file name from an archive URI,
// e.g. "gs://bucket/imports/abc/extrato.pdf" yields "extrato.pdf".
func FileNameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// Noop is an Archiver that stores nothing, used when no bucket is configured.
type Noop struct{}

// Archive implements Archiver.
func (Noop) Archive(ctx context.Context, importID, fileName string, data []byte) (string, error) {
	return "", nil
}

// Fetch implements Archiver.
func (Noop) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return nil, fmt.Errorf("archival disabled, cannot fetch %s", uri)
}

var (
	_ Archiver = (*GCSArchiver)(nil)
	_ Archiver = Noop{}
)
