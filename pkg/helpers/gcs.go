package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient opens a Cloud Storage client from a credentials file, or from
// Application Default Credentials when credsPath is empty.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}
	return storage.NewClient(ctx, opts...)
}

// GCSObject names an object and the headers it is served with.
type GCSObject struct {
	Bucket       string
	Path         string
	ContentType  string
	CacheControl string
}

// URL is the public address of the object.
func (o GCSObject) URL() string {
	return "https://storage.googleapis.com/" + o.Bucket + "/" + o.Path
}

func (o GCSObject) validate() error {
	if o.Bucket == "" || o.Path == "" {
		return errors.New("gcs: bucket and object path are required")
	}
	return nil
}

// PutGCSObject streams r into o and returns its public URL. A failed copy
// cancels the write, so no partial object is committed.
func PutGCSObject(ctx context.Context, client *storage.Client, o GCSObject, r io.Reader) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := client.Bucket(o.Bucket).Object(o.Path).NewWriter(ctx)
	w.ContentType = o.ContentType
	w.CacheControl = o.CacheControl
	w.ChunkSize = 0
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", o.Path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: commit %s: %w", o.Path, err)
	}
	return o.URL(), nil
}
