// Package storage uploads avatar images to Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/tenant-identity/internal/domain/port"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
)

// Object names are never reused, so browsers may cache an avatar indefinitely.
const avatarCacheControl = "public, max-age=31536000, immutable"

type AvatarStore struct {
	client *gcs.Client
	bucket string
}

func NewAvatarStore(client *gcs.Client, bucket string) *AvatarStore {
	return &AvatarStore{client: client, bucket: bucket}
}

// ObjectPath is avatars/<userID>/<random>.<ext>; a new name per upload keeps
// CDN caches from serving the previous image.
func ObjectPath(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
}

func (s *AvatarStore) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	if s.client == nil || s.bucket == "" {
		return "", errors.New("gcs not configured")
	}
	return helpers.PutGCSObject(ctx, s.client, s.object(userID, filename, contentType), r)
}

func (s *AvatarStore) object(userID, filename, contentType string) helpers.GCSObject {
	return helpers.GCSObject{
		Bucket:       s.bucket,
		Path:         ObjectPath(userID, filename),
		ContentType:  contentType,
		CacheControl: avatarCacheControl,
	}
}

var _ port.AvatarStore = (*AvatarStore)(nil)
