package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectPath(t *testing.T) {
	p := ObjectPath("user-1", "Me.PNG")
	assert.True(t, strings.HasPrefix(p, "avatars/user-1/"))
	assert.True(t, strings.HasSuffix(p, ".png"))
	assert.NotEqual(t, p, ObjectPath("user-1", "Me.PNG"))
}

func TestUploadWithoutClient(t *testing.T) {
	_, err := NewAvatarStore(nil, "bucket").Upload(context.Background(), "u", "a.png", "image/png", strings.NewReader(""))
	assert.Error(t, err)
}

func TestAvatarObjectIsImmutable(t *testing.T) {
	o := NewAvatarStore(nil, "bucket").object("user-1", "me.jpg", "image/jpeg")
	assert.Equal(t, "bucket", o.Bucket)
	assert.Equal(t, "image/jpeg", o.ContentType)
	assert.Contains(t, o.CacheControl, "immutable")
	assert.True(t, strings.HasPrefix(o.URL(), "https://storage.googleapis.com/bucket/avatars/user-1/"))
}
