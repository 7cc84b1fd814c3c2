package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCSObjectURL(t *testing.T) {
	o := GCSObject{Bucket: "skilyo-avatars", Path: "avatars/u1/a.png"}
	assert.Equal(t, "https://storage.googleapis.com/skilyo-avatars/avatars/u1/a.png", o.URL())
}

func TestPutGCSObjectRequiresBucketAndPath(t *testing.T) {
	for _, o := range []GCSObject{{Path: "a.png"}, {Bucket: "b"}} {
		_, err := PutGCSObject(context.Background(), nil, o, strings.NewReader("x"))
		assert.Error(t, err)
	}
}

func TestNewESClientRequiresAddrs(t *testing.T) {
	_, err := NewESClient(ESOptions{})
	assert.Error(t, err)
}

func TestPingES(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	defer srv.Close()

	es, err := NewESClient(ESOptions{Addrs: []string{srv.URL}})
	require.NoError(t, err)
	assert.NoError(t, PingES(context.Background(), es))

	status = http.StatusUnauthorized
	assert.Error(t, PingES(context.Background(), es))
}
