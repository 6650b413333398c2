package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/groupchat/groupchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the handful of bucket and object calls the blob store makes.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	calls   []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case len(parts) == 1 && r.Method == http.MethodPut:
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case len(parts) == 2 && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusNotFound)
	case len(parts) == 2 && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeS3) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func newFakeMinIO(t *testing.T, publicEndpoint string) (*MinIOClient, *fakeS3) {
	t.Helper()

	fake := &fakeS3{buckets: make(map[string]bool)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	endpoint := strings.TrimPrefix(srv.URL, "http://")
	if publicEndpoint == "" {
		publicEndpoint = endpoint
	}
	client, err := NewMinIOClient(config.MinIOConfig{
		Endpoint:       endpoint,
		PublicEndpoint: publicEndpoint,
		AccessKey:      "groupchat",
		SecretKey:      "groupchat_secret",
		Bucket:         "groupchat",
		Region:         "us-east-1",
	})
	require.NoError(t, err)
	return client, fake
}

func TestMinIOClient_EnsureBucket(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeMinIO(t, "")

	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.EnsureBucket(ctx))

	assert.Equal(t, 1, fake.count("PUT /groupchat"), "bucket should be created once")
	assert.Equal(t, 2, fake.count("HEAD /groupchat"))
}

func TestMinIOClient_URLUsesPublicEndpoint(t *testing.T) {
	client, fake := newFakeMinIO(t, "files.chat.example:9000")

	raw, err := client.URL(context.Background(), "blobs/0b6c", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "files.chat.example:9000", u.Host)
	assert.Equal(t, "/groupchat/blobs/0b6c", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.calls, "presigning should not reach the server")
}

func TestMinIOClient_DownloadMissingObject(t *testing.T) {
	client, _ := newFakeMinIO(t, "")

	_, _, err := client.Download(context.Background(), "blobs/missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMinIOClient_Delete(t *testing.T) {
	client, fake := newFakeMinIO(t, "")

	require.NoError(t, client.Delete(context.Background(), "blobs/gone"))
	assert.Equal(t, 1, fake.count("DELETE /groupchat/blobs/gone"))
}
