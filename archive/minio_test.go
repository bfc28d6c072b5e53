package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeS3 answers just enough of the S3 API for bucket checks and single-part uploads.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// bucket-level requests arrive as /bucket/
	parts := strings.SplitN(strings.Trim(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && len(parts) == 1:
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestMinioArchiver(t *testing.T) {
	s3 := &fakeS3{buckets: map[string]bool{}, objects: map[string]string{}}
	srv := httptest.NewServer(s3)
	defer srv.Close()

	ctx := context.Background()
	a, err := NewMinioArchiver(ctx, Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "history-exports",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, s3.buckets["history-exports"], "missing bucket is created")

	a.now = func() time.Time { return time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC) }
	require.NoError(t, a.Archive(ctx, "export.csv", "text/csv", []byte("a,b")))

	// plain HTTP uploads use aws-chunked framing
	body, ok := s3.objects["/history-exports/exports/2025/03/12/export.csv"]
	require.True(t, ok)
	assert.Contains(t, body, "a,b")
}

func TestObjectName(t *testing.T) {
	a := &MinioArchiver{now: func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }}
	assert.Equal(t, "exports/2025/01/02/历史记录_1.json", a.objectName("历史记录_1.json"))
}
