package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/missing.wav" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("RIFFfake"))
	}))
	defer server.Close()

	dir := t.TempDir()
	ctx := context.Background()

	path, err := Download(ctx, server.Client(), server.URL+"/clips/out.wav", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".wav", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFFfake", string(data))

	again, err := Download(ctx, server.Client(), server.URL+"/clips/out.wav", dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int32(1), calls.Load(), "second download should reuse the file")

	_, err = Download(ctx, server.Client(), server.URL+"/missing.wav", dir)
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusNotFound, herr.StatusCode)
}

func TestDownloadLocalReference(t *testing.T) {
	path, err := Download(context.Background(), nil, "/tmp/cache/ab/cdef.mp3", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cache/ab/cdef.mp3", path)
}
