package source

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const doc = `[{"abbrev":"gn","chapters":[["In the beginning","Line 2"]],"name":"Genesis"}]`

func TestNew_PicksSourceByLocation(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, New("https://example.com/x.json"))
	assert.IsType(t, &HTTPSource{}, New("HTTP://example.com/x.json"))
	assert.IsType(t, &FileSource{}, New("/tmp/bible.json"))
	assert.Equal(t, DefaultLocation, New("").String())
}

func TestHTTPSource_Load(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("\xEF\xBB\xBF" + doc))
	}))
	defer srv.Close()

	d, err := New(srv.URL, WithUserAgent("test-agent")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Books, 1)
	assert.Equal(t, "Genesis", d.Books[0].Name)
	assert.Equal(t, "test-agent", gotUA)
}

func TestHTTPSource_Load_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "gone fishing")
}

func TestHTTPSource_Load_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithMaxBytes(10)).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}

func TestHTTPSource_Load_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Compression
	}{
		{name: "json", head: []byte(`[{"a"`), want: CompressionNone},
		{name: "gzip", head: []byte{0x1f, 0x8b, 0x08}, want: CompressionGzip},
		{name: "xz", head: []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, want: CompressionXZ},
		{name: "zip", head: []byte("PK\x03\x04"), want: CompressionZip},
		{name: "short", head: []byte{0xfd}, want: CompressionNone},
		{name: "empty", head: nil, want: CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCompression(tt.head))
		})
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFileSource_Load(t *testing.T) {
	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err := gw.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = xw.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, xw.Close())

	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	readme, err := zw.Create("README.txt")
	require.NoError(t, err)
	_, err = readme.Write([]byte("not json"))
	require.NoError(t, err)
	entry, err := zw.Create("en_bbe.json")
	require.NoError(t, err)
	_, err = entry.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{name: "plain", file: "bible.json", data: []byte(doc)},
		{name: "gzip", file: "bible.json.gz", data: gzBuf.Bytes()},
		{name: "xz", file: "bible.json.xz", data: xzBuf.Bytes()},
		{name: "zip", file: "bible.zip", data: zipBuf.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data)

			d, err := New(path).Load(context.Background())
			require.NoError(t, err)
			require.Len(t, d.Books, 1)
			assert.Equal(t, []string{"In the beginning", "Line 2"}, []string(d.Books[0].Chapters[0]))
		})
	}
}

func TestFileSource_Load_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "nope.json")).Load(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("zip without json", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("notes.txt")
		require.NoError(t, err)
		_, err = w.Write([]byte("hello"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = New(writeFile(t, "b.zip", buf.Bytes())).Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no JSON file")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := New(writeFile(t, "b.json", []byte("[{"))).Load(context.Background())
		require.Error(t, err)
	})
}
