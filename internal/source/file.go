package source

import (
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"bible-tui/internal/bible"
)

type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
	CompressionZip  Compression = "zip"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
)

// DetectCompression inspects the leading magic bytes of a payload.
func DetectCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(head, zipMagic):
		return CompressionZip
	default:
		return CompressionNone
	}
}

// FileSource reads a document from disk. Plain JSON, gzip, xz and zip
// archives (first .json entry) are accepted.
type FileSource struct {
	path     string
	maxBytes int64
}

func (s *FileSource) String() string { return s.path }

func (s *FileSource) Load(ctx context.Context) (bible.Document, error) {
	if err := ctx.Err(); err != nil {
		return bible.Document{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return bible.Document{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(len(xzMagic))

	var r io.Reader
	switch DetectCompression(head) {
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return bible.Document{}, fmt.Errorf("open gzip %s: %w", s.path, err)
		}
		defer gz.Close()
		r = gz
	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return bible.Document{}, fmt.Errorf("open xz %s: %w", s.path, err)
		}
		r = xr
	case CompressionZip:
		return s.loadZip()
	default:
		r = br
	}

	return s.decode(r)
}

func (s *FileSource) loadZip() (bible.Document, error) {
	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return bible.Document{}, fmt.Errorf("open zip %s: %w", s.path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return bible.Document{}, fmt.Errorf("open %s in %s: %w", f.Name, s.path, err)
		}
		defer rc.Close()
		return s.decode(rc)
	}

	return bible.Document{}, fmt.Errorf("no JSON file found in %s", s.path)
}

func (s *FileSource) decode(r io.Reader) (bible.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return bible.Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	if int64(len(data)) > s.maxBytes {
		return bible.Document{}, fmt.Errorf("read %s: document larger than %d bytes", s.path, s.maxBytes)
	}
	return bible.Parse(data)
}
