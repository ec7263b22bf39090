package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
)

// File is a backend that persists each bucket as one gzip-compressed
// JSON document under the data directory. Buckets are cached in memory
// after first load and written through on every change. The mutex
// protects file integrity within this process only; concurrent
// processes keep the last-write-wins semantics of the facade.
type File struct {
	dir string

	mu   sync.Mutex
	docs map[string]map[string]string
}

// NewFile creates a file backend rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(filepath.Join(dir, "users"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &File{dir: dir, docs: make(map[string]map[string]string)}, nil
}

// Read returns the value for key in bucket.
func (f *File) Read(bucket, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load(bucket)
	if err != nil {
		// Unreadable document degrades to empty, mirroring the
		// parse-failure contract of the facade.
		return "", false
	}
	val, ok := doc[key]
	return val, ok
}

// Write stores the value for key in bucket and persists the document.
func (f *File) Write(bucket, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load(bucket)
	if err != nil {
		doc = make(map[string]string)
		f.docs[bucket] = doc
	}
	doc[key] = value
	return f.persist(bucket, doc)
}

func (f *File) load(bucket string) (map[string]string, error) {
	if doc, ok := f.docs[bucket]; ok {
		return doc, nil
	}

	doc := make(map[string]string)
	raw, err := os.ReadFile(f.path(bucket))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.docs[bucket] = doc
			return doc, nil
		}
		return nil, err
	}

	zr, err := gzip.NewReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s document: %w", bucket, err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s document: %w", bucket, err)
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", bucket, err)
	}

	f.docs[bucket] = doc
	return doc, nil
}

func (f *File) persist(bucket string, doc map[string]string) error {
	data, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", bucket, err)
	}

	var buf strings.Builder
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("failed to compress %s document: %w", bucket, err)
	}
	if err := zw.Close(); err != nil {
		return err
	}

	path := f.path(bucket)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s document: %w", bucket, err)
	}
	return os.Rename(tmp, path)
}

func (f *File) path(bucket string) string {
	if bucket == globalBucket {
		return filepath.Join(f.dir, "global.json.gz")
	}
	name := url.PathEscape(strings.TrimPrefix(bucket, "user:"))
	return filepath.Join(f.dir, "users", name+".json.gz")
}
