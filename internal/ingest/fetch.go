package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// MaxAssetSize is the default cap on how many bytes a fetch will read.
const MaxAssetSize = 256 << 20

// ErrTooLarge is returned for responses bigger than the fetch limit.
var ErrTooLarge = errors.New("ingest: asset too large")

// Fetcher reads the bytes behind a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, locator string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, locator string) ([]byte, error) {
	return f(ctx, locator)
}

// DefaultFetcher reads local paths (with ~ expansion), file:// and
// http(s):// URLs, and base64 or plain data: URIs.
type DefaultFetcher struct {
	Client  *http.Client
	MaxSize int64 // zero means MaxAssetSize
}

// Fetch implements Fetcher.
func (f DefaultFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	switch {
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return f.fetchHTTP(ctx, locator)
	case strings.HasPrefix(locator, "data:"):
		return decodeDataURI(locator)
	}
	p, err := LocalPath(locator)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", p, err)
	}
	return data, nil
}

func (f DefaultFetcher) fetchHTTP(ctx context.Context, locator string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("ingest: request %s: %w", locator, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest: get %s: %w", locator, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("ingest: get %s: %s", locator, resp.Status)
	}
	limit := f.MaxSize
	if limit <= 0 {
		limit = MaxAssetSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("ingest: read body %s: %w", locator, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %w: %s exceeds %d bytes", ErrIO, ErrTooLarge, locator, limit)
	}
	return data, nil
}

// LocalPath converts a path or file:// URL to a filesystem path, expanding ~.
func LocalPath(locator string) (string, error) {
	p := locator
	if strings.HasPrefix(p, "file://") {
		u, err := url.Parse(p)
		if err != nil {
			return "", fmt.Errorf("ingest: parse %s: %w", locator, err)
		}
		p = u.Path
	}
	p, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("ingest: expand %s: %w", locator, err)
	}
	return p, nil
}

// BaseDir returns the directory that relative resources of a local asset
// resolve against, or "" for remote and inline locators.
func BaseDir(locator string) string {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") ||
		strings.HasPrefix(locator, "data:") {
		return ""
	}
	p, err := LocalPath(locator)
	if err != nil {
		return ""
	}
	return filepath.Dir(p)
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("ingest: malformed data uri")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("ingest: data uri: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("ingest: data uri: %w", err)
	}
	return []byte(s), nil
}
