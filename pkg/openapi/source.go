package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceOption configures Read.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	fs      fs.FS
	client  *http.Client
	timeout time.Duration
}

// WithFileSystem resolves relative locations inside fsys instead of the
// operating system.
func WithFileSystem(fsys fs.FS) SourceOption {
	return func(o *sourceOptions) { o.fs = fsys }
}

// WithHTTPClient enables http and https locations using client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(o *sourceOptions) { o.client = client }
}

// WithHTTPFallback enables http and https locations using a default client
// with the given timeout.
func WithHTTPFallback(timeout time.Duration) SourceOption {
	return func(o *sourceOptions) {
		if o.client == nil {
			o.client = &http.Client{}
		}
		o.timeout = timeout
	}
}

// Read fetches the raw document at location. Remote locations are only
// allowed when an HTTP client was configured.
func Read(ctx context.Context, location string, options ...SourceOption) ([]byte, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("openapi: source location is required")
	}
	var cfg sourceOptions
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if cfg.client == nil {
			return nil, errors.New("openapi: http support disabled")
		}
		return readHTTP(ctx, cfg.client, location, cfg.timeout)
	}
	if cfg.fs != nil {
		data, err := fs.ReadFile(cfg.fs, location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", location, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(location))
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", location, err)
	}
	return data, nil
}

func readHTTP(ctx context.Context, client *http.Client, location string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("openapi: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: unexpected status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openapi: read body %s: %w", location, err)
	}
	return data, nil
}
