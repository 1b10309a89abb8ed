// Package fetch resolves user-supplied locators into locally cached copies
// of the upstream market-data file.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
)

// Fetcher downloads shared files into a local cache directory. Downloads
// within the TTL of a previous fetch of the same identifier are served from
// disk without touching the network.
type Fetcher struct {
	baseURL  string
	cacheDir string
	ttl      time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithTTL sets how long a downloaded file stays fresh on disk.
func WithTTL(ttl time.Duration) Option {
	return func(f *Fetcher) { f.ttl = ttl }
}

// NewFetcher creates a fetcher downloading from baseURL (the export
// endpoint; the file identifier is appended as the id query parameter) into
// cacheDir.
func NewFetcher(baseURL, cacheDir string, logger *slog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		ttl:      30 * time.Minute,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger.With(slog.String("component", "fetcher")),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves locator and returns the path of a local copy of the file.
// A fresh cached copy is reused; otherwise the file is downloaded.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (string, error) {
	return f.fetch(ctx, locator, false)
}

// FetchFresh behaves like Fetch but always re-downloads, replacing any
// cached copy.
func (f *Fetcher) FetchFresh(ctx context.Context, locator string) (string, error) {
	return f.fetch(ctx, locator, true)
}

func (f *Fetcher) fetch(ctx context.Context, locator string, bypassCache bool) (string, error) {
	id, err := ExtractFileID(locator)
	if err != nil {
		return "", err
	}

	localPath := filepath.Join(f.cacheDir, id+".dat")

	if !bypassCache {
		if info, err := os.Stat(localPath); err == nil && info.Size() > 0 {
			if time.Since(info.ModTime()) < f.ttl {
				f.logger.Debug("serving cached file",
					slog.String("file_id", id),
					slog.String("path", localPath))
				return localPath, nil
			}
		}
	}

	if err := f.download(ctx, id, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func (f *Fetcher) download(ctx context.Context, id, localPath string) error {
	downloadURL, err := f.downloadURL(id)
	if err != nil {
		return apperrors.NewFetchFailed("build download URL", err)
	}

	f.logger.Info("downloading file", slog.String("file_id", id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return apperrors.NewFetchFailed("build request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return apperrors.NewFetchFailed("download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewFetchFailed("download failed",
			fmt.Errorf("upstream returned status %s", resp.Status))
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return apperrors.NewFetchFailed("create cache directory", err)
	}

	// Download to a temp file first so a partial body never replaces a
	// usable cached copy.
	tmp, err := os.CreateTemp(f.cacheDir, id+".part-*")
	if err != nil {
		return apperrors.NewFetchFailed("create temp file", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return apperrors.NewFetchFailed("read response body", err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return apperrors.NewFetchFailed("write temp file", closeErr)
	}

	if written == 0 {
		os.Remove(tmpPath)
		return apperrors.NewFetchFailed("empty file", nil)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewFetchFailed("store downloaded file", err)
	}

	f.logger.Info("download complete",
		slog.String("file_id", id),
		slog.Int64("bytes", written),
		slog.String("path", localPath))
	return nil
}

func (f *Fetcher) downloadURL(id string) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
