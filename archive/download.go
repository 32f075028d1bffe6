package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// downloadTimeout bounds a full audio download. Meeting recordings run to
// multiple hours, so this is generous but still finite.
const downloadTimeout = 30 * time.Minute

// Downloader fetches meeting audio over HTTP.
type Downloader struct {
	client *http.Client
	logger *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if client != nil {
			d.client = client
		}
	}
}

// WithDownloaderLogger sets a custom logger.
func WithDownloaderLogger(logger *slog.Logger) DownloaderOption {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDownloader creates a Downloader with a bounded-timeout HTTP client.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{Timeout: downloadTimeout},
		logger: slog.Default().With("component", "downloader"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch streams the audio at url. The caller owns the returned body and
// must close it.
func (d *Downloader) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("audio download failed: status %d", resp.StatusCode)
	}

	d.logger.Debug("downloading audio", "url", url, "length", resp.ContentLength)
	return resp.Body, nil
}

// Size returns the Content-Length of the audio at url without downloading
// it, trying HEAD first and falling back to an aborted GET. Returns -1
// when the server does not report a length.
func (d *Downloader) Size(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return -1, err
	}

	resp, err := d.client.Do(req)
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		return resp.ContentLength, nil
	}
	if err == nil {
		resp.Body.Close()
	}

	// Some archive servers reject HEAD. Issue a GET and abandon the body
	// without reading it.
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return -1, err
	}
	getResp, err := d.client.Do(getReq)
	if err != nil {
		return -1, fmt.Errorf("audio size probe failed: %w", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		return -1, fmt.Errorf("audio size probe failed: status %d", getResp.StatusCode)
	}
	return getResp.ContentLength, nil
}
