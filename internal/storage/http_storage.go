package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrImageTooLarge is returned when a download exceeds the configured size cap.
var ErrImageTooLarge = errors.New("image exceeds maximum allowed size")

// Fetcher streams the resource behind ref into dst and reports the bytes written.
type Fetcher interface {
	Fetch(ctx context.Context, ref *url.URL, dst io.Writer) (int64, error)
}

// HTTPFetcherOptions tunes the HTTP fetcher.
type HTTPFetcherOptions struct {
	Timeout     time.Duration
	MaxBytes    int64
	InsecureTLS bool
}

// HTTPFetcher implements Fetcher over plain HTTP(S). One attempt per call.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher creates an HTTP fetcher
func NewHTTPFetcher(opts HTTPFetcherOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// Connection pooling sized for single image downloads
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableCompression:     false,
		MaxResponseHeaderBytes: 16 << 10,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureTLS,
		},
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: opts.MaxBytes,
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, ref *url.URL, dst io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Go-QR-Decoder/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), ref.Redacted())
	}

	if h.maxBytes > 0 && resp.ContentLength > h.maxBytes {
		return 0, fmt.Errorf("%w: content length %d > %d", ErrImageTooLarge, resp.ContentLength, h.maxBytes)
	}

	return copyLimited(dst, resp.Body, h.maxBytes)
}

// copyLimited streams src into dst and fails once more than maxBytes arrive.
// maxBytes <= 0 disables the cap.
func copyLimited(dst io.Writer, src io.Reader, maxBytes int64) (int64, error) {
	if maxBytes <= 0 {
		return io.Copy(dst, src)
	}

	n, err := io.Copy(dst, io.LimitReader(src, maxBytes+1))
	if err != nil {
		return n, err
	}
	if n > maxBytes {
		return n, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxBytes)
	}
	return n, nil
}
