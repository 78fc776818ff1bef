package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/ironsheep/annotation-audit/internal/imaging"
)

const (
	// DefaultTimeout bounds a single attachment download.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with attachment requests.
	DefaultUserAgent = "annotation-audit/1.0"

	maxAttachmentBytes = 64 << 20
)

// FetchError represents an attachment that could not be retrieved or
// decoded.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Fetcher resolves task attachments to decoded images. Remote attachments
// are downloaded over HTTP(S); anything else is read from disk, relative to
// BaseDir when not absolute. Every image passes through the shared cache.
type Fetcher struct {
	BaseDir   string
	UserAgent string

	cache  *imaging.ImageCache
	client *http.Client
}

// NewFetcher creates a Fetcher backed by cache.
func NewFetcher(cache *imaging.ImageCache, baseDir string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		BaseDir:   baseDir,
		UserAgent: DefaultUserAgent,
		cache:     cache,
		client:    &http.Client{Timeout: timeout},
	}
}

// Fetch returns the image an attachment points at.
func (f *Fetcher) Fetch(ctx context.Context, attachment string) (*image.NRGBA, error) {
	if img, ok := f.cache.Get(attachment); ok {
		return img, nil
	}

	u, err := url.Parse(attachment)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchRemote(ctx, attachment)
	}

	path := attachment
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if !filepath.IsAbs(path) && f.BaseDir != "" {
		path = filepath.Join(f.BaseDir, path)
	}

	img, err := f.cache.Load(path)
	if err != nil {
		return nil, &FetchError{URL: attachment, Message: "failed to load local image", Cause: err}
	}
	return img, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, rawURL string) (*image.NRGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Message: "failed to decode image", Cause: err}
	}

	f.cache.Put(rawURL, img)
	return img, nil
}
