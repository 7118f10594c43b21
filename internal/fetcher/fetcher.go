// Package fetcher retrieves a page and reduces it to its visible text.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	maxRedirects = 10

	defaultTimeout  = 20 * time.Second
	defaultMaxBytes = 5 << 20
)

// FetchError reports a failure to retrieve or extract the content of one URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Fetcher struct {
	client   *http.Client
	maxBytes int64
	log      *slog.Logger
}

func New(timeout time.Duration, maxBytes int64, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		log:      log,
	}
}

// Fetch downloads rawURL and returns its visible text. HTML pages go through
// readable-content extraction, RSS/Atom responses are flattened to their item
// texts. Anything else is rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("parse URL: %w", err)}
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme %q", pageURL.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", rawURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)}
	}

	body := io.LimitReader(resp.Body, f.maxBytes)

	mediaType := resp.Header.Get("Content-Type")
	if parsed, _, parseErr := mime.ParseMediaType(mediaType); parseErr == nil {
		mediaType = parsed
	}

	text, err := f.extract(ctx, mediaType, pageURL, body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	return text, nil
}

func (f *Fetcher) extract(
	ctx context.Context,
	mediaType string,
	pageURL *url.URL,
	body io.Reader,
) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	switch {
	case isFeedMediaType(mediaType):
		return extractFeedText(bytes.NewReader(data))
	case isXMLMediaType(mediaType):
		// Generic XML is usually a feed served with a lax content type.
		if text, feedErr := extractFeedText(bytes.NewReader(data)); feedErr == nil {
			return text, nil
		}
		return f.extractPageText(ctx, pageURL, data)
	case mediaType == "" || isHTMLMediaType(mediaType):
		return f.extractPageText(ctx, pageURL, data)
	case strings.HasPrefix(mediaType, "text/"):
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func isHTMLMediaType(mediaType string) bool {
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func isXMLMediaType(mediaType string) bool {
	return mediaType == "application/xml" || mediaType == "text/xml"
}

func isFeedMediaType(mediaType string) bool {
	switch mediaType {
	case "application/rss+xml", "application/atom+xml", "application/feed+json":
		return true
	default:
		return false
	}
}
