// Package fetcher retrieves the published release version over HTTP.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/http2"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/ports"
)

var (
	// ErrBodyTooLarge is returned when the endpoint sends more than MaxVersionBodyBytes.
	ErrBodyTooLarge = errors.New("version body too large")
	// ErrInvalidBody is returned for bodies that are not UTF-8 or are empty after trimming.
	ErrInvalidBody = errors.New("version body is not a usable string")
)

// HTTPFetcher performs GET <url> and treats the trimmed body as the version.
type HTTPFetcher struct {
	url    string
	client *http.Client
	log    ports.Logger
}

// New builds a fetcher with an HTTP/2 capable transport. A zero timeout uses
// DefaultFetchTimeout.
func New(url string, timeout time.Duration, log ports.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = domain.DefaultFetchTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if err := http2.ConfigureTransport(transport); err != nil && log != nil {
		log.Debug("http2 unavailable; using http/1.1", map[string]interface{}{"error": err.Error()})
	}
	return NewWithClient(url, &http.Client{Transport: transport, Timeout: timeout}, log)
}

// NewWithClient uses the supplied client as-is.
func NewWithClient(url string, client *http.Client, log ports.Logger) *HTTPFetcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTPFetcher{url: url, client: client, log: log}
}

// URL returns the endpoint.
func (f *HTTPFetcher) URL() string {
	return f.url
}

// FetchVersion implements ports.VersionFetcher. Every failure collapses to ok=false.
func (f *HTTPFetcher) FetchVersion(ctx context.Context) (string, bool) {
	version, err := f.Fetch(ctx)
	if err != nil {
		f.log.Debug("version fetch failed", map[string]interface{}{
			"url":   f.url,
			"error": err.Error(),
		})
		return "", false
	}
	return version, true
}

// Fetch is FetchVersion with the failure reason kept, for diagnostics.
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	if f.url == "" {
		return "", errors.New("version url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, domain.MaxVersionBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > domain.MaxVersionBodyBytes {
		return "", ErrBodyTooLarge
	}
	if !utf8.Valid(body) {
		return "", ErrInvalidBody
	}
	version := strings.TrimSpace(string(body))
	if version == "" {
		return "", ErrInvalidBody
	}
	return version, nil
}

var _ ports.VersionFetcher = (*HTTPFetcher)(nil)
