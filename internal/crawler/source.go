package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// Fetch errors. The Spider does not tell them apart; they exist so that
// callers and tests can.
var (
	// ErrUnexpectedStatus is returned for any response outside 2xx.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrUnsupportedContentType is returned for responses that are not
	// HTML, XML or plain text.
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

// DocumentSource fetches a URL and returns a navigable document.
// Any failure (network, status, parse) is reported as a non-nil error.
type DocumentSource interface {
	Fetch(ctx context.Context, url string) (Document, error)
}

// RequestDecorator adjusts an outgoing request, for example to add
// per-site headers or cookies.
type RequestDecorator func(req *http.Request)

// HTTPSource is a DocumentSource that fetches pages over HTTP.
type HTTPSource struct {
	// client performs the requests.
	client *http.Client

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64

	// decorators run on every request before it is sent.
	decorators []RequestDecorator
}

// HTTPSourceOption configures an HTTPSource.
type HTTPSourceOption func(*HTTPSource)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPSourceOption {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) HTTPSourceOption {
	return func(s *HTTPSource) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithRequestDecorator adds a function run on every outgoing request.
func WithRequestDecorator(d RequestDecorator) HTTPSourceOption {
	return func(s *HTTPSource) {
		if d != nil {
			s.decorators = append(s.decorators, d)
		}
	}
}

// NewHTTPSource creates an HTTPSource using client.
// A nil client is replaced by one with the given timeout; a zero timeout
// means no per-fetch limit.
func NewHTTPSource(client *http.Client, opts ...HTTPSourceOption) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}

	s := &HTTPSource{
		client:      client,
		userAgent:   "sitegrep",
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewHTTPClient returns a client whose requests time out after timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Fetch retrieves pageURL and parses it as HTML.
func (s *HTTPSource) Fetch(ctx context.Context, pageURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8")
	for _, d := range s.decorators {
		d(req)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextContent(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}

	// Relative links resolve against where redirects ended up.
	base := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL.String()
	}

	return NewHTMLDocument(bytes.NewReader(body), base)
}

// isTextContent reports whether a Content-Type header names something
// worth parsing. A missing header is accepted.
func isTextContent(contentType string) bool {
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case mediaType == "application/xhtml+xml", mediaType == "application/xml":
		return true
	case strings.HasSuffix(mediaType, "+xml"):
		return true
	default:
		return false
	}
}
