package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bible-tui/internal/bible"
)

// ErrStatus is returned when the server answers with anything but 200.
var ErrStatus = errors.New("unexpected status")

type HTTPSource struct {
	url        string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

func newHTTPSource(url string, o options) *HTTPSource {
	return &HTTPSource{
		url:        url,
		httpClient: &http.Client{Timeout: o.timeout},
		userAgent:  o.userAgent,
		maxBytes:   o.maxBytes,
	}
}

func (s *HTTPSource) String() string { return s.url }

func (s *HTTPSource) Load(ctx context.Context) (bible.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return bible.Document{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return bible.Document{}, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return bible.Document{}, fmt.Errorf("fetch %s: %w %d: %s", s.url, ErrStatus, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return bible.Document{}, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if int64(len(data)) > s.maxBytes {
		return bible.Document{}, fmt.Errorf("fetch %s: document larger than %d bytes", s.url, s.maxBytes)
	}

	return bible.Parse(data)
}
