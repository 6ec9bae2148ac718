// Package source acquires the raw document, either over HTTP or from a local
// file, and hands it to the bible decoder.
package source

import (
	"context"
	"strings"
	"time"

	"bible-tui/internal/bible"
)

// DefaultLocation is the Bible in Basic English as published by
// thiagobodruk/bible.
const DefaultLocation = "https://raw.githubusercontent.com/thiagobodruk/bible/refs/heads/master/json/en_bbe.json"

// Source loads one complete document.
type Source interface {
	Load(ctx context.Context) (bible.Document, error)
	String() string
}

type options struct {
	timeout   time.Duration
	userAgent string
	maxBytes  int64
}

type Option func(*options)

// WithTimeout bounds a single HTTP fetch. Zero leaves the client default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithMaxBytes caps how much of a response or file is read.
func WithMaxBytes(n int64) Option {
	return func(o *options) { o.maxBytes = n }
}

// New picks an HTTP source for http(s) locations and a file source for
// anything else.
func New(location string, opts ...Option) Source {
	o := options{
		userAgent: "bible-tui",
		maxBytes:  64 << 20,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if location == "" {
		location = DefaultLocation
	}

	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return newHTTPSource(location, o)
	}
	return &FileSource{path: location, maxBytes: o.maxBytes}
}
