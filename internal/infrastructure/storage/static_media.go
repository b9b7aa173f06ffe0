package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"

	appintegration "github.com/erp/storesync/internal/application/integration"
)

var _ appintegration.MediaURLResolver = (*StaticMediaResolver)(nil)

// StaticMediaResolver joins image keys onto a public base URL, for images
// served by a CDN or the web server itself
type StaticMediaResolver struct {
	base *url.URL
}

// NewStaticMediaResolver creates a resolver rooted at baseURL
func NewStaticMediaResolver(baseURL string) (*StaticMediaResolver, error) {
	if baseURL == "" {
		return nil, errors.New("storage public base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("storage public base url must be absolute")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &StaticMediaResolver{base: u}, nil
}

// URL returns the public URL of key
func (r *StaticMediaResolver) URL(_ context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyMediaKey
	}
	if isAbsoluteURL(key) {
		return key, nil
	}
	ref, err := url.Parse(strings.TrimPrefix(key, "/"))
	if err != nil {
		return "", err
	}
	return r.base.ResolveReference(ref).String(), nil
}
