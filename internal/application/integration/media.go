package integration

import "context"

// MediaURLResolver turns a stored image key into a URL the storefront can
// download from when it imports a product image
type MediaURLResolver interface {
	URL(ctx context.Context, key string) (string, error)
}
