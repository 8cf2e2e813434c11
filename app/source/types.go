package source

import (
	"context"

	"github.com/lysyi3m/trend-comb/app/post"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Source is the contract the orchestrator fans out to. Fetch never fails:
// a broken platform contributes an empty slice.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string, limit int) []post.Post
}

// Fetcher is implemented by the platform clients. Errors are reported to the
// Adapter wrapping it.
type Fetcher interface {
	Fetch(ctx context.Context, query string, limit int) ([]post.Post, error)
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
