package trends

import (
	"context"
	"errors"

	"github.com/lysyi3m/trend-comb/app/insight"
	"github.com/lysyi3m/trend-comb/app/post"
)

type State string

const (
	StateFetching     State = "FETCHING"
	StateMerging      State = "MERGING"
	StateSynthesizing State = "SYNTHESIZING"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

const MaxQueryLength = 50

var ErrInvalidQuery = errors.New("invalid query")

// Cache stores finished insight lists per query.
type Cache interface {
	GetInsights(ctx context.Context, query string) ([]insight.Insight, bool, error)
	SetInsights(ctx context.Context, query string, insights []insight.Insight) error
}

// Archiver keeps the merged posts of a request. It must not block the request.
type Archiver interface {
	Archive(query string, posts []post.Post) error
}

type Publisher interface {
	PublishInsights(ctx context.Context, query string, insights []insight.Insight) error
}
