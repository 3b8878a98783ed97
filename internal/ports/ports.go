package ports

import (
	"context"
	"time"

	"NewsRadar/internal/domain"
)

// Fetcher downloads a single page for a source.
type Fetcher interface {
	Fetch(ctx context.Context, source, pageURL string) (*domain.RawFetchResult, error)
}

// ArticleRepository is the durable backend behind the store. Load returns the
// full collection and the next free ID; every mutation must be flushed before
// returning.
type ArticleRepository interface {
	Load(ctx context.Context) ([]domain.Article, int64, error)
	Insert(ctx context.Context, article domain.Article) error
	UpdateReview(ctx context.Context, id int64, state domain.ReviewState) error
	UpdateSubmission(ctx context.Context, id int64, state domain.SubmissionState) error
}

// SeenURLRepository persists the set of normalized URLs already processed.
type SeenURLRepository interface {
	Load(ctx context.Context) ([]string, error)
	Add(ctx context.Context, url string) error
}

// CRMClient submits one accepted article to the external backend. The
// returned state is recorded on the article; err carries diagnostic detail
// and never affects local persistence.
type CRMClient interface {
	Submit(ctx context.Context, article domain.Article) (domain.SubmissionState, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
