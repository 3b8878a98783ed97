// Package store owns the persisted article collection and the seen-URL set.
// All mutation is serialized behind one mutex; persistence is delegated to
// injected repositories and must succeed before a call returns.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"NewsRadar/internal/domain"
	"NewsRadar/internal/ports"
	"NewsRadar/internal/urlutil"
)

var (
	// ErrNotFound reports an unknown article id.
	ErrNotFound = errors.New("article not found")
	// ErrInvalidTransition reports a review-state change on a non-pending
	// article; approve and reject are one-shot.
	ErrInvalidTransition = errors.New("article is not pending")
)

// Store is the single writer over articles and seen URLs.
type Store struct {
	mu       sync.Mutex
	articles map[int64]*domain.Article
	order    []int64
	seen     map[string]struct{}
	nextID   int64

	repo     ports.ArticleRepository
	seenRepo ports.SeenURLRepository
	logger   *slog.Logger
}

// Open loads the persisted collection and seen set into memory.
func Open(ctx context.Context, repo ports.ArticleRepository, seenRepo ports.SeenURLRepository, logger *slog.Logger) (*Store, error) {
	articles, nextID, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}

	urls, err := seenRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seen urls: %w", err)
	}

	s := &Store{
		articles: make(map[int64]*domain.Article, len(articles)),
		seen:     make(map[string]struct{}, len(urls)),
		nextID:   nextID,
		repo:     repo,
		seenRepo: seenRepo,
		logger:   logger,
	}

	for i := range articles {
		a := articles[i]
		s.articles[a.ID] = &a
		s.order = append(s.order, a.ID)
		if a.ID >= s.nextID {
			s.nextID = a.ID + 1
		}
	}
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	if s.nextID < 1 {
		s.nextID = 1
	}

	for _, u := range urls {
		s.seen[u] = struct{}{}
	}

	return s, nil
}

// Ingest applies the dedup-then-persist contract for one candidate. The URL
// is remembered even when classification rejects the candidate, so the
// extraction cost is paid once per page.
func (s *Store) Ingest(ctx context.Context, cand domain.Candidate, cls domain.Classification) (domain.IngestResult, error) {
	key := cand.URL
	if normalized, err := urlutil.Normalize(cand.URL, nil); err == nil {
		key = normalized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[key]; dup {
		return domain.IngestResult{Outcome: domain.OutcomeDuplicate}, nil
	}

	if err := s.seenRepo.Add(ctx, key); err != nil {
		return domain.IngestResult{}, fmt.Errorf("persist seen url %s: %w", key, err)
	}
	s.seen[key] = struct{}{}

	if cls.Count == 0 {
		return domain.IngestResult{Outcome: domain.OutcomeUnclassified}, nil
	}

	article := buildArticle(s.nextID, key, cand, cls)
	if err := s.repo.Insert(ctx, article); err != nil {
		return domain.IngestResult{}, fmt.Errorf("persist article %s: %w", key, err)
	}

	s.articles[article.ID] = &article
	s.order = append(s.order, article.ID)
	s.nextID++

	return domain.IngestResult{Outcome: domain.OutcomeInserted, ID: article.ID}, nil
}

// Approve transitions a pending article to approved.
func (s *Store) Approve(ctx context.Context, id int64) error {
	return s.transition(ctx, id, domain.ReviewApproved)
}

// Reject transitions a pending article to rejected.
func (s *Store) Reject(ctx context.Context, id int64) error {
	return s.transition(ctx, id, domain.ReviewRejected)
}

func (s *Store) transition(ctx context.Context, id int64, target domain.ReviewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.articles[id]
	if !ok {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	if article.Review != domain.ReviewPending {
		return fmt.Errorf("article %d is %s: %w", id, article.Review, ErrInvalidTransition)
	}

	if err := s.repo.UpdateReview(ctx, id, target); err != nil {
		return fmt.Errorf("persist review state: %w", err)
	}
	article.Review = target
	return nil
}

// SetSubmission records the sink outcome for an article. Unknown ids are
// tolerated with a log line: the article may have been removed manually
// while a submission was in flight.
func (s *Store) SetSubmission(ctx context.Context, id int64, state domain.SubmissionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.articles[id]
	if !ok {
		if s.logger != nil {
			s.logger.Warn("submission state for unknown article", "id", id, "state", state)
		}
		return nil
	}

	if err := s.repo.UpdateSubmission(ctx, id, state); err != nil {
		return fmt.Errorf("persist submission state: %w", err)
	}
	article.Submission = state
	return nil
}

// Export returns a snapshot of articles in the given review state, ordered by
// id ascending. An empty state exports everything.
func (s *Store) Export(state domain.ReviewState) []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Article, 0, len(s.order))
	for _, id := range s.order {
		a := s.articles[id]
		if state != "" && a.Review != state {
			continue
		}
		copied := *a
		copied.Keywords = append([]string(nil), a.Keywords...)
		out = append(out, copied)
	}
	return out
}

// Get returns a copy of one article.
func (s *Store) Get(id int64) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	copied := *a
	copied.Keywords = append([]string(nil), a.Keywords...)
	return copied, nil
}

// Seen reports whether a normalized URL was already processed. The pipeline
// uses it to skip re-fetching known pages.
func (s *Store) Seen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[url]
	return ok
}

// Stats counts articles by review state.
func (s *Store) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.Stats{Total: len(s.articles), Seen: len(s.seen)}
	for _, a := range s.articles {
		switch a.Review {
		case domain.ReviewPending:
			stats.Pending++
		case domain.ReviewApproved:
			stats.Approved++
		case domain.ReviewRejected:
			stats.Rejected++
		}
	}
	return stats
}

func buildArticle(id int64, url string, cand domain.Candidate, cls domain.Classification) domain.Article {
	article := domain.Article{
		ID:           id,
		Source:       cand.Source,
		URL:          url,
		Title:        cand.Title,
		Description:  cand.Description,
		Body:         cand.Body,
		ImageURL:     cand.ImageURL,
		Category:     cls.Category,
		Keywords:     append([]string(nil), cls.Keywords...),
		KeywordCount: cls.Count,
		Language:     cls.Language,
		PublishedAt:  cand.PublishedAt,
		FetchedAt:    time.Now().UTC(),
		Review:       domain.ReviewPending,
	}

	switch cls.Language {
	case "kz":
		article.TitleKZ = cand.Title
		article.DescriptionKZ = cand.Description
		article.BodyKZ = cand.Body
	case "ru":
		article.TitleRU = cand.Title
		article.DescriptionRU = cand.Description
		article.BodyRU = cand.Body
	}

	return article
}
