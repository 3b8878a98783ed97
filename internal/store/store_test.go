package store

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"NewsRadar/internal/domain"
	"NewsRadar/internal/infrastructure/storage"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()

	repo := storage.NewArticleFile(filepath.Join(dir, "news.json"))
	seenRepo := storage.NewSeenFile(filepath.Join(dir, "seen_urls.json"))

	s, err := Open(context.Background(), repo, seenRepo, slog.Default())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func acceptedCandidate(url string) (domain.Candidate, domain.Classification) {
	cand := domain.Candidate{
		Source: "Stan.kz",
		URL:    url,
		Title:  "Білім жаңалығы",
		Body:   "Мектепте жаңа бағдарлама басталды.",
	}
	cls := domain.Classification{
		Category: "education",
		Keywords: []string{"білім"},
		Count:    1,
		Language: "kz",
	}
	return cand, cls
}

func TestIngestInsertsPendingArticle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, t.TempDir())
	ctx := context.Background()

	cand, cls := acceptedCandidate("https://stan.kz/news/1")
	result, err := s.Ingest(ctx, cand, cls)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Outcome != domain.OutcomeInserted {
		t.Fatalf("expected insert, got %v", result.Outcome)
	}
	if result.ID != 1 {
		t.Fatalf("expected id 1, got %d", result.ID)
	}

	article, err := s.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if article.Review != domain.ReviewPending {
		t.Fatalf("expected pending, got %s", article.Review)
	}
	if article.Category != "education" || article.KeywordCount != 1 {
		t.Fatalf("unexpected article: %+v", article)
	}
	if article.TitleKZ != cand.Title {
		t.Fatalf("kazakh title split missing: %+v", article)
	}
}

func TestIngestIsIdempotentPerURL(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, t.TempDir())
	ctx := context.Background()

	cand, cls := acceptedCandidate("https://stan.kz/news/2")
	if _, err := s.Ingest(ctx, cand, cls); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	// Same page with tracking noise must hit the same dedup key.
	cand.URL = "https://stan.kz/news/2?utm_source=share#top"
	result, err := s.Ingest(ctx, cand, cls)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if result.Outcome != domain.OutcomeDuplicate {
		t.Fatalf("expected duplicate, got %v", result.Outcome)
	}
	if got := s.Stats().Total; got != 1 {
		t.Fatalf("expected 1 persisted article, got %d", got)
	}
}

func TestIngestRejectedStillRemembersURL(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, t.TempDir())
	ctx := context.Background()

	cand := domain.Candidate{Source: "Baq.kz", URL: "https://baq.kz/news/7", Title: "Спорт"}
	result, err := s.Ingest(ctx, cand, domain.Classification{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Outcome != domain.OutcomeUnclassified {
		t.Fatalf("expected unclassified, got %v", result.Outcome)
	}
	if !s.Seen("https://baq.kz/news/7") {
		t.Fatal("rejected url must still enter the seen set")
	}
	if got := s.Stats().Total; got != 0 {
		t.Fatalf("rejected article must not persist, got %d", got)
	}

	again, err := s.Ingest(ctx, cand, domain.Classification{})
	if err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	if again.Outcome != domain.OutcomeDuplicate {
		t.Fatalf("expected duplicate on second pass, got %v", again.Outcome)
	}
}

func TestIDsAreMonotonicAcrossRestart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	s := newTestStore(t, dir)
	for i := 1; i <= 3; i++ {
		cand, cls := acceptedCandidate("https://stan.kz/news/" + string(rune('0'+i)))
		result, err := s.Ingest(ctx, cand, cls)
		if err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
		if result.ID != int64(i) {
			t.Fatalf("expected id %d, got %d", i, result.ID)
		}
	}

	// A new process over the same files continues from max id + 1.
	restarted := newTestStore(t, dir)
	cand, cls := acceptedCandidate("https://stan.kz/news/9")
	result, err := restarted.Ingest(ctx, cand, cls)
	if err != nil {
		t.Fatalf("ingest after restart: %v", err)
	}
	if result.ID != 4 {
		t.Fatalf("expected id 4 after restart, got %d", result.ID)
	}
	if !restarted.Seen("https://stan.kz/news/1") {
		t.Fatal("seen set must survive restart")
	}
}

func TestReviewTransitionsAreOneShot(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, t.TempDir())
	ctx := context.Background()

	cand, cls := acceptedCandidate("https://stan.kz/news/5")
	result, err := s.Ingest(ctx, cand, cls)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if err := s.Approve(ctx, result.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := s.Reject(ctx, result.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := s.Approve(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	article, err := s.Get(result.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if article.Review != domain.ReviewApproved {
		t.Fatalf("failed transition must not change state, got %s", article.Review)
	}
}

func TestExportOrdersByIDAndFilters(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, t.TempDir())
	ctx := context.Background()

	for _, path := range []string{"a", "b", "c"} {
		cand, cls := acceptedCandidate("https://stan.kz/news/" + path)
		if _, err := s.Ingest(ctx, cand, cls); err != nil {
			t.Fatalf("ingest %s: %v", path, err)
		}
	}
	if err := s.Approve(ctx, 1); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := s.Approve(ctx, 3); err != nil {
		t.Fatalf("approve: %v", err)
	}

	approved := s.Export(domain.ReviewApproved)
	if len(approved) != 2 {
		t.Fatalf("expected 2 approved, got %d", len(approved))
	}
	if approved[0].ID != 1 || approved[1].ID != 3 {
		t.Fatalf("export must order by id, got %d then %d", approved[0].ID, approved[1].ID)
	}

	// Snapshot: mutating the export must not reach the store.
	approved[0].Review = domain.ReviewRejected
	fresh, err := s.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Review != domain.ReviewApproved {
		t.Fatal("export leaked internal state")
	}
}

func TestSetSubmissionKeepsReviewState(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, t.TempDir())
	ctx := context.Background()

	cand, cls := acceptedCandidate("https://stan.kz/news/8")
	result, err := s.Ingest(ctx, cand, cls)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if err := s.SetSubmission(ctx, result.ID, domain.SubmissionCreated); err != nil {
		t.Fatalf("set submission: %v", err)
	}

	article, err := s.Get(result.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if article.Submission != domain.SubmissionCreated {
		t.Fatalf("unexpected submission state: %q", article.Submission)
	}
	if article.Review != domain.ReviewPending {
		t.Fatalf("submission must not touch review state, got %s", article.Review)
	}
}
