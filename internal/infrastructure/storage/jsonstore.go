// Package storage provides the persistence backends behind the store: flat
// JSON documents (default), Postgres, and a Redis-backed seen-URL set.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"NewsRadar/internal/domain"
	"NewsRadar/internal/ports"
)

// articleDocument is the on-disk layout of the article collection.
type articleDocument struct {
	Articles    []domain.Article `json:"articles"`
	NextID      int64            `json:"next_id"`
	LastUpdated time.Time        `json:"last_updated"`
}

// ArticleFile persists the full collection as one JSON document, rewritten
// atomically on every mutation. Suited to the tens of articles per run this
// system handles.
type ArticleFile struct {
	path string

	mu       sync.Mutex
	articles []domain.Article
	nextID   int64
}

var _ ports.ArticleRepository = (*ArticleFile)(nil)

// NewArticleFile wires the document path; the file is created on first write.
func NewArticleFile(path string) *ArticleFile {
	return &ArticleFile{path: path, nextID: 1}
}

// Load reads the document; a missing file is an empty collection.
func (f *ArticleFile) Load(ctx context.Context) ([]domain.Article, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, 1, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", f.path, err)
	}

	var doc articleDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", f.path, err)
	}

	f.articles = doc.Articles
	f.nextID = doc.NextID
	if f.nextID < 1 {
		f.nextID = 1
	}
	for _, a := range doc.Articles {
		if a.ID >= f.nextID {
			f.nextID = a.ID + 1
		}
	}

	out := make([]domain.Article, len(f.articles))
	copy(out, f.articles)
	return out, f.nextID, nil
}

// Insert appends the article and rewrites the document.
func (f *ArticleFile) Insert(ctx context.Context, article domain.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.articles = append(f.articles, article)
	if article.ID >= f.nextID {
		f.nextID = article.ID + 1
	}
	return f.save()
}

// UpdateReview rewrites the document with the new review state.
func (f *ArticleFile) UpdateReview(ctx context.Context, id int64, state domain.ReviewState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.articles {
		if f.articles[i].ID == id {
			f.articles[i].Review = state
			return f.save()
		}
	}
	return fmt.Errorf("article %d not in %s", id, f.path)
}

// UpdateSubmission rewrites the document with the new submission state.
func (f *ArticleFile) UpdateSubmission(ctx context.Context, id int64, state domain.SubmissionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.articles {
		if f.articles[i].ID == id {
			f.articles[i].Submission = state
			return f.save()
		}
	}
	return fmt.Errorf("article %d not in %s", id, f.path)
}

func (f *ArticleFile) save() error {
	doc := articleDocument{
		Articles:    f.articles,
		NextID:      f.nextID,
		LastUpdated: time.Now().UTC(),
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal articles: %w", err)
	}
	return writeAtomic(f.path, raw)
}

// SeenFile persists the seen-URL set as a sorted JSON array.
type SeenFile struct {
	path string

	mu   sync.Mutex
	urls map[string]struct{}
}

var _ ports.SeenURLRepository = (*SeenFile)(nil)

// NewSeenFile wires the file path; the file is created on first write.
func NewSeenFile(path string) *SeenFile {
	return &SeenFile{path: path, urls: map[string]struct{}{}}
}

// Load reads the set; a missing file is an empty set.
func (f *SeenFile) Load(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}

	for _, u := range urls {
		f.urls[u] = struct{}{}
	}
	return urls, nil
}

// Add records one URL and rewrites the file.
func (f *SeenFile) Add(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.urls[url] = struct{}{}

	urls := make([]string, 0, len(f.urls))
	for u := range f.urls {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	raw, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen urls: %w", err)
	}
	return writeAtomic(f.path, raw)
}

// writeAtomic flushes data to a temp file, fsyncs it, and renames it over the
// target, so a crash mid-write never leaves a truncated document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
