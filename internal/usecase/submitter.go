package usecase

import (
	"context"
	"log/slog"
	"sync"

	"NewsRadar/internal/domain"
	"NewsRadar/internal/infrastructure/metrics"
	"NewsRadar/internal/ports"
	"NewsRadar/internal/store"
)

// Submitter forwards inserted articles to the CRM backend from a bounded
// queue, so a slow or unreachable backend never blocks or fails ingestion.
type Submitter struct {
	client  ports.CRMClient
	store   *store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger

	queue chan domain.Article
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewSubmitter builds the queue; size bounds how many articles may wait.
func NewSubmitter(client ports.CRMClient, st *store.Store, m *metrics.Metrics, logger *slog.Logger, size int) *Submitter {
	if size < 1 {
		size = 64
	}
	return &Submitter{
		client:  client,
		store:   st,
		metrics: m,
		logger:  logger,
		queue:   make(chan domain.Article, size),
	}
}

// Start launches the consumer goroutine.
func (s *Submitter) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for article := range s.queue {
			state, err := s.client.Submit(ctx, article)
			if err != nil {
				s.logger.Warn("crm submission failed",
					"id", article.ID, "state", state, "error", err)
			} else {
				s.logger.Info("crm submission done", "id", article.ID, "state", state)
			}
			s.metrics.ObserveSubmission(state)

			if err := s.store.SetSubmission(ctx, article.ID, state); err != nil {
				s.logger.Error("record submission state", "id", article.ID, "error", err)
			}
		}
	}()
}

// Enqueue hands an article to the consumer without ever blocking the
// pipeline; a full or already stopped queue drops the submission with a
// warning. The article is already durable locally, so a drop only delays CRM
// delivery. A scheduled run may still be finishing while shutdown closes the
// queue, so Enqueue must stay safe after Stop.
func (s *Submitter) Enqueue(article domain.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("submitter stopped, dropping", "id", article.ID)
		return
	}
	select {
	case s.queue <- article:
	default:
		s.logger.Warn("submission queue full, dropping", "id", article.ID)
	}
}

// Stop closes the queue and waits for the consumer to drain it.
func (s *Submitter) Stop() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
