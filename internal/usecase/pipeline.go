package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"NewsRadar/internal/classifier"
	"NewsRadar/internal/domain"
	"NewsRadar/internal/extract"
	"NewsRadar/internal/ports"
	"NewsRadar/internal/store"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Fetcher      ports.Fetcher
	Registry     *extract.Registry
	Classifier   *classifier.Classifier
	Store        *store.Store
	Submitter    *Submitter
	Sources      []extract.Source
	MaxPerSource int
	Workers      int
	Logger       *slog.Logger
}

// Pipeline implements the fetch-extract-classify-ingest workflow. Sources run
// concurrently on a bounded worker pool; only Store.Ingest touches shared
// state. Per-source failures are logged and isolated; a persistence failure
// cancels the whole run.
type Pipeline struct {
	fetcher      ports.Fetcher
	registry     *extract.Registry
	classifier   *classifier.Classifier
	store        *store.Store
	submitter    *Submitter
	sources      []extract.Source
	maxPerSource int
	workers      int
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		fetcher:      deps.Fetcher,
		registry:     deps.Registry,
		classifier:   deps.Classifier,
		store:        deps.Store,
		submitter:    deps.Submitter,
		sources:      deps.Sources,
		maxPerSource: deps.MaxPerSource,
		workers:      workers,
		logger:       deps.Logger,
	}
}

// Run processes every configured source once.
func (p *Pipeline) Run(ctx context.Context) (domain.Summary, error) {
	return p.run(ctx, p.sources)
}

// RunSource processes a single source by name.
func (p *Pipeline) RunSource(ctx context.Context, name string) (domain.Summary, error) {
	for _, src := range p.sources {
		if src.Name == name {
			return p.run(ctx, []extract.Source{src})
		}
	}
	return domain.Summary{}, fmt.Errorf("source %q is not configured", name)
}

func (p *Pipeline) run(ctx context.Context, sources []extract.Source) (domain.Summary, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		summary domain.Summary
		fatal   error
	)

	jobs := make(chan extract.Source)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				local, err := p.processSource(runCtx, src)

				mu.Lock()
				addSummary(&summary, local)
				if err != nil && fatal == nil {
					fatal = err
					cancel()
				}
				mu.Unlock()
			}
		}()
	}

	for _, src := range sources {
		jobs <- src
	}
	close(jobs)
	wg.Wait()

	p.logger.Info("run finished",
		"fetched", summary.Fetched,
		"extracted", summary.Extracted,
		"classified", summary.Classified,
		"inserted", summary.Inserted,
		"duplicates", summary.Duplicates,
		"errors", summary.Errors,
	)

	if fatal != nil {
		return summary, fmt.Errorf("run aborted: %w", fatal)
	}
	return summary, nil
}

// processSource handles one source end to end. The returned error is non-nil
// only for persistence failures; everything else is counted and logged.
func (p *Pipeline) processSource(ctx context.Context, src extract.Source) (domain.Summary, error) {
	var sum domain.Summary
	logger := p.logger.With("source", src.Name)

	strategy, err := p.registry.ForSource(src.Name)
	if err != nil {
		sum.Errors++
		logger.Error("no extraction strategy", "error", err)
		return sum, nil
	}

	links := p.discoverLinks(ctx, src, strategy, &sum, logger)

	// Links skipped here still count as duplicates so a re-run's summary
	// shows what was deduplicated, not an empty run.
	fresh := make([]string, 0, len(links))
	for _, link := range links {
		if p.store.Seen(link) {
			sum.Duplicates++
			continue
		}
		fresh = append(fresh, link)
		if p.maxPerSource > 0 && len(fresh) >= p.maxPerSource {
			break
		}
	}
	logger.Info("links discovered",
		"total", len(links), "new", len(fresh), "seen", sum.Duplicates)

	for _, link := range fresh {
		if ctx.Err() != nil {
			return sum, nil
		}
		if err := p.processArticle(ctx, src, strategy, link, &sum, logger); err != nil {
			return sum, err
		}
	}

	return sum, nil
}

func (p *Pipeline) discoverLinks(ctx context.Context, src extract.Source, strategy extract.Strategy, sum *domain.Summary, logger *slog.Logger) []string {
	var links []string
	seen := map[string]struct{}{}

	for _, listing := range src.Listings {
		result, err := p.fetcher.Fetch(ctx, src.Name, listing)
		if err != nil {
			sum.Errors++
			logger.Warn("listing fetch failed", "url", listing, "error", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
		if err != nil {
			sum.Errors++
			logger.Warn("listing parse failed", "url", listing, "error", err)
			continue
		}

		for _, link := range strategy.Links(doc, src, listing) {
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}

	return links
}

func (p *Pipeline) processArticle(ctx context.Context, src extract.Source, strategy extract.Strategy, link string, sum *domain.Summary, logger *slog.Logger) error {
	result, err := p.fetcher.Fetch(ctx, src.Name, link)
	if err != nil {
		sum.Errors++
		logger.Warn("article fetch failed", "url", link, "error", err)
		return nil
	}
	sum.Fetched++

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		sum.Errors++
		logger.Warn("article parse failed", "url", link, "error", err)
		return nil
	}

	cand, ok := strategy.Article(doc, link)
	if !ok {
		logger.Debug("page yielded no article", "url", link)
		return nil
	}
	cand.Source = src.Name
	cand.URL = link
	sum.Extracted++

	cls := p.classifier.Classify(cand)
	if cls.Count > 0 {
		sum.Classified++
	}

	ingested, err := p.store.Ingest(ctx, cand, cls)
	if err != nil {
		logger.Error("ingest failed, aborting run", "url", link, "error", err)
		return err
	}

	switch ingested.Outcome {
	case domain.OutcomeInserted:
		sum.Inserted++
		logger.Info("article inserted",
			"id", ingested.ID,
			"category", cls.Category,
			"keywords", cls.Count,
			"language", cls.Language,
		)
		if p.submitter != nil {
			if article, err := p.store.Get(ingested.ID); err == nil {
				p.submitter.Enqueue(article)
			}
		}
	case domain.OutcomeDuplicate:
		sum.Duplicates++
	case domain.OutcomeUnclassified:
		logger.Debug("no keyword matches", "url", link, "title", cand.Title)
	}

	return nil
}

func addSummary(total *domain.Summary, part domain.Summary) {
	total.Fetched += part.Fetched
	total.Extracted += part.Extracted
	total.Classified += part.Classified
	total.Inserted += part.Inserted
	total.Duplicates += part.Duplicates
	total.Errors += part.Errors
}
