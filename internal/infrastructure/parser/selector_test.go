package parser

import (
	"strings"
	"testing"

	"NewsRadar/internal/config"
)

func TestSelectorOverridesFields(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><head>
		<meta property="og:title" content="Мета тақырып">
	</head><body>
		<h1 class="headline">Нақты тақырып</h1>
		<time class="pub" datetime="2026-03-01T12:00:00Z">1 наурыз</time>
		<div class="content">
			<p>Негізгі мәтін абзацы.</p>
			<p>Тағы бір абзац.</p>
		</div>
		<div class="other"><p>Бөгде мәтін.</p></div>
	</body></html>`)

	s := NewSelector("Orda.kz", config.SelectorConfig{
		Title: "h1.headline",
		Body:  "div.content p",
		Date:  "time.pub",
	}, nil)

	cand, ok := s.Article(doc, "https://orda.kz/news/1")
	if !ok {
		t.Fatal("expected a candidate")
	}
	if cand.Title != "Нақты тақырып" {
		t.Fatalf("selector title must win over metadata, got %q", cand.Title)
	}
	if !strings.Contains(cand.Body, "Негізгі мәтін") || strings.Contains(cand.Body, "Бөгде") {
		t.Fatalf("unexpected body: %q", cand.Body)
	}
	if cand.PublishedAt.IsZero() || cand.PublishedAt.Year() != 2026 {
		t.Fatalf("datetime attribute not parsed: %v", cand.PublishedAt)
	}
}

func TestSelectorFallsBackPerField(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><head>
		<meta property="og:title" content="Мета тақырып">
	</head><body>
		<article><p>Жалпы эвристика тапқан мәтін.</p></article>
	</body></html>`)

	// The configured selectors miss on this page; every field must fall back.
	s := NewSelector("Orda.kz", config.SelectorConfig{
		Title: "h1.missing",
		Body:  "div.missing",
	}, NewGeneric())

	cand, ok := s.Article(doc, "https://orda.kz/news/2")
	if !ok {
		t.Fatal("expected a candidate via fallback")
	}
	if cand.Title != "Мета тақырып" {
		t.Fatalf("expected fallback title, got %q", cand.Title)
	}
	if !strings.Contains(cand.Body, "эвристика") {
		t.Fatalf("expected fallback body, got %q", cand.Body)
	}
}

func TestSelectorLinks(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><body>
		<div class="feed">
			<a href="/news/1">Бірінші</a>
			<a href="/news/2">Екінші</a>
		</div>
		<a href="/news/999">Фиддан тыс</a>
	</body></html>`)

	s := NewSelector("Orda.kz", config.SelectorConfig{Links: "div.feed a"}, nil)
	links := s.Links(doc, testSource(t, "https://orda.kz/"), "https://orda.kz/")

	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %v", links)
	}
	if links[0] != "https://orda.kz/news/1" || links[1] != "https://orda.kz/news/2" {
		t.Fatalf("unexpected links: %v", links)
	}
}
