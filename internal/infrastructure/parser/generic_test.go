package parser

import (
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsRadar/internal/extract"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func testSource(t *testing.T, base string, patterns ...string) extract.Source {
	t.Helper()

	baseURL, err := url.Parse(base)
	if err != nil {
		t.Fatalf("parse base: %v", err)
	}
	src := extract.Source{Name: "Stan.kz", BaseURL: baseURL}
	for _, p := range patterns {
		src.Patterns = append(src.Patterns, regexp.MustCompile(p))
	}
	return src
}

func TestGenericLinksMatchPatterns(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><body>
		<a href="/news/12345-bilim">Жаңалық</a>
		<a href="/news/12345-bilim?utm_source=main">Сол жаңалық</a>
		<a href="/tag/sport">Тег</a>
		<a href="/about">Біз туралы</a>
		<a href="https://facebook.com/stankz">FB</a>
	</body></html>`)

	links := NewGeneric().Links(doc, testSource(t, "https://stan.kz/", `stan\.kz/news/\d+`), "https://stan.kz/")

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %v", links)
	}
	if links[0] != "https://stan.kz/news/12345-bilim" {
		t.Fatalf("unexpected link: %q", links[0])
	}
}

func TestGenericLinksHeuristicWithoutPatterns(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><body>
		<a href="/2025/education-news-today">Мақала</a>
		<a href="/a">Қысқа</a>
	</body></html>`)

	links := NewGeneric().Links(doc, testSource(t, "https://baq.kz/"), "https://baq.kz/")

	if len(links) != 1 || !strings.Contains(links[0], "/2025/") {
		t.Fatalf("unexpected links: %v", links)
	}
}

func TestGenericLinksResolveAgainstListingURL(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><body>
		<a href="12345.html">Жаңалық</a>
	</body></html>`)

	// A listing under a subpath has page-relative hrefs; they must resolve
	// against the listing page, not the host root.
	links := NewGeneric().Links(doc, testSource(t, "https://24.kz/"), "https://24.kz/kz/zha-aly-tar")

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %v", links)
	}
	if links[0] != "https://24.kz/kz/12345.html" {
		t.Fatalf("unexpected resolution: %q", links[0])
	}
}

func TestGenericArticleExtraction(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><head>
		<meta property="og:title" content="Мектепте жаңа бағдарлама">
		<meta name="description" content="Білім саласындағы өзгерістер">
		<meta property="article:published_time" content="2026-02-10T09:30:00+05:00">
		<meta property="og:image" content="/images/school.jpg">
	</head><body>
		<div class="sidebar"><p>Жарнама</p></div>
		<article>
			<h1>Басқа тақырып</h1>
			<p>Бірінші абзац мектеп туралы.</p>
			<p>Екінші абзац оқушылар туралы.</p>
		</article>
	</body></html>`)

	cand, ok := NewGeneric().Article(doc, "https://stan.kz/news/1")
	if !ok {
		t.Fatal("expected a candidate")
	}
	if cand.Title != "Мектепте жаңа бағдарлама" {
		t.Fatalf("og:title must win, got %q", cand.Title)
	}
	if !strings.Contains(cand.Body, "Бірінші абзац") || !strings.Contains(cand.Body, "Екінші абзац") {
		t.Fatalf("article paragraphs missing from body: %q", cand.Body)
	}
	if strings.Contains(cand.Body, "Жарнама") {
		t.Fatalf("sidebar text leaked into body: %q", cand.Body)
	}
	if cand.Description != "Білім саласындағы өзгерістер" {
		t.Fatalf("unexpected description: %q", cand.Description)
	}
	if want := time.Date(2026, 2, 10, 4, 30, 0, 0, time.UTC); !cand.PublishedAt.UTC().Equal(want) {
		t.Fatalf("unexpected published time: %v", cand.PublishedAt)
	}
	if cand.ImageURL != "https://stan.kz/images/school.jpg" {
		t.Fatalf("image not absolutized: %q", cand.ImageURL)
	}
}

func TestGenericArticleWithoutTitle(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><body><p>Тақырыпсыз мәтін.</p></body></html>`)
	if _, ok := NewGeneric().Article(doc, "https://stan.kz/news/2"); ok {
		t.Fatal("page without title must be skipped")
	}
}

func TestGenericImageSkipsThumbnails(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<html><body>
		<img src="/static/logo.png">
		<img src="/uploads/thumb_small.jpg">
		<img src="/uploads/photo.jpg">
	</body></html>`)

	got := NewGeneric().Image(doc, "https://baq.kz/news/3")
	if got != "https://baq.kz/uploads/photo.jpg" {
		t.Fatalf("unexpected image: %q", got)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	short := "Қысқа мәтін."
	if got := Summarize(short, 200); got != short {
		t.Fatalf("short text must pass through, got %q", got)
	}

	long := strings.Repeat("а", 150) + ". " + strings.Repeat("б", 150)
	got := Summarize(long, 200)
	if !strings.HasSuffix(got, ".") {
		t.Fatalf("expected sentence-boundary cut, got %q", got)
	}
	if len([]rune(got)) > 200 {
		t.Fatalf("excerpt too long: %d runes", len([]rune(got)))
	}

	words := strings.Repeat("сөз ", 100)
	got = Summarize(words, 50)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis on word cut, got %q", got)
	}
	if len([]rune(got)) > 53 {
		t.Fatalf("excerpt too long: %d runes", len([]rune(got)))
	}
}
