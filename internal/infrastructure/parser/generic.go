package parser

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsRadar/internal/domain"
	"NewsRadar/internal/extract"
	"NewsRadar/internal/urlutil"
)

// linkSkipFragments mark navigation, account and media links that are never
// articles.
var linkSkipFragments = []string{
	"/tag/", "/category/", "/author/", "/page/",
	"/login", "/register", "/search", "/rss",
	".jpg", ".png", ".pdf", ".mp3", ".mp4",
	"facebook.com", "twitter.com", "instagram.com", "youtube.com",
	"telegram.me", "t.me", "wa.me",
}

var (
	yearInPath = regexp.MustCompile(`/\d{4}/`)
	idInPath   = regexp.MustCompile(`/\d+`)
	slugInPath = regexp.MustCompile(`-[a-z]+-`)
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Generic is the default extraction strategy: readability-style body
// detection plus heuristic article-link discovery.
type Generic struct{}

var _ extract.Strategy = (*Generic)(nil)

// NewGeneric builds the fallback strategy.
func NewGeneric() *Generic {
	return &Generic{}
}

// Name identifies the strategy inside the registry.
func (g *Generic) Name() string {
	return extract.GenericName
}

// Links collects candidate article URLs from a listing page. Relative hrefs
// resolve against the listing page URL; results come back absolutized and
// normalized. src.Patterns, when present, narrows the match, otherwise a
// generic shape heuristic applies.
func (g *Generic) Links(doc *goquery.Document, src extract.Source, listingURL string) []string {
	var links []string
	seen := map[string]struct{}{}
	base := listingBase(src, listingURL)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		normalized, err := urlutil.Normalize(href, base)
		if err != nil {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}

		lower := strings.ToLower(normalized)
		for _, fragment := range linkSkipFragments {
			if strings.Contains(lower, fragment) {
				return
			}
		}

		if !matchesSource(normalized, src) {
			return
		}

		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})

	return links
}

// listingBase resolves hrefs against the listing page itself; a listing under
// a subpath ("/kz/zha-aly-tar") has page-relative links that would mis-resolve
// against the host root.
func listingBase(src extract.Source, listingURL string) *url.URL {
	if u, err := url.Parse(listingURL); err == nil && u.Host != "" {
		return u
	}
	return src.BaseURL
}

func matchesSource(link string, src extract.Source) bool {
	if len(src.Patterns) > 0 {
		for _, p := range src.Patterns {
			if p.MatchString(link) {
				return true
			}
		}
		return false
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	path := parsed.Path
	if len(path) <= 10 {
		return false
	}
	return yearInPath.MatchString(path) ||
		idInPath.MatchString(path) ||
		slugInPath.MatchString(path) ||
		strings.Count(path, "/") >= 2
}

// Article extracts a candidate from an article page. A page without a
// recognizable title yields ok=false; malformed markup never errors.
func (g *Generic) Article(doc *goquery.Document, pageURL string) (domain.Candidate, bool) {
	title := g.Title(doc)
	if title == "" {
		return domain.Candidate{}, false
	}

	body := g.Body(doc)
	cand := domain.Candidate{
		Title:       title,
		Body:        body,
		Description: g.Description(doc, body),
		PublishedAt: g.PublishedAt(doc),
		ImageURL:    g.Image(doc, pageURL),
	}
	return cand, true
}

// Title prefers og:title, then the first h1, then the title tag.
func (g *Generic) Title(doc *goquery.Document) string {
	if v := metaContent(doc, `meta[property="og:title"]`); v != "" {
		return v
	}
	if v := strings.TrimSpace(doc.Find("h1").First().Text()); v != "" {
		return v
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Body locates the largest contiguous text block. Containers are compared by
// the combined length of their direct paragraph children, so an outer page
// wrapper without its own paragraphs never wins over the article element.
func (g *Generic) Body(doc *goquery.Document) string {
	best := ""
	doc.Find("article, main, section, div").Each(func(_ int, container *goquery.Selection) {
		text := paragraphText(container.ChildrenFiltered("p"))
		if len(text) > len(best) {
			best = text
		}
	})

	if best == "" {
		best = paragraphText(doc.Find("p"))
	}
	return best
}

func paragraphText(paragraphs *goquery.Selection) string {
	var parts []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if text := collapseSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// Description prefers page metadata and falls back to a body excerpt.
func (g *Generic) Description(doc *goquery.Document, body string) string {
	if v := metaContent(doc, `meta[name="description"]`); v != "" {
		return v
	}
	if v := metaContent(doc, `meta[property="og:description"]`); v != "" {
		return v
	}
	return Summarize(body, 200)
}

// PublishedAt reads publication metadata; the zero time means unknown.
func (g *Generic) PublishedAt(doc *goquery.Document) time.Time {
	raw := metaContent(doc, `meta[property="article:published_time"]`)
	if raw == "" {
		raw, _ = doc.Find("time[datetime]").First().Attr("datetime")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Image prefers the Open Graph image and falls back to the first content
// image, skipping thumbnails and chrome.
func (g *Generic) Image(doc *goquery.Document, pageURL string) string {
	base, _ := url.Parse(pageURL)

	if v := metaContent(doc, `meta[property="og:image"]`); v != "" {
		return absolutize(v, base)
	}

	found := ""
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		lower := strings.ToLower(src)
		for _, fragment := range []string{"thumb", "icon", "logo", "avatar"} {
			if strings.Contains(lower, fragment) {
				return true
			}
		}
		found = absolutize(src, base)
		return false
	})
	return found
}

// Summarize produces a short excerpt cut at a sentence boundary when one
// exists in the second half of the window, then at a word boundary.
// maxLength counts runes, not bytes: the sources publish Cyrillic text.
func Summarize(content string, maxLength int) string {
	runes := []rune(collapseSpace(content))
	if len(runes) <= maxLength {
		return string(runes)
	}

	truncated := runes[:maxLength]
	cut := -1
	for i, r := range truncated {
		if r == '.' || r == '?' || r == '!' {
			cut = i
		}
	}
	if cut > maxLength/2 {
		return string(truncated[:cut+1])
	}

	space := -1
	for i, r := range truncated {
		if r == ' ' {
			space = i
		}
	}
	if space > maxLength/2 {
		return string(truncated[:space]) + "..."
	}
	return string(truncated) + "..."
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func absolutize(raw string, base *url.URL) string {
	if base == nil {
		return raw
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return base.ResolveReference(u).String()
}
