package parser

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsRadar/internal/config"
	"NewsRadar/internal/domain"
	"NewsRadar/internal/extract"
	"NewsRadar/internal/urlutil"
)

// Selector is a per-source strategy driven by configured CSS selectors.
// Every field with an empty or missed selector falls back to the generic
// heuristic, so a partial override still yields a full candidate.
type Selector struct {
	name     string
	cfg      config.SelectorConfig
	fallback *Generic
}

var _ extract.Strategy = (*Selector)(nil)

// NewSelector binds a selector set to a source name. The strategy registers
// under the source name so the registry resolves it ahead of the generic one.
func NewSelector(sourceName string, cfg config.SelectorConfig, fallback *Generic) *Selector {
	if fallback == nil {
		fallback = NewGeneric()
	}
	return &Selector{name: sourceName, cfg: cfg, fallback: fallback}
}

// Name identifies the strategy inside the registry.
func (s *Selector) Name() string {
	return s.name
}

// Links collects hrefs matched by the configured link selector; when the
// selector matches nothing the generic discovery runs instead.
func (s *Selector) Links(doc *goquery.Document, src extract.Source, listingURL string) []string {
	if s.cfg.Links == "" {
		return s.fallback.Links(doc, src, listingURL)
	}

	var links []string
	seen := map[string]struct{}{}
	base := listingBase(src, listingURL)
	doc.Find(s.cfg.Links).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			href, ok = a.Find("a[href]").First().Attr("href")
		}
		if !ok {
			return
		}
		normalized, err := urlutil.Normalize(href, base)
		if err != nil {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})

	if len(links) == 0 {
		return s.fallback.Links(doc, src, listingURL)
	}
	return links
}

// Article extracts a candidate using the configured selectors, filling any
// missed field from the generic heuristic.
func (s *Selector) Article(doc *goquery.Document, pageURL string) (domain.Candidate, bool) {
	title := s.selectText(doc, s.cfg.Title)
	if title == "" {
		title = s.fallback.Title(doc)
	}
	if title == "" {
		return domain.Candidate{}, false
	}

	body := s.selectText(doc, s.cfg.Body)
	if body == "" {
		body = s.fallback.Body(doc)
	}

	published := time.Time{}
	if raw := s.selectDate(doc); raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				published = t
				break
			}
		}
	}
	if published.IsZero() {
		published = s.fallback.PublishedAt(doc)
	}

	image := ""
	if s.cfg.Image != "" {
		if src, ok := doc.Find(s.cfg.Image).First().Attr("src"); ok {
			base, _ := url.Parse(pageURL)
			image = absolutize(src, base)
		}
	}
	if image == "" {
		image = s.fallback.Image(doc, pageURL)
	}

	return domain.Candidate{
		Title:       title,
		Body:        body,
		Description: s.fallback.Description(doc, body),
		PublishedAt: published,
		ImageURL:    image,
	}, true
}

func (s *Selector) selectText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	sel := doc.Find(selector)
	if sel.Length() > 1 {
		return paragraphText(sel)
	}
	return collapseSpace(sel.Text())
}

func (s *Selector) selectDate(doc *goquery.Document) string {
	if s.cfg.Date == "" {
		return ""
	}
	el := doc.Find(s.cfg.Date).First()
	if v, ok := el.Attr("datetime"); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(el.Text())
}
