// Package extract defines the extraction strategy contract and the registry
// that binds sources to strategies at startup.
package extract

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"NewsRadar/internal/domain"
)

// GenericName is the registry key of the fallback strategy every source can
// rely on.
const GenericName = "generic"

// Source carries the resolved form of a configured news site.
type Source struct {
	Name     string
	BaseURL  *url.URL
	Listings []string
	Patterns []*regexp.Regexp
}

// Strategy turns fetched HTML into article links and candidate records.
// Relative hrefs resolve against listingURL, the page they were found on, not
// the source base URL. Implementations must tolerate malformed markup: a page
// that cannot be understood yields an empty result, never an error.
type Strategy interface {
	Name() string
	Links(doc *goquery.Document, src Source, listingURL string) []string
	Article(doc *goquery.Document, pageURL string) (domain.Candidate, bool)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(s Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[s.Name()] = s
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if s, ok := r.strategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("extraction strategy %s is not registered", name)
}

// ForSource returns the strategy registered under the source name, falling
// back to the generic strategy.
func (r *Registry) ForSource(name string) (Strategy, error) {
	if s, ok := r.strategies[name]; ok {
		return s, nil
	}
	return r.Resolve(GenericName)
}
