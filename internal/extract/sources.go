package extract

import (
	"fmt"
	"net/url"
	"regexp"

	"NewsRadar/internal/config"
)

// SourcesFromConfig resolves configured sources: base URLs parsed, listing
// pages defaulted to the base URL, link patterns compiled once.
func SourcesFromConfig(cfgs []config.SourceConfig) ([]Source, error) {
	sources := make([]Source, 0, len(cfgs))
	for _, cfg := range cfgs {
		base, err := url.Parse(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("source %s: invalid base url %q: %w", cfg.Name, cfg.URL, err)
		}

		listings := cfg.Listings
		if len(listings) == 0 {
			listings = []string{cfg.URL}
		}

		patterns := make([]*regexp.Regexp, 0, len(cfg.Patterns))
		for _, raw := range cfg.Patterns {
			p, err := regexp.Compile(raw)
			if err != nil {
				return nil, fmt.Errorf("source %s: invalid pattern %q: %w", cfg.Name, raw, err)
			}
			patterns = append(patterns, p)
		}

		sources = append(sources, Source{
			Name:     cfg.Name,
			BaseURL:  base,
			Listings: listings,
			Patterns: patterns,
		})
	}
	return sources, nil
}
