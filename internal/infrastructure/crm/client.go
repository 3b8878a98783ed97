// Package crm implements the outbound submission client for the backend API
// that consumes accepted articles.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsRadar/internal/config"
	"NewsRadar/internal/domain"
	"NewsRadar/internal/ports"
)

// Client posts articles to the CRM submit endpoint. The backend answers 201
// for a new article and 409 when it already holds the same source URL.
type Client struct {
	baseURL    string
	submitPath string
	token      string
	httpClient *http.Client
}

var _ ports.CRMClient = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.CRMConfig) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		submitPath: cfg.SubmitPath,
		token:      cfg.Token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// submitPayload matches the backend's NewsSubmit schema.
type submitPayload struct {
	TitleKZ         string `json:"title_kz"`
	TitleRU         string `json:"title_ru"`
	DescriptionKZ   string `json:"description_kz"`
	DescriptionRU   string `json:"description_ru"`
	ContentTextKZ   string `json:"content_text_kz"`
	ContentTextRU   string `json:"content_text_ru"`
	SourceURL       string `json:"source_url"`
	SourceName      string `json:"source_name"`
	Language        string `json:"language"`
	Category        string `json:"category"`
	KeywordsMatched string `json:"keywords_matched"`
	PhotoURL        string `json:"photo_url"`
}

// Submit posts one article. The returned state is what the store records;
// the error only adds diagnostic detail for the log.
func (c *Client) Submit(ctx context.Context, article domain.Article) (domain.SubmissionState, error) {
	if c.baseURL == "" {
		return domain.SubmissionFailed, fmt.Errorf("crm client misconfigured")
	}

	body, err := json.Marshal(submitPayload{
		TitleKZ:         article.TitleKZ,
		TitleRU:         article.TitleRU,
		DescriptionKZ:   article.DescriptionKZ,
		DescriptionRU:   article.DescriptionRU,
		ContentTextKZ:   article.BodyKZ,
		ContentTextRU:   article.BodyRU,
		SourceURL:       article.URL,
		SourceName:      article.Source,
		Language:        article.Language,
		Category:        article.Category,
		KeywordsMatched: strings.Join(article.Keywords, ", "),
		PhotoURL:        article.ImageURL,
	})
	if err != nil {
		return domain.SubmissionFailed, fmt.Errorf("marshal crm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.submitPath, bytes.NewReader(body))
	if err != nil {
		return domain.SubmissionFailed, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SubmissionFailed, fmt.Errorf("submit article %d: %w", article.ID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusCreated:
		return domain.SubmissionCreated, nil
	case resp.StatusCode == http.StatusConflict:
		return domain.SubmissionDuplicate, nil
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.SubmissionFailed, fmt.Errorf("crm returned %s: %s",
			resp.Status, strings.TrimSpace(string(detail)))
	}
}
