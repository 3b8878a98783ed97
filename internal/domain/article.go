package domain

import "time"

// ReviewState is the moderation lifecycle flag of a persisted article.
type ReviewState string

const (
	ReviewPending  ReviewState = "pending"
	ReviewApproved ReviewState = "approved"
	ReviewRejected ReviewState = "rejected"
)

// SubmissionState records the outcome of forwarding an article to the CRM backend.
type SubmissionState string

const (
	SubmissionNone      SubmissionState = ""
	SubmissionCreated   SubmissionState = "created"
	SubmissionDuplicate SubmissionState = "duplicate"
	SubmissionFailed    SubmissionState = "failed"
)

// RawFetchResult is the outcome of a single page download. It lives only for
// the duration of one extraction pass.
type RawFetchResult struct {
	Source    string
	URL       string
	Status    int
	Body      []byte
	FetchedAt time.Time
}

// Candidate is an extracted but not-yet-classified article. URL is absolute
// and normalized before the candidate reaches dedup.
type Candidate struct {
	Source      string
	URL         string
	Title       string
	Description string
	Body        string
	ImageURL    string
	PublishedAt time.Time
}

// Classification is the keyword-relevance verdict for one candidate.
// Count == 0 means the candidate is below the acceptance threshold.
type Classification struct {
	Category string
	Keywords []string
	Count    int
	Language string
}

// Article is the persisted record. The normalized URL is the dedup key and is
// unique across the whole collection; IDs are assigned at insertion and are
// strictly increasing, even across restarts.
type Article struct {
	ID            int64           `json:"id"`
	Source        string          `json:"source_name"`
	URL           string          `json:"source_url"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Body          string          `json:"content_text"`
	TitleKZ       string          `json:"title_kz,omitempty"`
	DescriptionKZ string          `json:"description_kz,omitempty"`
	BodyKZ        string          `json:"content_text_kz,omitempty"`
	TitleRU       string          `json:"title_ru,omitempty"`
	DescriptionRU string          `json:"description_ru,omitempty"`
	BodyRU        string          `json:"content_text_ru,omitempty"`
	ImageURL      string          `json:"photo_url,omitempty"`
	Category      string          `json:"category"`
	Keywords      []string        `json:"matched_keywords"`
	KeywordCount  int             `json:"keyword_count"`
	Language      string          `json:"language"`
	PublishedAt   time.Time       `json:"date"`
	FetchedAt     time.Time       `json:"fetched_at"`
	Review        ReviewState     `json:"status"`
	Submission    SubmissionState `json:"submission,omitempty"`
}

// IngestOutcome enumerates the possible results of Store.Ingest.
type IngestOutcome int

const (
	OutcomeInserted IngestOutcome = iota
	OutcomeDuplicate
	OutcomeUnclassified
)

// IngestResult carries the outcome of a single ingest call; ID is set only
// when Outcome is OutcomeInserted.
type IngestResult struct {
	Outcome IngestOutcome
	ID      int64
}

// Summary aggregates counters for one pipeline run.
type Summary struct {
	Fetched    int
	Extracted  int
	Classified int
	Inserted   int
	Duplicates int
	Errors     int
}

// Stats reports the state of the persisted collection.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
	Seen     int
}
