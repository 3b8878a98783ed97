package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsRadar/internal/domain"
	"NewsRadar/internal/ports"
)

// PostgresRepository persists articles into Postgres. Schema:
//
//	CREATE TABLE articles (
//	    id              BIGINT PRIMARY KEY,
//	    source_name     TEXT NOT NULL,
//	    source_url      TEXT NOT NULL UNIQUE,
//	    title           TEXT NOT NULL,
//	    description     TEXT NOT NULL DEFAULT '',
//	    content_text    TEXT NOT NULL DEFAULT '',
//	    photo_url       TEXT NOT NULL DEFAULT '',
//	    category        TEXT NOT NULL,
//	    keywords        TEXT[] NOT NULL DEFAULT '{}',
//	    keyword_count   INT NOT NULL DEFAULT 0,
//	    language        TEXT NOT NULL DEFAULT '',
//	    published_at    TIMESTAMPTZ,
//	    fetched_at      TIMESTAMPTZ NOT NULL,
//	    review_state    TEXT NOT NULL DEFAULT 'pending',
//	    submission      TEXT NOT NULL DEFAULT ''
//	);
type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Load reads the full collection ordered by id.
func (r *PostgresRepository) Load(ctx context.Context) ([]domain.Article, int64, error) {
	query, args, err := r.sb.
		Select("id", "source_name", "source_url", "title", "description",
			"content_text", "photo_url", "category", "keywords",
			"keyword_count", "language", "published_at", "fetched_at",
			"review_state", "submission").
		From("articles").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build load query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var (
		articles []domain.Article
		nextID   int64 = 1
	)
	for rows.Next() {
		var (
			a         domain.Article
			published sql.NullTime
		)
		err := rows.Scan(&a.ID, &a.Source, &a.URL, &a.Title, &a.Description,
			&a.Body, &a.ImageURL, &a.Category, pq.Array(&a.Keywords),
			&a.KeywordCount, &a.Language, &published, &a.FetchedAt,
			&a.Review, &a.Submission)
		if err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		if published.Valid {
			a.PublishedAt = published.Time
		}
		if a.ID >= nextID {
			nextID = a.ID + 1
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nextID, nil
}

// Insert writes one article; the store has already assigned the id.
func (r *PostgresRepository) Insert(ctx context.Context, a domain.Article) error {
	var published any
	if !a.PublishedAt.IsZero() {
		published = a.PublishedAt
	}

	query, args, err := r.sb.
		Insert("articles").
		Columns("id", "source_name", "source_url", "title", "description",
			"content_text", "photo_url", "category", "keywords",
			"keyword_count", "language", "published_at", "fetched_at",
			"review_state", "submission").
		Values(a.ID, a.Source, a.URL, a.Title, a.Description,
			a.Body, a.ImageURL, a.Category, pq.Array(a.Keywords),
			a.KeywordCount, a.Language, published, a.FetchedAt,
			a.Review, a.Submission).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert article %d: %w", a.ID, err)
	}
	return nil
}

// UpdateReview sets the review state for an article.
func (r *PostgresRepository) UpdateReview(ctx context.Context, id int64, state domain.ReviewState) error {
	return r.updateColumn(ctx, id, "review_state", string(state))
}

// UpdateSubmission sets the submission state for an article.
func (r *PostgresRepository) UpdateSubmission(ctx context.Context, id int64, state domain.SubmissionState) error {
	return r.updateColumn(ctx, id, "submission", string(state))
}

func (r *PostgresRepository) updateColumn(ctx context.Context, id int64, column, value string) error {
	query, args, err := r.sb.
		Update("articles").
		Set(column, value).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("article %d not in database", id)
	}
	return nil
}
