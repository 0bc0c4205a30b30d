package repository

import (
	"context"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

type QARepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewQARepository(db *pgxpool.Pool, logger *zap.Logger) *QARepository {
	return &QARepository{
		db:     db,
		logger: logger,
	}
}

type searchOptions struct {
	category   string
	excludeIDs []int
}

type SearchOption func(*searchOptions)

// WithCategory restricts the candidate set to one category.
func WithCategory(category string) SearchOption {
	return func(o *searchOptions) { o.category = category }
}

// WithoutIDs removes specific entries from the candidate set.
func WithoutIDs(ids []int) SearchOption {
	return func(o *searchOptions) { o.excludeIDs = ids }
}

func (r *QARepository) Create(ctx context.Context, entry *models.QAEntry) error {
	query := squirrel.Insert("qa_entries").
		Columns("id", "category", "question", "answer", "embedding", "source", "created_at").
		Values(entry.ID, entry.Category, entry.Question, entry.Answer,
			pgvector.NewVector(entry.Embedding), entry.Source, entry.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SearchSimilar returns the topK entries nearest to the query embedding by
// cosine similarity, most similar first, ties broken by entry id ascending.
func (r *QARepository) SearchSimilar(ctx context.Context, embedding []float32, topK int, opts ...SearchOption) ([]models.RetrievedMatch, error) {
	var options searchOptions
	for _, opt := range opts {
		opt(&options)
	}

	query := squirrel.Select("id", "category", "question", "answer", "source", "created_at").
		Column(squirrel.Expr("1 - (embedding <=> ?) AS similarity", pgvector.NewVector(embedding))).
		From("qa_entries").
		OrderBy("similarity DESC", "id ASC").
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	if options.category != "" {
		query = query.Where(squirrel.Eq{"category": options.category})
	}
	if len(options.excludeIDs) > 0 {
		query = query.Where(squirrel.NotEq{"id": options.excludeIDs})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.RetrievedMatch
	for rows.Next() {
		var match models.RetrievedMatch
		if err := rows.Scan(
			&match.Entry.ID, &match.Entry.Category, &match.Entry.Question,
			&match.Entry.Answer, &match.Entry.Source, &match.Entry.CreatedAt,
			&match.Similarity,
		); err != nil {
			return nil, err
		}
		results = append(results, match)
	}

	return results, rows.Err()
}

// Count reports the number of ingested entries.
func (r *QARepository) Count(ctx context.Context) (int, error) {
	sql, args, err := squirrel.Select("COUNT(*)").From("qa_entries").ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll empties the corpus before a full re-ingestion.
func (r *QARepository) DeleteAll(ctx context.Context) error {
	sql, args, err := squirrel.Delete("qa_entries").ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
