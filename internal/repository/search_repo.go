package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"app/internal/model"
)

// SearchRepository stores the derived keyword index, one row per course.
type SearchRepository interface {
	// Upsert replaces the whole entry. The index is always recomputed in
	// full, never patched.
	Upsert(ctx context.Context, e *model.SearchIndexEntry) error
}

type searchRepo struct {
	pool *pgxpool.Pool
}

// NewSearchRepo creates a new SearchRepository.
func NewSearchRepo(pool *pgxpool.Pool) SearchRepository {
	return &searchRepo{pool: pool}
}

func (r *searchRepo) Upsert(ctx context.Context, e *model.SearchIndexEntry) error {
	const query = `
		INSERT INTO search_index
			(course_id, title, description, tags, location, category, keywords, created_at, last_indexed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (course_id)
		DO UPDATE SET title = EXCLUDED.title,
		              description = EXCLUDED.description,
		              tags = EXCLUDED.tags,
		              location = EXCLUDED.location,
		              category = EXCLUDED.category,
		              keywords = EXCLUDED.keywords,
		              last_indexed = now()
	`
	_, err := r.pool.Exec(ctx, query,
		e.CourseID,
		e.Title,
		e.Description,
		e.Tags,
		e.Location,
		e.Category,
		e.Keywords,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting search index for course %s: %w", e.CourseID, err)
	}
	return nil
}
