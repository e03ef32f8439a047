package service

import (
	"context"

	"app/internal/model"
	"app/internal/repository"
	"app/internal/search"

	"github.com/rs/zerolog"
)

// SearchService keeps the keyword index in sync with course content.
type SearchService interface {
	// UpdateIndex recomputes the keyword set for the course and writes the
	// index entry.
	UpdateIndex(ctx context.Context, course *model.Course) error
}

type searchService struct {
	searchRepo repository.SearchRepository
	logger     zerolog.Logger
}

// NewSearchService creates a new SearchService with a scoped logger.
func NewSearchService(searchRepo repository.SearchRepository, logger zerolog.Logger) SearchService {
	return &searchService{
		searchRepo: searchRepo,
		logger:     logger.With().Str("service", "SearchService").Logger(),
	}
}

func (s *searchService) UpdateIndex(ctx context.Context, course *model.Course) error {
	entry := &model.SearchIndexEntry{
		CourseID:    course.ID,
		Title:       course.Title,
		Description: course.Description,
		Tags:        course.Tags,
		Location:    course.Location,
		Category:    course.Category,
		Keywords:    search.BuildKeywords(course),
		CreatedAt:   course.CreatedAt,
	}
	if err := s.searchRepo.Upsert(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("course_id", course.ID).Msg("Failed to update search index")
		return err
	}
	s.logger.Debug().Str("course_id", course.ID).Int("keywords", len(entry.Keywords)).Msg("Search index updated")
	return nil
}
