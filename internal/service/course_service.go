package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"app/internal/model"
	"app/internal/repository"

	"github.com/go-redis/redis"
	"github.com/rs/zerolog"
)

var ErrCourseNotFound = errors.New("course not found")

const (
	// popularityLimit caps how many courses carry a rank at any time.
	popularityLimit = 100
	popularityKey   = "courses:popular"
)

// CourseService maintains the denormalized counters and rankings on courses.
type CourseService interface {
	AdjustLikeCount(ctx context.Context, courseID string, delta int) error
	RecalculateRating(ctx context.Context, courseID string) error
	// UpdatePopularityRanking recomputes the top courses, persists their
	// ranks and refreshes the Redis leaderboard. Returns how many courses
	// were ranked.
	UpdatePopularityRanking(ctx context.Context) (int, error)
	PopularCourses(ctx context.Context, limit int) ([]model.Course, error)
	Recommendations(ctx context.Context, userID string, limit int) ([]model.Course, error)
}

type courseService struct {
	courseRepo repository.CourseRepository
	reviewRepo repository.ReviewRepository
	likeRepo   repository.LikeRepository
	redis      *redis.Client
	logger     zerolog.Logger
}

// NewCourseService creates a new CourseService with a scoped logger. The
// Redis client is optional; when nil the leaderboard cache is skipped and
// reads fall through to Postgres.
func NewCourseService(
	courseRepo repository.CourseRepository,
	reviewRepo repository.ReviewRepository,
	likeRepo repository.LikeRepository,
	redisClient *redis.Client,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		courseRepo: courseRepo,
		reviewRepo: reviewRepo,
		likeRepo:   likeRepo,
		redis:      redisClient,
		logger:     logger.With().Str("service", "CourseService").Logger(),
	}
}

func (s *courseService) AdjustLikeCount(ctx context.Context, courseID string, delta int) error {
	next, err := s.courseRepo.AdjustLikeCount(ctx, courseID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error().Err(err).Str("course_id", courseID).Int("delta", delta).Msg("Failed to adjust like count")
		return err
	}
	s.logger.Debug().Str("course_id", courseID).Int("like_count", next).Msg("Like count updated")
	return nil
}

func (s *courseService) RecalculateRating(ctx context.Context, courseID string) error {
	ratings, err := s.reviewRepo.ListRatingsByCourseID(ctx, courseID)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to list ratings")
		return err
	}

	average := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		average = math.Round(float64(sum)/float64(len(ratings))*100) / 100
	}

	if err := s.courseRepo.SetRatingStats(ctx, courseID, average, len(ratings)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to write rating stats")
		return err
	}
	return nil
}

func (s *courseService) UpdatePopularityRanking(ctx context.Context) (int, error) {
	courses, err := s.courseRepo.ListTopByPopularity(ctx, popularityLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list courses for ranking")
		return 0, err
	}

	courseIDs := make([]string, len(courses))
	for i, c := range courses {
		courseIDs[i] = c.ID
	}
	if err := s.courseRepo.SetPopularityRanks(ctx, courseIDs); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write popularity ranks")
		return 0, err
	}

	if s.redis != nil {
		members := make([]redis.Z, len(courses))
		for i, c := range courses {
			members[i] = redis.Z{
				Score:  popularityScore(c),
				Member: c.ID,
			}
		}
		if err := s.redis.Del(popularityKey).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear popularity leaderboard")
		}
		if len(members) > 0 {
			if err := s.redis.ZAdd(popularityKey, members...).Err(); err != nil {
				// Leaderboard is a cache; the ranks in Postgres are already
				// committed, so a Redis failure is not fatal.
				s.logger.Warn().Err(err).Msg("Failed to refresh popularity leaderboard")
			}
		}
	}

	return len(courses), nil
}

// popularityScore orders the leaderboard by like count first, then rating.
func popularityScore(c model.Course) float64 {
	return float64(c.LikeCount)*100 + c.AverageRating*10
}

func (s *courseService) PopularCourses(ctx context.Context, limit int) ([]model.Course, error) {
	if s.redis != nil {
		ids, err := s.redis.ZRevRange(popularityKey, 0, int64(limit-1)).Result()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to read popularity leaderboard, falling back to database")
		} else if len(ids) > 0 {
			courses, err := s.courseRepo.ListByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return orderByIDs(courses, ids), nil
		}
	}
	return s.courseRepo.ListTopByPopularity(ctx, limit)
}

func (s *courseService) Recommendations(ctx context.Context, userID string, limit int) ([]model.Course, error) {
	likedIDs, err := s.likeRepo.ListCourseIDsByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list liked courses")
		return nil, err
	}
	if len(likedIDs) == 0 {
		// No signal yet, show what everyone else likes.
		return s.courseRepo.ListTopByPopularity(ctx, limit)
	}

	sample := likedIDs
	if len(sample) > 10 {
		sample = sample[:10]
	}
	liked, err := s.courseRepo.ListByIDs(ctx, sample)
	if err != nil {
		return nil, err
	}

	topTags := preferredTags(liked, 3)
	if len(topTags) == 0 {
		return s.courseRepo.ListTopByPopularity(ctx, limit)
	}

	candidates, err := s.courseRepo.ListByTagsOverlap(ctx, topTags, limit*2)
	if err != nil {
		return nil, err
	}

	likedSet := make(map[string]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedSet[id] = true
	}
	recommended := []model.Course{}
	for _, c := range candidates {
		if likedSet[c.ID] {
			continue
		}
		recommended = append(recommended, c)
		if len(recommended) == limit {
			break
		}
	}
	return recommended, nil
}

// preferredTags returns the most frequent tags across the given courses,
// ties broken alphabetically.
func preferredTags(courses []model.Course, n int) []string {
	counts := map[string]int{}
	for _, c := range courses {
		for _, tag := range c.Tags {
			counts[tag]++
		}
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

func orderByIDs(courses []model.Course, ids []string) []model.Course {
	byID := make(map[string]model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	ordered := make([]model.Course, 0, len(courses))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered
}
