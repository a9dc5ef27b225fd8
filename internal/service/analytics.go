package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/inkwell/internal/repository"
)

// analyticsWindowDays is how far back the dashboard series reach.
const analyticsWindowDays = 30

// AnalyticsService builds the publisher dashboard: engagement and
// publishing activity over the trailing 30 days plus all-time totals.
type AnalyticsService struct {
	posts  repository.PostRepository
	likes  repository.LikeRepository
	logger *slog.Logger
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(posts repository.PostRepository, likes repository.LikeRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{posts: posts, likes: likes, logger: logger}
}

// EngagementReport is the dashboard's engagement panel.
type EngagementReport struct {
	DailyLikes []repository.DateCount `json:"dailyLikes"`
	TotalLikes int                    `json:"totalLikes"`
	TotalPosts int                    `json:"totalPosts"`
}

// PublishingReport is the dashboard's output panel.
type PublishingReport struct {
	DailyPosts []repository.DateCount `json:"dailyPosts"`
}

// Engagement reports likes received on the author's posts: a zero-filled
// per-day series over the window plus all-time totals.
func (s *AnalyticsService) Engagement(ctx context.Context, authorID string) (*EngagementReport, error) {
	since := windowStart(time.Now())

	likeTimes, err := s.likes.TimesForAuthor(ctx, authorID, since)
	if err != nil {
		return nil, fmt.Errorf("service/analytics: loading like times for author %s: %w", authorID, err)
	}
	totalLikes, err := s.likes.CountForAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("service/analytics: counting likes for author %s: %w", authorID, err)
	}
	totalPosts, err := s.posts.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("service/analytics: counting posts for author %s: %w", authorID, err)
	}

	return &EngagementReport{
		DailyLikes: groupByDay(likeTimes, since),
		TotalLikes: totalLikes,
		TotalPosts: totalPosts,
	}, nil
}

// Publishing reports how many posts the author created per day over the
// window, zero-filled.
func (s *AnalyticsService) Publishing(ctx context.Context, authorID string) (*PublishingReport, error) {
	since := windowStart(time.Now())

	postTimes, err := s.posts.CreatedTimesByAuthor(ctx, authorID, since)
	if err != nil {
		return nil, fmt.Errorf("service/analytics: loading post times for author %s: %w", authorID, err)
	}

	return &PublishingReport{DailyPosts: groupByDay(postTimes, since)}, nil
}

// windowStart is midnight UTC, analyticsWindowDays-1 days ago — the series
// always spans exactly analyticsWindowDays buckets ending today.
func windowStart(now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -(analyticsWindowDays - 1))
}

// groupByDay buckets timestamps into UTC calendar days and zero-fills the
// window so charts render a continuous axis. Day math happens here in Go,
// against time.Time values, rather than as SQL date arithmetic on
// driver-formatted text.
func groupByDay(times []time.Time, since time.Time) []repository.DateCount {
	counts := make(map[string]int, len(times))
	for _, t := range times {
		counts[t.UTC().Format(time.DateOnly)]++
	}

	series := make([]repository.DateCount, 0, analyticsWindowDays)
	for i := 0; i < analyticsWindowDays; i++ {
		date := since.AddDate(0, 0, i).Format(time.DateOnly)
		series = append(series, repository.DateCount{Date: date, Count: counts[date]})
	}
	return series
}
