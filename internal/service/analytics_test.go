package service

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/inkwell/internal/model"
)

type analyticsFixture struct {
	svc   *AnalyticsService
	posts *fakePostRepo
	likes *fakeLikeRepo
}

func newAnalyticsFixture() *analyticsFixture {
	posts := newFakePostRepo()
	likes := newFakeLikeRepo(posts)
	return &analyticsFixture{
		svc:   NewAnalyticsService(posts, likes, testLogger()),
		posts: posts,
		likes: likes,
	}
}

// seedPostAt creates a post and backdates it.
func (f *analyticsFixture) seedPostAt(t *testing.T, authorID string, createdAt time.Time) *model.Post {
	t.Helper()
	p := &model.Post{AuthorID: authorID, Title: "t", Content: "c", Published: true}
	if err := f.posts.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("seeding post: %v", err)
	}
	f.posts.posts[p.ID].CreatedAt = createdAt
	return p
}

// seedLikeAt records a like on a post and backdates it.
func (f *analyticsFixture) seedLikeAt(t *testing.T, userID, postID string, createdAt time.Time) {
	t.Helper()
	if _, err := f.likes.Insert(context.Background(), userID, postID); err != nil {
		t.Fatalf("seeding like: %v", err)
	}
	f.likes.rows[len(f.likes.rows)-1].createdAt = createdAt
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)
	got := windowStart(now)
	want := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("windowStart(%v) = %v, want %v", now, got, want)
	}
}

func TestGroupByDay_ZeroFillsTheWholeWindow(t *testing.T) {
	since := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	series := groupByDay(nil, since)

	if len(series) != analyticsWindowDays {
		t.Fatalf("len = %d, want %d buckets even with no data", len(series), analyticsWindowDays)
	}
	if series[0].Date != "2026-02-14" {
		t.Errorf("first bucket = %q, want the window start", series[0].Date)
	}
	if series[len(series)-1].Date != "2026-03-15" {
		t.Errorf("last bucket = %q, want the window end", series[len(series)-1].Date)
	}
	for _, b := range series {
		if b.Count != 0 {
			t.Errorf("bucket %s = %d, want 0", b.Date, b.Count)
		}
	}
}

func TestGroupByDay_BucketsByUTCDay(t *testing.T) {
	since := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	// 23:30 UTC-5 on Feb 14 is 04:30 UTC on Feb 15 — it must land in the
	// Feb 15 bucket regardless of the stored zone.
	est := time.FixedZone("EST", -5*3600)
	times := []time.Time{
		time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 14, 23, 30, 0, 0, est),
		time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC),
	}

	series := groupByDay(times, since)

	byDate := make(map[string]int, len(series))
	for _, b := range series {
		byDate[b.Date] = b.Count
	}
	if byDate["2026-02-14"] != 1 {
		t.Errorf("Feb 14 = %d, want 1", byDate["2026-02-14"])
	}
	if byDate["2026-02-15"] != 2 {
		t.Errorf("Feb 15 = %d, want 2 (UTC conversion moves the EST like here)", byDate["2026-02-15"])
	}
}

func TestEngagement_WindowedSeriesAllTimeTotals(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	recent := f.seedPostAt(t, "author-1", now.AddDate(0, 0, -2))
	old := f.seedPostAt(t, "author-1", now.AddDate(0, 0, -100))

	f.seedLikeAt(t, "reader-1", recent.ID, now.Add(-time.Hour))
	f.seedLikeAt(t, "reader-2", recent.ID, now.Add(-time.Hour))
	// An old like: outside the window, still in the all-time total.
	f.seedLikeAt(t, "reader-1", old.ID, now.AddDate(0, 0, -90))

	report, err := f.svc.Engagement(ctx, "author-1")
	if err != nil {
		t.Fatalf("Engagement() error = %v", err)
	}

	if report.TotalLikes != 3 {
		t.Errorf("TotalLikes = %d, want 3 (all time)", report.TotalLikes)
	}
	if report.TotalPosts != 2 {
		t.Errorf("TotalPosts = %d, want 2", report.TotalPosts)
	}
	if len(report.DailyLikes) != analyticsWindowDays {
		t.Fatalf("series length = %d, want %d", len(report.DailyLikes), analyticsWindowDays)
	}

	windowed := 0
	for _, b := range report.DailyLikes {
		windowed += b.Count
	}
	if windowed != 2 {
		t.Errorf("likes inside the window = %d, want 2 (the 90-day-old like excluded)", windowed)
	}
}

func TestEngagement_OnlyOwnPostsCount(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	mine := f.seedPostAt(t, "author-1", now.Add(-time.Hour))
	theirs := f.seedPostAt(t, "author-2", now.Add(-time.Hour))

	f.seedLikeAt(t, "reader-1", mine.ID, now.Add(-time.Minute))
	f.seedLikeAt(t, "reader-1", theirs.ID, now.Add(-time.Minute))

	report, err := f.svc.Engagement(ctx, "author-1")
	if err != nil {
		t.Fatalf("Engagement() error = %v", err)
	}
	if report.TotalLikes != 1 {
		t.Errorf("TotalLikes = %d, want 1 — likes on other authors' posts leaked in", report.TotalLikes)
	}
	if report.TotalPosts != 1 {
		t.Errorf("TotalPosts = %d, want 1", report.TotalPosts)
	}
}

func TestPublishing_CountsPostsPerDay(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	// Anchored to today's midnight so the buckets don't shift if the test
	// runs near a UTC day boundary.
	today := now.Truncate(24 * time.Hour)
	f.seedPostAt(t, "author-1", today.Add(time.Hour))
	f.seedPostAt(t, "author-1", today.Add(2*time.Hour))
	f.seedPostAt(t, "author-1", today.AddDate(0, 0, -100))
	f.seedPostAt(t, "author-2", today.Add(time.Hour))

	report, err := f.svc.Publishing(ctx, "author-1")
	if err != nil {
		t.Fatalf("Publishing() error = %v", err)
	}

	if len(report.DailyPosts) != analyticsWindowDays {
		t.Fatalf("series length = %d, want %d", len(report.DailyPosts), analyticsWindowDays)
	}

	total := 0
	for _, b := range report.DailyPosts {
		total += b.Count
	}
	if total != 2 {
		t.Errorf("posts in window = %d, want 2 (old post and other author excluded)", total)
	}

	todayStr := now.Format(time.DateOnly)
	last := report.DailyPosts[len(report.DailyPosts)-1]
	if last.Date != todayStr {
		t.Errorf("last bucket = %q, want today %q", last.Date, todayStr)
	}
	if last.Count != 2 {
		t.Errorf("today's count = %d, want 2", last.Count)
	}
}
