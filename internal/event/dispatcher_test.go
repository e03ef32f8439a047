package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"app/internal/model"
	"app/internal/service"

	"github.com/rs/zerolog"
)

type statCall struct {
	userID string
	stat   string
	delta  int
}

type fakeCourseOps struct {
	likeDeltas map[string]int
	recalced   []string
	missing    map[string]bool
}

func (f *fakeCourseOps) AdjustLikeCount(_ context.Context, courseID string, delta int) error {
	if f.missing[courseID] {
		return service.ErrCourseNotFound
	}
	f.likeDeltas[courseID] += delta
	return nil
}

func (f *fakeCourseOps) RecalculateRating(_ context.Context, courseID string) error {
	if f.missing[courseID] {
		return service.ErrCourseNotFound
	}
	f.recalced = append(f.recalced, courseID)
	return nil
}

type fakeUserOps struct {
	initialized []string
	stats       []statCall
	missing     map[string]bool
}

func (f *fakeUserOps) InitializeProfile(_ context.Context, userID string) error {
	if f.missing[userID] {
		return service.ErrUserNotFound
	}
	f.initialized = append(f.initialized, userID)
	return nil
}

func (f *fakeUserOps) AdjustStat(_ context.Context, userID, stat string, delta int) error {
	if f.missing[userID] {
		return service.ErrUserNotFound
	}
	f.stats = append(f.stats, statCall{userID: userID, stat: stat, delta: delta})
	return nil
}

type fakeSearchOps struct {
	indexed []*model.Course
}

func (f *fakeSearchOps) UpdateIndex(_ context.Context, course *model.Course) error {
	f.indexed = append(f.indexed, course)
	return nil
}

func newFixture() (*fakeCourseOps, *fakeUserOps, *fakeSearchOps, *Dispatcher) {
	courses := &fakeCourseOps{likeDeltas: map[string]int{}, missing: map[string]bool{}}
	users := &fakeUserOps{missing: map[string]bool{}}
	search := &fakeSearchOps{}
	return courses, users, search, NewDispatcher(courses, users, search, zerolog.Nop())
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestHandleLikeEvents(t *testing.T) {
	courses, users, _, d := newFixture()
	ctx := context.Background()

	payload := mustJSON(t, LikePayload{CourseID: "c1", UserID: "u1"})
	if err := d.Handle(ctx, string(LikeCreated), payload); err != nil {
		t.Fatalf("like.created returned error: %v", err)
	}
	if err := d.Handle(ctx, string(LikeCreated), payload); err != nil {
		t.Fatalf("second like.created returned error: %v", err)
	}
	if err := d.Handle(ctx, string(LikeDeleted), payload); err != nil {
		t.Fatalf("like.deleted returned error: %v", err)
	}

	if got := courses.likeDeltas["c1"]; got != 1 {
		t.Fatalf("net like delta = %d, want 1", got)
	}
	want := []statCall{
		{"u1", model.StatCoursesLiked, 1},
		{"u1", model.StatCoursesLiked, 1},
		{"u1", model.StatCoursesLiked, -1},
	}
	if len(users.stats) != len(want) {
		t.Fatalf("stat calls = %v, want %v", users.stats, want)
	}
	for i, w := range want {
		if users.stats[i] != w {
			t.Fatalf("stat call %d = %v, want %v", i, users.stats[i], w)
		}
	}
}

func TestHandleLikeUnknownCourseIsDropped(t *testing.T) {
	courses, users, _, d := newFixture()
	courses.missing["ghost"] = true

	payload := mustJSON(t, LikePayload{CourseID: "ghost", UserID: "u1"})
	if err := d.Handle(context.Background(), string(LikeCreated), payload); err != nil {
		t.Fatalf("unknown course must be acked, got %v", err)
	}
	if len(users.stats) != 0 {
		t.Fatal("stat must not change when the course is unknown")
	}
}

func TestHandleLikeMissingCourseIDIsDropped(t *testing.T) {
	courses, _, _, d := newFixture()

	payload := mustJSON(t, LikePayload{UserID: "u1"})
	if err := d.Handle(context.Background(), string(LikeCreated), payload); err != nil {
		t.Fatalf("payload without course ID must be acked, got %v", err)
	}
	if len(courses.likeDeltas) != 0 {
		t.Fatal("no counter should change")
	}
}

func TestHandleReviewCreated(t *testing.T) {
	courses, users, _, d := newFixture()

	payload := mustJSON(t, ReviewPayload{CourseID: "c1", UserID: "u1", Rating: 5})
	if err := d.Handle(context.Background(), string(ReviewCreated), payload); err != nil {
		t.Fatalf("review.created returned error: %v", err)
	}
	if len(courses.recalced) != 1 || courses.recalced[0] != "c1" {
		t.Fatalf("rating recalculation calls = %v", courses.recalced)
	}
	if len(users.stats) != 1 || users.stats[0] != (statCall{"u1", model.StatReviewsWritten, 1}) {
		t.Fatalf("stat calls = %v", users.stats)
	}
}

func TestHandleUserCreated(t *testing.T) {
	_, users, _, d := newFixture()

	payload := mustJSON(t, UserPayload{UserID: "u1", Email: "a@b.c"})
	if err := d.Handle(context.Background(), string(UserCreated), payload); err != nil {
		t.Fatalf("user.created returned error: %v", err)
	}
	if len(users.initialized) != 1 || users.initialized[0] != "u1" {
		t.Fatalf("initialized = %v", users.initialized)
	}
}

func TestHandleUserCreatedMissingRowIsRetried(t *testing.T) {
	_, users, _, d := newFixture()
	users.missing["u1"] = true

	payload := mustJSON(t, UserPayload{UserID: "u1"})
	if err := d.Handle(context.Background(), string(UserCreated), payload); err == nil {
		t.Fatal("expected an error so the message is redelivered")
	}
}

func TestHandleCourseCreated(t *testing.T) {
	_, users, search, d := newFixture()

	payload := mustJSON(t, CoursePayload{
		CourseID: "c1",
		UserID:   "u1",
		Title:    "Night walk in Busan",
		Tags:     []string{"walk"},
		Hashtags: []string{"#busan"},
	})
	if err := d.Handle(context.Background(), string(CourseCreated), payload); err != nil {
		t.Fatalf("course.created returned error: %v", err)
	}
	if len(search.indexed) != 1 || search.indexed[0].ID != "c1" {
		t.Fatalf("indexed = %v", search.indexed)
	}
	if len(users.stats) != 1 || users.stats[0] != (statCall{"u1", model.StatCoursesCreated, 1}) {
		t.Fatalf("stat calls = %v", users.stats)
	}
}

func TestHandleUnknownKind(t *testing.T) {
	_, _, _, d := newFixture()
	err := d.Handle(context.Background(), "course.renamed", []byte(`{}`))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestHandleMalformedPayloadIsDropped(t *testing.T) {
	courses, users, search, d := newFixture()
	for _, kind := range []Kind{LikeCreated, LikeDeleted, ReviewCreated, UserCreated, CourseCreated} {
		if err := d.Handle(context.Background(), string(kind), []byte(`{not json`)); err != nil {
			t.Fatalf("%s: malformed payload must be acked, got %v", kind, err)
		}
	}
	if len(courses.likeDeltas) != 0 || len(courses.recalced) != 0 || len(users.stats) != 0 || len(search.indexed) != 0 {
		t.Fatal("malformed payloads must not touch any service")
	}
}
