package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/api/v1/dto"
	"app/internal/event"
	"app/internal/model"

	"github.com/rs/zerolog"
)

type recordingCourseOps struct {
	likeDeltas map[string]int
	recalced   []string
}

func (f *recordingCourseOps) AdjustLikeCount(_ context.Context, courseID string, delta int) error {
	f.likeDeltas[courseID] += delta
	return nil
}

func (f *recordingCourseOps) RecalculateRating(_ context.Context, courseID string) error {
	f.recalced = append(f.recalced, courseID)
	return nil
}

type recordingUserOps struct {
	initialized []string
}

func (f *recordingUserOps) InitializeProfile(_ context.Context, userID string) error {
	f.initialized = append(f.initialized, userID)
	return nil
}

func (f *recordingUserOps) AdjustStat(_ context.Context, _, _ string, _ int) error {
	return nil
}

type recordingSearchOps struct {
	indexed []string
}

func (f *recordingSearchOps) UpdateIndex(_ context.Context, course *model.Course) error {
	f.indexed = append(f.indexed, course.ID)
	return nil
}

func noAuth(next http.Handler) http.Handler { return next }

func newEventServer() (*recordingCourseOps, *http.ServeMux) {
	courses := &recordingCourseOps{likeDeltas: map[string]int{}}
	d := event.NewDispatcher(courses, &recordingUserOps{}, &recordingSearchOps{}, zerolog.Nop())
	mux := http.NewServeMux()
	NewEventHandler(d).RegisterRoutes(mux, noAuth)
	return courses, mux
}

func pushBody(t *testing.T, eventType string, payload any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	body, err := json.Marshal(dto.PubSubPushRequest{
		Message: dto.PubSubMessage{
			Data:       base64.StdEncoding.EncodeToString(data),
			MessageID:  "m-1",
			Attributes: map[string]string{"eventType": eventType},
		},
		Subscription: "projects/p/subscriptions/s",
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestReceivePush(t *testing.T) {
	courses, mux := newEventServer()

	req := httptest.NewRequest(http.MethodPost, "/events/push", pushBody(t, "like.created", event.LikePayload{CourseID: "c1", UserID: "u1"}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body %s)", rec.Code, rec.Body.String())
	}
	if courses.likeDeltas["c1"] != 1 {
		t.Fatalf("like delta = %d, want 1", courses.likeDeltas["c1"])
	}
}

func TestReceivePushUnknownKindIsAcked(t *testing.T) {
	_, mux := newEventServer()

	req := httptest.NewRequest(http.MethodPost, "/events/push", pushBody(t, "course.renamed", map[string]string{}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// Unknown kinds are acked so Pub/Sub stops redelivering them.
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestReceivePushRejectsBadEnvelope(t *testing.T) {
	_, mux := newEventServer()

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{broken`},
		{"missing message id", `{"message":{"data":"","attributes":{}},"subscription":"s"}`},
		{"bad base64", `{"message":{"data":"!!!","messageId":"m-1","attributes":{}},"subscription":"s"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/events/push", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestReceivePushMethodNotAllowed(t *testing.T) {
	_, mux := newEventServer()

	req := httptest.NewRequest(http.MethodGet, "/events/push", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
