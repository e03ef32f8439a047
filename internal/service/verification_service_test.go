package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.UserID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) InitializeProfile(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsStudent = false
	u.EmailVerified = false
	u.StudentVerificationStatus = model.VerificationStatusNone
	u.Stats = model.UserStats{}
	return nil
}

func (f *fakeUserRepo) AdjustStat(_ context.Context, id, stat string, delta int) (int, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	var field *int
	switch stat {
	case model.StatProfileViews:
		field = &u.Stats.ProfileViews
	case model.StatCoursesCreated:
		field = &u.Stats.CoursesCreated
	case model.StatCoursesLiked:
		field = &u.Stats.CoursesLiked
	case model.StatReviewsWritten:
		field = &u.Stats.ReviewsWritten
	default:
		return 0, errors.New("unknown stat")
	}
	*field = model.ClampCounter(*field, delta)
	return *field, nil
}

func (f *fakeUserRepo) SetVerificationPending(_ context.Context, id, email string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.UniversityEmail = &email
	u.StudentVerificationStatus = model.VerificationStatusPending
	return nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsStudent = true
	u.EmailVerified = true
	u.StudentVerificationStatus = model.VerificationStatusVerified
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeUserRepo) CountCreatedBetween(_ context.Context, _, _ time.Time) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserRepo) CountInactiveSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

type fakeVerificationRepo struct {
	rows map[string]*model.EmailVerification
}

func (f *fakeVerificationRepo) Upsert(_ context.Context, v *model.EmailVerification) error {
	cp := *v
	f.rows[v.UserID] = &cp
	return nil
}

func (f *fakeVerificationRepo) GetByUserID(_ context.Context, id string) (*model.EmailVerification, error) {
	v, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVerificationRepo) MarkVerified(_ context.Context, id string) error {
	v, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.IsVerified = true
	return nil
}

type recordingMailer struct {
	to   []string
	link string
	err  error
}

func (m *recordingMailer) SendVerificationLink(_ context.Context, toEmail, link string) error {
	m.to = append(m.to, toEmail)
	m.link = link
	return m.err
}

func newVerificationFixture() (*fakeUserRepo, *fakeVerificationRepo, *recordingMailer, VerificationService) {
	users := &fakeUserRepo{users: map[string]*model.User{
		"u1": {UserID: "u1", Email: "someone@gmail.com", StudentVerificationStatus: model.VerificationStatusNone},
	}}
	verifications := &fakeVerificationRepo{rows: map[string]*model.EmailVerification{}}
	mailer := &recordingMailer{}
	svc := NewVerificationService(users, verifications, mailer, nil, "https://everycourse.app", zerolog.Nop())
	return users, verifications, mailer, svc
}

func TestRequestVerification(t *testing.T) {
	users, verifications, mailer, svc := newVerificationFixture()

	link, err := svc.RequestVerification(context.Background(), "u1", "student@korea.ac.kr")
	if err != nil {
		t.Fatalf("RequestVerification returned error: %v", err)
	}
	if !strings.HasPrefix(link, "https://everycourse.app/verify-student?token=") {
		t.Fatalf("unexpected link: %s", link)
	}
	if len(mailer.to) != 1 || mailer.to[0] != "student@korea.ac.kr" {
		t.Fatalf("expected one mail to the university address, got %v", mailer.to)
	}

	u := users.users["u1"]
	if u.StudentVerificationStatus != model.VerificationStatusPending {
		t.Fatalf("expected pending status, got %s", u.StudentVerificationStatus)
	}
	if u.UniversityEmail == nil || *u.UniversityEmail != "student@korea.ac.kr" {
		t.Fatal("university email not recorded")
	}

	v := verifications.rows["u1"]
	if v == nil {
		t.Fatal("verification row not stored")
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(v.Token) {
		t.Fatalf("token is not 32 hex chars: %q", v.Token)
	}
	if !v.ExpiresAt.After(time.Now().Add(23 * time.Hour)) {
		t.Fatalf("token expires too early: %v", v.ExpiresAt)
	}
}

func TestRequestVerificationReplacesToken(t *testing.T) {
	_, verifications, _, svc := newVerificationFixture()

	if _, err := svc.RequestVerification(context.Background(), "u1", "a@snu.ac.kr"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	first := verifications.rows["u1"].Token
	if _, err := svc.RequestVerification(context.Background(), "u1", "a@snu.ac.kr"); err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if verifications.rows["u1"].Token == first {
		t.Fatal("repeated request must issue a fresh token")
	}
}

func TestRequestVerificationRejectsNonUniversityDomain(t *testing.T) {
	tests := []struct {
		email string
		want  error
	}{
		{"someone@gmail.com", ErrInvalidDomain},
		{"someone@evilac.kr", ErrInvalidDomain}, // suffix must match at a label boundary
		{"not-an-email", ErrInvalidDomain},
		{"student@cs.kaist.ac.kr", nil},
		{"student@skku.edu", nil},
		{"student@mit.edu", nil},
	}
	for _, tt := range tests {
		_, _, _, svc := newVerificationFixture()
		_, err := svc.RequestVerification(context.Background(), "u1", tt.email)
		if !errors.Is(err, tt.want) {
			t.Errorf("RequestVerification(%q) = %v, want %v", tt.email, err, tt.want)
		}
	}
}

func TestRequestVerificationUnknownUser(t *testing.T) {
	_, _, _, svc := newVerificationFixture()
	if _, err := svc.RequestVerification(context.Background(), "ghost", "a@korea.ac.kr"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRequestVerificationMailFailureIsNonFatal(t *testing.T) {
	_, _, mailer, svc := newVerificationFixture()
	mailer.err = errors.New("smtp down")

	if _, err := svc.RequestVerification(context.Background(), "u1", "a@korea.ac.kr"); err != nil {
		t.Fatalf("mail failure must not fail the request, got %v", err)
	}
}

func TestVerifyEmail(t *testing.T) {
	users, verifications, _, svc := newVerificationFixture()
	if _, err := svc.RequestVerification(context.Background(), "u1", "a@korea.ac.kr"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	token := verifications.rows["u1"].Token

	if err := svc.VerifyEmail(context.Background(), "u1", token); err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}

	u := users.users["u1"]
	if !u.IsStudent || !u.EmailVerified || u.StudentVerificationStatus != model.VerificationStatusVerified {
		t.Fatalf("user not promoted to verified student: %+v", u)
	}
	if !verifications.rows["u1"].IsVerified {
		t.Fatal("token not marked consumed")
	}

	// Clicking the link a second time is a no-op success.
	if err := svc.VerifyEmail(context.Background(), "u1", token); err != nil {
		t.Fatalf("repeated verify must succeed, got %v", err)
	}
}

func TestVerifyEmailWrongToken(t *testing.T) {
	_, verifications, _, svc := newVerificationFixture()
	if _, err := svc.RequestVerification(context.Background(), "u1", "a@korea.ac.kr"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	wrong := verifications.rows["u1"].Token[:31] + "x"
	if err := svc.VerifyEmail(context.Background(), "u1", wrong); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	users, verifications, _, svc := newVerificationFixture()
	if _, err := svc.RequestVerification(context.Background(), "u1", "a@korea.ac.kr"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	row := verifications.rows["u1"]
	row.ExpiresAt = time.Now().Add(-time.Hour)

	if err := svc.VerifyEmail(context.Background(), "u1", row.Token); !errors.Is(err, ErrVerificationExpired) {
		t.Fatalf("expected ErrVerificationExpired, got %v", err)
	}
	if users.users["u1"].IsStudent {
		t.Fatal("expired token must not promote the user")
	}
}

func TestVerifyEmailWithoutRequest(t *testing.T) {
	_, _, _, svc := newVerificationFixture()
	if err := svc.VerifyEmail(context.Background(), "u1", "deadbeef"); !errors.Is(err, ErrVerificationNotFound) {
		t.Fatalf("expected ErrVerificationNotFound, got %v", err)
	}
}

func TestIsVerifiedStudent(t *testing.T) {
	_, verifications, _, svc := newVerificationFixture()

	ok, err := svc.IsVerifiedStudent(context.Background(), "u1")
	if err != nil || ok {
		t.Fatalf("fresh user must not be a verified student, got ok=%v err=%v", ok, err)
	}

	// An unknown user is simply not verified, not an error.
	ok, err = svc.IsVerifiedStudent(context.Background(), "ghost")
	if err != nil || ok {
		t.Fatalf("unknown user must report false without error, got ok=%v err=%v", ok, err)
	}

	if _, err := svc.RequestVerification(context.Background(), "u1", "a@korea.ac.kr"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := svc.VerifyEmail(context.Background(), "u1", verifications.rows["u1"].Token); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	ok, err = svc.IsVerifiedStudent(context.Background(), "u1")
	if err != nil || !ok {
		t.Fatalf("verified user must report true, got ok=%v err=%v", ok, err)
	}
}
