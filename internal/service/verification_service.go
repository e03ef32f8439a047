package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidDomain        = errors.New("not a university email domain")
	ErrVerificationNotFound = errors.New("verification request not found")
	ErrInvalidToken         = errors.New("invalid verification token")
	ErrVerificationExpired  = errors.New("verification token expired")
)

const verificationTTL = 24 * time.Hour

// universityDomains lists accepted email domains. The generic suffixes cover
// most institutions; individual campuses are listed for domains that do not
// follow the generic pattern.
var universityDomains = []string{
	"ac.kr",
	"edu.kr",
	"edu",
	"snu.ac.kr",
	"yonsei.ac.kr",
	"korea.ac.kr",
	"kaist.ac.kr",
	"postech.ac.kr",
	"skku.edu",
	"hanyang.ac.kr",
}

// VerificationService runs the email based student verification flow.
type VerificationService interface {
	// RequestVerification issues a fresh token, emails the verification link
	// and returns it. A repeated request replaces the previous token.
	RequestVerification(ctx context.Context, userID, universityEmail string) (string, error)
	// VerifyEmail consumes a token and promotes the user to verified
	// student. Verifying an already consumed token is a no-op success.
	VerifyEmail(ctx context.Context, userID, token string) error
	// IsVerifiedStudent reports whether the user has completed verification.
	// An unknown user is simply not a verified student.
	IsVerifiedStudent(ctx context.Context, userID string) (bool, error)
}

type verificationService struct {
	userRepo         repository.UserRepository
	verificationRepo repository.VerificationRepository
	mailer           Mailer
	notifier         NotificationService
	baseURL          string
	logger           zerolog.Logger
}

// NewVerificationService creates a new VerificationService with a scoped
// logger. The notifier is optional; when nil, no in-app notification is sent
// on completion.
func NewVerificationService(
	userRepo repository.UserRepository,
	verificationRepo repository.VerificationRepository,
	mailer Mailer,
	notifier NotificationService,
	baseURL string,
	logger zerolog.Logger,
) VerificationService {
	return &verificationService{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		mailer:           mailer,
		notifier:         notifier,
		baseURL:          baseURL,
		logger:           logger.With().Str("service", "VerificationService").Logger(),
	}
}

func (s *verificationService) RequestVerification(ctx context.Context, userID, universityEmail string) (string, error) {
	if !isUniversityEmail(universityEmail) {
		return "", ErrInvalidDomain
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	token, err := newVerificationToken()
	if err != nil {
		return "", err
	}

	v := &model.EmailVerification{
		UserID:    userID,
		Email:     universityEmail,
		Token:     token,
		ExpiresAt: time.Now().Add(verificationTTL),
	}
	if err := s.verificationRepo.Upsert(ctx, v); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to store verification token")
		return "", err
	}
	if err := s.userRepo.SetVerificationPending(ctx, userID, universityEmail); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	link := fmt.Sprintf("%s/verify-student?token=%s&userId=%s", s.baseURL, token, userID)
	if err := s.mailer.SendVerificationLink(ctx, universityEmail, link); err != nil {
		// The token is stored, so the user can still be verified manually
		// or by requesting again.
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to send verification email")
	}

	s.logger.Info().Str("user_id", userID).Msg("Student verification requested")
	return link, nil
}

func (s *verificationService) VerifyEmail(ctx context.Context, userID, token string) error {
	v, err := s.verificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrVerificationNotFound
	}
	if v.Token != token {
		return ErrInvalidToken
	}
	if v.IsVerified {
		// Already consumed, e.g. the link was clicked twice.
		return nil
	}
	if time.Now().After(v.ExpiresAt) {
		return ErrVerificationExpired
	}

	if err := s.verificationRepo.MarkVerified(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to consume verification token")
		return err
	}
	if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to mark user verified")
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, userID,
			"Student verification complete",
			"Your university email has been verified. Student features are now unlocked.",
			"verification", nil); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to send verification notification")
		}
	}

	s.logger.Info().Str("user_id", userID).Msg("Student verification completed")
	return nil
}

func (s *verificationService) IsVerifiedStudent(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.IsStudent && user.EmailVerified, nil
}

func isUniversityEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range universityDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating verification token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
