// Package review submits and reads package reviews.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"somgil/internal/models"
	"somgil/internal/session"
	"somgil/internal/somgilapi"
)

// MinContentLength is the minimum review length enforced before any
// network call.
const MinContentLength = 10

// DefaultTitle is the review title the client sends; the form has no title
// field of its own.
const DefaultTitle = "여행 패키지 리뷰"

// API is the slice of the backend client the review service needs.
type API interface {
	SubmitReview(ctx context.Context, token string, review models.Review) error
	ListReviews(ctx context.Context, token string) ([]models.Review, error)
}

// Sessions reads the stored session.
type Sessions interface {
	Get(ctx context.Context) (session.Session, error)
}

// Service is the review reader-writer.
type Service struct {
	api      API
	sessions Sessions
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates the review service.
func NewService(api API, sessions Sessions, logger zerolog.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		logger:   logger.With().Str("component", "review").Logger(),
		now:      time.Now,
	}
}

// Draft is the user's review input before submission.
type Draft struct {
	ReservationID int64
	Content       string
	Rating        int
	Image         string
	Location      string
	Destination   string
}

// Validate rejects a draft locally before any round-trip is spent on it.
func (d Draft) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(d.Content)) < MinContentLength {
		return somgilapi.ValidationError("/api/reviews",
			fmt.Errorf("review content must be at least %d characters", MinContentLength))
	}
	if d.Rating < 1 || d.Rating > 5 {
		return somgilapi.ValidationError("/api/reviews",
			fmt.Errorf("rating must be between 1 and 5"))
	}
	return nil
}

// Submit validates the draft and posts it. Without a token the submission
// fails with an auth-required error before any network call.
func (s *Service) Submit(ctx context.Context, draft Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return err
	}
	if !sess.LoggedIn || sess.Token == "" {
		return &somgilapi.Error{Kind: somgilapi.KindAuthRequired, Endpoint: "/api/reviews"}
	}

	review := models.Review{
		ReservationID: draft.ReservationID,
		Title:         DefaultTitle,
		Content:       draft.Content,
		Rating:        draft.Rating,
		Date:          models.FormatDate(s.now()),
		Image:         draft.Image,
		Location:      draft.Location,
		Destination:   draft.Destination,
	}
	if err := s.api.SubmitReview(ctx, sess.Token, review); err != nil {
		return err
	}
	s.logger.Info().Int64("reservation_id", draft.ReservationID).Int("rating", draft.Rating).Msg("review submitted")
	return nil
}

// ListOwn returns the user's reviews.
func (s *Service) ListOwn(ctx context.Context) ([]models.Review, error) {
	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn || sess.Token == "" {
		return nil, &somgilapi.Error{Kind: somgilapi.KindAuthRequired, Endpoint: "/api/reviews"}
	}
	return s.api.ListReviews(ctx, sess.Token)
}
