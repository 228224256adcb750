package reservation

import (
	"context"

	"github.com/rs/zerolog"

	"somgil/internal/models"
	"somgil/internal/somgilapi"
)

// ListAPI fetches the caller's reservations.
type ListAPI interface {
	ListReservations(ctx context.Context, token string) ([]models.Reservation, error)
}

// Service is the reservation read path.
type Service struct {
	api      ListAPI
	sessions Sessions
	logger   zerolog.Logger
}

// NewService creates the reservation list service.
func NewService(api ListAPI, sessions Sessions, logger zerolog.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		logger:   logger.With().Str("component", "reservation").Logger(),
	}
}

// List returns the user's reservations. Without a token it fails with an
// auth-required error so the caller can start the login flow instead of
// rendering an error banner.
func (s *Service) List(ctx context.Context) ([]models.Reservation, error) {
	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn || sess.Token == "" {
		return nil, &somgilapi.Error{Kind: somgilapi.KindAuthRequired, Endpoint: "/api/reservation/list"}
	}
	return s.api.ListReservations(ctx, sess.Token)
}
