// Package session owns the client's authentication state: an opaque backend
// token, a login flag and the cached profile fields.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"somgil/internal/events"
	"somgil/internal/metrics"
)

// Session is the client's record of whether a user is authenticated.
// LoggedIn implies Token is present and was accepted by the backend at
// least once; the client never fabricates a token.
type Session struct {
	Token    string `json:"token,omitempty"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	LoggedIn bool   `json:"loggedIn"`
}

// Anonymous is the logged-out session.
func Anonymous() Session { return Session{} }

// Storage persists a session. All access is treated as suspending; no
// backend is assumed synchronous.
type Storage interface {
	Load(ctx context.Context) (*Session, error) // nil when nothing stored
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}

// TokenValidator checks a token against the backend or provider.
// valid=false with a nil error means the token was definitively rejected.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (valid bool, err error)
}

// Store is the single owner of the persisted session. Writers are the auth
// gateway (login) and explicit logout; everything else only reads.
type Store struct {
	storage Storage
	bus     *events.Bus
	logger  zerolog.Logger
}

// NewStore creates a session store over the given storage backend.
// bus may be nil when nothing subscribes to session changes.
func NewStore(storage Storage, bus *events.Bus, logger zerolog.Logger) *Store {
	return &Store{
		storage: storage,
		bus:     bus,
		logger:  logger.With().Str("component", "session").Logger(),
	}
}

// Get returns the stored session, or the anonymous session when nothing is
// stored.
func (s *Store) Get(ctx context.Context) (Session, error) {
	stored, err := s.storage.Load(ctx)
	if err != nil {
		return Anonymous(), fmt.Errorf("loading session: %w", err)
	}
	if stored == nil || stored.Token == "" {
		return Anonymous(), nil
	}
	return *stored, nil
}

// Set stores a backend-accepted token with its profile fields and marks the
// session logged in.
func (s *Store) Set(ctx context.Context, token, email, nickname string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	sess := Session{Token: token, Email: email, Nickname: nickname, LoggedIn: true}
	if err := s.storage.Save(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	s.logger.Info().Str("nickname", nickname).Msg("session stored")
	s.publish(sess)
	return nil
}

// Clear drops the stored session. Used on logout and on detecting an
// invalid token.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	metrics.IncSessionCleared()
	s.logger.Info().Msg("session cleared")
	s.publish(Anonymous())
	return nil
}

// Validate opportunistically re-checks the stored token. A definitive
// rejection clears the session immediately; a transport failure leaves the
// session untouched so the user's current view is not interrupted.
func (s *Store) Validate(ctx context.Context, validator TokenValidator) (Session, error) {
	sess, err := s.Get(ctx)
	if err != nil {
		return Anonymous(), err
	}
	if !sess.LoggedIn {
		return sess, nil
	}

	valid, err := validator.ValidateToken(ctx, sess.Token)
	if err != nil {
		// Could not reach the backend; keep the session for one more
		// round-trip.
		s.logger.Warn().Err(err).Msg("token validation unreachable")
		return sess, nil
	}
	if !valid {
		s.logger.Info().Msg("stored token rejected, downgrading to anonymous")
		if clearErr := s.Clear(ctx); clearErr != nil {
			return Anonymous(), clearErr
		}
		return Anonymous(), nil
	}
	return sess, nil
}

func (s *Store) publish(sess Session) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Type: events.SessionChanged, Payload: sess})
}
