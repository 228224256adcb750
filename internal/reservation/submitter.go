package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"somgil/internal/events"
	"somgil/internal/metrics"
	"somgil/internal/models"
	"somgil/internal/pricing"
	"somgil/internal/session"
	"somgil/internal/somgilapi"
)

// API is the slice of the backend client the submitter needs.
type API interface {
	RequestApproval(ctx context.Context, token string, req models.ReservationRequest) error
	CreateReservation(ctx context.Context, token string, req models.ReservationRequest) error
}

// Sessions reads the stored session.
type Sessions interface {
	Get(ctx context.Context) (session.Session, error)
}

// Order is what the order screen holds when the user presses submit.
type Order struct {
	Package  models.Package
	Party    models.PartyComposition
	Options  []models.Option
	Selected models.OptionSelection
	Date     time.Time
}

// BuildRequest assembles the wire request from the current order, computing
// the total through the pricing engine.
func (o Order) BuildRequest() models.ReservationRequest {
	party := o.Party.Normalize()
	return models.ReservationRequest{
		PackageID:       o.Package.ID,
		AdultCount:      party.AdultCount,
		ChildCount:      party.ChildCount,
		InfantCount:     party.InfantCount,
		ReservationDate: models.FormatDate(o.Date),
		TotalPrice:      pricing.Total(o.Package.Price, party, o.Options, o.Selected),
	}
}

// Result reports how a submission attempt ended. Trail records every state
// the attempt passed through, in order.
type Result struct {
	State   State
	Trail   []State
	Request models.ReservationRequest
	Err     error
}

// Submitter runs submission attempts. One attempt issues at most two
// sequential network calls; the approval call is always fully observed
// before creation starts, and approval failure guarantees no creation call.
type Submitter struct {
	api      API
	sessions Sessions
	fsm      *FSM
	bus      *events.Bus
	logger   zerolog.Logger
}

// NewSubmitter wires the submitter. bus may be nil.
func NewSubmitter(api API, sessions Sessions, bus *events.Bus, logger zerolog.Logger) *Submitter {
	return &Submitter{
		api:      api,
		sessions: sessions,
		fsm:      NewFSM(),
		bus:      bus,
		logger:   logger.With().Str("component", "reservation").Logger(),
	}
}

// Submit runs one submission attempt for the order.
//
// Without a valid token the attempt ends in StateAuthRequired before any
// network call; the caller surfaces the login choice, recording the current
// screen as the return-to target. Failures are retryable: neither a failed
// approval nor a failed creation leaves a reservation behind.
func (s *Submitter) Submit(ctx context.Context, order Order) Result {
	result := Result{State: StateIdle, Trail: []State{StateIdle}}

	advance := func(to State) {
		if !s.fsm.CanTransition(result.State, to) {
			// Transition table and driver disagree; treat as a bug.
			panic(fmt.Sprintf("reservation: illegal transition %s -> %s", result.State, to))
		}
		result.State = to
		result.Trail = append(result.Trail, to)
	}

	advance(StateValidatingAuth)

	if err := validateOrder(order); err != nil {
		metrics.IncReservationSubmission("invalid")
		result.Err = err
		advance(StateFailed)
		return result
	}

	sess, err := s.sessions.Get(ctx)
	if err != nil {
		metrics.IncReservationSubmission("failed")
		result.Err = fmt.Errorf("reading session: %w", err)
		advance(StateFailed)
		return result
	}
	if !sess.LoggedIn || sess.Token == "" {
		metrics.IncReservationSubmission("auth_required")
		s.logger.Info().Msg("submit without session, login required")
		advance(StateAuthRequired)
		return result
	}

	result.Request = order.BuildRequest()

	advance(StateRequestingApproval)
	if err := s.api.RequestApproval(ctx, sess.Token, result.Request); err != nil {
		metrics.IncReservationSubmission("approval_failed")
		s.logger.Warn().Err(err).Int64("package_id", result.Request.PackageID).Msg("price approval failed")
		result.Err = err
		advance(StateFailed)
		return result
	}

	advance(StateCreatingReservation)
	if err := s.api.CreateReservation(ctx, sess.Token, result.Request); err != nil {
		// Approval succeeding does not imply creation will; approval has
		// no server-side effect, so retrying is safe.
		metrics.IncReservationSubmission("creation_failed")
		s.logger.Warn().Err(err).Int64("package_id", result.Request.PackageID).Msg("reservation creation failed")
		result.Err = err
		advance(StateFailed)
		return result
	}

	metrics.IncReservationSubmission("succeeded")
	s.logger.Info().
		Int64("package_id", result.Request.PackageID).
		Int64("total_price", result.Request.TotalPrice).
		Str("date", result.Request.ReservationDate).
		Msg("reservation created")
	advance(StateSucceeded)

	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.ReservationCreated, Payload: result.Request})
	}
	return result
}

func validateOrder(order Order) error {
	if order.Package.ID <= 0 {
		return somgilapi.ValidationError("/api/reservation/approval", fmt.Errorf("missing package"))
	}
	if order.Date.IsZero() {
		return somgilapi.ValidationError("/api/reservation/approval", fmt.Errorf("missing reservation date"))
	}
	return nil
}
