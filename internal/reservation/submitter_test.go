package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somgil/internal/models"
	"somgil/internal/session"
	"somgil/internal/somgilapi"
)

type fakeBookingAPI struct {
	approvalCalls int
	creationCalls int
	approvalErr   error
	creationErr   error
	lastApproval  models.ReservationRequest
	lastCreation  models.ReservationRequest
}

func (f *fakeBookingAPI) RequestApproval(_ context.Context, _ string, req models.ReservationRequest) error {
	f.approvalCalls++
	f.lastApproval = req
	return f.approvalErr
}

func (f *fakeBookingAPI) CreateReservation(_ context.Context, _ string, req models.ReservationRequest) error {
	f.creationCalls++
	f.lastCreation = req
	return f.creationErr
}

func loggedInStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage(), nil, zerolog.Nop())
	require.NoError(t, store.Set(context.Background(), "tok-1", "", "나그네"))
	return store
}

func anonymousStore() *session.Store {
	return session.NewStore(session.NewMemoryStorage(), nil, zerolog.Nop())
}

func testOrder() Order {
	return Order{
		Package: models.Package{ID: 42, Name: "제주의 보석", Price: 1_000_000},
		Party:   models.PartyComposition{AdultCount: 2, ChildCount: 1, InfantCount: 3},
		Options: models.DefaultOptions(),
		Selected: models.OptionSelection{
			"1일차 점심 개별식사": true,
		},
		Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildRequest(t *testing.T) {
	req := testOrder().BuildRequest()

	assert.Equal(t, int64(42), req.PackageID)
	assert.Equal(t, 2, req.AdultCount)
	assert.Equal(t, 1, req.ChildCount)
	assert.Equal(t, 3, req.InfantCount)
	assert.Equal(t, "2026-09-01", req.ReservationDate)
	// 2 adults + floor(0.7 * base) for the child, infants free, options zero-priced.
	assert.Equal(t, int64(2_700_000), req.TotalPrice)
}

func TestSubmitSucceeds(t *testing.T) {
	api := &fakeBookingAPI{}
	submitter := NewSubmitter(api, loggedInStore(t), nil, zerolog.Nop())

	result := submitter.Submit(context.Background(), testOrder())

	assert.Equal(t, StateSucceeded, result.State)
	assert.NoError(t, result.Err)
	assert.Equal(t, 1, api.approvalCalls)
	assert.Equal(t, 1, api.creationCalls)
	assert.Equal(t, api.lastApproval, api.lastCreation, "both phases send identical bodies")
	assert.Equal(t, []State{
		StateIdle, StateValidatingAuth, StateRequestingApproval,
		StateCreatingReservation, StateSucceeded,
	}, result.Trail)
}

func TestSubmitWithoutTokenRequiresAuth(t *testing.T) {
	api := &fakeBookingAPI{}
	submitter := NewSubmitter(api, anonymousStore(), nil, zerolog.Nop())

	result := submitter.Submit(context.Background(), testOrder())

	assert.Equal(t, StateAuthRequired, result.State)
	assert.Zero(t, api.approvalCalls, "no network call may be issued without a token")
	assert.Zero(t, api.creationCalls)
}

func TestSubmitApprovalFailureSkipsCreation(t *testing.T) {
	api := &fakeBookingAPI{
		approvalErr: &somgilapi.Error{Kind: somgilapi.KindNetworkFailure, Endpoint: "/api/reservation/approval", Status: 400},
	}
	submitter := NewSubmitter(api, loggedInStore(t), nil, zerolog.Nop())

	result := submitter.Submit(context.Background(), testOrder())

	assert.Equal(t, StateFailed, result.State)
	assert.Error(t, result.Err)
	assert.Equal(t, 1, api.approvalCalls)
	assert.Zero(t, api.creationCalls, "approval failure guarantees no creation call")
}

func TestSubmitCreationFailureIsRetryable(t *testing.T) {
	api := &fakeBookingAPI{
		creationErr: &somgilapi.Error{Kind: somgilapi.KindNetworkFailure, Endpoint: "/api/reservations", Status: 500},
	}
	submitter := NewSubmitter(api, loggedInStore(t), nil, zerolog.Nop())

	result := submitter.Submit(context.Background(), testOrder())
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 1, api.creationCalls)

	// A retry runs the full two-phase protocol again.
	api.creationErr = nil
	result = submitter.Submit(context.Background(), testOrder())
	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 2, api.approvalCalls)
	assert.Equal(t, 2, api.creationCalls)
}

func TestSubmitRejectsIncompleteOrder(t *testing.T) {
	api := &fakeBookingAPI{}
	submitter := NewSubmitter(api, loggedInStore(t), nil, zerolog.Nop())

	missingPackage := testOrder()
	missingPackage.Package = models.Package{}
	result := submitter.Submit(context.Background(), missingPackage)
	assert.Equal(t, StateFailed, result.State)
	assert.True(t, somgilapi.IsKind(result.Err, somgilapi.KindValidationFailure))

	missingDate := testOrder()
	missingDate.Date = time.Time{}
	result = submitter.Submit(context.Background(), missingDate)
	assert.Equal(t, StateFailed, result.State)
	assert.True(t, somgilapi.IsKind(result.Err, somgilapi.KindValidationFailure))

	assert.Zero(t, api.approvalCalls, "validation failures never reach the network")
}
