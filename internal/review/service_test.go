package review

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somgil/internal/models"
	"somgil/internal/session"
	"somgil/internal/somgilapi"
)

type fakeReviewAPI struct {
	submitCalls int
	listCalls   int
	submitted   models.Review
	reviews     []models.Review
	err         error
}

func (f *fakeReviewAPI) SubmitReview(_ context.Context, _ string, review models.Review) error {
	f.submitCalls++
	f.submitted = review
	return f.err
}

func (f *fakeReviewAPI) ListReviews(_ context.Context, _ string) ([]models.Review, error) {
	f.listCalls++
	return f.reviews, f.err
}

func loggedInStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage(), nil, zerolog.Nop())
	require.NoError(t, store.Set(context.Background(), "tok-1", "", "나그네"))
	return store
}

func TestSubmitRejectsShortContentLocally(t *testing.T) {
	api := &fakeReviewAPI{}
	service := NewService(api, loggedInStore(t), zerolog.Nop())

	err := service.Submit(context.Background(), Draft{
		Content: strings.Repeat("a", MinContentLength-1),
		Rating:  5,
	})
	assert.True(t, somgilapi.IsKind(err, somgilapi.KindValidationFailure))
	assert.Zero(t, api.submitCalls, "no network round-trip for invalid input")
}

func TestSubmitAcceptsMinimumLengthContent(t *testing.T) {
	api := &fakeReviewAPI{}
	service := NewService(api, loggedInStore(t), zerolog.Nop())

	err := service.Submit(context.Background(), Draft{
		ReservationID: 1,
		Content:       strings.Repeat("a", MinContentLength),
		Rating:        4,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, api.submitCalls)
	assert.Equal(t, 4, api.submitted.Rating)
	assert.Equal(t, DefaultTitle, api.submitted.Title)
	assert.NotEmpty(t, api.submitted.Date)
}

func TestSubmitCountsRunesNotBytes(t *testing.T) {
	api := &fakeReviewAPI{}
	service := NewService(api, loggedInStore(t), zerolog.Nop())

	// Ten Hangul syllables is ten characters, regardless of byte length.
	err := service.Submit(context.Background(), Draft{
		Content: "정말좋은여행이었어요",
		Rating:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, api.submitCalls)
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	api := &fakeReviewAPI{}
	service := NewService(api, loggedInStore(t), zerolog.Nop())

	for _, rating := range []int{0, 6, -1} {
		err := service.Submit(context.Background(), Draft{
			Content: strings.Repeat("a", MinContentLength),
			Rating:  rating,
		})
		assert.True(t, somgilapi.IsKind(err, somgilapi.KindValidationFailure), "rating %d", rating)
	}
	assert.Zero(t, api.submitCalls)
}

func TestSubmitRequiresSession(t *testing.T) {
	api := &fakeReviewAPI{}
	store := session.NewStore(session.NewMemoryStorage(), nil, zerolog.Nop())
	service := NewService(api, store, zerolog.Nop())

	err := service.Submit(context.Background(), Draft{
		Content: strings.Repeat("a", MinContentLength),
		Rating:  5,
	})
	assert.True(t, somgilapi.IsKind(err, somgilapi.KindAuthRequired))
	assert.Zero(t, api.submitCalls)
}

func TestListOwn(t *testing.T) {
	api := &fakeReviewAPI{reviews: []models.Review{{Content: "정말 좋은 여행이었습니다", Rating: 5}}}
	service := NewService(api, loggedInStore(t), zerolog.Nop())

	reviews, err := service.ListOwn(context.Background())
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)

	store := session.NewStore(session.NewMemoryStorage(), nil, zerolog.Nop())
	service = NewService(api, store, zerolog.Nop())
	_, err = service.ListOwn(context.Background())
	assert.True(t, somgilapi.IsKind(err, somgilapi.KindAuthRequired))
}
