package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somgil/internal/events"
)

type fakeValidator struct {
	valid bool
	err   error
	calls int
}

func (f *fakeValidator) ValidateToken(_ context.Context, _ string) (bool, error) {
	f.calls++
	return f.valid, f.err
}

func TestStoreSetGetClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, zerolog.Nop())

	sess, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn)
	assert.Empty(t, sess.Token)

	require.NoError(t, store.Set(ctx, "tok-1", "u@somgil.kr", "나그네"))

	sess, err = store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "나그네", sess.Nickname)

	require.NoError(t, store.Clear(ctx))

	sess, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn)
	assert.Empty(t, sess.Token)
}

func TestStoreRefusesEmptyToken(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil, zerolog.Nop())
	assert.Error(t, store.Set(context.Background(), "", "", ""))
}

func TestStorePublishesSessionChanges(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()

	var published []Session
	bus.Subscribe(events.SessionChanged, func(event events.Event) {
		published = append(published, event.Payload.(Session))
	})

	store := NewStore(NewMemoryStorage(), bus, zerolog.Nop())
	require.NoError(t, store.Set(ctx, "tok-1", "", "나그네"))
	require.NoError(t, store.Clear(ctx))

	require.Len(t, published, 2)
	assert.True(t, published[0].LoggedIn)
	assert.False(t, published[1].LoggedIn)
}

func TestValidateClearsRejectedToken(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, zerolog.Nop())
	require.NoError(t, store.Set(ctx, "stale-token", "", ""))

	validator := &fakeValidator{valid: false}
	sess, err := store.Validate(ctx, validator)
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn)
	assert.Equal(t, 1, validator.calls)

	// The rejected token is gone for good.
	sess, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn)
}

func TestValidateKeepsSessionWhenUnreachable(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, zerolog.Nop())
	require.NoError(t, store.Set(ctx, "tok-1", "", ""))

	validator := &fakeValidator{err: errors.New("connection refused")}
	sess, err := store.Validate(ctx, validator)
	require.NoError(t, err)
	assert.True(t, sess.LoggedIn, "transport failure must not drop the session")
}

func TestValidateSkipsAnonymousSession(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil, zerolog.Nop())

	validator := &fakeValidator{}
	sess, err := store.Validate(context.Background(), validator)
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn)
	assert.Zero(t, validator.calls, "nothing to introspect without a token")
}
