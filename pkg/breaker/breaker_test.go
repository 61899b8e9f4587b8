package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream 500")
var errNotFound = errors.New("not found")

func newTestBreaker() *Breaker {
	return New(Settings{
		Name:         "test",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  10,
		FailureRatio: 0.5,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound)
		},
	}, nil)
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := newTestBreaker()

	for i := 0; i < 3; i++ {
		err := b.Do(func() error { return errUpstream })
		require.ErrorIs(t, err, errUpstream)
	}

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_IgnoresClassifiedErrors(t *testing.T) {
	b := newTestBreaker()

	for i := 0; i < 5; i++ {
		err := b.Do(func() error { return errNotFound })
		require.ErrorIs(t, err, errNotFound)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_PassesResult(t *testing.T) {
	b := newTestBreaker()
	require.NoError(t, b.Do(func() error { return nil }))
}
