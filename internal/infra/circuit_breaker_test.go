package infra

import (
	"errors"
	"fmt"
	"net/textproto"
	"testing"
	"time"

	"attendance/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errRelayDown = errors.New("dial tcp: connection refused")
	t0           = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
)

func fail(err error) func() error { return func() error { return err } }

func ok() error { return nil }

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	clk := clock.NewManual(t0)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: time.Minute}, clk)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail(errRelayDown)), errRelayDown)
	}
	require.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clk.Advance(59 * time.Second)
	assert.Equal(t, CBOpen, cb.State())
	clk.Advance(time.Second)
	require.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	clk := clock.NewManual(t0)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute}, clk)

	_ = cb.Execute(fail(errRelayDown))
	clk.Advance(2 * time.Minute)
	require.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(fail(errRelayDown))
	assert.Equal(t, CBOpen, cb.State())
	assert.Equal(t, "open", cb.State().String())

	// The reopened breaker waits a full timeout from the failed trial call.
	clk.Advance(30 * time.Second)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_OneTrialAtATime(t *testing.T) {
	clk := clock.NewManual(t0)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute}, clk)
	_ = cb.Execute(fail(errRelayDown))
	clk.Advance(time.Minute)

	err := cb.Execute(func() error {
		assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)
		return nil
	})
	assert.NoError(t, err)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2}, clock.NewManual(t0))

	_ = cb.Execute(fail(errRelayDown))
	_ = cb.Execute(ok)
	_ = cb.Execute(fail(errRelayDown))

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_PermanentErrorsDoNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2}, clock.NewManual(t0))
	badMailbox := &textproto.Error{Code: 550, Msg: "5.1.1 mailbox unavailable"}

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(fail(badMailbox)), badMailbox)
	}
	assert.Equal(t, CBClosed, cb.State())

	// A permanent answer also proves the relay is up.
	_ = cb.Execute(fail(errRelayDown))
	_ = cb.Execute(fail(fmt.Errorf("%w: recipient %q", ErrInvalidMessage, "nobody")))
	_ = cb.Execute(fail(errRelayDown))
	assert.Equal(t, CBClosed, cb.State())
}

func TestIsPermanentMailError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&textproto.Error{Code: 550, Msg: "no such user"}, true},
		{fmt.Errorf("send: %w", &textproto.Error{Code: 553, Msg: "bad address"}), true},
		{fmt.Errorf("%w: attach file: missing", ErrInvalidMessage), true},
		{&textproto.Error{Code: 421, Msg: "try again later"}, false},
		{&textproto.Error{Code: 535, Msg: "authentication failed"}, false},
		{errRelayDown, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsPermanentMailError(tc.err), tc.err.Error())
	}
}

func TestMailer_RejectsMalformedRecipient(t *testing.T) {
	m := &Mailer{addr: "127.0.0.1:1", from: "billing@example.com"}
	err := m.Send("not an address", "Quote", "hi", "")
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.True(t, IsPermanentMailError(err))
}
