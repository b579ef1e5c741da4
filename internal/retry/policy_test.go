package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, BackoffExponential, p.Mode)
	require.Equal(t, 25*time.Millisecond, p.Initial)
	require.Equal(t, 250*time.Millisecond, p.Max)
	require.Equal(t, 3, p.MaxRetries)
	require.NoError(t, p.Validate())
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(BackoffFixed, 5*time.Second, 2*time.Second, 5)
	require.Equal(t, 2*time.Second, p.Initial)
	require.Equal(t, 2*time.Second, p.Max)
	require.Equal(t, BackoffFixed, p.Mode)
	require.Equal(t, 5, p.MaxRetries)

	p = NewPolicy("bogus", 0, 0, -1)
	require.Equal(t, DefaultPolicy(), p)
}

func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(BackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		require.Equal(t, 100*time.Millisecond, fixed.Delay(i))
	}

	linear := NewPolicy(BackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	cases := []struct {
		attempt int
		want    time.Duration
	}{{1, 100 * time.Millisecond}, {2, 200 * time.Millisecond}, {3, 250 * time.Millisecond}, {4, 250 * time.Millisecond}}
	for _, c := range cases {
		require.Equal(t, c.want, linear.Delay(c.attempt), "attempt %d", c.attempt)
	}

	exp := NewPolicy(BackoffExponential, 10*time.Millisecond, 50*time.Millisecond, 5)
	require.Equal(t, 10*time.Millisecond, exp.Delay(1))
	require.Equal(t, 20*time.Millisecond, exp.Delay(2))
	require.Equal(t, 40*time.Millisecond, exp.Delay(3))
	require.Equal(t, 50*time.Millisecond, exp.Delay(4))
	require.Equal(t, time.Duration(0), exp.Delay(0))
}

func TestValidate(t *testing.T) {
	require.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestDo(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	err = p.Do(context.Background(), func() error {
		calls++
		return errors.New("busy")
	})
	require.EqualError(t, err, "busy")
	require.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewPolicy(BackoffFixed, time.Second, time.Second, 1).Do(ctx, func() error { return errors.New("busy") })
	require.ErrorIs(t, err, context.Canceled)
}
