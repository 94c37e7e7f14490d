package countdown

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Test Until
func TestUntil(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Table-driven test cases
	tests := []struct {
		name string
		end  time.Time
		want Remaining
	}{
		{
			name: "days_hours_minutes_seconds",
			end:  now.Add(49*time.Hour + 30*time.Minute + 15*time.Second),
			want: Remaining{Days: 2, Hours: 1, Minutes: 30, Seconds: 15},
		},
		{
			name: "under_a_minute",
			end:  now.Add(42 * time.Second),
			want: Remaining{Seconds: 42},
		},
		{
			name: "exactly_one_day",
			end:  now.Add(24 * time.Hour),
			want: Remaining{Days: 1},
		},
		{
			name: "sub_second_remainder_truncates",
			end:  now.Add(1500 * time.Millisecond),
			want: Remaining{Seconds: 1},
		},
		{
			name: "end_equals_now",
			end:  now,
			want: Remaining{IsEnded: true},
		},
		{
			name: "end_in_past",
			end:  now.Add(-time.Hour),
			want: Remaining{IsEnded: true},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			require.Equal(t, tc.want, Until(tc.end, now))
		})
	}
}

// Test Countdown.Run
func TestCountdown_Run(t *testing.T) {
	t.Parallel()

	t.Run("fires_callback_once_when_already_ended", func(t *testing.T) {
		t.Parallel()

		var fired int32
		cd := New(time.Now().Add(-time.Second), 10*time.Millisecond, func() {
			atomic.AddInt32(&fired, 1)
		})

		// Run returns immediately for a past end; a second Run must not
		// fire the callback again.
		cd.Run(context.Background())
		cd.Run(context.Background())

		require.Equal(t, int32(1), atomic.LoadInt32(&fired))
		require.True(t, cd.Snapshot().IsEnded)
	})

	t.Run("fires_when_countdown_reaches_zero", func(t *testing.T) {
		t.Parallel()

		var fired int32
		cd := New(time.Now().Add(30*time.Millisecond), 10*time.Millisecond, func() {
			atomic.AddInt32(&fired, 1)
		})

		done := make(chan struct{})
		go func() {
			cd.Run(context.Background())
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("countdown never ended")
		}

		require.Equal(t, int32(1), atomic.LoadInt32(&fired))
	})

	t.Run("cancellation_stops_without_firing", func(t *testing.T) {
		t.Parallel()

		var fired int32
		cd := New(time.Now().Add(time.Hour), 10*time.Millisecond, func() {
			atomic.AddInt32(&fired, 1)
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			cd.Run(ctx)
			close(done)
		}()

		time.Sleep(30 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("countdown did not stop on cancellation")
		}

		require.Equal(t, int32(0), atomic.LoadInt32(&fired))
		require.False(t, cd.Snapshot().IsEnded)
	})

	t.Run("nil_callback_is_safe", func(t *testing.T) {
		t.Parallel()

		cd := New(time.Now().Add(-time.Second), time.Millisecond, nil)
		cd.Run(context.Background())
		require.True(t, cd.Snapshot().IsEnded)
	})

	t.Run("snapshot_tracks_last_breakdown", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		cd := New(now.Add(90*time.Second), 10*time.Millisecond, nil)
		cd.now = func() time.Time { return now }

		cd.tick()

		require.Equal(t, Remaining{Minutes: 1, Seconds: 30}, cd.Snapshot())
	})
}
