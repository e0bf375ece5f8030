package highway

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_NextDeadlineEmptyWhenNothingScheduled(t *testing.T) {
	s := NewScheduler()
	_, ok := s.NextDeadline()
	require.False(t, ok)
}

func TestScheduler_PopDueOrdersByDeadlineRegardlessOfInsertionOrder(t *testing.T) {
	s := NewScheduler()
	base := time.Now()

	var order []string
	record := func(name string) RepeatFunc {
		return func(*atomic.Bool) (bool, time.Duration) {
			order = append(order, name)
			return false, 0
		}
	}

	s.Schedule(record("third"), base.Add(30*time.Millisecond), nil, "scheduler_test.go", 0)
	s.Schedule(record("first"), base.Add(10*time.Millisecond), nil, "scheduler_test.go", 0)
	s.Schedule(record("second"), base.Add(20*time.Millisecond), nil, "scheduler_test.go", 0)

	due := s.PopDue(base.Add(time.Hour))
	require.Len(t, due, 3)
	for _, task := range due {
		_, _ = task.fn(nil)
	}
	require.Equal(t, []string{"first", "second", "third"}, order)
	require.Equal(t, 0, s.Len())
}

func TestScheduler_PopDueLeavesNotYetDueTasksInPlace(t *testing.T) {
	s := NewScheduler()
	now := time.Now()
	s.Schedule(func(*atomic.Bool) (bool, time.Duration) { return false, 0 }, now.Add(time.Hour), nil, "scheduler_test.go", 0)

	due := s.PopDue(now)
	require.Empty(t, due)
	require.Equal(t, 1, s.Len())

	next, ok := s.NextDeadline()
	require.True(t, ok)
	require.True(t, next.After(now))
}

func TestScheduler_PopDueDropsTasksWithBrokenProtector(t *testing.T) {
	s := NewScheduler()
	now := time.Now()

	protector := NewSelfProtector()
	protector.Release()

	s.Schedule(func(*atomic.Bool) (bool, time.Duration) { return false, 0 }, now, protector, "scheduler_test.go", 0)

	due := s.PopDue(now.Add(time.Millisecond))
	require.Empty(t, due, "a task whose protector has broken must not be returned from PopDue")
	require.Equal(t, 0, s.Len())
}

func TestScheduler_PopDueKeepsTasksWithLiveProtector(t *testing.T) {
	s := NewScheduler()
	now := time.Now()

	protector := NewSelfProtector()

	s.Schedule(func(*atomic.Bool) (bool, time.Duration) { return false, 0 }, now, protector, "scheduler_test.go", 0)

	due := s.PopDue(now.Add(time.Millisecond))
	require.Len(t, due, 1)
}
