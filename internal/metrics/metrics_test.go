package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRecordUpdatesCountersAndStats(t *testing.T) {
	m := New(zaptest.NewLogger(t))

	m.Record(CategoryTransaction, 10*time.Microsecond)
	m.Record(CategoryTransaction, 50*time.Microsecond)

	snap := m.Snapshot()
	require.Len(t, snap, 3)

	tx := snap[CategoryTransaction]
	require.Equal(t, uint64(2), tx.ProcessCount)
	require.Equal(t, uint64(0), tx.EventsProcessed) // Record counts processing calls, not events
	require.Equal(t, int64(10), tx.MinUS)
	require.Equal(t, int64(50), tx.MaxUS)
	require.InDelta(t, 30.0, tx.AvgUS, 0.001)
}

func TestCategoriesAreIndependent(t *testing.T) {
	m := New(zaptest.NewLogger(t))
	m.Record(CategoryAccount, time.Microsecond)

	snap := m.Snapshot()
	require.Equal(t, uint64(0), snap[CategoryTransaction].ProcessCount)
	require.Equal(t, uint64(1), snap[CategoryAccount].ProcessCount)
	require.Equal(t, uint64(0), snap[CategoryBlockMeta].ProcessCount)
}

func TestDroppedEventsAccounting(t *testing.T) {
	m := New(zaptest.NewLogger(t))
	for i := 0; i < 5; i++ {
		m.IncrDropped()
	}
	require.Equal(t, uint64(5), m.DroppedEvents())
}

func TestRollWindowsResetsCurrentWindowNotTotals(t *testing.T) {
	m := NewWithWindow(zaptest.NewLogger(t), time.Millisecond)
	m.Record(CategoryTransaction, time.Microsecond)
	m.IncrEventsProcessed(CategoryTransaction, 1)
	time.Sleep(5 * time.Millisecond)
	m.rollWindows()

	snap := m.Snapshot()
	require.Equal(t, uint64(0), snap[CategoryTransaction].EventsInWindow)
	require.Equal(t, uint64(1), snap[CategoryTransaction].EventsProcessed)
}

func TestRenderTableIncludesEveryCategoryAndDropped(t *testing.T) {
	m := New(zaptest.NewLogger(t))
	m.Record(CategoryAccount, time.Microsecond)
	m.IncrDropped()

	table := m.RenderTable()
	require.Contains(t, table, "transaction")
	require.Contains(t, table, "account")
	require.Contains(t, table, "block_meta")
	require.Contains(t, table, "dropped_events: 1")
}
