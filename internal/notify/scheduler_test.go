package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarefo/tarefo/internal/model"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Put(key string, value []byte) error {
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *memStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) Keys() ([]string, error) {
	var keys []string
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *memStore) Close() error { return nil }

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *SpoolPlatform, *ConfigStore) {
	t.Helper()
	mem := newMemStore()
	spool := NewSpoolPlatform(mem, nil)
	config := NewConfigStore(mem, nil)
	sched := NewScheduler(spool, config, nil)
	sched.now = func() time.Time { return now }
	return sched, spool, config
}

func pendingIDs(t *testing.T, p Platform) []int {
	t.Helper()
	reqs, err := p.Pending()
	require.NoError(t, err)
	ids := make([]int, len(reqs))
	for i, req := range reqs {
		ids[i] = req.ID
	}
	return ids
}

func taskDue(id int, title string, due time.Time) model.Task {
	return model.Task{ID: id, Title: title, Status: model.StatusTodo, DueDate: &due}
}

func TestScheduleTaskLeadAndDueDayReminders(t *testing.T) {
	// Due tomorrow with one day of lead, at 08:00: the lead reminder
	// fires today at 09:00 and the due-day reminder tomorrow at 09:00.
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local)
	sched, spool, _ := newTestScheduler(t, now)

	task := taskDue(1, "Deliver report", now.AddDate(0, 0, 1))
	require.NoError(t, sched.ScheduleTask(task))

	reqs, err := spool.Pending()
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	lead, dueDay := reqs[0], reqs[1]
	assert.Equal(t, ReminderID(1), lead.ID)
	assert.Equal(t, time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local), lead.At)
	assert.Contains(t, lead.Body, "Deliver report")
	assert.Contains(t, lead.Body, "2024-03-12")
	assert.Equal(t, "default", lead.Sound)

	assert.Equal(t, DueDayID(1), dueDay.ID)
	assert.Equal(t, time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local), dueDay.At)
	assert.Equal(t, "default", dueDay.Sound)
}

func TestScheduleTaskRollsForwardWhenTimeElapsed(t *testing.T) {
	// At 10:00 the 09:00 slot is gone, so a clamped lead reminder
	// moves to tomorrow. The due-day reminder keeps its own slot on
	// the due day even though both now land on the same day.
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local)
	sched, spool, _ := newTestScheduler(t, now)

	require.NoError(t, sched.ScheduleTask(taskDue(2, "t", now.AddDate(0, 0, 1))))

	reqs, err := spool.Pending()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, ReminderID(2), reqs[0].ID)
	assert.Equal(t, time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local), reqs[0].At)
	assert.Equal(t, DueDayID(2), reqs[1].ID)
	assert.Equal(t, time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local), reqs[1].At)
}

func TestScheduleTaskCancelsWhenNotQualifying(t *testing.T) {
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local)

	t.Run("done task", func(t *testing.T) {
		sched, spool, _ := newTestScheduler(t, now)
		task := taskDue(3, "t", now.AddDate(0, 0, 2))
		require.NoError(t, sched.ScheduleTask(task))
		require.NotEmpty(t, pendingIDs(t, spool))

		task.Status = model.StatusDone
		require.NoError(t, sched.ScheduleTask(task))
		assert.Empty(t, pendingIDs(t, spool))
	})

	t.Run("past due", func(t *testing.T) {
		sched, spool, _ := newTestScheduler(t, now)
		require.NoError(t, sched.ScheduleTask(taskDue(4, "t", now.AddDate(0, 0, -1))))
		assert.Empty(t, pendingIDs(t, spool))
	})

	t.Run("no due date", func(t *testing.T) {
		sched, spool, _ := newTestScheduler(t, now)
		require.NoError(t, sched.ScheduleTask(model.Task{ID: 5, Title: "t", Status: model.StatusTodo}))
		assert.Empty(t, pendingIDs(t, spool))
	})

	t.Run("reminders disabled", func(t *testing.T) {
		sched, spool, config := newTestScheduler(t, now)
		task := taskDue(6, "t", now.AddDate(0, 0, 2))
		require.NoError(t, sched.ScheduleTask(task))
		require.NotEmpty(t, pendingIDs(t, spool))

		require.NoError(t, config.SetEnabled(false))
		require.NoError(t, sched.ScheduleTask(task))
		assert.Empty(t, pendingIDs(t, spool))
	})
}

func TestScheduleTaskDueToday(t *testing.T) {
	// Due today at lead one day: the lead slot is in the past, so it
	// clamps to today 09:00. The due-day reminder fires too, at the
	// same instant but under its own id and body.
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local)
	sched, spool, _ := newTestScheduler(t, now)

	require.NoError(t, sched.ScheduleTask(taskDue(7, "t", now)))

	reqs, err := spool.Pending()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	lead, dueDay := reqs[0], reqs[1]
	assert.Equal(t, ReminderID(7), lead.ID)
	assert.Equal(t, time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local), lead.At)
	assert.Equal(t, DueDayID(7), dueDay.ID)
	assert.Equal(t, time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local), dueDay.At)
	assert.Contains(t, dueDay.Body, "due today")
}

func TestScheduleTaskDueTodaySlotElapsed(t *testing.T) {
	// After the 09:00 slot on the due day only the rolled-forward lead
	// reminder remains, so a previously scheduled due-day reminder is
	// cancelled rather than left to fire on the wrong day.
	sched, spool, _ := newTestScheduler(t, time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local))
	task := taskDue(14, "t", time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local))
	require.NoError(t, sched.ScheduleTask(task))
	require.Contains(t, pendingIDs(t, spool), DueDayID(14))

	sched.now = func() time.Time { return time.Date(2024, 3, 11, 10, 0, 0, 0, time.Local) }
	require.NoError(t, sched.ScheduleTask(task))

	ids := pendingIDs(t, spool)
	assert.Contains(t, ids, ReminderID(14))
	assert.NotContains(t, ids, DueDayID(14))
}

func TestScheduleTaskHonorsLeadDays(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	sched, spool, config := newTestScheduler(t, now)
	require.NoError(t, config.Set(Config{Enabled: true, LeadDays: 3, Time: "14:30"}))

	require.NoError(t, sched.ScheduleTask(taskDue(8, "t", time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local))))

	reqs, err := spool.Pending()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, time.Date(2024, 3, 7, 14, 30, 0, 0, time.Local), reqs[0].At)
	assert.Equal(t, time.Date(2024, 3, 10, 14, 30, 0, 0, time.Local), reqs[1].At)
}

func TestCancelTaskIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local)
	sched, spool, _ := newTestScheduler(t, now)

	require.NoError(t, sched.ScheduleTask(taskDue(9, "t", now.AddDate(0, 0, 2))))
	require.NotEmpty(t, pendingIDs(t, spool))

	require.NoError(t, sched.CancelTask(9))
	assert.Empty(t, pendingIDs(t, spool))
	require.NoError(t, sched.CancelTask(9))
}

func TestRescheduleAllRebuildsSpool(t *testing.T) {
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local)
	sched, spool, _ := newTestScheduler(t, now)

	stale := taskDue(10, "stale", now.AddDate(0, 0, 2))
	require.NoError(t, sched.ScheduleTask(stale))

	fresh := []model.Task{
		taskDue(11, "a", now.AddDate(0, 0, 2)),
		taskDue(12, "b", now.AddDate(0, 0, 3)),
		{ID: 13, Title: "no due", Status: model.StatusTodo},
	}
	require.NoError(t, sched.RescheduleAll(fresh))

	ids := pendingIDs(t, spool)
	assert.NotContains(t, ids, ReminderID(10))
	assert.Contains(t, ids, ReminderID(11))
	assert.Contains(t, ids, ReminderID(12))
	assert.NotContains(t, ids, ReminderID(13))
}
