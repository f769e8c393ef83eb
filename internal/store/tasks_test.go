package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarefo/tarefo/internal/model"
	"github.com/tarefo/tarefo/internal/schema"
)

// emptyTaskStore returns a task store with no tasks (seeding skipped by
// pre-writing an empty collection).
func emptyTaskStore(t *testing.T, scheduler NotificationScheduler) (*TaskStore, *memStore) {
	t.Helper()
	mem := newMemStore()
	require.NoError(t, mem.Put(TasksKey, []byte("[]")))
	return NewTaskStore(mem, nil, scheduler, nil), mem
}

func TestTaskStoreSeedsOnFirstRun(t *testing.T) {
	mem := newMemStore()
	s := NewTaskStore(mem, nil, nil, nil)

	tasks := s.All()
	require.Len(t, tasks, 3)
	for i, task := range tasks {
		assert.Equal(t, i, task.Ordinal, "seed ordinals must be dense")
	}

	_, ok, err := mem.Get(TasksKey)
	require.NoError(t, err)
	assert.True(t, ok, "seed collection must be persisted")
}

func TestTaskStoreCorruptPayloadDegradesToSeed(t *testing.T) {
	mem := newMemStore()
	require.NoError(t, mem.Put(TasksKey, []byte("{not json")))

	s := NewTaskStore(mem, nil, nil, nil)
	assert.Len(t, s.All(), 3)

	// The corrupt payload is left on disk, not overwritten.
	data, _, _ := mem.Get(TasksKey)
	assert.Equal(t, "{not json", string(data))
}

func TestTaskStoreSchemaRejectionDegradesToSeed(t *testing.T) {
	validator, err := schema.New()
	require.NoError(t, err)

	mem := newMemStore()
	require.NoError(t, mem.Put(TasksKey, []byte(`[{"id":1,"title":"x","status":"bogus","priority":"low","created_at":"x"}]`)))

	s := NewTaskStore(mem, validator, nil, nil)
	assert.Len(t, s.All(), 3)
}

func TestCreateAssignsIDAndOrdinal(t *testing.T) {
	sched := &recordingScheduler{}
	s, _ := emptyTaskStore(t, sched)

	first, err := s.Create(model.TaskForm{Title: "  First  "})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 0, first.Ordinal)
	assert.Equal(t, "First", first.Title, "title must be trimmed")
	assert.Equal(t, model.StatusTodo, first.Status)
	assert.Equal(t, model.PriorityMedium, first.Priority)

	second, err := s.Create(model.TaskForm{Title: "Second"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 1, second.Ordinal)

	assert.Equal(t, []int{1, 2}, sched.scheduled, "creates must schedule reminders")
}

func TestCreateValidation(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)

	_, err := s.Create(model.TaskForm{Title: "   "})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "title", ve.Field)

	_, err = s.Create(model.TaskForm{Title: "ok", Status: "paused"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "status", ve.Field)

	_, err = s.Create(model.TaskForm{Title: "ok", Priority: "urgent"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "priority", ve.Field)
}

func TestUpdatePatch(t *testing.T) {
	sched := &recordingScheduler{}
	s, _ := emptyTaskStore(t, sched)
	created, err := s.Create(model.TaskForm{Title: "Task", Description: "old"})
	require.NoError(t, err)

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	updated, err := s.Update(created.ID, model.TaskPatch{
		Status:  statusPtr(model.StatusDone),
		DueDate: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)
	assert.Equal(t, "old", updated.Description, "untouched fields survive the patch")
	require.NotNil(t, updated.DueDate)

	cleared, err := s.Update(created.ID, model.TaskPatch{ClearDue: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)

	_, err = s.Update(99, model.TaskPatch{})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 99, nf.ID)
}

func TestRemoveCancelsReminder(t *testing.T) {
	sched := &recordingScheduler{}
	s, _ := emptyTaskStore(t, sched)
	created, err := s.Create(model.TaskForm{Title: "Task"})
	require.NoError(t, err)

	require.NoError(t, s.Remove(created.ID))
	assert.Equal(t, []int{created.ID}, sched.cancelled)

	var nf *NotFoundError
	assert.True(t, errors.As(s.Remove(created.ID), &nf))
}

func TestMoveScenario(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.Create(model.TaskForm{Title: name})
		require.NoError(t, err)
	}

	require.NoError(t, s.Move(0, 2, nil))

	got := s.All()
	names := []string{got[0].Title, got[1].Title, got[2].Title}
	assert.Equal(t, []string{"B", "C", "A"}, names)
	for i, task := range got {
		assert.Equal(t, i, task.Ordinal)
	}
}

func TestMoveScopedToProject(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)
	proj := 1
	_, err := s.Create(model.TaskForm{Title: "p-a", ProjectID: &proj})
	require.NoError(t, err)
	_, err = s.Create(model.TaskForm{Title: "p-b", ProjectID: &proj})
	require.NoError(t, err)
	loose, err := s.Create(model.TaskForm{Title: "loose"})
	require.NoError(t, err)
	looseOrdinal := loose.Ordinal

	require.NoError(t, s.Move(0, 1, &proj))

	scoped := s.ByProject(proj)
	assert.Equal(t, "p-b", scoped[0].Title)
	assert.Equal(t, 0, scoped[0].Ordinal)
	assert.Equal(t, "p-a", scoped[1].Title)
	assert.Equal(t, 1, scoped[1].Ordinal)

	after, err := s.Get(loose.ID)
	require.NoError(t, err)
	assert.Equal(t, looseOrdinal, after.Ordinal, "ordinal outside the scope must not change")
}

func TestApplyOrder(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.Create(model.TaskForm{Title: name})
		require.NoError(t, err)
	}

	all := s.All()
	s.ApplyOrder([]model.Task{all[2], all[0], all[1]}, nil)

	got := s.All()
	names := []string{got[0].Title, got[1].Title, got[2].Title}
	assert.Equal(t, []string{"C", "A", "B"}, names)
	for i, task := range got {
		assert.Equal(t, i, task.Ordinal)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	sched := &recordingScheduler{}
	s, mem := emptyTaskStore(t, sched)
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	proj := 7
	_, err := s.Create(model.TaskForm{
		Title:       "Round trip",
		Description: "desc",
		Status:      model.StatusInProgress,
		Priority:    model.PriorityHigh,
		DueDate:     &due,
		Category:    "Work",
		Tags:        []string{"x", "y"},
		ProjectID:   &proj,
	})
	require.NoError(t, err)

	reloaded := NewTaskStore(mem, nil, nil, nil)
	got := reloaded.All()
	require.Len(t, got, 1)
	want := s.All()[0]
	assert.Equal(t, want.Title, got[0].Title)
	assert.Equal(t, want.Status, got[0].Status)
	assert.Equal(t, want.Tags, got[0].Tags)
	require.NotNil(t, got[0].DueDate)
	assert.True(t, got[0].DueDate.Equal(due))
	require.NotNil(t, got[0].ProjectID)
	assert.Equal(t, proj, *got[0].ProjectID)
	assert.True(t, got[0].CreatedAt.Equal(want.CreatedAt))
}

func TestDueBuckets(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)
	today := time.Date(2024, 3, 12, 10, 0, 0, 0, time.Local)
	mk := func(title string, due time.Time, status model.Status) {
		_, err := s.Create(model.TaskForm{Title: title, DueDate: &due, Status: status})
		require.NoError(t, err)
	}
	mk("overdue", today.AddDate(0, 0, -2), model.StatusTodo)
	mk("done-late", today.AddDate(0, 0, -2), model.StatusDone)
	mk("today", today, model.StatusTodo)
	mk("soon", today.AddDate(0, 0, 5), model.StatusTodo)
	mk("far", today.AddDate(0, 0, 12), model.StatusTodo)

	overdue := s.Overdue(today)
	require.Len(t, overdue, 1)
	assert.Equal(t, "overdue", overdue[0].Title)

	dueToday := s.DueToday(today)
	require.Len(t, dueToday, 1)
	assert.Equal(t, "today", dueToday[0].Title)

	soon := s.DueSoon(today)
	require.Len(t, soon, 2, "today and +5 days are inside the window")
}

func TestSearch(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)
	_, err := s.Create(model.TaskForm{Title: "Buy milk", Category: "Errands"})
	require.NoError(t, err)
	_, err = s.Create(model.TaskForm{Title: "Report", Description: "quarterly numbers", Tags: []string{"finance"}})
	require.NoError(t, err)

	assert.Len(t, s.Search("MILK"), 1)
	assert.Len(t, s.Search("quarterly"), 1)
	assert.Len(t, s.Search("finance"), 1)
	assert.Len(t, s.Search("errands"), 1)
	assert.Len(t, s.Search("nothing"), 0)
	assert.Len(t, s.Search("  "), 2, "blank query returns everything")
}

func TestRemoveByProjectCascade(t *testing.T) {
	sched := &recordingScheduler{}
	s, _ := emptyTaskStore(t, sched)
	proj := 3
	a, err := s.Create(model.TaskForm{Title: "a", ProjectID: &proj})
	require.NoError(t, err)
	b, err := s.Create(model.TaskForm{Title: "b", ProjectID: &proj})
	require.NoError(t, err)
	keep, err := s.Create(model.TaskForm{Title: "keep"})
	require.NoError(t, err)

	require.NoError(t, s.RemoveByProject(proj))

	remaining := s.All()
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)
	assert.ElementsMatch(t, []int{a.ID, b.ID}, sched.cancelled)
}

func TestMoveToProject(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)
	created, err := s.Create(model.TaskForm{Title: "t"})
	require.NoError(t, err)

	moved, err := s.MoveToProject(created.ID, intPtr(5))
	require.NoError(t, err)
	require.NotNil(t, moved.ProjectID)
	assert.Equal(t, 5, *moved.ProjectID)

	detached, err := s.MoveToProject(created.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, detached.ProjectID)
}

func TestSubscribe(t *testing.T) {
	s, _ := emptyTaskStore(t, nil)
	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	_, err := s.Create(model.TaskForm{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	unsubscribe()
	_, err = s.Create(model.TaskForm{Title: "u"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "unsubscribed callback must not fire")
}

func TestSchedulerFailureDoesNotFailMutation(t *testing.T) {
	sched := &recordingScheduler{fail: true}
	s, _ := emptyTaskStore(t, sched)

	created, err := s.Create(model.TaskForm{Title: "t"})
	require.NoError(t, err, "scheduling is best-effort")
	require.NoError(t, s.Remove(created.ID))
}
