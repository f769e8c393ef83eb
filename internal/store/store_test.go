package store

import (
	"sort"

	"github.com/tarefo/tarefo/internal/model"
)

// memStore is an in-memory storage.Store for tests.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(key string) ([]byte, bool, error) {
	value, ok := m.data[key]
	return value, ok, nil
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
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStore) Close() error { return nil }

// recordingScheduler captures scheduler calls.
type recordingScheduler struct {
	scheduled []int
	cancelled []int
	fail      bool
}

func (r *recordingScheduler) ScheduleTask(task model.Task) error {
	if r.fail {
		return errBoom
	}
	r.scheduled = append(r.scheduled, task.ID)
	return nil
}

func (r *recordingScheduler) CancelTask(taskID int) error {
	if r.fail {
		return errBoom
	}
	r.cancelled = append(r.cancelled, taskID)
	return nil
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom = boomError{}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func statusPtr(v model.Status) *model.Status { return &v }
