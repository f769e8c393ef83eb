// Package ordering maintains dense manual task ordering.
//
// Every task carries an ordinal that is only meaningful within one
// scope: the full task list, or the tasks of a single project. Scopes
// share the flat collection, so applying a scope's new ordinals must
// leave tasks outside the scope untouched.
package ordering

import (
	"fmt"
	"sort"

	"github.com/tarefo/tarefo/internal/model"
)

// Move relocates the element at from to position to, using list-splice
// semantics: the element is removed first, and a target at or past the
// end appends. The returned slice is a renumbered copy; the input is
// not modified.
func Move(scope []model.Task, from, to int) ([]model.Task, error) {
	if from < 0 || from >= len(scope) {
		return nil, fmt.Errorf("move: index %d out of range [0,%d)", from, len(scope))
	}

	out := make([]model.Task, 0, len(scope))
	out = append(out, scope...)

	item := out[from]
	out = append(out[:from], out[from+1:]...)

	if to < 0 {
		to = 0
	}
	if to >= len(out) {
		out = append(out, item)
	} else {
		out = append(out[:to], append([]model.Task{item}, out[to:]...)...)
	}

	Renumber(out)
	return out, nil
}

// Renumber assigns each task an ordinal equal to its position, 0..n-1.
func Renumber(scope []model.Task) {
	for i := range scope {
		scope[i].Ordinal = i
	}
}

// ApplyScope writes the ordinals of the reordered scope back onto the
// flat collection and returns the updated collection. Only tasks that
// belong to the scope change: when projectID is set, a task must both
// appear in the reordered list and belong to that project; otherwise
// membership in the reordered list is enough.
func ApplyScope(all []model.Task, reordered []model.Task, projectID *int) []model.Task {
	ordinals := make(map[int]int, len(reordered))
	for i, task := range reordered {
		ordinals[task.ID] = i
	}

	out := make([]model.Task, len(all))
	copy(out, all)
	for i := range out {
		ord, ok := ordinals[out[i].ID]
		if !ok {
			continue
		}
		if projectID != nil {
			if out[i].ProjectID == nil || *out[i].ProjectID != *projectID {
				continue
			}
		}
		out[i].Ordinal = ord
	}
	return out
}

// Sort orders tasks by ordinal, with id and creation time as
// tie-breaks. It sorts in place.
func Sort(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Ordinal != tasks[j].Ordinal {
			return tasks[i].Ordinal < tasks[j].Ordinal
		}
		if tasks[i].ID != tasks[j].ID {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

// Sorted returns a sorted copy, leaving the input untouched.
func Sorted(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	Sort(out)
	return out
}
