package orchestrator

import (
	"fmt"
	"sync"

	"github.com/a2aproject/a2a-go/a2a"
)

// ErrTaskNotFound is returned when no task with the given id was recorded.
var ErrTaskNotFound = fmt.Errorf("task not found")

// taskStore keeps snapshots of protocol tasks keyed by id and context id.
// Snapshots are cloned on save and on read so callers never share slice
// headers with internal state. A task that reached a terminal state is
// immutable; later saves for the same id are ignored.
type taskStore struct {
	mu        sync.RWMutex
	byID      map[a2a.TaskID]*a2a.Task
	byContext map[string][]a2a.TaskID
}

func newTaskStore() *taskStore {
	return &taskStore{
		byID:      make(map[a2a.TaskID]*a2a.Task),
		byContext: make(map[string][]a2a.TaskID),
	}
}

// Save records a snapshot of the task's current state.
func (s *taskStore) Save(task *a2a.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byID[task.ID]; ok {
		if existing.Status.State.Terminal() {
			return
		}
	} else {
		s.byContext[task.ContextID] = append(s.byContext[task.ContextID], task.ID)
	}
	s.byID[task.ID] = cloneTask(task)
}

// TaskByID returns a snapshot of the task or ErrTaskNotFound.
func (s *taskStore) TaskByID(id a2a.TaskID) (*a2a.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return cloneTask(task), nil
}

// TasksByContext returns snapshots of all tasks for a context id in creation
// order.
func (s *taskStore) TasksByContext(contextID string) []*a2a.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byContext[contextID]
	out := make([]*a2a.Task, 0, len(ids))
	for _, id := range ids {
		if task, ok := s.byID[id]; ok {
			out = append(out, cloneTask(task))
		}
	}
	return out
}

// snapshot returns a detached copy of the task for embedding in outputs.
func (s *taskStore) snapshot(task *a2a.Task) *a2a.Task {
	return cloneTask(task)
}

func cloneTask(task *a2a.Task) *a2a.Task {
	c := *task
	c.History = append([]*a2a.Message(nil), task.History...)
	c.Artifacts = append([]*a2a.Artifact(nil), task.Artifacts...)
	return &c
}
