package undo

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *testLogger) Debug(string, ...interface{}) {}
func (l *testLogger) Info(string, ...interface{})  {}
func (l *testLogger) Warn(string, ...interface{})  {}
func (l *testLogger) Fatal(string, ...interface{}) {}
func (l *testLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

type recorder struct {
	mu        sync.Mutex
	committed []string
}

func (r *recorder) commit(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, ids...)
	return nil
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := append([]string(nil), r.committed...)
	sort.Strings(ids)
	return ids
}

const window = 50 * time.Millisecond

func TestScheduler_commitsAfterWindow(t *testing.T) {
	s := NewScheduler(window, new(testLogger))
	rec := new(recorder)
	owner := Owner("admissions", "school-1")

	batch := s.Schedule(owner, []string{"a", "b"}, rec.commit)
	assert.NotEmpty(t, batch.Token)
	assert.Equal(t, []string{"a", "b"}, batch.IDs)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, s.Hidden(owner))
	assert.Empty(t, rec.ids(), "nothing is deleted before the window closes")

	assert.Eventually(t, func() bool { return len(rec.ids()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, rec.ids())
	assert.Nil(t, s.Hidden(owner))
	_, ok := s.Pending(owner)
	assert.False(t, ok)
}

func TestScheduler_undo(t *testing.T) {
	s := NewScheduler(window, new(testLogger))
	rec := new(recorder)
	owner := Owner("admissions", "school-1")

	batch := s.Schedule(owner, []string{"a"}, rec.commit)

	_, err := s.Undo(owner, "wrong-token")
	assert.Equal(t, ErrNothingToUndo, err)
	_, err = s.Undo(Owner("admissions", "school-2"), batch.Token)
	assert.Equal(t, ErrNothingToUndo, err)

	ids, err := s.Undo(owner, batch.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
	assert.Nil(t, s.Hidden(owner))

	time.Sleep(3 * window)
	assert.Empty(t, rec.ids(), "undone batch must never be committed")

	_, err = s.Undo(owner, batch.Token)
	assert.Equal(t, ErrNothingToUndo, err)
}

func TestScheduler_newBatchCommitsPrevious(t *testing.T) {
	s := NewScheduler(time.Hour, new(testLogger))
	rec := new(recorder)
	owner := Owner("roll_statements", "school-1")
	other := Owner("roll_statements", "school-2")

	first := s.Schedule(owner, []string{"a"}, rec.commit)
	s.Schedule(other, []string{"z"}, rec.commit)
	second := s.Schedule(owner, []string{"b", "c"}, rec.commit)

	assert.Equal(t, []string{"a"}, rec.ids(), "previous batch is committed immediately")
	_, err := s.Undo(owner, first.Token)
	assert.Equal(t, ErrNothingToUndo, err)
	assert.Equal(t, map[string]bool{"b": true, "c": true}, s.Hidden(owner))
	assert.Equal(t, map[string]bool{"z": true}, s.Hidden(other))

	pending, ok := s.Pending(owner)
	require.True(t, ok)
	assert.Equal(t, second.Token, pending.Token)
}

func TestScheduler_flush(t *testing.T) {
	s := NewScheduler(time.Hour, new(testLogger))
	rec := new(recorder)

	s.Schedule(Owner("admissions", "s1"), []string{"a"}, rec.commit)
	s.Schedule(Owner("roll_statements", "s1"), []string{"b"}, rec.commit)
	s.Flush(context.Background())

	assert.Equal(t, []string{"a", "b"}, rec.ids())
	assert.Nil(t, s.Hidden(Owner("admissions", "s1")))
}

func TestScheduler_commitFailureIsLogged(t *testing.T) {
	logger := new(testLogger)
	s := NewScheduler(window, logger)
	owner := Owner("admissions", "s1")

	s.Schedule(owner, []string{"a"}, func(context.Context, []string) error { return errors.New("db down") })

	assert.Eventually(t, func() bool {
		logger.mu.Lock()
		defer logger.mu.Unlock()
		return len(logger.errors) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, s.Hidden(owner), "records reappear after a failed commit")
}
