// Package undo implements deletions that only happen once an undo window has passed.
// Records scheduled for deletion are hidden from listings right away; the deletion is
// committed when the window closes, unless the owner undoes it first.
package undo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
)

var ErrNothingToUndo = errors.New("nothing to undo")

type (
	// CommitFunc deletes the records for good.
	CommitFunc func(ctx context.Context, ids []string) error

	Batch struct {
		Token     string    `json:"token"`
		IDs       []string  `json:"ids"`
		ExpiresAt time.Time `json:"expiresAt"`
	}

	pending struct {
		batch  Batch
		hidden map[string]bool
		commit CommitFunc
		timer  *time.Timer
	}

	// Scheduler keeps at most one pending batch per owner.
	Scheduler struct {
		mu      sync.Mutex
		window  time.Duration
		logger  core.Logger
		pending map[string]*pending // {owner: batch}
	}
)

func NewScheduler(window time.Duration, logger core.Logger) *Scheduler {
	return &Scheduler{
		window:  window,
		logger:  logger,
		pending: make(map[string]*pending),
	}
}

// Owner builds the key grouping the batches of one collection of one school.
func Owner(collection, schoolID string) string {
	return collection + ":" + schoolID
}

// Schedule hides ids for owner and commits their deletion once the window has passed.
// A batch still pending for the same owner is committed right away.
func (s *Scheduler) Schedule(owner string, ids []string, commit CommitFunc) Batch {
	p := &pending{
		batch: Batch{
			Token:     uuid.NewString(),
			IDs:       append([]string(nil), ids...),
			ExpiresAt: core.NowFunc().UTC().Add(s.window),
		},
		hidden: make(map[string]bool, len(ids)),
		commit: commit,
	}
	for _, id := range ids {
		p.hidden[id] = true
	}

	s.mu.Lock()
	prev := s.take(owner)
	s.pending[owner] = p
	p.timer = time.AfterFunc(s.window, func() { s.expire(owner, p) })
	s.mu.Unlock()

	if prev != nil {
		s.run(context.Background(), owner, prev)
	}
	return p.batch
}

// Undo cancels the pending batch of owner identified by token and returns the restored ids.
func (s *Scheduler) Undo(owner, token string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[owner]
	if !ok || p.batch.Token != token {
		return nil, ErrNothingToUndo
	}
	s.take(owner)
	return p.batch.IDs, nil
}

// Hidden returns the ids of owner pending deletion.
func (s *Scheduler) Hidden(owner string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[owner]
	if !ok {
		return nil
	}
	hidden := make(map[string]bool, len(p.hidden))
	for id := range p.hidden {
		hidden[id] = true
	}
	return hidden
}

// Pending returns the batch of owner still waiting for its window to close.
func (s *Scheduler) Pending(owner string) (Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[owner]; ok {
		return p.batch, true
	}
	return Batch{}, false
}

// Flush commits every pending batch now. Called on shutdown.
func (s *Scheduler) Flush(ctx context.Context) {
	s.mu.Lock()
	all := make(map[string]*pending, len(s.pending))
	for owner := range s.pending {
		all[owner] = s.take(owner)
	}
	s.mu.Unlock()

	for owner, p := range all {
		s.run(ctx, owner, p)
	}
}

// take removes the batch of owner and stops its timer. s.mu must be held.
func (s *Scheduler) take(owner string) *pending {
	p, ok := s.pending[owner]
	if !ok {
		return nil
	}
	p.timer.Stop()
	delete(s.pending, owner)
	return p
}

func (s *Scheduler) expire(owner string, p *pending) {
	s.mu.Lock()
	if s.pending[owner] != p { // undone, replaced or flushed
		s.mu.Unlock()
		return
	}
	delete(s.pending, owner)
	s.mu.Unlock()

	s.run(context.Background(), owner, p)
}

func (s *Scheduler) run(ctx context.Context, owner string, p *pending) {
	if err := p.commit(ctx, p.batch.IDs); err != nil {
		s.logger.Error(fmt.Sprintf("committing deletion of %s %v: %v", owner, p.batch.IDs, err), err)
	}
}
