package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/anonto42/miniblog-bot/internal/repositories"
	"github.com/looplab/fsm"
)

const (
	StateIdle             = "idle"
	StateAwaitingPostText = "awaiting_post_text"
)

const (
	EventBegin  = "begin"
	EventSubmit = "submit"
	EventCancel = "cancel"
)

// DefaultTimeout is how long a conversation may stay in the wizard without input
const DefaultTimeout = 10 * time.Minute

// ErrNotComposing is returned when text is submitted outside the wizard
var ErrNotComposing = errors.New("conversation is not composing a post")

func newStateMachine(initial string, callbacks fsm.Callbacks) *fsm.FSM {
	return fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: EventBegin, Src: []string{StateIdle}, Dst: StateAwaitingPostText},
			{Name: EventSubmit, Src: []string{StateAwaitingPostText}, Dst: StateIdle},
			{Name: EventCancel, Src: []string{StateAwaitingPostText}, Dst: StateIdle},
		},
		callbacks,
	)
}

// Wizard drives post composition. The state of each conversation lives in the
// session store, so nothing is shared between conversations in memory.
type Wizard struct {
	sessions repositories.SessionRepository
	posts    repositories.PostRepository
	timeout  time.Duration
	now      func() time.Time
}

// New creates a Wizard; a non-positive timeout falls back to DefaultTimeout
func New(sessions repositories.SessionRepository, posts repositories.PostRepository, timeout time.Duration) *Wizard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Wizard{
		sessions: sessions,
		posts:    posts,
		timeout:  timeout,
		now:      time.Now,
	}
}

// State returns the state of the session under key; missing or expired sessions are idle
func (w *Wizard) State(ctx context.Context, key string) (string, error) {
	session, err := w.sessions.GetSession(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to load session %s: %w", key, err)
	}
	if session == nil || session.Expired(w.now()) {
		return StateIdle, nil
	}
	return session.State, nil
}

// Begin moves the session into the wizard. Beginning again while already
// composing only extends the session.
func (w *Wizard) Begin(ctx context.Context, key string) error {
	state, err := w.State(ctx, key)
	if err != nil {
		return err
	}

	sm := newStateMachine(state, fsm.Callbacks{})
	if err := sm.Event(ctx, EventBegin); err != nil {
		var invalid fsm.InvalidEventError
		if !errors.As(err, &invalid) {
			return err
		}
	}
	return w.persist(ctx, key, sm.Current())
}

// Submit creates the post and returns the session to idle. If the post is
// rejected the session stays in the wizard and the error is returned. Once the
// post exists Submit succeeds, even if the session could not be cleared.
func (w *Wizard) Submit(ctx context.Context, key string, authorID int64, text string) (*models.Post, error) {
	state, err := w.State(ctx, key)
	if err != nil {
		return nil, err
	}

	var post *models.Post
	sm := newStateMachine(state, fsm.Callbacks{
		"before_" + EventSubmit: func(ctx context.Context, e *fsm.Event) {
			created, err := w.posts.CreatePost(ctx, authorID, text)
			if err != nil {
				e.Cancel(err)
				return
			}
			post = created
		},
	})

	if err := sm.Event(ctx, EventSubmit); err != nil {
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return nil, ErrNotComposing
		}
		var canceled fsm.CanceledError
		if errors.As(err, &canceled) && canceled.Err != nil {
			if errors.Is(canceled.Err, models.ErrInvalidInput) {
				if err := w.persist(ctx, key, sm.Current()); err != nil {
					return nil, err
				}
			}
			return nil, canceled.Err
		}
		return nil, err
	}

	if err := w.persist(ctx, key, sm.Current()); err != nil {
		log.Printf("[WIZARD] post %s created but session %s was not cleared: %v", post.ID, key, err)
	}
	return post, nil
}

// Cancel leaves the wizard. It reports false when there was nothing to cancel.
func (w *Wizard) Cancel(ctx context.Context, key string) (bool, error) {
	state, err := w.State(ctx, key)
	if err != nil {
		return false, err
	}

	sm := newStateMachine(state, fsm.Callbacks{})
	if err := sm.Event(ctx, EventCancel); err != nil {
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return false, nil
		}
		return false, err
	}
	return true, w.persist(ctx, key, sm.Current())
}

func (w *Wizard) persist(ctx context.Context, key string, state string) error {
	if state == StateIdle {
		return w.sessions.DeleteSession(ctx, key)
	}
	now := w.now()
	return w.sessions.SaveSession(ctx, &models.Session{
		Key:       key,
		State:     state,
		UpdatedAt: now,
		ExpiresAt: now.Add(w.timeout),
	})
}
