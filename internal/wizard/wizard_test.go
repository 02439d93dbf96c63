package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/anonto42/miniblog-bot/internal/repositories"
	"github.com/anonto42/miniblog-bot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorID = int64(1)

var sessionKey = models.SessionKey(authorID, 100)

func newWizard(t *testing.T) (*Wizard, *repositories.Repositories) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	require.NoError(t, repositories.AutoMigrate(db))
	repos := repositories.NewPostgresRepositories(db)

	_, err := repos.Users.EnsureUser(context.Background(), models.Identity{ID: authorID, Username: "alice", FirstName: "Alice"})
	require.NoError(t, err)

	return New(repos.Sessions, repos.Posts, time.Minute), repos
}

func TestWizard_BeginAndSubmit(t *testing.T) {
	ctx := context.Background()
	w, repos := newWizard(t)

	state, err := w.State(ctx, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	require.NoError(t, w.Begin(ctx, sessionKey))
	state, err = w.State(ctx, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPostText, state)

	post, err := w.Submit(ctx, sessionKey, authorID, "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", post.Text)

	state, err = w.State(ctx, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	author, err := repos.Users.GetUserByID(ctx, authorID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), author.PostCount)
}

func TestWizard_BeginTwice(t *testing.T) {
	ctx := context.Background()
	w, _ := newWizard(t)

	require.NoError(t, w.Begin(ctx, sessionKey))
	require.NoError(t, w.Begin(ctx, sessionKey))

	state, err := w.State(ctx, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPostText, state)
}

func TestWizard_SubmitInvalidTextStaysInWizard(t *testing.T) {
	ctx := context.Background()
	w, repos := newWizard(t)
	require.NoError(t, w.Begin(ctx, sessionKey))

	for _, text := range []string{"   ", strings.Repeat("x", models.MaxPostLength+1)} {
		_, err := w.Submit(ctx, sessionKey, authorID, text)
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		state, err := w.State(ctx, sessionKey)
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingPostText, state)
	}

	count, err := repos.Posts.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = w.Submit(ctx, sessionKey, authorID, "finally")
	require.NoError(t, err)
}

func TestWizard_SubmitOutsideWizard(t *testing.T) {
	ctx := context.Background()
	w, repos := newWizard(t)

	_, err := w.Submit(ctx, sessionKey, authorID, "stray text")
	assert.ErrorIs(t, err, ErrNotComposing)

	count, err := repos.Posts.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestWizard_Cancel(t *testing.T) {
	ctx := context.Background()
	w, _ := newWizard(t)

	cancelled, err := w.Cancel(ctx, sessionKey)
	require.NoError(t, err)
	assert.False(t, cancelled)

	require.NoError(t, w.Begin(ctx, sessionKey))
	cancelled, err = w.Cancel(ctx, sessionKey)
	require.NoError(t, err)
	assert.True(t, cancelled)

	state, err := w.State(ctx, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestWizard_Timeout(t *testing.T) {
	ctx := context.Background()
	w, _ := newWizard(t)

	require.NoError(t, w.Begin(ctx, sessionKey))

	w.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	state, err := w.State(ctx, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	_, err = w.Submit(ctx, sessionKey, authorID, "too late")
	assert.ErrorIs(t, err, ErrNotComposing)
}

func TestWizard_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	w, _ := newWizard(t)

	require.NoError(t, w.Begin(ctx, sessionKey))

	state, err := w.State(ctx, models.SessionKey(authorID+1, 100))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestWizard_SameChatDifferentMembers(t *testing.T) {
	ctx := context.Background()
	w, _ := newWizard(t)

	group := int64(-100123)
	require.NoError(t, w.Begin(ctx, models.SessionKey(authorID, group)))

	state, err := w.State(ctx, models.SessionKey(authorID+1, group))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	state, err = w.State(ctx, models.SessionKey(authorID, group))
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPostText, state)
}

// stuckSessions saves sessions but cannot delete them
type stuckSessions struct {
	repositories.SessionRepository
}

func (s stuckSessions) DeleteSession(ctx context.Context, key string) error {
	return errors.New("session store unavailable")
}

func TestWizard_SubmitSucceedsWhenSessionNotCleared(t *testing.T) {
	ctx := context.Background()
	_, repos := newWizard(t)
	w := New(stuckSessions{repos.Sessions}, repos.Posts, time.Minute)

	require.NoError(t, w.Begin(ctx, sessionKey))
	post, err := w.Submit(ctx, sessionKey, authorID, "kept")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "kept", post.Text)

	count, err := repos.Posts.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNew_DefaultTimeout(t *testing.T) {
	w := New(nil, nil, 0)
	assert.Equal(t, DefaultTimeout, w.timeout)
}
