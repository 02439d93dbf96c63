package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/anonto42/miniblog-bot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLRepositories(t *testing.T) *Repositories {
	t.Helper()
	db := testutil.OpenSQLite(t)
	require.NoError(t, AutoMigrate(db))
	return NewPostgresRepositories(db)
}

func register(t *testing.T, repos *Repositories, id int64, username string) *models.User {
	t.Helper()
	user, err := repos.Users.EnsureUser(context.Background(), models.Identity{
		ID:        id,
		Username:  username,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
	})
	require.NoError(t, err)
	return user
}

func TestPostgresUserRepository_EnsureUser(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)

	user := register(t, repos, 42, "alice")
	assert.Equal(t, int64(42), user.UserID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, int64(0), user.PostCount)
	assert.False(t, user.CreatedAt.IsZero())

	_, err := repos.Posts.CreatePost(ctx, 42, "hello")
	require.NoError(t, err)

	again, err := repos.Users.EnsureUser(ctx, models.Identity{ID: 42, Username: "alice_renamed", FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice_renamed", again.Username)
	assert.Equal(t, int64(1), again.PostCount, "re-registration must not reset the post counter")
	assert.True(t, user.CreatedAt.Equal(again.CreatedAt))

	count, err := repos.Users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgresUserRepository_EnsureUserConcurrent(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repos.Users.EnsureUser(ctx, models.Identity{ID: 7, Username: "bob", FirstName: "Bob"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := repos.Users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgresUserRepository_Lookup(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")

	user, err := repos.Users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)

	_, err = repos.Users.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = repos.Users.GetUserByUsername(ctx, "")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = repos.Users.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestPostgresPostRepository_CreatePost(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")

	post, err := repos.Posts.CreatePost(ctx, 1, "  Hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", post.Text)
	assert.Equal(t, int64(1), post.AuthorID)
	assert.Equal(t, int64(0), post.Likes)
	assert.Empty(t, post.LikedBy)
	assert.NotEmpty(t, post.ID)

	stored, err := repos.Posts.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", stored.Text)

	author, err := repos.Users.GetUserByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), author.PostCount)

	_, err = repos.Posts.CreatePost(ctx, 1, strings.Repeat("a", models.MaxPostLength))
	assert.NoError(t, err)
}

func TestPostgresPostRepository_CreatePostRejected(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")

	tests := []struct {
		name     string
		authorID int64
		text     string
		wantErr  error
	}{
		{"empty", 1, "", models.ErrInvalidInput},
		{"whitespace only", 1, " \n\t ", models.ErrInvalidInput},
		{"too long", 1, strings.Repeat("a", models.MaxPostLength+1), models.ErrInvalidInput},
		{"unknown author", 99, "hello", models.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repos.Posts.CreatePost(ctx, tt.authorID, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	count, err := repos.Posts.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	author, err := repos.Users.GetUserByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), author.PostCount)
}

func TestPostgresPostRepository_LikePost(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")
	register(t, repos, 2, "bob")

	post, err := repos.Posts.CreatePost(ctx, 1, "like me")
	require.NoError(t, err)

	liked, err := repos.Posts.LikePost(ctx, post.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.Likes)
	assert.Equal(t, []int64{2}, liked.LikedBy)
	assert.Contains(t, liked.LikedBy, int64(2))

	_, err = repos.Posts.LikePost(ctx, post.ID, 2)
	assert.ErrorIs(t, err, models.ErrAlreadyLiked)

	// Authors may like their own posts
	liked, err = repos.Posts.LikePost(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), liked.Likes)

	_, err = repos.Posts.LikePost(ctx, "missing", 2)
	assert.ErrorIs(t, err, models.ErrPostNotFound)

	total, err := repos.Posts.SumLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPostgresPostRepository_LikePostConcurrent(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")

	post, err := repos.Posts.CreatePost(ctx, 1, "popular")
	require.NoError(t, err)

	t.Run("distinct users", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := int64(100); i < 120; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_, err := repos.Posts.LikePost(ctx, post.ID, userID)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		stored, err := repos.Posts.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20), stored.Likes)
		assert.Len(t, stored.LikedBy, 20)
	})

	t.Run("same user", func(t *testing.T) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded, rejected := 0, 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repos.Posts.LikePost(ctx, post.ID, 500)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, models.ErrAlreadyLiked):
					rejected++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 9, rejected)

		stored, err := repos.Posts.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(21), stored.Likes)
		assert.Equal(t, int64(len(stored.LikedBy)), stored.Likes)
	})
}

func TestPostgresPostRepository_GetRandomPost(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")

	post, err := repos.Posts.GetRandomPost(ctx)
	require.NoError(t, err)
	assert.Nil(t, post)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		created, err := repos.Posts.CreatePost(ctx, 1, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
		ids[created.ID] = true
	}

	for i := 0; i < 10; i++ {
		post, err := repos.Posts.GetRandomPost(ctx)
		require.NoError(t, err)
		require.NotNil(t, post)
		assert.True(t, ids[post.ID])
	}
}

func TestPostgresPostRepository_GetPostsByUserID(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")
	register(t, repos, 2, "bob")

	for i := 0; i < 7; i++ {
		_, err := repos.Posts.CreatePost(ctx, 1, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := repos.Posts.CreatePost(ctx, 2, "other author")
	require.NoError(t, err)

	posts, err := repos.Posts.GetPostsByUserID(ctx, 1, 5, true)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	assert.Equal(t, "post 6", posts[0].Text)
	assert.Equal(t, "post 2", posts[4].Text)

	posts, err = repos.Posts.GetPostsByUserID(ctx, 1, 2, false)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "post 0", posts[0].Text)

	posts, err = repos.Posts.GetPostsByUserID(ctx, 3, 5, true)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostgresPostRepository_ReadsCarryLikeSet(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	register(t, repos, 1, "alice")
	register(t, repos, 2, "bob")

	post, err := repos.Posts.CreatePost(ctx, 1, "only post")
	require.NoError(t, err)

	random, err := repos.Posts.GetRandomPost(ctx)
	require.NoError(t, err)
	require.NotNil(t, random)
	assert.NotNil(t, random.LikedBy)
	assert.Empty(t, random.LikedBy)

	_, err = repos.Posts.LikePost(ctx, post.ID, 2)
	require.NoError(t, err)
	_, err = repos.Posts.LikePost(ctx, post.ID, 1)
	require.NoError(t, err)

	random, err = repos.Posts.GetRandomPost(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 1}, random.LikedBy)

	posts, err := repos.Posts.GetPostsByUserID(ctx, 1, 5, true)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.ElementsMatch(t, []int64{2, 1}, posts[0].LikedBy)
	assert.Equal(t, int64(len(posts[0].LikedBy)), posts[0].Likes)
}

func TestPostgresSubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)

	err := repos.Subscriptions.Subscribe(ctx, 1, 1)
	assert.ErrorIs(t, err, models.ErrSelfSubscription)

	require.NoError(t, repos.Subscriptions.Subscribe(ctx, 1, 2))
	require.NoError(t, repos.Subscriptions.Subscribe(ctx, 3, 2))
	assert.ErrorIs(t, repos.Subscriptions.Subscribe(ctx, 1, 2), models.ErrAlreadySubscribed)

	subscribed, err := repos.Subscriptions.IsSubscribed(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, subscribed)

	// Edges are directed
	subscribed, err = repos.Subscriptions.IsSubscribed(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, subscribed)

	subscribers, err := repos.Subscriptions.CountSubscribers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), subscribers)

	subscriptions, err := repos.Subscriptions.CountSubscriptions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subscriptions)

	require.NoError(t, repos.Subscriptions.Unsubscribe(ctx, 1, 2))
	require.NoError(t, repos.Subscriptions.Unsubscribe(ctx, 1, 2))

	subscribed, err = repos.Subscriptions.IsSubscribed(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, subscribed)

	subscribers, err = repos.Subscriptions.CountSubscribers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subscribers)
}

func TestPostgresSubscriptionRepository_SubscribeConcurrent(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repos.Subscriptions.Subscribe(ctx, 1, 2)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, models.ErrAlreadySubscribed)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	count, err := repos.Subscriptions.CountSubscribers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgresSessionRepository(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)
	key := models.SessionKey(1, -100123)

	session, err := repos.Sessions.GetSession(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, session)

	now := time.Now()
	require.NoError(t, repos.Sessions.SaveSession(ctx, &models.Session{
		Key:       key,
		State:     "awaiting_post_text",
		UpdatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}))

	session, err = repos.Sessions.GetSession(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "awaiting_post_text", session.State)

	require.NoError(t, repos.Sessions.SaveSession(ctx, &models.Session{
		Key:       key,
		State:     "other",
		UpdatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}))
	session, err = repos.Sessions.GetSession(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "other", session.State)

	other, err := repos.Sessions.GetSession(ctx, models.SessionKey(2, -100123))
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, repos.Sessions.DeleteSession(ctx, key))
	session, err = repos.Sessions.GetSession(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestPostgresSessionRepository_Expired(t *testing.T) {
	ctx := context.Background()
	repos := newSQLRepositories(t)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, repos.Sessions.SaveSession(ctx, &models.Session{
		Key:       "11:11",
		State:     "awaiting_post_text",
		UpdatedAt: past,
		ExpiresAt: past.Add(time.Minute),
	}))

	session, err := repos.Sessions.GetSession(ctx, "11:11")
	require.NoError(t, err)
	assert.Nil(t, session)
}
