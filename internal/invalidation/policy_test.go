package invalidation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/backend/internal/cache"
	"github.com/pulsefeed/backend/internal/database/testutil"
	"github.com/pulsefeed/backend/internal/invalidation"
)

func TestPatternsForComment(t *testing.T) {
	m := invalidation.CommentMutation(invalidation.MutationCreate, "c-1", "p-1", "author-1", "")

	patterns := invalidation.Patterns(m)

	assert.Contains(t, patterns, "*comment:c-1*")
	assert.Contains(t, patterns, "*post:p-1:comments*")
	assert.Contains(t, patterns, "*post:p-1:comment_tree*")
	assert.Contains(t, patterns, "*user:author-1:comments*")
	assert.NotContains(t, patterns, "*comment::replies*")
}

func TestPatternsForReplyIncludeParent(t *testing.T) {
	m := invalidation.CommentMutation(invalidation.MutationCreate, "c-2", "p-1", "author-2", "c-1")

	patterns := invalidation.Patterns(m)

	assert.Contains(t, patterns, "*comment:c-1:replies*")
	assert.Contains(t, patterns, "*comment:c-1:*")
}

func TestPatternsForPostLike(t *testing.T) {
	m := invalidation.LikeMutation(invalidation.MutationCreate, "liker-1", "p-1", "")

	patterns := invalidation.Patterns(m)

	assert.Contains(t, patterns, "like:user:liker-1:post:p-1")
	assert.Contains(t, patterns, "post:p-1:likes:*")
	assert.Contains(t, patterns, "post:p-1:like_count")
	assert.Contains(t, patterns, "user:liker-1:likes:*")
	assert.Contains(t, patterns, "trending_posts:*")
	assert.Contains(t, patterns, "recent_likes:*")
}

func TestPatternsForCommentLike(t *testing.T) {
	m := invalidation.LikeMutation(invalidation.MutationDelete, "liker-1", "", "c-1")

	patterns := invalidation.Patterns(m)

	assert.Contains(t, patterns, "comment:c-1:like_count")
	assert.Contains(t, patterns, "comment:c-1:likes:*")
	assert.NotContains(t, patterns, "post:c-1:like_count")
	assert.Contains(t, patterns, "trending_posts:*")
}

func TestPatternsForFollowCoverBothUsers(t *testing.T) {
	m := invalidation.FollowMutation(invalidation.MutationCreate, "u-1", "u-2")

	patterns := invalidation.Patterns(m)

	assert.Contains(t, patterns, "follow:u-1:u-2")
	assert.Contains(t, patterns, "follow:u-2:u-1")
	assert.Contains(t, patterns, "user:u-1:following_count")
	assert.Contains(t, patterns, "user:u-2:follower_count")
	assert.Contains(t, patterns, "user:u-1:follow_suggestions:*")
	assert.Contains(t, patterns, "user:u-2:follow_suggestions:*")
	assert.Contains(t, patterns, "mutual:*u-1*")
	assert.Contains(t, patterns, "mutual:*u-2*")
}

func TestPatternsForNotification(t *testing.T) {
	m := invalidation.NotificationMutation(invalidation.MutationUpdate, "u-9")

	patterns := invalidation.Patterns(m)

	assert.Equal(t, []string{
		"user:u-9:notifications:*",
		"user:u-9:latest_notifications",
	}, patterns)
}

func TestInvalidateClearsLikeKeys(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "comment:inv-c1:like_count", []byte("4"), time.Minute))
	require.NoError(t, store.Set(ctx, "trending_posts:page:1", []byte("[]"), time.Minute))
	require.NoError(t, store.Set(ctx, "recent_likes:global", []byte("[]"), time.Minute))
	require.NoError(t, store.Set(ctx, "comment:inv-other:like_count", []byte("2"), time.Minute))

	policy := invalidation.NewPolicy(store)
	policy.Invalidate(ctx, invalidation.LikeMutation(invalidation.MutationCreate, "liker-inv", "", "inv-c1"))

	for _, key := range []string{
		"comment:inv-c1:like_count",
		"trending_posts:page:1",
		"recent_likes:global",
	} {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "expected %s to be cleared", key)
	}

	// Unrelated comments keep their keys.
	value, ok, err := store.Get(ctx, "comment:inv-other:like_count")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("2"), value)
}

type failingStore struct {
	cache.Store
	calls int
}

func (s *failingStore) DeletePattern(ctx context.Context, pattern string) error {
	s.calls++
	return errors.New("store unreachable")
}

func TestInvalidateSwallowsStoreFailures(t *testing.T) {
	store := &failingStore{}
	policy := invalidation.NewPolicy(store)

	assert.NotPanics(t, func() {
		policy.Invalidate(context.Background(), invalidation.FollowMutation(invalidation.MutationCreate, "u-1", "u-2"))
	})
	assert.Greater(t, store.calls, 0)
}
