package notifications_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/cache"
	"github.com/pulsefeed/backend/internal/database/testutil"
	"github.com/pulsefeed/backend/internal/invalidation"
	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/notifications"
	"github.com/pulsefeed/backend/internal/realtime"
	"github.com/pulsefeed/backend/internal/sinks"
	apperrors "github.com/pulsefeed/backend/pkg/errors"
)

type testEnv struct {
	svc   *notifications.Service
	store cache.Store
	db    *gorm.DB
	hub   *realtime.Hub
}

func newTestEnv(t *testing.T, sinkFanout *sinks.Fanout) *testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)
	hub := realtime.NewHub()

	svc, err := notifications.NewService(db, store, hub, sinkFanout, invalidation.NewPolicy(store), notifications.Settings{})
	require.NoError(t, err)

	return &testEnv{svc: svc, store: store, db: db, hub: hub}
}

func createUser(t *testing.T, db *gorm.DB, fullName string) *models.User {
	t.Helper()

	user := &models.User{
		Username: "u-" + uuid.NewString(),
		Email:    uuid.NewString() + "@example.com",
		FullName: fullName,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func countNotifications(t *testing.T, db *gorm.DB, receiverID string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("receiver_id = ?", receiverID).
		Count(&count).Error)
	return count
}

type captureChannel struct {
	mu     sync.Mutex
	frames [][]byte
}

func (c *captureChannel) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append([]byte(nil), payload...))
	return nil
}

func (c *captureChannel) Close() error { return nil }

func (c *captureChannel) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.frames...)
}

func TestNotifyLikeCreatesNotification(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := createUser(t, env.db, "")
	liker := createUser(t, env.db, "Alice Doe")
	postID := uuid.NewString()

	payload, err := env.svc.NotifyLike(context.Background(), postID, liker.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, models.NotificationTypeLike, payload.Type)
	assert.Equal(t, "New Like", payload.Title)
	assert.Equal(t, "Alice Doe liked your post", payload.Message)
	require.NotNil(t, payload.Sender)
	assert.Equal(t, liker.ID, payload.Sender.ID)
	require.NotNil(t, payload.RelatedPostID)
	assert.Equal(t, postID, *payload.RelatedPostID)
	assert.False(t, payload.IsRead)

	assert.Equal(t, int64(1), countNotifications(t, env.db, owner.ID))

	unread, err := env.svc.UnreadCount(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestNotifyLikeDeduplicates(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := createUser(t, env.db, "")
	liker := createUser(t, env.db, "Bob")
	postID := uuid.NewString()

	ch := &captureChannel{}
	env.hub.Connect(owner.ID, ch)
	defer env.hub.Disconnect(owner.ID, ch)

	first, err := env.svc.NotifyLike(context.Background(), postID, liker.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := env.svc.NotifyLike(context.Background(), postID, liker.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, second)

	// Same row, refreshed timestamp.
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
	assert.Equal(t, int64(1), countNotifications(t, env.db, owner.ID))

	// Counter bumped exactly once and no second realtime push.
	unread, err := env.svc.UnreadCount(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.Len(t, ch.received(), 1)
}

func TestNotifySelfSuppressed(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := createUser(t, env.db, "")

	payload, err := env.svc.NotifyLike(context.Background(), uuid.NewString(), owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, int64(0), countNotifications(t, env.db, owner.ID))
}

func TestNotifyInvalidType(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.svc.Notify(context.Background(), notifications.Event{
		ReceiverID: uuid.NewString(),
		Type:       "poke",
	})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)
}

func TestReplyNotifiesParentAuthorOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	postOwner := createUser(t, env.db, "")
	parentAuthor := createUser(t, env.db, "Carol")
	replier := createUser(t, env.db, "Dave")
	postID := uuid.NewString()

	parent := &models.Comment{UserID: parentAuthor.ID, PostID: postID}
	require.NoError(t, env.db.Create(parent).Error)

	payload, err := env.svc.NotifyComment(context.Background(), uuid.NewString(), replier.ID, postID, postOwner.ID, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, models.NotificationTypeReply, payload.Type)
	assert.Equal(t, "Dave replied to your comment", payload.Message)
	assert.Equal(t, int64(1), countNotifications(t, env.db, parentAuthor.ID))
	// The post owner is never notified for a reply.
	assert.Equal(t, int64(0), countNotifications(t, env.db, postOwner.ID))
}

func TestCommentNotifiesPostOwner(t *testing.T) {
	env := newTestEnv(t, nil)
	postOwner := createUser(t, env.db, "")
	commenter := createUser(t, env.db, "Erin")

	payload, err := env.svc.NotifyComment(context.Background(), uuid.NewString(), commenter.ID, uuid.NewString(), postOwner.ID, "")
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, models.NotificationTypeComment, payload.Type)
	assert.Equal(t, "Erin commented on your post", payload.Message)
}

func TestReplyToOwnCommentSuppressed(t *testing.T) {
	env := newTestEnv(t, nil)
	postOwner := createUser(t, env.db, "")
	replier := createUser(t, env.db, "")
	postID := uuid.NewString()

	parent := &models.Comment{UserID: replier.ID, PostID: postID}
	require.NoError(t, env.db.Create(parent).Error)

	payload, err := env.svc.NotifyComment(context.Background(), uuid.NewString(), replier.ID, postID, postOwner.ID, parent.ID)
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, int64(0), countNotifications(t, env.db, postOwner.ID))
}

func TestNotifyFollowEndToEnd(t *testing.T) {
	env := newTestEnv(t, nil)
	follower := createUser(t, env.db, "Frank")
	followed := createUser(t, env.db, "")

	ch := &captureChannel{}
	env.hub.Connect(followed.ID, ch)
	defer env.hub.Disconnect(followed.ID, ch)

	payload, err := env.svc.NotifyFollow(context.Background(), follower.ID, followed.ID)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, models.NotificationTypeFollow, payload.Type)
	assert.Equal(t, "Frank started following you", payload.Message)

	unread, err := env.svc.UnreadCount(context.Background(), followed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	frames := ch.received()
	require.Len(t, frames, 1)

	var envelope struct {
		Type   string                `json:"type"`
		Action string                `json:"action"`
		Data   notifications.Payload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frames[0], &envelope))
	assert.Equal(t, "notification", envelope.Type)
	assert.Equal(t, realtime.ActionNew, envelope.Action)
	assert.Equal(t, models.NotificationTypeFollow, envelope.Data.Type)
	require.NotNil(t, envelope.Data.Sender)
	assert.Equal(t, follower.ID, envelope.Data.Sender.ID)

	// A duplicate follow refreshes the row without a second push or counter bump.
	_, err = env.svc.NotifyFollow(context.Background(), follower.ID, followed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countNotifications(t, env.db, followed.ID))

	unread, err = env.svc.UnreadCount(context.Background(), followed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.Len(t, ch.received(), 1)
}

func TestNotifyMentionFansOutAndSkipsSender(t *testing.T) {
	env := newTestEnv(t, nil)
	sender := createUser(t, env.db, "Grace")
	first := createUser(t, env.db, "")
	second := createUser(t, env.db, "")

	created, err := env.svc.NotifyMention(context.Background(), uuid.NewString(), sender.ID,
		[]string{first.ID, sender.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, payload := range created {
		assert.Equal(t, models.NotificationTypeMention, payload.Type)
		assert.Equal(t, "Grace mentioned you in a post", payload.Message)
	}
	assert.Equal(t, int64(0), countNotifications(t, env.db, sender.ID))
}

func TestNotifySystemRendersContent(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")

	payload, err := env.svc.NotifySystem(context.Background(), receiver.ID, "Scheduled maintenance tonight")
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, "System Notification", payload.Title)
	assert.Equal(t, "Scheduled maintenance tonight", payload.Message)
	assert.Nil(t, payload.Sender)
}

func TestNotifySystemKeepsDistinctAnnouncements(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	ctx := context.Background()

	first, err := env.svc.NotifySystem(ctx, receiver.ID, "Scheduled maintenance tonight")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := env.svc.NotifySystem(ctx, receiver.ID, "New feature: dark mode")
	require.NoError(t, err)
	require.NotNil(t, second)

	// Different announcements are separate notifications with their own text.
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Scheduled maintenance tonight", first.Message)
	assert.Equal(t, "New feature: dark mode", second.Message)
	assert.Equal(t, int64(2), countNotifications(t, env.db, receiver.ID))

	// An identical repeat refreshes instead of duplicating.
	repeat, err := env.svc.NotifySystem(ctx, receiver.ID, "Scheduled maintenance tonight")
	require.NoError(t, err)
	require.NotNil(t, repeat)
	assert.Equal(t, first.ID, repeat.ID)
	assert.Equal(t, int64(2), countNotifications(t, env.db, receiver.ID))
}

func TestFollowDedupBackedByUniqueIndex(t *testing.T) {
	env := newTestEnv(t, nil)
	follower := createUser(t, env.db, "Wendy")
	followed := createUser(t, env.db, "")

	payload, err := env.svc.NotifyFollow(context.Background(), follower.ID, followed.ID)
	require.NoError(t, err)
	require.NotNil(t, payload)

	// A producer that raced past the lookup must hit the store's unique
	// index even though follow rows carry a NULL related post.
	duplicate := &models.Notification{
		ReceiverID: followed.ID,
		SenderID:   &follower.ID,
		Type:       models.NotificationTypeFollow,
	}
	require.Error(t, env.db.Create(duplicate).Error)
	assert.Equal(t, int64(1), countNotifications(t, env.db, followed.ID))
}

func TestMarkAllReadResyncsDriftedCounter(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	ctx := context.Background()

	// Drifted counter cache: the store has no unread rows at all.
	key := fmt.Sprintf("user:%s:unread_count", receiver.ID)
	require.NoError(t, env.store.Set(ctx, key, []byte("5"), time.Minute))

	affected, err := env.svc.MarkAllRead(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	unread, err := env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestUnreadCounterConsistency(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	ctx := context.Background()

	liker := createUser(t, env.db, "")
	var created []notifications.Payload
	for i := 0; i < 3; i++ {
		payload, err := env.svc.NotifyLike(ctx, uuid.NewString(), liker.ID, receiver.ID)
		require.NoError(t, err)
		require.NotNil(t, payload)
		created = append(created, *payload)
	}

	unread, err := env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	_, err = env.svc.MarkRead(ctx, created[0].ID, receiver.ID)
	require.NoError(t, err)

	unread, err = env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	affected, err := env.svc.MarkAllRead(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	unread, err = env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMarkReadIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "")
	ctx := context.Background()

	created, err := env.svc.NotifyLike(ctx, uuid.NewString(), liker.ID, receiver.ID)
	require.NoError(t, err)

	first, err := env.svc.MarkRead(ctx, created.ID, receiver.ID)
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	again, err := env.svc.MarkRead(ctx, created.ID, receiver.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)

	// No double decrement.
	unread, err := env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "")
	stranger := createUser(t, env.db, "")

	created, err := env.svc.NotifyLike(context.Background(), uuid.NewString(), liker.ID, receiver.ID)
	require.NoError(t, err)

	_, err = env.svc.MarkRead(context.Background(), created.ID, stranger.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteDecrementsOnlyIfUnread(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "")
	ctx := context.Background()

	first, err := env.svc.NotifyLike(ctx, uuid.NewString(), liker.ID, receiver.ID)
	require.NoError(t, err)
	second, err := env.svc.NotifyLike(ctx, uuid.NewString(), liker.ID, receiver.ID)
	require.NoError(t, err)

	_, err = env.svc.MarkRead(ctx, first.ID, receiver.ID)
	require.NoError(t, err)

	// Deleting a read notification leaves the counter alone.
	require.NoError(t, env.svc.Delete(ctx, first.ID, receiver.ID))
	unread, err := env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, env.svc.Delete(ctx, second.ID, receiver.ID))
	unread, err = env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	assert.ErrorIs(t, env.svc.Delete(ctx, second.ID, receiver.ID), apperrors.ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.NotifyLike(ctx, uuid.NewString(), liker.ID, receiver.ID)
		require.NoError(t, err)
	}

	deleted, err := env.svc.DeleteAll(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, int64(0), countNotifications(t, env.db, receiver.ID))

	unread, err := env.svc.UnreadCount(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	deleted, err = env.svc.DeleteAll(ctx, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestLatestListBound(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "")
	ctx := context.Background()

	var lastPostID string
	for i := 0; i < 15; i++ {
		lastPostID = uuid.NewString()
		_, err := env.svc.NotifyLike(ctx, lastPostID, liker.ID, receiver.ID)
		require.NoError(t, err)
	}

	latest, err := env.svc.Latest(ctx, receiver.ID, 10)
	require.NoError(t, err)
	require.Len(t, latest, 10)

	require.NotNil(t, latest[0].RelatedPostID)
	assert.Equal(t, lastPostID, *latest[0].RelatedPostID)
}

func TestLatestRebuildsFromDurableStore(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "Heidi")
	ctx := context.Background()

	var lastPostID string
	for i := 0; i < 3; i++ {
		lastPostID = uuid.NewString()
		_, err := env.svc.NotifyLike(ctx, lastPostID, liker.ID, receiver.ID)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	// Simulate an evicted list; the read must fall back to the durable store
	// and repopulate the cache newest-first.
	require.NoError(t, env.store.Delete(ctx, fmt.Sprintf("user:%s:latest_notifications", receiver.ID)))

	latest, err := env.svc.Latest(ctx, receiver.ID, 10)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	require.NotNil(t, latest[0].RelatedPostID)
	assert.Equal(t, lastPostID, *latest[0].RelatedPostID)
	assert.Equal(t, "Heidi liked your post", latest[0].Message)

	cachedAgain, err := env.svc.Latest(ctx, receiver.ID, 10)
	require.NoError(t, err)
	require.Len(t, cachedAgain, 3)
	assert.Equal(t, latest[0].ID, cachedAgain[0].ID)
}

func TestListPaginationAndCounts(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "")
	ctx := context.Background()

	var created []notifications.Payload
	for i := 0; i < 5; i++ {
		payload, err := env.svc.NotifyLike(ctx, uuid.NewString(), liker.ID, receiver.ID)
		require.NoError(t, err)
		created = append(created, *payload)
	}

	page, err := env.svc.List(ctx, receiver.ID, 0, 2, false)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(5), page.UnreadCount)

	// Second read of the same page is served from cache.
	cached, err := env.svc.List(ctx, receiver.ID, 0, 2, false)
	require.NoError(t, err)
	assert.Equal(t, page.Total, cached.Total)
	assert.Equal(t, page.UnreadCount, cached.UnreadCount)
	require.Len(t, cached.Notifications, 2)
	assert.Equal(t, page.Notifications[0].ID, cached.Notifications[0].ID)

	_, err = env.svc.MarkRead(ctx, created[0].ID, receiver.ID)
	require.NoError(t, err)

	// Mark-read invalidates the page cache, so the unread filter sees the change.
	unreadPage, err := env.svc.List(ctx, receiver.ID, 0, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(4), unreadPage.Total)
	assert.Len(t, unreadPage.Notifications, 4)
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	actor := createUser(t, env.db, "")
	ctx := context.Background()

	_, err := env.svc.NotifyLike(ctx, uuid.NewString(), actor.ID, receiver.ID)
	require.NoError(t, err)
	_, err = env.svc.NotifyFollow(ctx, actor.ID, receiver.ID)
	require.NoError(t, err)
	_, err = env.svc.NotifySystem(ctx, receiver.ID, "welcome")
	require.NoError(t, err)

	stats, err := env.svc.GetStats(ctx, receiver.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalCount)
	assert.Equal(t, int64(3), stats.UnreadCount)
	assert.Equal(t, int64(3), stats.Last24hCount)
	assert.Equal(t, int64(1), stats.CountsByType[models.NotificationTypeLike])
	assert.Equal(t, int64(1), stats.CountsByType[models.NotificationTypeFollow])
	assert.Equal(t, int64(1), stats.CountsByType[models.NotificationTypeSystem])
}

func TestCleanupOldNotifications(t *testing.T) {
	env := newTestEnv(t, nil)
	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "")
	ctx := context.Background()

	recent, err := env.svc.NotifyLike(ctx, uuid.NewString(), liker.ID, receiver.ID)
	require.NoError(t, err)

	likerID := liker.ID
	old := models.Notification{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC().AddDate(0, 0, -40),
		},
		ReceiverID: receiver.ID,
		SenderID:   &likerID,
		Type:       models.NotificationTypeSystem,
		Content:    "stale",
	}
	require.NoError(t, env.db.Create(&old).Error)

	deleted, err := env.svc.CleanupOld(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	var remaining []models.Notification
	require.NoError(t, env.db.Where("receiver_id = ?", receiver.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}

type recordingSink struct {
	mu  sync.Mutex
	got []sinks.Delivery
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(ctx context.Context, d sinks.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, d)
	return nil
}

func TestNotifyHandsOffToSinks(t *testing.T) {
	sink := &recordingSink{}
	fanout := sinks.NewFanout(sink)
	env := newTestEnv(t, fanout)

	receiver := createUser(t, env.db, "")
	liker := createUser(t, env.db, "Ivan")

	payload, err := env.svc.NotifyLike(context.Background(), uuid.NewString(), liker.ID, receiver.ID)
	require.NoError(t, err)
	fanout.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.got, 1)
	assert.Equal(t, receiver.ID, sink.got[0].RecipientID)
	assert.Equal(t, receiver.Email, sink.got[0].RecipientEmail)
	assert.Equal(t, "New Like", sink.got[0].Title)
	assert.Equal(t, "Ivan liked your post", sink.got[0].Body)
	assert.Equal(t, payload.ID, sink.got[0].Data["notification_id"])
}
