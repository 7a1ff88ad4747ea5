// Package notifications converts domain events into persisted, deduplicated
// notifications and keeps the unread-counter and latest-list caches
// consistent with the durable rows.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/cache"
	"github.com/pulsefeed/backend/internal/invalidation"
	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/realtime"
	"github.com/pulsefeed/backend/internal/sinks"
	apperrors "github.com/pulsefeed/backend/pkg/errors"
	"github.com/pulsefeed/backend/pkg/logger"
	"github.com/pulsefeed/backend/pkg/metrics"
	"github.com/pulsefeed/backend/pkg/validator"
)

// Settings tune the cache and retention behaviour of the engine.
type Settings struct {
	PageCacheTTL     time.Duration
	UnreadCountTTL   time.Duration
	LatestListSize   int
	RetentionDays    int
	CleanupBatchSize int
}

func (s *Settings) normalize() {
	if s.PageCacheTTL <= 0 {
		s.PageCacheTTL = 30 * time.Second
	}
	if s.UnreadCountTTL <= 0 {
		s.UnreadCountTTL = time.Minute
	}
	if s.LatestListSize <= 0 {
		s.LatestListSize = 10
	}
	if s.RetentionDays <= 0 {
		s.RetentionDays = 30
	}
	if s.CleanupBatchSize <= 0 {
		s.CleanupBatchSize = 500
	}
}

// Event is one notification-producing domain event.
type Event struct {
	ReceiverID    string `validate:"required"`
	SenderID      string
	Type          string `validate:"required,oneof=like comment reply follow mention share system"`
	RelatedPostID string
	Content       string
	SendEmail     bool
	SendPush      bool
}

// ListResult is a page of notifications plus its counts.
type ListResult struct {
	Notifications []Payload `json:"notifications"`
	Total         int64     `json:"total"`
	Skip          int       `json:"skip"`
	Limit         int       `json:"limit"`
	UnreadCount   int64     `json:"unread_count"`
}

// Stats summarises a user's notification history.
type Stats struct {
	TotalCount   int64            `json:"total_count"`
	UnreadCount  int64            `json:"unread_count"`
	Last24hCount int64            `json:"last_24h_count"`
	CountsByType map[string]int64 `json:"counts_by_type"`
}

// Service is the notification engine. The cache store, hub, sink fanout and
// invalidation policy are optional collaborators; a nil store degrades every
// cached read to a durable query.
type Service struct {
	db     *gorm.DB
	store  cache.Store
	hub    *realtime.Hub
	fanout *sinks.Fanout
	policy *invalidation.Policy
	cfg    Settings
	log    *zap.Logger
}

// NewService constructs the notification engine.
func NewService(db *gorm.DB, store cache.Store, hub *realtime.Hub, fanout *sinks.Fanout, policy *invalidation.Policy, cfg Settings) (*Service, error) {
	if db == nil {
		return nil, errors.New("notifications: db is required")
	}
	cfg.normalize()
	return &Service{
		db:     db,
		store:  store,
		hub:    hub,
		fanout: fanout,
		policy: policy,
		cfg:    cfg,
		log:    logger.WithModule("notifications"),
	}, nil
}

func unreadCountKey(userID string) string {
	return fmt.Sprintf("user:%s:unread_count", userID)
}

func latestListKey(userID string) string {
	return fmt.Sprintf("user:%s:latest_notifications", userID)
}

func pageCacheKey(userID string, skip, limit int, unreadOnly bool) string {
	return fmt.Sprintf("user:%s:notifications:%d:%d:%t", userID, skip, limit, unreadOnly)
}

// Notify persists a notification for the event, or refreshes the equivalent
// existing one. Self-referential events (sender == receiver) return (nil, nil)
// without side effects.
//
// Side effects run strictly after the durable commit: latest-list and counter
// caches first, then the realtime push, then the external sinks. Cache
// failures degrade to logged no-ops; sink failures are isolated per sink.
func (s *Service) Notify(ctx context.Context, event Event) (*Payload, error) {
	ctx = ensureContext(ctx)

	if err := validator.ValidateStruct(event); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if event.SenderID != "" && event.SenderID == event.ReceiverID {
		return nil, nil
	}

	existing, err := s.findExisting(ctx, event)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.refreshExisting(ctx, existing)
	}

	var sender *models.User
	if event.SenderID != "" {
		if sender, err = s.loadUser(ctx, event.SenderID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	notification := models.Notification{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ReceiverID:    event.ReceiverID,
		SenderID:      optionalID(event.SenderID),
		Type:          event.Type,
		RelatedPostID: optionalID(event.RelatedPostID),
		DedupKey:      dedupKey(event),
		Content:       templateFor(event.Type).render(sender.DisplayName(), event.Content),
	}

	payload := buildPayload(&notification, sender)
	if raw, marshalErr := json.Marshal(payload); marshalErr == nil {
		notification.Payload = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race against an identical concurrent event.
			if existing, lookupErr := s.findExisting(ctx, event); lookupErr == nil && existing != nil {
				return s.refreshExisting(ctx, existing)
			}
		}
		return nil, fmt.Errorf("notifications: create: %w", err)
	}

	metrics.NotificationsCreated.WithLabelValues(notification.Type).Inc()
	s.log.Info("notification created",
		zap.String("notification_id", notification.ID),
		zap.String("receiver_id", notification.ReceiverID),
		zap.String("type", notification.Type),
	)

	s.pushToCaches(ctx, event.ReceiverID, payload)
	s.pushRealtime(ctx, event.ReceiverID, realtime.ActionNew, payload)
	s.deliverSinks(ctx, event, payload)

	return &payload, nil
}

// NotifyLike notifies the content owner about a like on their post.
func (s *Service) NotifyLike(ctx context.Context, postID, likerID, ownerID string) (*Payload, error) {
	if likerID == ownerID {
		return nil, nil
	}
	return s.Notify(ctx, Event{
		ReceiverID:    ownerID,
		SenderID:      likerID,
		Type:          models.NotificationTypeLike,
		RelatedPostID: postID,
		SendEmail:     true,
		SendPush:      true,
	})
}

// NotifyComment notifies about a comment or a reply. When parentCommentID is
// set the event is a reply and the receiver is the parent comment's author,
// never the post owner; a plain comment notifies the post owner. The two
// outcomes are mutually exclusive per event.
func (s *Service) NotifyComment(ctx context.Context, commentID, commenterID, postID, postOwnerID, parentCommentID string) (*Payload, error) {
	ctx = ensureContext(ctx)

	receiverID := postOwnerID
	notificationType := models.NotificationTypeComment

	if parentCommentID != "" {
		var parent models.Comment
		if err := s.db.WithContext(ctx).
			Select("user_id").
			Where("id = ?", parentCommentID).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("notifications: load parent comment: %w", err)
		}
		if parent.UserID == commenterID {
			return nil, nil
		}
		receiverID = parent.UserID
		notificationType = models.NotificationTypeReply
	} else if commenterID == postOwnerID {
		return nil, nil
	}

	return s.Notify(ctx, Event{
		ReceiverID:    receiverID,
		SenderID:      commenterID,
		Type:          notificationType,
		RelatedPostID: postID,
		SendEmail:     true,
		SendPush:      true,
	})
}

// NotifyFollow notifies the followed user about a new follower.
func (s *Service) NotifyFollow(ctx context.Context, followerID, followingID string) (*Payload, error) {
	if followerID == followingID {
		return nil, nil
	}
	return s.Notify(ctx, Event{
		ReceiverID: followingID,
		SenderID:   followerID,
		Type:       models.NotificationTypeFollow,
		SendEmail:  true,
		SendPush:   true,
	})
}

// NotifyMention fans one event out per mentioned user. Each delivery is
// suppressed and failed independently; a failure for one mention does not
// abort the rest.
func (s *Service) NotifyMention(ctx context.Context, postID, senderID string, mentionedIDs []string) ([]Payload, error) {
	var created []Payload
	for _, userID := range mentionedIDs {
		if userID == senderID {
			continue
		}
		payload, err := s.Notify(ctx, Event{
			ReceiverID:    userID,
			SenderID:      senderID,
			Type:          models.NotificationTypeMention,
			RelatedPostID: postID,
			SendEmail:     true,
			SendPush:      true,
		})
		if err != nil {
			s.log.Warn("mention notification failed",
				zap.String("receiver_id", userID),
				zap.Error(err),
			)
			continue
		}
		if payload != nil {
			created = append(created, *payload)
		}
	}
	return created, nil
}

// NotifySystem creates a sender-less system notification with free-text content.
func (s *Service) NotifySystem(ctx context.Context, receiverID, content string) (*Payload, error) {
	return s.Notify(ctx, Event{
		ReceiverID: receiverID,
		Type:       models.NotificationTypeSystem,
		Content:    content,
	})
}

// List returns a notification page plus total and unread counts, served from
// the short-TTL page cache when possible.
func (s *Service) List(ctx context.Context, userID string, skip, limit int, unreadOnly bool) (*ListResult, error) {
	ctx = ensureContext(ctx)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	cacheKey := pageCacheKey(userID, skip, limit, unreadOnly)
	if raw, ok := s.cacheGet(ctx, cacheKey); ok {
		var cached ListResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	query := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("notifications: count: %w", err)
	}

	var rows []models.Notification
	if err := query.
		Preload("Sender").
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notifications: list: %w", err)
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Notifications: make([]Payload, 0, len(rows)),
		Total:         total,
		Skip:          skip,
		Limit:         limit,
		UnreadCount:   unread,
	}
	for i := range rows {
		result.Notifications = append(result.Notifications, buildPayload(&rows[i], rows[i].Sender))
	}

	if raw, marshalErr := json.Marshal(result); marshalErr == nil {
		s.cacheSet(ctx, cacheKey, raw, s.cfg.PageCacheTTL)
	}
	return result, nil
}

// Latest returns the newest notifications from the bounded cached list,
// rebuilding the cache wholesale from the durable store on a miss.
func (s *Service) Latest(ctx context.Context, userID string, limit int) ([]Payload, error) {
	ctx = ensureContext(ctx)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if limit <= 0 || limit > s.cfg.LatestListSize {
		limit = s.cfg.LatestListSize
	}

	key := latestListKey(userID)
	if cached := s.cacheListRange(ctx, key, 0, int64(limit-1)); len(cached) > 0 {
		payloads := make([]Payload, 0, len(cached))
		for _, raw := range cached {
			var p Payload
			if err := json.Unmarshal(raw, &p); err != nil {
				continue
			}
			payloads = append(payloads, p)
		}
		return payloads, nil
	}

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notifications: latest: %w", err)
	}

	payloads := make([]Payload, 0, len(rows))
	for i := range rows {
		payloads = append(payloads, buildPayload(&rows[i], rows[i].Sender))
	}

	// Repopulate oldest-first so the newest row ends up at the list head.
	for i := len(payloads) - 1; i >= 0; i-- {
		if raw, err := json.Marshal(payloads[i]); err == nil {
			s.cacheListPush(ctx, key, raw)
		}
	}
	s.cacheListTrim(ctx, key, 0, int64(s.cfg.LatestListSize-1))

	return payloads, nil
}

// UnreadCount reads the counter cache, recounting from the durable store and
// repopulating the cache on a miss.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	key := unreadCountKey(userID)
	if raw, ok := s.cacheGet(ctx, key); ok {
		if count, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return count, nil
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notifications: unread count: %w", err)
	}

	s.cacheSet(ctx, key, []byte(strconv.FormatInt(count, 10)), s.cfg.UnreadCountTTL)
	return count, nil
}

// GetStats aggregates per-type counts, totals, and recent activity.
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	ctx = ensureContext(ctx)

	type typeCount struct {
		Type  string
		Count int64
	}
	var byType []typeCount
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("type, COUNT(*) AS count").
		Where("receiver_id = ?", userID).
		Group("type").
		Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("notifications: stats by type: %w", err)
	}

	stats := &Stats{CountsByType: make(map[string]int64, len(byType))}
	for _, row := range byType {
		stats.CountsByType[row.Type] = row.Count
		stats.TotalCount += row.Count
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.UnreadCount = unread

	since := time.Now().UTC().Add(-24 * time.Hour)
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND created_at >= ?", userID, since).
		Count(&stats.Last24hCount).Error; err != nil {
		return nil, fmt.Errorf("notifications: stats recent: %w", err)
	}

	return stats, nil
}

// MarkRead marks one notification read. Marking an already-read notification
// is a no-op that returns it unchanged, so the counter is never decremented
// twice for the same row.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) (*Payload, error) {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("id = ? AND receiver_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notifications: load notification: %w", err)
	}

	if notification.IsRead {
		payload := buildPayload(&notification, notification.Sender)
		return &payload, nil
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("notifications: mark read: %w", err)
	}
	notification.IsRead = true
	notification.ReadAt = &now

	s.cacheDecrement(ctx, unreadCountKey(userID))
	s.invalidatePages(ctx, userID, invalidation.MutationUpdate)

	payload := buildPayload(&notification, notification.Sender)
	s.pushRealtime(ctx, userID, realtime.ActionRead, payload)
	return &payload, nil
}

// MarkAllRead bulk-marks every unread notification read and resets the
// counter cache to zero. The reset is a full resync point, not a decrement,
// so any accumulated counter drift is corrected here.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("notifications: mark all read: %w", result.Error)
	}

	// Reset unconditionally: even with zero rows touched the durable truth is
	// zero unread, and a drifted counter cache must converge here.
	s.cacheSet(ctx, unreadCountKey(userID), []byte("0"), s.cfg.UnreadCountTTL)

	if result.RowsAffected > 0 {
		s.invalidatePages(ctx, userID, invalidation.MutationUpdate)
		s.pushRealtime(ctx, userID, realtime.ActionRead, map[string]any{
			"marked_read": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}

// Delete removes one notification owned by the user, decrementing the unread
// counter only if the deleted row was unread.
func (s *Service) Delete(ctx context.Context, notificationID, userID string) error {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("notifications: load notification: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&notification).Error; err != nil {
		return fmt.Errorf("notifications: delete: %w", err)
	}

	if !notification.IsRead {
		s.cacheDecrement(ctx, unreadCountKey(userID))
	}
	s.invalidatePages(ctx, userID, invalidation.MutationDelete)
	s.pushRealtime(ctx, userID, realtime.ActionDelete, map[string]any{
		"id": notificationID,
	})
	return nil
}

// DeleteAll removes every notification for the user and clears all of the
// user's notification caches unconditionally.
func (s *Service) DeleteAll(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("receiver_id = ?", userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notifications: delete all: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, nil
	}

	s.invalidatePages(ctx, userID, invalidation.MutationDelete)
	s.cacheDelete(ctx, unreadCountKey(userID))
	s.pushRealtime(ctx, userID, realtime.ActionDelete, map[string]any{
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// CleanupOld deletes notifications older than the retention horizon in
// bounded batches and invalidates affected users' caches. Best-effort
// housekeeping: a partial run leaves the data consistent.
func (s *Service) CleanupOld(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
	affected := make(map[string]struct{})
	var total int64

	for {
		var batch []models.Notification
		if err := s.db.WithContext(ctx).
			Select("id, receiver_id").
			Where("created_at < ?", cutoff).
			Limit(s.cfg.CleanupBatchSize).
			Find(&batch).Error; err != nil {
			return total, fmt.Errorf("notifications: cleanup scan: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		ids := make([]string, 0, len(batch))
		for _, row := range batch {
			ids = append(ids, row.ID)
			affected[row.ReceiverID] = struct{}{}
		}

		result := s.db.WithContext(ctx).
			Where("id IN ?", ids).
			Delete(&models.Notification{})
		if result.Error != nil {
			return total, fmt.Errorf("notifications: cleanup delete: %w", result.Error)
		}
		total += result.RowsAffected

		if len(batch) < s.cfg.CleanupBatchSize {
			break
		}
	}

	for userID := range affected {
		s.invalidatePages(ctx, userID, invalidation.MutationDelete)
	}

	if total > 0 {
		s.log.Info("old notifications cleaned up",
			zap.Int64("deleted", total),
			zap.Int("retention_days", s.cfg.RetentionDays),
		)
	}
	return total, nil
}

// Subscribe registers a realtime channel for the user.
func (s *Service) Subscribe(userID string, ch realtime.Channel) {
	if s.hub != nil {
		s.hub.Connect(userID, ch)
	}
}

// Unsubscribe removes a realtime channel for the user.
func (s *Service) Unsubscribe(userID string, ch realtime.Channel) {
	if s.hub != nil {
		s.hub.Disconnect(userID, ch)
	}
}

// dedupKey derives the deduplication key for an incoming event, matching the
// unique index the store enforces on insert.
func dedupKey(event Event) string {
	return models.DedupKeyFor(event.ReceiverID, optionalID(event.SenderID),
		event.Type, optionalID(event.RelatedPostID), event.Content)
}

// findExisting looks up the row an equivalent prior event would have
// produced. The lookup and the insert share one key, so two producers racing
// past this check collide on the unique index and the loser re-enters here.
func (s *Service) findExisting(ctx context.Context, event Event) (*models.Notification, error) {
	var existing models.Notification
	err := s.db.WithContext(ctx).
		Preload("Sender").
		First(&existing, "dedup_key = ?", dedupKey(event)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("notifications: dedup lookup: %w", err)
	}
	return &existing, nil
}

// refreshExisting bumps the existing row's timestamp without touching the
// unread counter or re-delivering over realtime.
func (s *Service) refreshExisting(ctx context.Context, existing *models.Notification) (*Payload, error) {
	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(existing).
		Update("created_at", now).Error; err != nil {
		return nil, fmt.Errorf("notifications: refresh: %w", err)
	}
	existing.CreatedAt = now

	metrics.NotificationsDeduplicated.WithLabelValues(existing.Type).Inc()
	s.log.Debug("notification refreshed",
		zap.String("notification_id", existing.ID),
		zap.String("receiver_id", existing.ReceiverID),
	)

	payload := buildPayload(existing, existing.Sender)
	return &payload, nil
}

func (s *Service) loadUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("notifications: load user: %w", err)
	}
	return &user, nil
}

// pushToCaches prepends the payload to the latest list and bumps the unread
// counter. Runs only for freshly created rows.
func (s *Service) pushToCaches(ctx context.Context, userID string, payload Payload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	key := latestListKey(userID)
	s.cacheListPush(ctx, key, raw)
	s.cacheListTrim(ctx, key, 0, int64(s.cfg.LatestListSize-1))
	s.cacheIncrement(ctx, unreadCountKey(userID))
}

func (s *Service) pushRealtime(ctx context.Context, userID, action string, data any) {
	if s.hub == nil {
		return
	}
	frame, err := realtime.NotificationEnvelope(action, data)
	if err != nil {
		s.log.Warn("realtime envelope marshal failed", zap.Error(err))
		return
	}
	s.hub.SendPersonal(ctx, userID, frame)
}

// deliverSinks hands the rendered payload to the email and push sinks. The
// receiver row supplies the destination address and device token.
func (s *Service) deliverSinks(ctx context.Context, event Event, payload Payload) {
	if s.fanout == nil || (!event.SendEmail && !event.SendPush) {
		return
	}

	receiver, err := s.loadUser(ctx, event.ReceiverID)
	if err != nil || receiver == nil {
		return
	}

	delivery := sinks.Delivery{
		RecipientID: receiver.ID,
		Title:       payload.Title,
		Body:        payload.Message,
		Data: map[string]string{
			"notification_id": payload.ID,
			"type":            payload.Type,
		},
	}
	if event.SendEmail {
		delivery.RecipientEmail = receiver.Email
	}
	if event.SendPush {
		delivery.PushToken = receiver.PushToken
	}
	s.fanout.Deliver(ctx, delivery)
}

func (s *Service) invalidatePages(ctx context.Context, userID string, kind invalidation.MutationKind) {
	if s.policy == nil {
		return
	}
	s.policy.Invalidate(ctx, invalidation.NotificationMutation(kind, userID))
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
