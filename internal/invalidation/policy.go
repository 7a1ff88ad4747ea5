// Package invalidation computes and applies the cache key patterns that a
// write to posts, comments, likes, follows, or notifications must clear.
//
// The pattern sets are a deliberate over-approximation: clearing too much is
// always safe, skipping a touched key never is. Pattern computation is a pure
// function so callers and tests can inspect the set without a cache store.
package invalidation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pulsefeed/backend/internal/cache"
	"github.com/pulsefeed/backend/pkg/logger"
	"github.com/pulsefeed/backend/pkg/metrics"
)

// EntityKind identifies the mutated entity class.
type EntityKind string

const (
	EntityPost         EntityKind = "post"
	EntityComment      EntityKind = "comment"
	EntityLike         EntityKind = "like"
	EntityFollow       EntityKind = "follow"
	EntityNotification EntityKind = "notification"
)

// MutationKind identifies the write that occurred. The pattern sets do not
// depend on it (creates and deletes poison the same keys) but it is carried
// for logging.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Mutation describes one committed entity write. Which ID fields are
// meaningful depends on Entity; the constructors below populate them.
type Mutation struct {
	Entity EntityKind
	Kind   MutationKind

	// EntityID is the primary id of the mutated entity where one exists
	// (post id, comment id, notification receiver id). Likes and follows are
	// identified by their participant ids instead.
	EntityID string

	PostID      string // comment: parent post; like: liked post
	CommentID   string // like: liked comment
	ParentID    string // comment: parent comment when the mutation is a reply
	ActorID     string // comment author or liker
	FollowerID  string
	FollowingID string
}

// PostMutation describes a write to a post authored by authorID.
func PostMutation(kind MutationKind, postID, authorID string) Mutation {
	return Mutation{Entity: EntityPost, Kind: kind, EntityID: postID, ActorID: authorID}
}

// CommentMutation describes a comment write. parentID is empty unless the
// comment is a reply.
func CommentMutation(kind MutationKind, commentID, postID, authorID, parentID string) Mutation {
	return Mutation{
		Entity:   EntityComment,
		Kind:     kind,
		EntityID: commentID,
		PostID:   postID,
		ActorID:  authorID,
		ParentID: parentID,
	}
}

// LikeMutation describes a like or unlike by likerID. Exactly one of postID
// and commentID identifies the liked entity.
func LikeMutation(kind MutationKind, likerID, postID, commentID string) Mutation {
	return Mutation{
		Entity:    EntityLike,
		Kind:      kind,
		ActorID:   likerID,
		PostID:    postID,
		CommentID: commentID,
	}
}

// FollowMutation describes a follow or unfollow edge write.
func FollowMutation(kind MutationKind, followerID, followingID string) Mutation {
	return Mutation{
		Entity:      EntityFollow,
		Kind:        kind,
		FollowerID:  followerID,
		FollowingID: followingID,
	}
}

// NotificationMutation describes a change to receiverID's notification set.
func NotificationMutation(kind MutationKind, receiverID string) Mutation {
	return Mutation{Entity: EntityNotification, Kind: kind, EntityID: receiverID}
}

// Patterns returns the complete glob set the mutation must clear.
func Patterns(m Mutation) []string {
	switch m.Entity {
	case EntityPost:
		return postPatterns(m)
	case EntityComment:
		return commentPatterns(m)
	case EntityLike:
		return likePatterns(m)
	case EntityFollow:
		return followPatterns(m)
	case EntityNotification:
		return notificationPatterns(m)
	default:
		return nil
	}
}

func postPatterns(m Mutation) []string {
	patterns := []string{fmt.Sprintf("*post:%s*", m.EntityID)}
	if m.ActorID != "" {
		patterns = append(patterns, fmt.Sprintf("user:%s:*", m.ActorID))
	}
	return patterns
}

func commentPatterns(m Mutation) []string {
	patterns := []string{
		fmt.Sprintf("*comment:%s*", m.EntityID),
		fmt.Sprintf("*post:%s:comments*", m.PostID),
		fmt.Sprintf("*post:%s:comment*", m.PostID),
		fmt.Sprintf("*post:%s:comment_tree*", m.PostID),
	}
	if m.ActorID != "" {
		patterns = append(patterns, fmt.Sprintf("*user:%s:comments*", m.ActorID))
	}
	if m.ParentID != "" {
		patterns = append(patterns,
			fmt.Sprintf("*comment:%s:replies*", m.ParentID),
			fmt.Sprintf("*comment:%s:*", m.ParentID),
		)
	}
	return patterns
}

func likePatterns(m Mutation) []string {
	var patterns []string
	switch {
	case m.PostID != "":
		patterns = append(patterns,
			fmt.Sprintf("like:user:%s:post:%s", m.ActorID, m.PostID),
			fmt.Sprintf("post:%s:likes:*", m.PostID),
			fmt.Sprintf("post:%s:like_count", m.PostID),
			fmt.Sprintf("post:%s:like_stats", m.PostID),
		)
	case m.CommentID != "":
		patterns = append(patterns,
			fmt.Sprintf("like:user:%s:comment:%s", m.ActorID, m.CommentID),
			fmt.Sprintf("comment:%s:likes:*", m.CommentID),
			fmt.Sprintf("comment:%s:like_count", m.CommentID),
		)
	}
	patterns = append(patterns,
		fmt.Sprintf("user:%s:likes:*", m.ActorID),
		fmt.Sprintf("user:%s:like_count:*", m.ActorID),
		fmt.Sprintf("user:%s:like_stats", m.ActorID),
		// Likes can reorder global rankings.
		"trending_posts:*",
		"recent_likes:*",
	)
	return patterns
}

func followPatterns(m Mutation) []string {
	follower, following := m.FollowerID, m.FollowingID
	return []string{
		fmt.Sprintf("follow:%s:%s", follower, following),
		fmt.Sprintf("follow:%s:%s", following, follower),
		fmt.Sprintf("user:%s:following_count", follower),
		fmt.Sprintf("user:%s:follower_count", following),
		fmt.Sprintf("user:%s:following:*", follower),
		fmt.Sprintf("user:%s:followers:*", following),
		fmt.Sprintf("user:%s:follow_suggestions:*", follower),
		fmt.Sprintf("user:%s:follow_suggestions:*", following),
		fmt.Sprintf("user:%s:follow_stats", follower),
		fmt.Sprintf("user:%s:follow_stats", following),
		fmt.Sprintf("mutual:*%s*", follower),
		fmt.Sprintf("mutual:*%s*", following),
	}
}

func notificationPatterns(m Mutation) []string {
	return []string{
		fmt.Sprintf("user:%s:notifications:*", m.EntityID),
		fmt.Sprintf("user:%s:latest_notifications", m.EntityID),
	}
}

// Policy applies mutation pattern sets against a cache store.
type Policy struct {
	store cache.Store
	log   *zap.Logger
}

// NewPolicy constructs an invalidation policy over the supplied store.
func NewPolicy(store cache.Store) *Policy {
	return &Policy{
		store: store,
		log:   logger.WithModule("invalidation"),
	}
}

// Invalidate clears every pattern the mutation touches. It runs synchronously
// so a caller that returns success has already cleared the cache. Store
// failures are logged and swallowed: the durable write stands and key TTLs
// bound the resulting staleness.
func (p *Policy) Invalidate(ctx context.Context, m Mutation) {
	if p == nil || p.store == nil {
		return
	}

	patterns := Patterns(m)
	for _, pattern := range patterns {
		if err := p.store.DeletePattern(ctx, pattern); err != nil {
			p.log.Warn("cache invalidation failed",
				zap.String("entity", string(m.Entity)),
				zap.String("mutation", string(m.Kind)),
				zap.String("pattern", pattern),
				zap.Error(err),
			)
		}
	}

	metrics.CacheInvalidations.WithLabelValues(string(m.Entity)).Inc()
	p.log.Debug("cache invalidated",
		zap.String("entity", string(m.Entity)),
		zap.String("mutation", string(m.Kind)),
		zap.Int("patterns", len(patterns)),
	)
}
