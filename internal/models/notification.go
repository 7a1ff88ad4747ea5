package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types understood by the engine.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeReply   = "reply"
	NotificationTypeFollow  = "follow"
	NotificationTypeMention = "mention"
	NotificationTypeShare   = "share"
	NotificationTypeSystem  = "system"
)

// Notification represents a persisted in-app notification for a user.
//
// DedupKey backs deduplication: a second occurrence of an equivalent event
// refreshes the existing row instead of inserting a new one. The key is a
// single non-null column because SQL unique indexes treat NULLs as distinct,
// so a composite index over the nullable sender/post columns would never
// fire for follow or system notifications.
type Notification struct {
	BaseModel

	ReceiverID    string  `gorm:"type:uuid;index;not null" json:"receiver_id"`
	SenderID      *string `gorm:"type:uuid;index" json:"sender_id"`
	Type          string  `gorm:"type:varchar(32);not null" json:"type"`
	RelatedPostID *string `gorm:"type:uuid" json:"related_post_id"`

	// DedupKey serializes check-then-act across concurrent producers: two
	// equivalent events racing past the lookup collide here, and the loser
	// falls back to refreshing the winner's row.
	DedupKey string `gorm:"size:191;not null;uniqueIndex" json:"-"`

	// Content holds the rendered message text. It is written once at
	// creation so historical notifications stay stable if the sender is
	// later renamed.
	Content string `gorm:"type:text" json:"content"`

	// Payload carries the enriched delivery payload as sent over realtime.
	Payload datatypes.JSON `json:"payload"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`

	Receiver *User `gorm:"foreignKey:ReceiverID" json:"-"`
	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// BeforeCreate assigns the id and derives the dedup key when the caller has
// not set one explicitly.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if err := n.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if n.DedupKey == "" {
		n.DedupKey = DedupKeyFor(n.ReceiverID, n.SenderID, n.Type, n.RelatedPostID, n.Content)
	}
	return nil
}

// DedupKeyFor derives the key under which equivalent notifications collapse.
// Follow events key on (receiver, sender, type) alone; system events include
// a digest of their content so distinct announcements never collapse into
// one row; every other type keys on (receiver, sender, type, related post).
// A nil sender or post maps to the empty string, keeping the key non-null.
func DedupKeyFor(receiverID string, senderID *string, typ string, relatedPostID *string, content string) string {
	sender := ""
	if senderID != nil {
		sender = *senderID
	}

	switch typ {
	case NotificationTypeFollow:
		return strings.Join([]string{receiverID, sender, typ}, "|")
	case NotificationTypeSystem:
		digest := sha256.Sum256([]byte(content))
		return strings.Join([]string{receiverID, sender, typ, hex.EncodeToString(digest[:])}, "|")
	default:
		post := ""
		if relatedPostID != nil {
			post = *relatedPostID
		}
		return strings.Join([]string{receiverID, sender, typ, post}, "|")
	}
}

// IsValidNotificationType reports whether the supplied type is part of the
// closed notification type enum.
func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeLike, NotificationTypeComment, NotificationTypeReply,
		NotificationTypeFollow, NotificationTypeMention, NotificationTypeShare,
		NotificationTypeSystem:
		return true
	default:
		return false
	}
}
