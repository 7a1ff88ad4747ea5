package notifications

import (
	"time"

	"github.com/pulsefeed/backend/internal/models"
)

// SenderInfo is the embedded sender summary in a notification payload.
type SenderInfo struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Payload is the enriched notification shape delivered to API consumers,
// realtime clients and external sinks, and cached in the latest list.
type Payload struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Title         string      `json:"title"`
	Message       string      `json:"message"`
	Icon          string      `json:"icon"`
	Sender        *SenderInfo `json:"sender"`
	RelatedPostID *string     `json:"related_post_id"`
	IsRead        bool        `json:"is_read"`
	CreatedAt     time.Time   `json:"created_at"`
	ReadAt        *time.Time  `json:"read_at"`
}

// buildPayload assembles the payload from a persisted row and its (optional)
// sender. Title and icon come from the type template; the message is the
// stored rendered content.
func buildPayload(n *models.Notification, sender *models.User) Payload {
	tpl := templateFor(n.Type)

	var senderInfo *SenderInfo
	if sender != nil {
		senderInfo = &SenderInfo{
			ID:             sender.ID,
			Username:       sender.Username,
			ProfilePicture: sender.ProfilePicture,
		}
	}

	return Payload{
		ID:            n.ID,
		Type:          n.Type,
		Title:         tpl.Title,
		Message:       n.Content,
		Icon:          tpl.Icon,
		Sender:        senderInfo,
		RelatedPostID: n.RelatedPostID,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		ReadAt:        n.ReadAt,
	}
}
